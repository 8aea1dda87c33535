package config

import (
	"log/slog"

	"github.com/corray333/backend-labs/crm/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func MustInit() {
	if err := godotenv.Load("./.env"); err != nil {
		panic("error while loading .env file: " + err.Error())
	}
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/crm-jobs")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		panic("error while reading config file: " + err.Error())
	}
	setDefaults()
	SetupLogger()
}

func setDefaults() {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")

	viper.SetDefault("server.http.port", "8080")

	viper.SetDefault("postgres.migrations_path", "./migrations")

	viper.SetDefault("audit.log_path", "/tmp/crm_report_log.txt")
	viper.SetDefault("audit.reminders_log_path", "/tmp/order_reminders_log.txt")

	viper.SetDefault("rabbitmq.enabled", false)
	viper.SetDefault("rabbitmq.host", "rabbitmq")

	viper.SetDefault("jaeger.endpoint", "http://jaeger:14268/api/traces")

	viper.SetDefault("jobs.report.enabled", true)
	viper.SetDefault("jobs.report.interval", "168h")
	viper.SetDefault("jobs.cleanup.enabled", true)
	viper.SetDefault("jobs.cleanup.interval", "24h")
	viper.SetDefault("jobs.cleanup.retention", "8760h")
	viper.SetDefault("jobs.reminders.enabled", true)
	viper.SetDefault("jobs.reminders.interval", "24h")
	viper.SetDefault("jobs.reminders.window", "168h")
	viper.SetDefault("jobs.restock.enabled", true)
	viper.SetDefault("jobs.restock.interval", "1h")
	viper.SetDefault("jobs.restock.threshold", 10)
	viper.SetDefault("jobs.restock.increment", 10)
}

func SetupLogger() {
	handler := logger.NewHandler(nil)
	log := slog.New(handler)
	slog.SetDefault(log)
}
