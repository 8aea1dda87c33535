package main

import (
	"github.com/corray333/backend-labs/crm/internal/app"
	"github.com/corray333/backend-labs/crm/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
