package main

import (
	"github.com/tracery-ai/tracery/internal/server"
	"github.com/tracery-ai/tracery/internal/util"
	"github.com/tracery-ai/tracery/pkg/logger"
	"github.com/tracery-ai/tracery/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
