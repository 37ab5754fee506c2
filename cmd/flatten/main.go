package main

import (
	"fmt"
	"os"

	"github.com/temirov/flatten/internal/cli"
	"github.com/temirov/flatten/internal/utils"
)

// main is the entry point for the flatten command.
func main() {
	loggerInstance, loggerInitializationError := utils.NewApplicationLogger(cli.RequestsVerboseLogging(os.Args[1:]))
	if loggerInitializationError != nil {
		panic(fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerInitializationError))
	}
	defer loggerInstance.Sync()
	if applicationExecutionError := cli.Execute(loggerInstance); applicationExecutionError != nil {
		loggerInstance.Fatal(utils.ApplicationExecutionFailedMessage + ": " + applicationExecutionError.Error())
	}
}
