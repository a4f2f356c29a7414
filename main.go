package main

import (
	"os"

	"github.com/pipelinekit/example-addon/app"
)

func main() {
	if err := app.Execute(); err != nil {
		os.Exit(1)
	}
}
