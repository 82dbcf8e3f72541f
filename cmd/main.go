package main

import (
	"os"

	"github.com/oponion/oponion-api/internal/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
