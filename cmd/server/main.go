package main

import (
	"os"

	"scribe-ai/core/internal/app"
)

// @title Scribe AI Core API
// @version 1.0
// @description Chat orchestration core for the Scribe AI recording assistant.
// @BasePath /api/v1
func main() {
	os.Exit(app.Run())
}
