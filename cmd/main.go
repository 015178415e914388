package main

import (
	"fmt"
	"os"

	"github.com/yungbote/lingobridge-backend/internal/app"
)

func main() {
	application, err := app.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	if err := application.Run(":" + application.Cfg.Port); err != nil {
		application.Log.Error("Server failed", "error", err)
	}
}
