package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rodriguezjordyc/website/internal/logger"
)

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if cfgLoaded {
			logger.Error("Command failed", err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
