package main

import (
	"context"
	"log"

	"github.com/go-authgate/authd/internal/bootstrap"
	"github.com/go-authgate/authd/internal/config"
)

func main() {
	cfg := config.Load()

	if err := bootstrap.Run(context.Background(), cfg); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}
