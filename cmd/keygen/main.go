package main

import (
	"fmt"
	"os"

	"github.com/arnavshah/housekeeping-api-go/internal/config"
	"github.com/arnavshah/housekeeping-api-go/pkg/auth"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: keygen <userID>")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	if cfg.Auth.MasterSecret == "" {
		fmt.Println("Error: AUTH_MASTER_SECRET not found in .env")
		os.Exit(1)
	}

	userID := os.Args[1]
	apiKey := auth.New(cfg.Auth.JWTSecret, cfg.Auth.MasterSecret, 0).GenerateHMACKey(userID)
	fmt.Printf("Generated Key for %s:\n%s\n", userID, apiKey)
}
