package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// A .env file is optional; the credential may come from the real environment.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
