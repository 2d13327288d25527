package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/hongminglow/storefront-be/internal/cli"
)

func main() {
	loadLocalEnv()

	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		log.Fatalf("storefront: %v", err)
	}
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}
}
