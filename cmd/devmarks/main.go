package main

import (
	"log"

	"github.com/MrSnakeDoc/devmarks/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ devmarks failed to start: %v", err)
	}
}
