package main

import (
	"context"
	"log"
	"os"

	"github.com/MrSnakeDoc/shelf/internal/cli"
)

func main() {
	if err := cli.NewRootCommand(os.Stdout).ExecuteContext(context.Background()); err != nil {
		log.Fatalf("❌ shelf: %v", err)
	}
}
