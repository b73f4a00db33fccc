package main

import (
	"context"
	"log"

	"github.com/nytevibe/nytevibe/internal/client/cli"
	"github.com/nytevibe/nytevibe/internal/client/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}

}
