package main

import (
	"context"
	"fmt"
	"os"

	authservice "hatbazar/internal/auth-service"
	"hatbazar/internal/config"
	demandservice "hatbazar/internal/demand-service"
	"hatbazar/internal/mylogger"
	notificatorservice "hatbazar/internal/notificator-service"

	"github.com/joho/godotenv"
)

const usage = `usage: hatbazar <service>

services:
  demand-service       demand lifecycle and geo matching API
  auth-service         registration and login API
  notificator-service  email notification consumer
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	// .env is optional, environment variables win either way
	_ = godotenv.Load()

	cfg, err := config.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	mylog, err := mylogger.New(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	switch os.Args[1] {
	case "demand-service":
		err = demandservice.Execute(ctx, mylog.With("service", "demand-service"), cfg)
	case "auth-service":
		err = authservice.Execute(ctx, mylog.With("service", "auth-service"), cfg)
	case "notificator-service":
		err = notificatorservice.Execute(ctx, mylog.With("service", "notificator-service"), cfg)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	if err != nil {
		mylog.Error("service exited with error", err)
		os.Exit(1)
	}
}
