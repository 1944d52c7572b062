package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"civiclens/internal/app"
	"civiclens/internal/config"
)

func main() {
	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	cfg, err := config.Load(os.Getenv("CL_CONFIG"))
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch cmd {
	case "serve":
		runServe(ctx, cfg)
	case "check-config":
		fmt.Printf("config ok: provider=%s addr=%s\n", cfg.LLM.Provider, cfg.HTTP.Addr)
	default:
		usage()
	}
}

func runServe(ctx context.Context, cfg config.Config) {
	appInstance, err := app.New(cfg)
	if err != nil {
		log.Fatalf("app init error: %v", err)
	}
	defer appInstance.Close()

	log.Printf("civiclensd serving on %s", cfg.HTTP.Addr)
	if err := appInstance.Serve(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func usage() {
	fmt.Println("usage: civiclensd [serve|check-config]")
	fmt.Println("  serve         run the complaint analysis HTTP service (default)")
	fmt.Println("  check-config  load and validate configuration, then exit")
	fmt.Println("configuration file path comes from CL_CONFIG; CL_* variables override it")
}
