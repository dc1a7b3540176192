package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	recertcmd "github.com/recertly/recert/internal/cmd/recert"
)

func main() {
	cfg, err := recertcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[RECERT] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := recertcmd.Run(ctx, cfg, os.Stdout); err != nil {
		log.Fatalf("failed to run: %v", err)
	}
}
