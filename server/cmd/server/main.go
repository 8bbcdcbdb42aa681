package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/automoto/rigsync/config"
	"github.com/automoto/rigsync/server/core"
)

func main() {
	configPath := flag.String("config", "", "Path to TOML server config (optional)")
	port := flag.Uint("port", 0, "Override listen port")
	tickRate := flag.Int("tickrate", 0, "Override tick rate (updates per second)")
	name := flag.String("name", "", "Override server display name")
	stage := flag.String("stage", "", "Override stage TMX path")
	masterURL := flag.String("master", "", "Override master registry URL")
	flag.Parse()

	cfg := config.DefaultServerConfig()
	if *configPath != "" {
		loaded, err := config.LoadServerConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *tickRate != 0 {
		cfg.TickRate = *tickRate
	}
	if *name != "" {
		cfg.Name = *name
	}
	if *stage != "" {
		cfg.StagePath = *stage
	}
	if *masterURL != "" {
		cfg.MasterURL = *masterURL
	}

	server, err := core.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	var registration *core.Registration
	if cfg.MasterURL != "" {
		registration = core.NewRegistration(cfg.MasterURL, server)
		registration.Start()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Shutting down server...")
		if registration != nil {
			registration.Stop()
		}
		server.Stop()
		os.Exit(0)
	}()

	log.Printf("Starting server %q on port %d (tick rate: %d/s)", cfg.Name, cfg.Port, cfg.TickRate)
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
