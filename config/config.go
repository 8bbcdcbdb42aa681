package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/automoto/rigsync/shared/netconfig"
)

// ServerConfig contains all session-server configuration values.
type ServerConfig struct {
	// Identity
	Name   string
	Region string

	// Listen
	Port    uint
	Address string // advertised address, host:port

	// Simulation
	TickRate         int
	MaxParticipants  int
	TeleportDistance float64

	// Stage
	StagePath string

	// Master registry (empty = standalone, no registration)
	MasterURL string
}

// DefaultServerConfig returns the configuration a bare server starts with.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Name:             "Rigsync Server",
		Port:             7373,
		TickRate:         netconfig.DefaultTickRate,
		MaxParticipants:  16,
		TeleportDistance: netconfig.DefaultTeleportDistance,
		StagePath:        "stages/dock.tmx",
	}
}

type fileConfig struct {
	Name             string  `toml:"name"`
	Region           string  `toml:"region"`
	Port             uint    `toml:"port"`
	Address          string  `toml:"address"`
	TickRate         int     `toml:"tick_rate"`
	MaxParticipants  int     `toml:"max_participants"`
	TeleportDistance float64 `toml:"teleport_distance"`
	StagePath        string  `toml:"stage"`
	MasterURL        string  `toml:"master_url"`
}

// LoadServerConfig overlays a TOML file onto the defaults. Keys absent from
// the file keep their default values.
func LoadServerConfig(path string) (ServerConfig, error) {
	cfg := DefaultServerConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return ServerConfig{}, fmt.Errorf("load server config: %w", err)
	}

	if meta.IsDefined("name") {
		if name := strings.TrimSpace(raw.Name); name != "" {
			cfg.Name = name
		}
	}
	if meta.IsDefined("region") {
		cfg.Region = strings.TrimSpace(raw.Region)
	}
	if meta.IsDefined("port") {
		cfg.Port = raw.Port
	}
	if meta.IsDefined("address") {
		cfg.Address = strings.TrimSpace(raw.Address)
	}
	if meta.IsDefined("tick_rate") {
		cfg.TickRate = raw.TickRate
	}
	if meta.IsDefined("max_participants") {
		cfg.MaxParticipants = raw.MaxParticipants
	}
	if meta.IsDefined("teleport_distance") {
		cfg.TeleportDistance = raw.TeleportDistance
	}
	if meta.IsDefined("stage") {
		cfg.StagePath = strings.TrimSpace(raw.StagePath)
	}
	if meta.IsDefined("master_url") {
		cfg.MasterURL = strings.TrimSpace(raw.MasterURL)
	}

	if err := validate(cfg); err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}

func validate(cfg ServerConfig) error {
	if cfg.TickRate <= 0 {
		return fmt.Errorf("server config: tick_rate must be positive, got %d", cfg.TickRate)
	}
	if cfg.MaxParticipants <= 0 {
		return fmt.Errorf("server config: max_participants must be positive, got %d", cfg.MaxParticipants)
	}
	if cfg.TeleportDistance <= 0 {
		return fmt.Errorf("server config: teleport_distance must be positive, got %v", cfg.TeleportDistance)
	}
	if strings.TrimSpace(cfg.StagePath) == "" {
		return fmt.Errorf("server config: stage path is required")
	}
	return nil
}
