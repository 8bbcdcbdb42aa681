package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/automoto/rigsync/shared/protocol"
)

// Registration handles registering and heartbeating with the master server.
type Registration struct {
	masterURL string
	serverID  string
	server    *Server
	client    *http.Client
	stopCh    chan struct{}
}

type regRequest struct {
	Name            string `json:"name"`
	Address         string `json:"address"`
	Participants    int    `json:"participants"`
	MaxParticipants int    `json:"maxParticipants"`
	Version         string `json:"version"`
	Region          string `json:"region"`
	Stage           string `json:"stage"`
}

type regResponse struct {
	ID string `json:"id"`
}

type heartbeatRequest struct {
	ID           string `json:"id"`
	Participants int    `json:"participants"`
}

func NewRegistration(masterURL string, server *Server) *Registration {
	return &Registration{
		masterURL: masterURL,
		server:    server,
		client:    &http.Client{Timeout: 5 * time.Second},
		stopCh:    make(chan struct{}),
	}
}

func (r *Registration) Start() {
	if err := r.register(); err != nil {
		log.Printf("[registration] initial registration failed: %v", err)
	}
	go r.heartbeatLoop()
}

func (r *Registration) Stop() {
	close(r.stopCh)
}

func (r *Registration) register() error {
	cfg := r.server.cfg
	body, err := json.Marshal(regRequest{
		Name:            cfg.Name,
		Address:         cfg.Address,
		Participants:    r.server.ParticipantCount(),
		MaxParticipants: cfg.MaxParticipants,
		Version:         protocol.Version,
		Region:          cfg.Region,
		Stage:           r.server.stage,
	})
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	resp, err := r.client.Post(r.masterURL+"/servers/register", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result regResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	r.serverID = result.ID
	log.Printf("[registration] registered with master (id=%s)", r.serverID)
	return nil
}

func (r *Registration) heartbeatLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			if err := r.sendHeartbeat(); err != nil {
				log.Printf("[registration] heartbeat failed: %v", err)
			}
		}
	}
}

func (r *Registration) sendHeartbeat() error {
	body, err := json.Marshal(heartbeatRequest{
		ID:           r.serverID,
		Participants: r.server.ParticipantCount(),
	})
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	resp, err := r.client.Post(r.masterURL+"/servers/heartbeat", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		log.Println("[registration] master lost our registration, re-registering")
		return r.register()
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	return nil
}
