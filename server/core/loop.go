package core

import (
	"log"
	"time"
)

type GameLoop struct {
	server   *Server
	tickRate int
	stopChan chan struct{}
}

func NewGameLoop(server *Server, tickRate int) *GameLoop {
	return &GameLoop{
		server:   server,
		tickRate: tickRate,
		stopChan: make(chan struct{}),
	}
}

func (g *GameLoop) Run() {
	interval := time.Second / time.Duration(g.tickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("[loop] started at %d ticks/second", g.tickRate)

	last := time.Now()
	for {
		select {
		case <-g.stopChan:
			log.Println("[loop] stopped")
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			g.server.tick(dt)
		}
	}
}

func (g *GameLoop) Stop() {
	close(g.stopChan)
}
