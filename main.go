package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/automoto/rigsync/network"
	"github.com/automoto/rigsync/shared/netconfig"
)

func main() {
	addr := flag.String("addr", "localhost:7373", "Session server address")
	name := flag.String("name", "", "Display name")
	articulated := flag.Bool("articulated", false, "Stream head and hand anchors")
	flag.Parse()

	if err := network.InitPersistence(); err != nil {
		log.Printf("Running without persistence: %v", err)
	}

	identity, _ := network.LoadIdentity()
	if identity == nil {
		identity = &network.SavedIdentity{}
	}
	if *name != "" {
		identity.DisplayName = *name
	}

	client := network.NewClient()
	client.Connect(*addr, identity.DisplayName, identity.ReconnectToken, *articulated)

	// Wait for the join handshake to settle.
	for client.State() == network.StateConnecting || client.State() == network.StateConnected {
		time.Sleep(50 * time.Millisecond)
	}
	if client.State() != network.StateJoinedSession {
		log.Fatalf("Join failed: %v", client.LastError())
	}

	identity.ReconnectToken = client.ReconnectToken()
	identity.LastServer = *addr
	_ = network.SaveIdentity(identity)

	tickRate := client.TickRate()
	if tickRate <= 0 {
		tickRate = netconfig.DefaultTickRate
	}

	session := network.NewSession(client)
	log.Printf("Joined %q as participant %d (stage %q, %d ticks/s)",
		*addr, client.ParticipantID(), client.Stage(), tickRate)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second / time.Duration(tickRate))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-sigChan:
			log.Println("Disconnecting...")
			client.Disconnect()
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			session.Update(dt, now)

			if client.State() == network.StateDisconnected || client.State() == network.StateError {
				log.Fatalf("Connection lost: %v", client.LastError())
			}
		}
	}
}
