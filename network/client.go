package network

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/coder/websocket"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"

	"github.com/automoto/rigsync/shared/messages"
	"github.com/automoto/rigsync/shared/netconfig"
	"github.com/automoto/rigsync/shared/protocol"
)

type ClientState int

const (
	StateDisconnected ClientState = iota
	StateConnecting
	StateConnected
	StateJoinedSession
	StateError
)

// Client manages a WebSocket connection to a session server.
// All shared fields are protected by mu (router callbacks run on necs goroutines).
type Client struct {
	mu sync.RWMutex

	state          ClientState
	lastError      error
	participantID  netconfig.ParticipantID
	avatarEntity   netconfig.EntityID
	reconnectToken string
	serverName     string
	tickRate       int
	stage          string
	conn           *websocket.Conn

	poseCh      chan messages.PoseUpdate
	spawnCh     chan messages.EntitySpawned
	removeCh    chan messages.EntityRemoved
	ownershipCh chan messages.OwnershipChanged
	platformCh  chan messages.PlatformEvent
	leftCh      chan messages.ParticipantLeft
}

// sceneQueueDepth holds a full scene replay (every avatar, platform and prop
// at once on join) without the router goroutine blocking on the first tick.
const sceneQueueDepth = 256

func NewClient() *Client {
	return &Client{
		state:       StateDisconnected,
		poseCh:      make(chan messages.PoseUpdate, 256),
		spawnCh:     make(chan messages.EntitySpawned, sceneQueueDepth),
		removeCh:    make(chan messages.EntityRemoved, sceneQueueDepth),
		ownershipCh: make(chan messages.OwnershipChanged, sceneQueueDepth),
		platformCh:  make(chan messages.PlatformEvent, sceneQueueDepth),
		leftCh:      make(chan messages.ParticipantLeft, 8),
	}
}

// Connect dials the server in a background goroutine and initiates the join
// handshake. Articulated declares whether this participant streams limb
// anchors in addition to body and ground.
func (c *Client) Connect(address, displayName, reconnectToken string, articulated bool) {
	c.mu.Lock()
	c.state = StateConnecting
	c.lastError = nil
	c.mu.Unlock()

	router.OnConnect(func(_ *router.NetworkClient) {
		log.Println("[client] connected to server")
		c.mu.Lock()
		c.state = StateConnected
		c.mu.Unlock()

		payload, err := router.Serialize(messages.JoinRequest{
			Version:        protocol.Version,
			DisplayName:    displayName,
			ReconnectToken: reconnectToken,
			Articulated:    articulated,
		})
		if err != nil {
			c.setError(fmt.Errorf("failed to serialize join request: %w", err))
			return
		}

		c.mu.RLock()
		conn := c.conn
		c.mu.RUnlock()

		if conn != nil {
			if err := conn.Write(context.Background(), websocket.MessageBinary, payload); err != nil {
				c.setError(fmt.Errorf("failed to send join request: %w", err))
			}
		}
	})

	router.On(func(_ *router.NetworkClient, msg messages.JoinAccepted) {
		log.Printf("[client] join accepted: participant=%d server=%s tickRate=%d",
			msg.ParticipantID, msg.ServerName, msg.TickRate)
		c.mu.Lock()
		c.participantID = msg.ParticipantID
		c.avatarEntity = msg.AvatarEntity
		c.reconnectToken = msg.ReconnectToken
		c.serverName = msg.ServerName
		c.tickRate = msg.TickRate
		c.stage = msg.Stage
		c.state = StateJoinedSession
		c.mu.Unlock()
	})

	router.On(func(_ *router.NetworkClient, msg messages.JoinRejected) {
		log.Printf("[client] join rejected: %s", msg.Reason)
		c.setError(fmt.Errorf("join rejected: %s", msg.Reason))
	})

	router.On(func(_ *router.NetworkClient, msg messages.PoseUpdate) {
		select { // pose stream is lossy; never block the router goroutine
		case c.poseCh <- msg:
		default:
		}
	})

	router.On(func(_ *router.NetworkClient, msg messages.EntitySpawned) {
		c.spawnCh <- msg
	})

	router.On(func(_ *router.NetworkClient, msg messages.EntityRemoved) {
		c.removeCh <- msg
	})

	router.On(func(_ *router.NetworkClient, msg messages.OwnershipChanged) {
		c.ownershipCh <- msg
	})

	router.On(func(_ *router.NetworkClient, msg messages.PlatformEvent) {
		c.platformCh <- msg
	})

	router.On(func(_ *router.NetworkClient, msg messages.ParticipantLeft) {
		select {
		case c.leftCh <- msg:
		default:
		}
	})

	router.OnDisconnect(func(_ *router.NetworkClient, err error) {
		log.Printf("[client] disconnected: %v", err)
		c.mu.Lock()
		if c.state != StateError {
			c.state = StateDisconnected
		}
		c.conn = nil
		c.mu.Unlock()
	})

	router.OnError(func(_ *router.NetworkClient, err error) {
		log.Printf("[client] error: %v", err)
	})

	go func() {
		transport := transports.NewWsClientTransport("ws://" + address)
		err := transport.Start(func(conn *websocket.Conn) {
			c.mu.Lock()
			c.conn = conn
			c.mu.Unlock()
		})
		if err != nil {
			c.setError(fmt.Errorf("connection failed: %w", err))
		}
	}()
}

func (c *Client) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	c.state = StateDisconnected
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		_ = conn.CloseNow()
	}

	router.ResetRouter()
}

func (c *Client) State() ClientState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Client) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

func (c *Client) ParticipantID() netconfig.ParticipantID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.participantID
}

func (c *Client) AvatarEntity() netconfig.EntityID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.avatarEntity
}

func (c *Client) ReconnectToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reconnectToken
}

func (c *Client) Stage() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stage
}

func (c *Client) TickRate() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tickRate
}

func (c *Client) SendMessage(msg any) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return fmt.Errorf("not connected")
	}

	payload, err := router.Serialize(msg)
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}

	return conn.Write(context.Background(), websocket.MessageBinary, payload)
}

func (c *Client) setError(err error) {
	c.mu.Lock()
	c.state = StateError
	c.lastError = err
	c.mu.Unlock()
}

// DrainPoseUpdates returns all pending pose updates, non-blocking.
func (c *Client) DrainPoseUpdates() []messages.PoseUpdate {
	return drainChan(c.poseCh)
}

// DrainSpawns returns all pending entity spawns, non-blocking.
func (c *Client) DrainSpawns() []messages.EntitySpawned {
	return drainChan(c.spawnCh)
}

// DrainRemovals returns all pending entity removals, non-blocking.
func (c *Client) DrainRemovals() []messages.EntityRemoved {
	return drainChan(c.removeCh)
}

// DrainOwnershipChanges returns all pending ownership changes, non-blocking.
func (c *Client) DrainOwnershipChanges() []messages.OwnershipChanged {
	return drainChan(c.ownershipCh)
}

// DrainPlatformEvents returns all pending platform membership events, non-blocking.
func (c *Client) DrainPlatformEvents() []messages.PlatformEvent {
	return drainChan(c.platformCh)
}

// DrainDepartures returns all pending participant departures, non-blocking.
func (c *Client) DrainDepartures() []messages.ParticipantLeft {
	return drainChan(c.leftCh)
}

func drainChan[T any](ch chan T) []T {
	var out []T
	for {
		select {
		case v := <-ch:
			out = append(out, v)
		default:
			return out
		}
	}
}
