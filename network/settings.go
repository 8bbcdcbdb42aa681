package network

import (
	"encoding/json"
	"log"

	"github.com/quasilyte/gdata"
)

// SavedIdentity is the participant identity persisted between sessions. The
// reconnect token lets a returning participant reclaim its previous avatar
// and any retained ownership.
type SavedIdentity struct {
	DisplayName    string `json:"displayName"`
	ReconnectToken string `json:"reconnectToken"`
	LastServer     string `json:"lastServer"`
}

var gdataManager *gdata.Manager
var gdataInitialized bool

// InitPersistence initializes the gdata manager for identity storage.
func InitPersistence() error {
	m, err := gdata.Open(gdata.Config{
		AppName: "rigsync",
	})
	if err != nil {
		log.Printf("Warning: Could not initialize persistence: %v", err)
		return err
	}
	gdataManager = m
	gdataInitialized = true
	return nil
}

// LoadIdentity loads the saved identity from disk. A missing or unreadable
// save yields nil, not an error; the caller falls back to a fresh identity.
func LoadIdentity() (*SavedIdentity, error) {
	if !gdataInitialized || gdataManager == nil {
		return nil, nil
	}

	data, err := gdataManager.LoadItem("identity")
	if err != nil {
		log.Printf("Warning: Could not load identity: %v", err)
		return nil, nil
	}
	if len(data) == 0 {
		return nil, nil
	}

	var identity SavedIdentity
	if err := json.Unmarshal(data, &identity); err != nil {
		log.Printf("Warning: Could not parse saved identity: %v", err)
		return nil, err
	}

	return &identity, nil
}

// SaveIdentity writes the identity to disk.
func SaveIdentity(s *SavedIdentity) error {
	if !gdataInitialized || gdataManager == nil {
		return nil
	}

	data, err := json.Marshal(s)
	if err != nil {
		log.Printf("Warning: Could not serialize identity: %v", err)
		return err
	}

	if err := gdataManager.SaveItem("identity", data); err != nil {
		log.Printf("Warning: Could not save identity: %v", err)
		return err
	}
	return nil
}
