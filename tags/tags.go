package tags

import "github.com/yohamta/donburi"

var (
	Avatar   = donburi.NewTag().SetName("Avatar")
	Prop     = donburi.NewTag().SetName("Prop")
	Platform = donburi.NewTag().SetName("Platform")
)

// Resolv tags for deck trigger detection
const (
	ResolvDeck  = "deck"
	ResolvRider = "rider"
)
