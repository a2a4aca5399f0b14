package game

type ActorType string

const (
	ActorUser  ActorType = "user"
	ActorGuest ActorType = "guest"
)

// Actor is the resolved identity performing an action: a registered user or
// an anonymous guest token, never both. It is threaded explicitly through
// every engine call.
type Actor struct {
	Type       ActorType
	UserID     uint
	GuestToken string
	Name       string
}

func (a Actor) IsUser() bool {
	return a.Type == ActorUser
}
