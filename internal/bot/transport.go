package bot

import (
	"context"

	"github.com/Lukazavrr/hotwheels-bot/internal/session"
)

// User identifies the sender of an inbound event.
type User struct {
	ID       int64
	ChatID   int64
	Username string
}

// Tag is the human-readable handle used in operator notifications.
func (u User) Tag() string {
	if u.Username != "" {
		return "@" + u.Username
	}
	return "id:" + itoa64(u.ID)
}

// Button is one inline keyboard button. Action and Data round-trip
// through the transport's callback payload.
type Button struct {
	Text   string
	Action string
	Data   string
}

// Markup describes a keyboard in transport-neutral terms. At most one of
// Reply, Inline or RemoveReply is expected to be meaningful per message.
type Markup struct {
	Reply          [][]string
	RequestContact bool // first reply button asks for the user's contact
	RemoveReply    bool
	Inline         [][]Button
}

// PhotoSource is either raw encoded bytes (a freshly composed collage)
// or a reference to a photo the platform already stores.
type PhotoSource struct {
	Bytes  []byte
	FileID string
}

// Transport is the outbound half of the chat platform. The handler layer
// never touches the platform SDK directly, which keeps every handler
// testable against a fake.
type Transport interface {
	SendText(ctx context.Context, chatID int64, text string, m *Markup) (session.MessageRef, error)
	SendPhoto(ctx context.Context, chatID int64, photo PhotoSource, caption string, m *Markup) (session.MessageRef, error)
	Delete(ctx context.Context, ref session.MessageRef) error
}
