package flow

import (
	"github.com/Lukazavrr/hotwheels-bot/internal/observe"
	"github.com/Lukazavrr/hotwheels-bot/internal/store"
)

// Keyboard hints tell the transport layer which keyboard to attach to a
// reply. The flow layer never builds transport-specific markup itself.
type Keyboard int

const (
	KeyboardKeep Keyboard = iota // leave the current keyboard in place
	KeyboardMain
	KeyboardContact
	KeyboardCategories
	KeyboardHidden
)

// Input is one inbound step of a conversation. Exactly one of the fields
// is normally set, matching the event shape the transport delivered.
type Input struct {
	Text    string
	Contact string // structured contact payload (phone number)
	PhotoID string // uploaded photo reference
}

// Reply is an outbound message the transport should send.
type Reply struct {
	Text     string
	Keyboard Keyboard
}

// Outcome is the result of one transition. Next is the context to store
// for the user (nil ends the flow); Operator, when set, is a separate
// notification for the shop operator.
type Outcome struct {
	Next     Context
	Replies  []Reply
	Operator string
}

// Engine drives the conversation state machines. Transitions are methods
// taking the current context and one input; they only touch the store on
// the steps that complete a flow, so every validation path stays pure and
// directly testable.
type Engine struct {
	store store.Storage
	obs   *observe.Observer
}

func NewEngine(s store.Storage, obs *observe.Observer) *Engine {
	return &Engine{store: s, obs: obs}
}

func reply(text string, kb Keyboard) Reply {
	return Reply{Text: text, Keyboard: kb}
}
