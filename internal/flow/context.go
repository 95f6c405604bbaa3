package flow

// Context is the per-user conversation state. The session keeps a single
// Context slot, so "at most one active flow per user" holds by
// construction; the concrete type carries the flow's accumulated data.
type Context interface {
	flowContext()
}

// CheckoutStage enumerates the checkout steps.
type CheckoutStage int

const (
	StageContact CheckoutStage = iota
	StagePayment
)

// Checkout is the two-step order flow: contact details, then payment
// method.
type Checkout struct {
	Stage   CheckoutStage
	Contact string
}

func (*Checkout) flowContext() {}

// AddStage enumerates the catalog-add steps.
type AddStage int

const (
	StagePhoto AddStage = iota
	StageName
	StagePrice
	StageDescription
	StageCategory
)

// AdminAdd accumulates a new product field by field.
type AdminAdd struct {
	Stage       AddStage
	PhotoID     string
	Name        string
	Price       int64
	Description string
}

func (*AdminAdd) flowContext() {}

// AdminDelete awaits a whitespace-separated list of product ids.
type AdminDelete struct{}

func (*AdminDelete) flowContext() {}
