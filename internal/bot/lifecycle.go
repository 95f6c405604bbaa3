package bot

import (
	"context"

	"github.com/Lukazavrr/hotwheels-bot/internal/observe"
	"github.com/Lukazavrr/hotwheels-bot/internal/session"
)

// Lifecycle enforces the retract-before-emit rule: before a new screen is
// shown, every message from the user's previous screen is deleted, so at
// most one rendered unit is ever active per user.
type Lifecycle struct {
	transport Transport
	sessions  *session.Manager
	obs       *observe.Observer
}

func NewLifecycle(t Transport, s *session.Manager, obs *observe.Observer) *Lifecycle {
	return &Lifecycle{transport: t, sessions: s, obs: obs}
}

// Replace retracts the user's active messages, runs emit and records the
// refs it returns as the new active set. Retraction is best-effort: a
// failed delete is logged and the remaining deletes still run.
func (l *Lifecycle) Replace(ctx context.Context, userID int64, emit func(context.Context) ([]session.MessageRef, error)) error {
	for _, ref := range l.sessions.TakeActiveMessages(userID) {
		if err := l.transport.Delete(ctx, ref); err != nil {
			l.obs.Log().Warn().
				Int("message_id", ref.MessageID).
				Err(err).
				Msg("failed to retract message")
		}
	}

	refs, err := emit(ctx)
	if len(refs) > 0 {
		l.sessions.SetActiveMessages(userID, refs)
	}
	return err
}
