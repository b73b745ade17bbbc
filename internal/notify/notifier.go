// Package notify deduplicates alert sets across cycles and fans changed sets
// out to the configured outbound transports.
package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Notifier is one outbound transport. Implementations must treat Send as a
// single attempt: retries across cycles come from the dedup comparison, not
// from the transport.
type Notifier interface {
	Name() string
	Send(ctx context.Context, messages []string) error
}

// Dispatcher holds the previous cycle's alert message set and invokes the
// transports only when the current set differs. State is process-local and
// not persisted, so a restart may re-notify once for an unchanged set.
type Dispatcher struct {
	notifiers []Notifier
	prev      map[string]struct{}
	log       logrus.FieldLogger
}

func NewDispatcher(log logrus.FieldLogger, notifiers ...Notifier) *Dispatcher {
	return &Dispatcher{
		notifiers: notifiers,
		prev:      map[string]struct{}{},
		log:       log,
	}
}

// Dispatch compares the current alert messages against the previous cycle's
// set by set equality on message text. The state is replaced wholesale every
// cycle, so a set that changes and later reverts notifies again. Transport
// failures are logged and never propagate: persistence already happened
// before notification is attempted.
func (d *Dispatcher) Dispatch(ctx context.Context, messages []string) {
	current := toSet(messages)
	changed := !setsEqual(current, d.prev)
	d.prev = current

	if !changed || len(current) == 0 {
		return
	}

	for _, n := range d.notifiers {
		if err := n.Send(ctx, messages); err != nil {
			d.log.WithError(err).WithField("notifier", n.Name()).Warn("notification failed")
		}
	}
}

func toSet(messages []string) map[string]struct{} {
	set := make(map[string]struct{}, len(messages))
	for _, m := range messages {
		set[m] = struct{}{}
	}
	return set
}

func setsEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
