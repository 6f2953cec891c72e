package changes

import (
	"context"

	"github.com/dmitrijs2005/postplanner/internal/schedule"
)

// Notifier is how services announce a committed mutation.
type Notifier interface {
	Notify(ctx context.Context, ev schedule.ChangeEvent)
}

// BrokerNotifier publishes straight into a local Broker. It is used when
// the database does not emit notifications itself.
type BrokerNotifier struct {
	Broker *Broker
}

func (n BrokerNotifier) Notify(ctx context.Context, ev schedule.ChangeEvent) {
	n.Broker.Publish(ctx, ev)
}

// Nop drops every event. Used when database triggers already announce
// changes through a Listener.
type Nop struct{}

func (Nop) Notify(context.Context, schedule.ChangeEvent) {}
