package controller

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"chaininsight/pkg/models"
)

// EventType defines the type of event being broadcast.
type EventType string

const (
	EventDisplayUpdated EventType = "display_updated"
	EventConnected      EventType = "connected"
	EventNetworkChanged EventType = "network_changed"
)

// Event is sent to subscribers whenever the display is replaced.
type Event struct {
	ID     string             `json:"id"`
	Type   EventType          `json:"type"`
	Action Action             `json:"action,omitempty"`
	State  State              `json:"state"`
	Link   string             `json:"link,omitempty"`
	Block  *models.BlockStats `json:"block,omitempty"`
}

// Subscriber is a channel that receives events.
type Subscriber chan Event

func newEventID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// Subscribe adds a new subscriber and returns a channel to receive events.
func (c *Controller) Subscribe() Subscriber {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	ch := make(Subscriber, 100)
	c.subscribers = append(c.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscriber.
func (c *Controller) Unsubscribe(ch Subscriber) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for i, sub := range c.subscribers {
		if sub == ch {
			c.subscribers = append(c.subscribers[:i], c.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

func (c *Controller) notify(event Event) {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	for _, sub := range c.subscribers {
		select {
		case sub <- event:
		default:
			log.Warningf("subscriber full, dropping event %v", event.ID)
		}
	}
}
