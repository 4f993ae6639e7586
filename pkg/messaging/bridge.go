package messaging

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/matst80/slask-list/pkg/common/jsoncompat"
	"github.com/matst80/slask-list/pkg/events"
	"github.com/matst80/slask-list/pkg/transport"
)

var ErrEmptyURL = errors.New("list update without url")

// Sender delivers list updates to the other clients.
type Sender interface {
	Send(msg ListUpdateMessage) error
}

// Bridge relays list.update events between the bus of a window and other
// clients. Updates received from others are published on the bus but never
// sent back out, and a client ignores its own messages.
type Bridge struct {
	source    string
	sender    Sender
	scheduler transport.Scheduler
	now       func() time.Time

	mu  sync.Mutex
	bus *events.Bus
	// relaying counts received updates being published on the bus.
	relaying int
}

// NewBridge creates a bridge sending through sender. Received updates are
// published through scheduler, or directly when it is nil. An empty source gets a random id.
func NewBridge(source string, sender Sender, scheduler transport.Scheduler) *Bridge {
	if source == "" {
		source = uuid.NewString()
	}
	return &Bridge{
		source:    source,
		sender:    sender,
		scheduler: scheduler,
		now:       time.Now,
	}
}

func (b *Bridge) Source() string {
	return b.source
}

// Attach makes bus the current bus. Call it again for every new document.
func (b *Bridge) Attach(bus *events.Bus) {
	b.mu.Lock()
	b.bus = bus
	b.mu.Unlock()
	bus.Subscribe(events.ListUpdate, func(args ...string) {
		if b.isRelaying() || b.current() != bus {
			return
		}
		if len(args) == 0 || args[0] == "" {
			return
		}
		msg := ListUpdateMessage{Source: b.source, URL: args[0], SentAt: b.now().UnixMilli()}
		if err := b.sender.Send(msg); err != nil {
			log.Printf("failed to relay list update %s: %v", msg.URL, err)
		}
	})
}

func (b *Bridge) current() *events.Bus {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bus
}

func (b *Bridge) isRelaying() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.relaying > 0
}

func (b *Bridge) setRelaying(delta int) {
	b.mu.Lock()
	b.relaying += delta
	b.mu.Unlock()
}

// Receive handles a message body from another client.
func (b *Bridge) Receive(body []byte) error {
	var msg ListUpdateMessage
	if err := jsoncompat.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("invalid list update message: %w", err)
	}
	if msg.URL == "" {
		return ErrEmptyURL
	}
	if msg.Source == b.source {
		return nil
	}
	publish := func() {
		bus := b.current()
		if bus == nil {
			log.Printf("dropping list update %s, no document attached", msg.URL)
			return
		}
		b.setRelaying(1)
		defer b.setRelaying(-1)
		bus.Publish(events.ListUpdate, msg.URL)
	}
	if b.scheduler != nil {
		b.scheduler.Post(publish)
	} else {
		publish()
	}
	return nil
}
