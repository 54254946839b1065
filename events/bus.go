package events

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

type Bus struct {
	log *zap.Logger

	mu     sync.Mutex
	nextID int
	subs   map[int]*Subscription
}

func NewBus(log *zap.Logger) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bus{log: log, subs: make(map[int]*Subscription)}
}

// Subscribe registers interest in kinds. The subscription must be
// released when its owner is torn down.
func (b *Bus) Subscribe(kinds ...Kind) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	s := &Subscription{
		bus:   b,
		id:    b.nextID,
		kinds: make(map[Kind]bool, len(kinds)),
		ready: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	for _, k := range kinds {
		s.kinds[k] = true
	}
	b.subs[s.id] = s
	return s
}

// Publish hands e to every interested subscriber and returns at once.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	targets := make([]*Subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if s.kinds[e.Kind()] {
			targets = append(targets, s)
		}
	}
	b.mu.Unlock()

	if len(targets) == 0 {
		b.log.Debug("event dropped, no subscribers", zap.Stringer("kind", e.Kind()))
		return
	}
	for _, s := range targets {
		s.deliver(e)
	}
}

func (b *Bus) remove(id int) {
	b.mu.Lock()
	delete(b.subs, id)
	b.mu.Unlock()
}

type Subscription struct {
	bus   *Bus
	id    int
	kinds map[Kind]bool

	mu    sync.Mutex
	queue []Event
	ready chan struct{}
	done  chan struct{}
	once  sync.Once
}

func (s *Subscription) deliver(e Event) {
	s.mu.Lock()
	s.queue = append(s.queue, e)
	s.mu.Unlock()
	select {
	case s.ready <- struct{}{}:
	default:
	}
}

func (s *Subscription) pop() (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return nil, false
	}
	e := s.queue[0]
	s.queue = s.queue[1:]
	return e, true
}

// Next blocks until an event arrives. It reports false once the
// subscription has been released.
func (s *Subscription) Next() (Event, bool) {
	for {
		select {
		case <-s.done:
			return nil, false
		default:
		}
		if e, ok := s.pop(); ok {
			return e, true
		}
		select {
		case <-s.ready:
		case <-s.done:
			return nil, false
		}
	}
}

// TryNext returns a queued event without blocking.
func (s *Subscription) TryNext() (Event, bool) {
	select {
	case <-s.done:
		return nil, false
	default:
	}
	return s.pop()
}

// Release unsubscribes and wakes any pending Next. Safe to call twice.
func (s *Subscription) Release() {
	s.once.Do(func() {
		s.bus.remove(s.id)
		close(s.done)
	})
}

// Msg wraps a delivered event for the bubbletea update loop.
type Msg struct {
	Event Event
	Sub   *Subscription
}

// Wait returns a command that delivers the next event as a Msg. The
// receiver re-issues Wait after handling each Msg.
func (s *Subscription) Wait() tea.Cmd {
	return func() tea.Msg {
		e, ok := s.Next()
		if !ok {
			return nil
		}
		return Msg{Event: e, Sub: s}
	}
}
