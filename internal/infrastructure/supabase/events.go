package supabase

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/bizdesk/domain"
)

const subscriberBuffer = 16

// hub fans auth events out to subscribers. Channels are closed under mu, and
// publish sends under mu without blocking, so a send never races a close.
type hub struct {
	mu     sync.Mutex
	subs   map[string]chan domain.AuthEvent
	closed bool
	logger *zap.Logger
}

func newHub(logger *zap.Logger) *hub {
	return &hub{
		subs:   make(map[string]chan domain.AuthEvent),
		logger: logger,
	}
}

func (h *hub) subscribe() (<-chan domain.AuthEvent, func()) {
	ch := make(chan domain.AuthEvent, subscriberBuffer)
	id := uuid.NewString()

	h.mu.Lock()
	if h.closed {
		close(ch)
	} else {
		h.subs[id] = ch
	}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() { h.remove(id) })
	}
}

func (h *hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

// publish delivers ev to every subscriber. A lagging subscriber loses its
// oldest pending event rather than blocking the provider.
func (h *hub) publish(ev domain.AuthEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subs {
		select {
		case ch <- ev:
			continue
		default:
		}
		select {
		case dropped := <-ch:
			h.logger.Warn("auth subscriber lagging, dropped event",
				zap.String("subscription", id),
				zap.Uint64("dropped_seq", dropped.Seq))
		default:
		}
		select {
		case ch <- ev:
		default:
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
	h.closed = true
}
