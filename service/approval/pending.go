package approval

import (
	"sync"

	"github.com/hookgate/hookgate/service/messenger"
)

// pending tracks outstanding decisions by correlation token. Each entry is a
// single-buffered channel so the first resolution wins and later ones are
// dropped without blocking the sender.
type pending struct {
	mu      sync.Mutex
	waiters map[string]chan messenger.Reply
}

func newPending() *pending {
	return &pending{waiters: make(map[string]chan messenger.Reply)}
}

// register creates a waiter for the given correlation token and returns the
// channel the owner blocks on.
func (p *pending) register(id string) <-chan messenger.Reply {
	ch := make(chan messenger.Reply, 1)
	p.mu.Lock()
	p.waiters[id] = ch
	p.mu.Unlock()
	return ch
}

// unregister removes the waiter so stale replies cannot touch a future,
// unrelated request.
func (p *pending) unregister(id string) {
	p.mu.Lock()
	delete(p.waiters, id)
	p.mu.Unlock()
}

// resolve delivers a reply to its waiter. The correlation token must equal a
// registered identifier exactly – identifiers sharing a prefix are distinct
// requests. Returns false when no waiter matched or the waiter was already
// resolved.
func (p *pending) resolve(reply messenger.Reply) bool {
	p.mu.Lock()
	ch, ok := p.waiters[reply.RequestID]
	p.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case ch <- reply:
		return true
	default:
		return false
	}
}
