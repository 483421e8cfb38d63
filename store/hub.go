package store

import (
	"context"
	"sync"
)

// hub fans values out to in-process subscribers.
type hub struct {
	mu     sync.Mutex
	subs   map[string]map[chan []byte]struct{}
	closed bool
	done   chan struct{} // closed by close
}

func newHub() *hub {
	return &hub{
		subs: make(map[string]map[chan []byte]struct{}),
		done: make(chan struct{}),
	}
}

func (h *hub) subscribe(ctx context.Context, path string, current []byte) (<-chan []byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrClosed
	}

	ch := make(chan []byte, 1)
	ch <- current
	if h.subs[path] == nil {
		h.subs[path] = make(map[chan []byte]struct{})
	}
	h.subs[path][ch] = struct{}{}

	go func() {
		select {
		case <-ctx.Done():
			h.remove(path, ch)
		case <-h.done:
		}
	}()
	return ch, nil
}

func (h *hub) remove(path string, ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[path][ch]; !ok {
		return
	}
	delete(h.subs[path], ch)
	if len(h.subs[path]) == 0 {
		delete(h.subs, path)
	}
	close(ch)
}

// publish never blocks: a full channel has its stale value replaced.
func (h *hub) publish(path string, value []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[path] {
		select {
		case ch <- value:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- value:
			default:
			}
		}
	}
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	close(h.done)
	for path, set := range h.subs {
		for ch := range set {
			close(ch)
		}
		delete(h.subs, path)
	}
}
