package controller

import "sync"

// outboundQueue is a strict FIFO of commands awaiter both the controller
// loop (pops from the front, during quiet periods only) and HTTP handlers
// (append via the controller's Enqueue* methods). It is not drained on
// every inbound frame — doing so produced double-reply hazards against the
// panel, per the documented design constraint — so the controller drains at
// most one entry per idle tick.
type outboundQueue struct {
	mu    sync.Mutex
	items []cmd
}

func (q *outboundQueue) push(c cmd) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, c)
}

// pop removes and returns the front item, or ok=false if empty.
func (q *outboundQueue) pop() (c cmd, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return cmd{}, false
	}
	c, q.items = q.items[0], q.items[1:]
	return c, true
}

func (q *outboundQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
