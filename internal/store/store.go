// Package store holds the client-side state of a crewdeck session: who is
// logged in, the cached team/task collections and their filters, the member
// list scoped to the selected team, and transient UI state (overlay, theme,
// notifications).
//
// Every store is an explicit struct created at application start and torn
// down at exit; there is no ambient global state. Stores are mutated only by
// their own methods, publish changes through Subscribe, and reconcile with
// the server by wholesale-replacing their cached slice after every successful
// load. In-flight requests are never cancelled; instead each store tags loads
// with a monotonic sequence number and discards completions that were
// superseded, so the latest *issued* request always wins.
package store

import (
	"errors"
	"sync"

	"crewdeck/internal/api"
)

// broadcaster fans a change signal out to subscribers. Listeners are invoked
// without any store lock held, so they may safely read store snapshots.
type broadcaster struct {
	mu   sync.Mutex
	next int
	subs map[int]func()
}

// Subscribe registers fn to run after every state change and returns an
// unsubscribe func.
func (b *broadcaster) Subscribe(fn func()) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs == nil {
		b.subs = map[int]func(){}
	}
	id := b.next
	b.next++
	b.subs[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

func (b *broadcaster) notify() {
	b.mu.Lock()
	fns := make([]func(), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// errMessage extracts the human-readable message a store records in its Error
// field. API errors already carry a server-provided message.
func errMessage(err error) string {
	if err == nil {
		return ""
	}
	var ae *api.Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}
