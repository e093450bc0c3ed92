package session

import (
	"sync"

	"github.com/Ralf-Pauli/SteamIconRestorer/pkg/vdf"
)

// dispatcher routes product-info events to one-shot subscriptions keyed
// by app id. The pipeline is sequential, so at most one subscription per
// app id is outstanding at a time; still, subscriptions carry their own
// handle so disposal is always exact.
type dispatcher struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]*subscription
	closed bool
}

type subscription struct {
	appID uint32
	// ch carries at most one response; closed without a value when the
	// session is torn down.
	ch chan *vdf.Node
}

func newDispatcher() *dispatcher {
	return &dispatcher{subs: make(map[uint64]*subscription)}
}

// subscribe registers a one-shot listener for the given app id and
// returns it together with its dispose func. Dispose is idempotent and
// must run on every exit path of the waiter.
func (d *dispatcher) subscribe(appID uint32) (*subscription, func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	sub := &subscription{appID: appID, ch: make(chan *vdf.Node, 1)}
	if d.closed {
		// Session already gone; hand back a closed channel so the
		// waiter fails fast.
		close(sub.ch)
		return sub, func() {}
	}

	id := d.nextID
	d.nextID++
	d.subs[id] = sub

	disposed := false
	dispose := func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if !disposed {
			disposed = true
			delete(d.subs, id)
		}
	}
	return sub, dispose
}

// deliver hands a response to the first subscription for the app id and
// removes it. Responses nobody subscribed for (late answers to abandoned
// waits) are dropped.
func (d *dispatcher) deliver(appID uint32, info *vdf.Node) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for id, sub := range d.subs {
		if sub.appID == appID {
			sub.ch <- info
			delete(d.subs, id)
			return
		}
	}
}

// closeAll unblocks every pending waiter with a closed channel. Called on
// session teardown; later subscribes fail fast.
func (d *dispatcher) closeAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	for id, sub := range d.subs {
		close(sub.ch)
		delete(d.subs, id)
	}
}

// pending reports the number of live subscriptions. Test hook for the
// no-leak guarantee.
func (d *dispatcher) pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subs)
}
