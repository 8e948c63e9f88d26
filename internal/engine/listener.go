package engine

import "github.com/rezkam/bulkscroll/internal/domain"

// Listener receives the terminal callback of a run: either a Response or an
// error, never both (spec §7 "Propagation policy"). Exactly one of
// OnResponse/OnError fires per request (invariant I3).
type Listener interface {
	OnResponse(resp domain.Response)
	OnError(err error)
}

// ListenerFunc adapts two plain functions to the Listener interface.
type ListenerFunc struct {
	Response func(domain.Response)
	Error    func(error)
}

func (f ListenerFunc) OnResponse(resp domain.Response) {
	if f.Response != nil {
		f.Response(resp)
	}
}

func (f ListenerFunc) OnError(err error) {
	if f.Error != nil {
		f.Error(err)
	}
}

// WorkerPool schedules the batch handler off the network reply path (spec
// §5: "The document-transform step runs on a worker pool distinct from the
// network reply thread"). Submit returning an error is fatal per spec §4.5
// §2.
type WorkerPool interface {
	Submit(fn func()) error
}

// GoPool is the default WorkerPool: every submission runs on its own
// goroutine and never rejects. Tests inject a pool that can simulate
// rejection.
type GoPool struct{}

func (GoPool) Submit(fn func()) error {
	go fn()
	return nil
}
