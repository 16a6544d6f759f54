package splash

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Call is the pending result of a show, hide or animate request. It is
// resolved exactly once.
type Call struct {
	id   string
	op   string
	done chan struct{}
	once sync.Once
	err  error
}

func newCall(op string) *Call {
	return &Call{
		id:   uuid.NewString(),
		op:   op,
		done: make(chan struct{}),
	}
}

// ID returns the call's identifier as it appears in log output.
func (c *Call) ID() string {
	return c.id
}

// Op returns the operation name ("show", "hide" or "animate").
func (c *Call) Op() string {
	return c.op
}

// Done is closed when the call has been resolved.
func (c *Call) Done() <-chan struct{} {
	return c.done
}

// Err returns the call's error once it is resolved, and nil before.
func (c *Call) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

// Wait blocks until the call resolves or ctx is done. Giving up on the wait
// does not cancel the transition.
func (c *Call) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return c.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// resolve settles the call. Later calls are ignored and report false.
func (c *Call) resolve(err error) bool {
	settled := false
	c.once.Do(func() {
		c.err = err
		close(c.done)
		settled = true
	})
	return settled
}
