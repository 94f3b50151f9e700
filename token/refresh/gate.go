// Package refresh coordinates refresh-token exchanges so that concurrent callers share one
// network call and its outcome.
package refresh

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

const flightKey = "refresh"

// RefreshFunc performs one refresh and returns the new access token
type RefreshFunc func(ctx context.Context) (string, error)

// Gate admits at most one RefreshFunc at a time. Callers arriving while a refresh is running
// wait for it and receive its result instead of starting their own.
type Gate struct {
	group    singleflight.Group
	inFlight atomic.Bool
	waiting  atomic.Int32
}

func NewGate() *Gate {
	return &Gate{}
}

// Do runs fn unless a refresh is already in flight, in which case it joins that one.
// fn runs detached from ctx cancellation so an abandoned caller does not fail the refresh for
// everyone else; ctx only bounds how long this caller waits.
// The result is sent to joined callers in the order they joined. Calling Do from inside fn
// joins the running flight and never returns.
func (g *Gate) Do(ctx context.Context, fn RefreshFunc) (string, error) {
	g.waiting.Add(1)
	defer g.waiting.Add(-1)

	detached := context.WithoutCancel(ctx)
	ch := g.group.DoChan(flightKey, func() (any, error) {
		g.inFlight.Store(true)
		defer g.inFlight.Store(false)
		return fn(detached)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// InFlight reports whether fn is executing. The flag is set by the flight's own goroutine, so
// it can read false for a moment after Do has registered a flight. The singleflight group, not
// this flag, decides whether a caller starts or joins a refresh.
func (g *Gate) InFlight() bool {
	return g.inFlight.Load()
}

// Waiting is the number of callers currently inside Do
func (g *Gate) Waiting() int {
	return int(g.waiting.Load())
}
