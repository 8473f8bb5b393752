package observability

import (
	"context"
	"errors"
	"sync/atomic"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// Readiness is ready only when every check passes. The first failure wins.
type Readiness []sharedobs.ReadinessChecker

// CheckReadiness runs the checks in order.
func (r Readiness) CheckReadiness(ctx context.Context) error {
	for _, c := range r {
		if err := c.CheckReadiness(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Gate fails readiness until Open is called.
type Gate struct {
	open   atomic.Bool
	reason string
}

// NewGate creates a closed gate reporting reason while closed.
func NewGate(reason string) *Gate {
	return &Gate{reason: reason}
}

// Open marks the gate ready. It cannot be closed again.
func (g *Gate) Open() {
	g.open.Store(true)
}

func (g *Gate) CheckReadiness(context.Context) error {
	if g.open.Load() {
		return nil
	}
	return errors.New(g.reason)
}
