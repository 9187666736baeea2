package core

import "context"

type Output interface {
	NewOutput(metas *Metas) error
	// Start drains out until it is closed, then flushes.
	Start(ctx context.Context, out <-chan *Msg) error
	Close()
}
