package core

import "context"

type Input interface {
	NewInput(metas *Metas) error
	// Start blocks until the source is exhausted or ctx is done.
	Start(ctx context.Context, in chan<- *Msg) error
	Close()
}
