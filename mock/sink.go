package mock

import (
	"context"

	"github.com/oser-cs/apiview"
)

var _ apiview.Sink = (*Sink)(nil)

// Sink is a mock implementation of apiview.Sink.
type Sink struct {
	SetTextFn func(ctx context.Context, text string) error
}

func (s *Sink) SetText(ctx context.Context, text string) error {
	return s.SetTextFn(ctx, text)
}
