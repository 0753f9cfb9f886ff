package apiview

import (
	"context"
	"sync"
)

// DefaultPlaceholder is shown by a Display before any render completes.
const DefaultPlaceholder = "Initial text!"

// Sink is the output port rendered text is written to.
// Each call replaces the entire content; concurrent writers race and the
// last one to complete wins.
type Sink interface {
	SetText(ctx context.Context, text string) error
}

// Ensure Display implements Sink at compile time.
var _ Sink = (*Display)(nil)

// Display is an in-memory Sink holding a single text region.
type Display struct {
	mu     sync.RWMutex
	text   string
	writes int
}

// NewDisplay returns a Display showing placeholder.
func NewDisplay(placeholder string) *Display {
	return &Display{text: placeholder}
}

// SetText replaces the displayed text.
func (d *Display) SetText(ctx context.Context, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.text = text
	d.writes++
	return nil
}

// Text returns the displayed text.
func (d *Display) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.text
}

// Writes returns how many times the text has been replaced.
func (d *Display) Writes() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.writes
}
