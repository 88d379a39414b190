package topology

import (
	"fmt"
	"log/slog"
)

// Applier applies an ordered sequence of items against one channel, stopping
// at the first failure. Items after the failing one are never attempted.
type Applier struct {
	logger *slog.Logger
}

// ApplierOption configures the Applier.
type ApplierOption func(*Applier)

// WithApplierLogger sets the logger.
func WithApplierLogger(logger *slog.Logger) ApplierOption {
	return func(a *Applier) {
		a.logger = logger
	}
}

// NewApplier creates a new applier.
func NewApplier(options ...ApplierOption) *Applier {
	a := &Applier{
		logger: slog.Default(),
	}
	for _, opt := range options {
		opt(a)
	}
	return a
}

// Apply runs the items strictly in sequence order. On failure it returns an
// *ApplyError identifying the failing item; already-applied items are left in
// place (broker declares are idempotent for identical attributes).
func (a *Applier) Apply(ch Channel, items []Item) error {
	for _, item := range items {
		if err := item.Apply(ch); err != nil {
			a.logger.Error("topology declaration failed",
				"item", item.Describe(),
				"error", err)
			return &ApplyError{Item: item, Err: err}
		}
		a.logger.Info("topology declared", "item", item.Describe())
	}
	return nil
}

// ApplyError reports the first topology item that failed to apply.
type ApplyError struct {
	Item Item  // the failing item
	Err  error // underlying broker error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("topology: failed to apply %s: %v", e.Item.Describe(), e.Err)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}
