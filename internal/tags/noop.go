package tags

import "context"

// NoopAdapter is used on platforms without a tag store. Apply does nothing
// and List always reports an empty tag list.
type NoopAdapter struct{}

// NewNoopAdapter creates a NoopAdapter.
func NewNoopAdapter() *NoopAdapter {
	return &NoopAdapter{}
}

// Apply implements Adapter as a no-op.
func (a *NoopAdapter) Apply(ctx context.Context, path string, colorCode int, label string) error {
	return nil
}

// List implements Adapter, always returning no tags.
func (a *NoopAdapter) List(ctx context.Context, path string) ([]string, error) {
	return nil, nil
}
