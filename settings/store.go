package settings

import "context"

// Store persists the settings record.
//
// Load returns whatever fields were stored; missing fields are left nil so
// they fall back to defaults. Save may return before the write is durable.
type Store interface {
	Load(ctx context.Context) (Partial, error)
	Save(ctx context.Context, s Settings) error
}
