package ports

import (
	"context"

	"nucoinc/domain/astro"
)

// TableStore persists the loaded table bundle to a local binary store and
// reads it back. Persistence is external to the scoring core.
type TableStore interface {
	Save(ctx context.Context, b *astro.Bundle) error
	Load(ctx context.Context) (*astro.Bundle, error)
}
