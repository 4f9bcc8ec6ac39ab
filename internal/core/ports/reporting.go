package ports

import (
	"context"

	"github.com/driftsentry/driftsentry/internal/core/domain"
)

type Reporter interface {
	Report(ctx context.Context, findings []domain.DriftFinding, meta domain.RunMetadata) error
}

// FixWriter persists the synthesized fix actions; it returns the path
// of the written artifact.
type FixWriter interface {
	Write(ctx context.Context, actions []domain.FixAction, summary string) (string, error)
}
