package ports

import (
	"context"

	"github.com/driftsentry/driftsentry/internal/core/domain"
)

// SnapshotSource delivers the desired-state snapshots, one entry per
// declared resource instance, pre-flattened and uniquely named.
type SnapshotSource interface {
	Type() string
	Snapshots(ctx context.Context) ([]domain.ResourceSnapshot, error)
	TerraformVersion(ctx context.Context) (string, error)
}

// LiveResolver queries the remote provider for the observed view of a
// declared resource. A (nil, nil) return means the resource is confirmed
// absent; transient failures (auth, throttle, network) must surface as
// errors so they are never misclassified as deletion. Resolvers return a
// CodeUnsupportedResourceKind error for kinds outside the closed set.
type LiveResolver interface {
	Type() string
	Resolve(ctx context.Context, desired domain.ResourceSnapshot) (*domain.ResourceSnapshot, error)
}
