// Package tfstate reads desired resource snapshots from a local
// Terraform state file (format version 4).
package tfstate

import (
	"context"
	"fmt"

	"github.com/driftsentry/driftsentry/internal/core/domain"
	"github.com/driftsentry/driftsentry/internal/core/ports"
	"github.com/driftsentry/driftsentry/internal/errors"
)

// Provider implements ports.SnapshotSource for raw .tfstate files.
type Provider struct {
	parser *stateParser
	logger ports.Logger
}

var _ ports.SnapshotSource = (*Provider)(nil)

func NewProvider(path string, logger ports.Logger) (*Provider, error) {
	if path == "" {
		return nil, errors.New(errors.CodeConfigValidation, "state file path cannot be empty")
	}
	return &Provider{
		parser: newStateParser(path, logger),
		logger: logger.WithFields(map[string]any{"snapshot_source": "tfstate"}),
	}, nil
}

func (p *Provider) Type() string { return "tfstate" }

func (p *Provider) TerraformVersion(ctx context.Context) (string, error) {
	state, err := p.parser.parseAndCache(ctx)
	if err != nil {
		return "", err
	}
	return state.TerraformVersion, nil
}

// Snapshots returns one snapshot per managed resource instance.
// Resources with multiple instances (count or for_each) are flattened
// into distinct snapshots named "name[key]" so each keeps its own
// identity in findings and fixes.
func (p *Provider) Snapshots(ctx context.Context) ([]domain.ResourceSnapshot, error) {
	state, err := p.parser.parseAndCache(ctx)
	if err != nil {
		return nil, err
	}

	var snapshots []domain.ResourceSnapshot
	for _, res := range state.Resources {
		if res.Mode != "managed" {
			p.logger.Debugf(ctx, "skipping non-managed resource %s.%s (mode=%s)", res.Type, res.Name, res.Mode)
			continue
		}
		for idx, inst := range res.Instances {
			name := instanceName(res.Name, inst.IndexKey, idx, len(res.Instances))
			snap, err := domain.NewSnapshot(res.Type, name, inst.Attributes)
			if err != nil {
				return nil, errors.Wrapf(err, errors.CodeStateParseError,
					"malformed attributes for %s.%s", res.Type, name)
			}
			snapshots = append(snapshots, snap)
		}
	}

	p.logger.Infof(ctx, "loaded %d resource snapshot(s) from state", len(snapshots))
	return snapshots, nil
}

func instanceName(base string, indexKey any, idx, total int) string {
	switch key := indexKey.(type) {
	case nil:
		if total <= 1 {
			return base
		}
		return fmt.Sprintf("%s[%d]", base, idx)
	case string:
		return fmt.Sprintf("%s[%q]", base, key)
	case float64:
		return fmt.Sprintf("%s[%d]", base, int(key))
	default:
		return fmt.Sprintf("%s[%v]", base, key)
	}
}
