// Package tfshow reads desired resource snapshots from the JSON output
// of `terraform show -json` (either a plan or a state rendering).
package tfshow

import (
	"context"
	"fmt"
	"os"
	"sync"

	tfjson "github.com/hashicorp/terraform-json"

	"github.com/driftsentry/driftsentry/internal/core/domain"
	"github.com/driftsentry/driftsentry/internal/core/ports"
	"github.com/driftsentry/driftsentry/internal/errors"
)

// Provider implements ports.SnapshotSource for `terraform show -json`
// documents. Unlike raw state files these carry fully resolved values,
// including child module resources.
type Provider struct {
	filePath string
	logger   ports.Logger

	once  sync.Once
	state *tfjson.State
	err   error
}

var _ ports.SnapshotSource = (*Provider)(nil)

func NewProvider(path string, logger ports.Logger) (*Provider, error) {
	if path == "" {
		return nil, errors.New(errors.CodeConfigValidation, "show output path cannot be empty")
	}
	return &Provider{
		filePath: path,
		logger:   logger.WithFields(map[string]any{"snapshot_source": "tfshow"}),
	}, nil
}

func (p *Provider) Type() string { return "tfshow" }

func (p *Provider) load(ctx context.Context) (*tfjson.State, error) {
	p.once.Do(func() {
		raw, err := os.ReadFile(p.filePath)
		if err != nil {
			p.err = errors.Wrap(err, errors.CodeStateReadError, "failed to read show output file")
			return
		}
		var state tfjson.State
		if err := state.UnmarshalJSON(raw); err != nil {
			p.err = errors.WrapUserFacing(err, errors.CodeStateParseError,
				"invalid terraform show JSON",
				"Regenerate the file with `terraform show -json > file.json`.")
			return
		}
		p.state = &state
	})
	if p.err != nil {
		return nil, p.err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return p.state, nil
}

func (p *Provider) TerraformVersion(ctx context.Context) (string, error) {
	state, err := p.load(ctx)
	if err != nil {
		return "", err
	}
	return state.TerraformVersion, nil
}

func (p *Provider) Snapshots(ctx context.Context) ([]domain.ResourceSnapshot, error) {
	state, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	if state.Values == nil || state.Values.RootModule == nil {
		return nil, nil
	}

	var snapshots []domain.ResourceSnapshot
	if err := p.collectModule(state.Values.RootModule, &snapshots); err != nil {
		return nil, err
	}
	p.logger.Infof(ctx, "loaded %d resource snapshot(s) from show output", len(snapshots))
	return snapshots, nil
}

func (p *Provider) collectModule(mod *tfjson.StateModule, out *[]domain.ResourceSnapshot) error {
	for _, res := range mod.Resources {
		if res.Mode != tfjson.ManagedResourceMode {
			continue
		}
		name := res.Name
		if res.Index != nil {
			switch key := res.Index.(type) {
			case string:
				name = fmt.Sprintf("%s[%q]", res.Name, key)
			default:
				name = fmt.Sprintf("%s[%v]", res.Name, key)
			}
		}
		snap, err := domain.NewSnapshot(res.Type, name, res.AttributeValues)
		if err != nil {
			return errors.Wrapf(err, errors.CodeStateParseError,
				"malformed attributes for %s", res.Address)
		}
		*out = append(*out, snap)
	}
	for _, child := range mod.ChildModules {
		if err := p.collectModule(child, out); err != nil {
			return err
		}
	}
	return nil
}
