package tfstate

import (
	"context"
	"os"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/driftsentry/driftsentry/internal/core/ports"
	"github.com/driftsentry/driftsentry/internal/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type (
	State struct {
		Version          int        `json:"version"`
		TerraformVersion string     `json:"terraform_version"`
		Serial           int        `json:"serial"`
		Lineage          string     `json:"lineage"`
		Resources        []Resource `json:"resources"`
	}

	Resource struct {
		Module    string     `json:"module,omitempty"`
		Mode      string     `json:"mode"`
		Type      string     `json:"type"`
		Name      string     `json:"name"`
		Provider  string     `json:"provider"`
		Instances []Instance `json:"instances"`
	}

	Instance struct {
		SchemaVersion int            `json:"schema_version"`
		IndexKey      any            `json:"index_key,omitempty"`
		Attributes    map[string]any `json:"attributes"`
	}
)

type stateParser struct {
	filePath   string
	stateCache *State
	parseErr   error
	mutex      sync.RWMutex
	logger     ports.Logger
}

func newStateParser(path string, logger ports.Logger) *stateParser {
	return &stateParser{
		filePath: path,
		logger:   logger.WithFields(map[string]any{"component": "tfstate_parser", "file_path": path}),
	}
}

func (sp *stateParser) parseAndCache(ctx context.Context) (*State, error) {
	sp.mutex.RLock()
	if sp.stateCache != nil || sp.parseErr != nil {
		defer sp.mutex.RUnlock()
		return sp.stateCache, sp.parseErr
	}
	sp.mutex.RUnlock()

	sp.mutex.Lock()
	defer sp.mutex.Unlock()

	if sp.stateCache != nil || sp.parseErr != nil {
		return sp.stateCache, sp.parseErr
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	raw, err := os.ReadFile(sp.filePath)
	if err != nil {
		sp.parseErr = errors.Wrap(err, errors.CodeStateReadError, "failed to read state file")
		return nil, sp.parseErr
	}
	if len(raw) == 0 {
		sp.parseErr = errors.NewUserFacing(errors.CodeStateParseError, "state file is empty", "")
		return nil, sp.parseErr
	}

	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		sp.parseErr = errors.WrapUserFacing(err, errors.CodeStateParseError, "invalid JSON in state file", "")
		return nil, sp.parseErr
	}
	if state.Version < 4 {
		sp.parseErr = errors.NewUserFacing(
			errors.CodeUnsupportedStateVersion,
			"unsupported state version (only v4 state files are supported)",
			"Regenerate the state with a current Terraform release.")
		return nil, sp.parseErr
	}

	sp.logger.Debugf(ctx, "parsed state version %d (terraform %s) with %d resource(s)",
		state.Version, state.TerraformVersion, len(state.Resources))
	sp.stateCache = &state
	return sp.stateCache, nil
}
