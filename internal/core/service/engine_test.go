package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftsentry/driftsentry/internal/core/diff"
	"github.com/driftsentry/driftsentry/internal/core/domain"
	"github.com/driftsentry/driftsentry/internal/core/ports"
	"github.com/driftsentry/driftsentry/internal/core/remedy"
	"github.com/driftsentry/driftsentry/internal/core/service"
	"github.com/driftsentry/driftsentry/internal/errors"
	"github.com/driftsentry/driftsentry/internal/log"
	"github.com/driftsentry/driftsentry/internal/resources"
)

type stubSource struct {
	snapshots []domain.ResourceSnapshot
	version   string
	err       error
}

func (s *stubSource) Type() string { return "stub" }

func (s *stubSource) Snapshots(ctx context.Context) ([]domain.ResourceSnapshot, error) {
	return s.snapshots, s.err
}

func (s *stubSource) TerraformVersion(ctx context.Context) (string, error) {
	return s.version, nil
}

type stubResolver struct {
	mu      sync.Mutex
	calls   int
	resolve func(desired domain.ResourceSnapshot) (*domain.ResourceSnapshot, error)
}

func (r *stubResolver) Type() string { return "stub" }

func (r *stubResolver) Resolve(ctx context.Context, desired domain.ResourceSnapshot) (*domain.ResourceSnapshot, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	return r.resolve(desired)
}

type captureReporter struct {
	findings []domain.DriftFinding
	meta     domain.RunMetadata
}

func (c *captureReporter) Report(ctx context.Context, findings []domain.DriftFinding, meta domain.RunMetadata) error {
	c.findings = findings
	c.meta = meta
	return nil
}

type captureFixWriter struct {
	actions []domain.FixAction
	summary string
}

func (c *captureFixWriter) Write(ctx context.Context, actions []domain.FixAction, summary string) (string, error) {
	c.actions = actions
	c.summary = summary
	return "terraform_fixes.tf", nil
}

func newEngine(t *testing.T, source ports.SnapshotSource, resolver ports.LiveResolver, reporter ports.Reporter, fixWriter ports.FixWriter) *service.AnalysisEngine {
	t.Helper()
	catalog := resources.DefaultCatalog()
	rules := domain.NewSuppressionRules(resources.DefaultIgnoreAttributes(), catalog.BenignNullDefaults())
	engine, err := service.NewAnalysisEngine(
		source, resolver,
		diff.NewEngine(catalog), remedy.NewSynthesizer(catalog),
		reporter, fixWriter,
		rules, log.NewNop(), "state.tfstate", "us-east-1", 4,
	)
	require.NoError(t, err)
	return engine
}

func snapshot(t *testing.T, resourceType, name string, attrs map[string]any) domain.ResourceSnapshot {
	t.Helper()
	snap, err := domain.NewSnapshot(resourceType, name, attrs)
	require.NoError(t, err)
	return snap
}

func TestRun_FindingsPreserveDeclaredOrder(t *testing.T) {
	var desired []domain.ResourceSnapshot
	for i := 0; i < 20; i++ {
		desired = append(desired, snapshot(t, resources.TypeInstance, fmt.Sprintf("web-%02d", i), map[string]any{
			"id": fmt.Sprintf("i-%02d", i), "instance_type": "t2.micro",
		}))
	}

	resolver := &stubResolver{resolve: func(d domain.ResourceSnapshot) (*domain.ResourceSnapshot, error) {
		observed := snapshot(t, d.ResourceType, d.ResourceName, map[string]any{
			"id": d.Attribute("id").Str(), "instance_type": "t2.micro",
		})
		return &observed, nil
	}}
	reporter := &captureReporter{}

	result, err := newEngine(t, &stubSource{snapshots: desired, version: "1.7.0"}, resolver, reporter, &captureFixWriter{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 20, result.Checked)
	assert.Equal(t, 0, result.Drifted)
	assert.False(t, result.HasDrift())
	require.Len(t, reporter.findings, 20)
	for i, finding := range reporter.findings {
		assert.Equal(t, fmt.Sprintf("web-%02d", i), finding.ResourceName)
	}
	assert.Equal(t, "1.7.0", reporter.meta.TerraformVersion)
	assert.Equal(t, "state.tfstate", reporter.meta.StatePath)
}

func TestRun_DriftAndDeletionCounters(t *testing.T) {
	desired := []domain.ResourceSnapshot{
		snapshot(t, resources.TypeInstance, "clean", map[string]any{"id": "i-1", "instance_type": "t2.micro"}),
		snapshot(t, resources.TypeInstance, "drifted", map[string]any{"id": "i-2", "instance_type": "t2.micro"}),
		snapshot(t, resources.TypeInstance, "gone", map[string]any{"id": "i-3", "instance_type": "t2.micro"}),
	}

	resolver := &stubResolver{resolve: func(d domain.ResourceSnapshot) (*domain.ResourceSnapshot, error) {
		switch d.ResourceName {
		case "gone":
			return nil, nil
		case "drifted":
			observed := snapshot(t, d.ResourceType, d.ResourceName, map[string]any{
				"id": "i-2", "instance_type": "t3.large",
			})
			return &observed, nil
		default:
			observed := snapshot(t, d.ResourceType, d.ResourceName, map[string]any{
				"id": "i-1", "instance_type": "t2.micro",
			})
			return &observed, nil
		}
	}}
	fixWriter := &captureFixWriter{}

	result, err := newEngine(t, &stubSource{snapshots: desired}, resolver, &captureReporter{}, fixWriter).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Checked)
	assert.Equal(t, 2, result.Drifted)
	assert.Equal(t, 1, result.Deleted)
	assert.True(t, result.HasDrift())
	assert.Equal(t, "terraform_fixes.tf", result.FixPath)

	require.Len(t, fixWriter.actions, 2)
	assert.Contains(t, fixWriter.summary, "# Total fixes needed: 2")

	var deleted *domain.DriftFinding
	for i := range result.Findings {
		if result.Findings[i].ResourceName == "gone" {
			deleted = &result.Findings[i]
		}
	}
	require.NotNil(t, deleted)
	assert.Equal(t, domain.FindingResourceDeleted, deleted.Kind)
	assert.Equal(t, domain.SeverityCritical, deleted.Severity)
}

func TestRun_UnsupportedKindIsSkippedNotDeleted(t *testing.T) {
	desired := []domain.ResourceSnapshot{
		snapshot(t, "aws_lambda_function", "fn", map[string]any{"id": "fn-1"}),
		snapshot(t, resources.TypeInstance, "web", map[string]any{"id": "i-1", "instance_type": "t2.micro"}),
	}

	resolver := &stubResolver{resolve: func(d domain.ResourceSnapshot) (*domain.ResourceSnapshot, error) {
		if d.ResourceType != resources.TypeInstance {
			return nil, errors.Newf(errors.CodeUnsupportedResourceKind, "unsupported %s", d.ResourceType)
		}
		observed := snapshot(t, d.ResourceType, d.ResourceName, map[string]any{
			"id": "i-1", "instance_type": "t2.micro",
		})
		return &observed, nil
	}}
	reporter := &captureReporter{}

	result, err := newEngine(t, &stubSource{snapshots: desired}, resolver, reporter, &captureFixWriter{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Checked)
	assert.Equal(t, 0, result.Deleted)
	require.Len(t, reporter.findings, 1)
	assert.Equal(t, "web", reporter.findings[0].ResourceName)
}

func TestRun_TransientResolverErrorAbortsRun(t *testing.T) {
	desired := []domain.ResourceSnapshot{
		snapshot(t, resources.TypeInstance, "web", map[string]any{"id": "i-1"}),
	}

	resolver := &stubResolver{resolve: func(d domain.ResourceSnapshot) (*domain.ResourceSnapshot, error) {
		return nil, errors.New(errors.CodePlatformAPIError, "throttled")
	}}
	reporter := &captureReporter{}

	result, err := newEngine(t, &stubSource{snapshots: desired}, resolver, reporter, &captureFixWriter{}).Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, errors.CodePlatformAPIError))
	assert.Nil(t, reporter.findings)
}

func TestRun_EmptyStateIsAnError(t *testing.T) {
	resolver := &stubResolver{resolve: func(d domain.ResourceSnapshot) (*domain.ResourceSnapshot, error) {
		return nil, nil
	}}

	_, err := newEngine(t, &stubSource{snapshots: nil}, resolver, &captureReporter{}, &captureFixWriter{}).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeStateParseError))
	assert.Equal(t, 0, resolver.calls)
}
