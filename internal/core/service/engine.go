package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/driftsentry/driftsentry/internal/core/diff"
	"github.com/driftsentry/driftsentry/internal/core/domain"
	"github.com/driftsentry/driftsentry/internal/core/ports"
	"github.com/driftsentry/driftsentry/internal/core/remedy"
	"github.com/driftsentry/driftsentry/internal/errors"
)

const defaultConcurrency = 10

// AnalysisEngine orchestrates one run: list desired snapshots, resolve
// the observed view of each with a bounded worker pool, classify drift
// per resource, synthesize fixes, then hand everything to the reporter
// and the fix writer. Resolving is the only blocking stage; results are
// reduced back into the desired-state order so report output stays
// deterministic regardless of completion order.
type AnalysisEngine struct {
	source      ports.SnapshotSource
	resolver    ports.LiveResolver
	diff        *diff.Engine
	synthesizer *remedy.Synthesizer
	reporter    ports.Reporter
	fixWriter   ports.FixWriter
	rules       domain.SuppressionRules
	logger      ports.Logger
	statePath   string
	region      string
	concurrency int
}

func NewAnalysisEngine(
	source ports.SnapshotSource,
	resolver ports.LiveResolver,
	diffEngine *diff.Engine,
	synthesizer *remedy.Synthesizer,
	reporter ports.Reporter,
	fixWriter ports.FixWriter,
	rules domain.SuppressionRules,
	logger ports.Logger,
	statePath string,
	region string,
	concurrency int,
) (*AnalysisEngine, error) {
	if source == nil {
		return nil, errors.New(errors.CodeConfigValidation, "snapshot source cannot be nil")
	}
	if resolver == nil {
		return nil, errors.New(errors.CodeConfigValidation, "live resolver cannot be nil")
	}
	if reporter == nil {
		return nil, errors.New(errors.CodeConfigValidation, "reporter cannot be nil")
	}
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &AnalysisEngine{
		source:      source,
		resolver:    resolver,
		diff:        diffEngine,
		synthesizer: synthesizer,
		reporter:    reporter,
		fixWriter:   fixWriter,
		rules:       rules,
		logger:      logger,
		statePath:   statePath,
		region:      region,
		concurrency: concurrency,
	}, nil
}

func (e *AnalysisEngine) Run(ctx context.Context) (*ports.RunResult, error) {
	startedAt := time.Now()
	e.logger.Infof(ctx, "Starting drift analysis using %s source and %s resolver",
		e.source.Type(), e.resolver.Type())

	desired, err := e.source.Snapshots(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStateReadError, "failed listing desired resources")
	}
	if len(desired) == 0 {
		return nil, errors.NewUserFacing(errors.CodeStateParseError,
			"no managed resources found in the desired state",
			"Check that the state document contains managed resources.")
	}
	e.logger.Infof(ctx, "Found %d declared resource(s)", len(desired))

	terraformVersion, err := e.source.TerraformVersion(ctx)
	if err != nil {
		e.logger.Warnf(ctx, "Could not determine terraform version: %v", err)
		terraformVersion = "unknown"
	}

	observed, skipped, err := e.resolveAll(ctx, desired)
	if err != nil {
		// Fatal: a transient resolver failure must never degrade into a
		// ResourceDeleted finding, so the run aborts with no partial report.
		return nil, err
	}

	result := &ports.RunResult{}
	for i, snapshot := range desired {
		if skipped[i] {
			result.Skipped++
			continue
		}
		result.Checked++

		finding := e.diff.CompareResource(snapshot, observed[i], e.rules)
		result.Findings = append(result.Findings, finding)
		if finding.HasDrift {
			result.Drifted++
			if finding.Kind == domain.FindingResourceDeleted {
				result.Deleted++
			}
		}

		if action := e.synthesizer.Synthesize(finding); action != nil {
			result.Actions = append(result.Actions, *action)
		}
	}
	result.Summary = e.synthesizer.Summarize(result.Actions)

	meta := domain.RunMetadata{
		Source:           e.source.Type(),
		StatePath:        e.statePath,
		Region:           e.region,
		TerraformVersion: terraformVersion,
		StartedAt:        startedAt,
	}
	if err := e.reporter.Report(ctx, result.Findings, meta); err != nil {
		return nil, errors.Wrap(err, errors.CodeReportError, "failed to render drift report")
	}

	if e.fixWriter != nil && len(result.Actions) > 0 {
		path, err := e.fixWriter.Write(ctx, result.Actions, result.Summary)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeFixWriteError, "failed to write fix file")
		}
		result.FixPath = path
		e.logger.Infof(ctx, "Fix suggestions written to %s", path)
	}

	e.logger.Infof(ctx, "Analysis complete: %d checked, %d drifted, %d deleted, %d skipped",
		result.Checked, result.Drifted, result.Deleted, result.Skipped)
	return result, nil
}

// resolveAll fetches the observed snapshot for every desired resource
// with at most e.concurrency in-flight lookups, writing each result into
// the slot of its desired-state index. Unsupported kinds are skipped
// rather than treated as absent.
func (e *AnalysisEngine) resolveAll(ctx context.Context, desired []domain.ResourceSnapshot) ([]*domain.ResourceSnapshot, []bool, error) {
	observed := make([]*domain.ResourceSnapshot, len(desired))
	skipped := make([]bool, len(desired))

	g, childCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i := range desired {
		g.Go(func() error {
			snapshot := desired[i]
			log := e.logger.WithFields(map[string]any{"resource": snapshot.Address()})
			log.Debugf(childCtx, "Resolving observed state")

			resolved, err := e.resolver.Resolve(childCtx, snapshot)
			if err != nil {
				if errors.Is(err, errors.CodeUnsupportedResourceKind) {
					log.Warnf(childCtx, "Resource kind %s not supported by resolver, skipping", snapshot.ResourceType)
					skipped[i] = true
					return nil
				}
				log.Errorf(childCtx, err, "Failed to resolve observed state")
				return err
			}
			observed[i] = resolved
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, errors.Wrap(err, errors.CodePlatformAPIError, "resolving observed resources failed")
	}
	return observed, skipped, nil
}
