package json

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/driftsentry/driftsentry/internal/core/domain"
	"github.com/driftsentry/driftsentry/internal/core/ports"
	"github.com/driftsentry/driftsentry/internal/errors"
)

const ReporterTypeJSON = "json"

type Reporter struct {
	writer io.Writer
	logger ports.Logger
}

var _ ports.Reporter = (*Reporter)(nil)

func NewReporter(logger ports.Logger) (*Reporter, error) {
	return &Reporter{writer: os.Stdout, logger: logger}, nil
}

// NewReporterTo is used by tests to capture output.
func NewReporterTo(w io.Writer, logger ports.Logger) *Reporter {
	return &Reporter{writer: w, logger: logger}
}

type jsonReport struct {
	Metadata jsonMetadata  `json:"metadata"`
	Summary  jsonSummary   `json:"summary"`
	Findings []jsonFinding `json:"findings"`
}

type jsonMetadata struct {
	Source           string    `json:"source"`
	StatePath        string    `json:"state_path,omitempty"`
	Region           string    `json:"region,omitempty"`
	TerraformVersion string    `json:"terraform_version,omitempty"`
	StartedAt        time.Time `json:"started_at"`
}

type jsonSummary struct {
	Checked int `json:"checked"`
	Clean   int `json:"clean"`
	Drifted int `json:"drifted"`
	Deleted int `json:"deleted"`
}

type jsonFinding struct {
	ResourceType string               `json:"resource_type"`
	ResourceName string               `json:"resource_name"`
	HasDrift     bool                 `json:"has_drift"`
	Severity     domain.Severity      `json:"severity"`
	Kind         domain.FindingKind   `json:"kind,omitempty"`
	Message      string               `json:"message,omitempty"`
	Drifts       []jsonAttributeDrift `json:"drifted_attributes,omitempty"`
}

type jsonAttributeDrift struct {
	Attribute string           `json:"attribute"`
	Desired   any              `json:"desired_value"`
	Observed  any              `json:"observed_value"`
	Kind      domain.DriftKind `json:"kind"`
}

func (r *Reporter) Report(ctx context.Context, findings []domain.DriftFinding, meta domain.RunMetadata) error {
	report := jsonReport{
		Metadata: jsonMetadata{
			Source:           meta.Source,
			StatePath:        meta.StatePath,
			Region:           meta.Region,
			TerraformVersion: meta.TerraformVersion,
			StartedAt:        meta.StartedAt,
		},
		Summary:  jsonSummary{Checked: len(findings)},
		Findings: make([]jsonFinding, 0, len(findings)),
	}

	for _, finding := range findings {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		switch {
		case !finding.HasDrift:
			report.Summary.Clean++
		case finding.Kind == domain.FindingResourceDeleted:
			report.Summary.Deleted++
		default:
			report.Summary.Drifted++
		}

		item := jsonFinding{
			ResourceType: finding.ResourceType,
			ResourceName: finding.ResourceName,
			HasDrift:     finding.HasDrift,
			Severity:     finding.Severity,
			Kind:         finding.Kind,
			Message:      finding.Message,
		}
		for _, drift := range finding.DriftedAttributes {
			item.Drifts = append(item.Drifts, jsonAttributeDrift{
				Attribute: drift.Attribute,
				Desired:   drift.DesiredValue.Raw(),
				Observed:  drift.ObservedValue.Raw(),
				Kind:      drift.Kind,
			})
		}
		report.Findings = append(report.Findings, item)
	}

	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return errors.Wrap(err, errors.CodeReportError, "failed to encode JSON report")
	}
	return nil
}
