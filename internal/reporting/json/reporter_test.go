package json_test

import (
	"bytes"
	"context"
	stdjson "encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftsentry/driftsentry/internal/core/domain"
	"github.com/driftsentry/driftsentry/internal/log"
	jsonreport "github.com/driftsentry/driftsentry/internal/reporting/json"
)

func TestReporter_Report(t *testing.T) {
	var buf bytes.Buffer
	reporter := jsonreport.NewReporterTo(&buf, log.NewNop())

	findings := []domain.DriftFinding{
		{
			ResourceType: "aws_instance", ResourceName: "web",
			HasDrift: true, Severity: domain.SeverityHigh,
			Kind:    domain.FindingAttributesChanged,
			Message: "1 attribute(s) have drifted",
			DriftedAttributes: []domain.AttributeDrift{{
				Attribute:     "instance_type",
				DesiredValue:  domain.StringValue("t2.micro"),
				ObservedValue: domain.StringValue("t3.large"),
				Kind:          domain.DriftValueChanged,
			}},
		},
		{
			ResourceType: "aws_instance", ResourceName: "gone",
			HasDrift: true, Severity: domain.SeverityCritical,
			Kind: domain.FindingResourceDeleted,
		},
		{
			ResourceType: "aws_s3_bucket", ResourceName: "assets",
			HasDrift: false, Severity: domain.SeverityNone,
			Kind: domain.FindingAttributesChanged,
		},
	}

	meta := domain.RunMetadata{Source: "tfstate", TerraformVersion: "1.7.5", StartedAt: time.Now()}
	require.NoError(t, reporter.Report(context.Background(), findings, meta))

	var doc map[string]any
	require.NoError(t, stdjson.Unmarshal(buf.Bytes(), &doc))

	summary := doc["summary"].(map[string]any)
	assert.Equal(t, 3.0, summary["checked"])
	assert.Equal(t, 1.0, summary["clean"])
	assert.Equal(t, 1.0, summary["drifted"])
	assert.Equal(t, 1.0, summary["deleted"])

	items := doc["findings"].([]any)
	require.Len(t, items, 3)

	first := items[0].(map[string]any)
	assert.Equal(t, "HIGH", first["severity"])
	drifts := first["drifted_attributes"].([]any)
	require.Len(t, drifts, 1)
	drift := drifts[0].(map[string]any)
	assert.Equal(t, "t2.micro", drift["desired_value"])
	assert.Equal(t, "t3.large", drift["observed_value"])
	assert.Equal(t, "value_changed", drift["kind"])

	metadata := doc["metadata"].(map[string]any)
	assert.Equal(t, "tfstate", metadata["source"])
	assert.Equal(t, "1.7.5", metadata["terraform_version"])
}
