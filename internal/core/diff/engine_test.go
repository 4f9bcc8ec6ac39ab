package diff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftsentry/driftsentry/internal/core/diff"
	"github.com/driftsentry/driftsentry/internal/core/domain"
	"github.com/driftsentry/driftsentry/internal/resources"
)

func defaultRules() domain.SuppressionRules {
	catalog := resources.DefaultCatalog()
	return domain.NewSuppressionRules(resources.DefaultIgnoreAttributes(), catalog.BenignNullDefaults())
}

func mustSnapshot(t *testing.T, resourceType, name string, attrs map[string]any) domain.ResourceSnapshot {
	t.Helper()
	snap, err := domain.NewSnapshot(resourceType, name, attrs)
	require.NoError(t, err)
	return snap
}

func TestCompareAttribute(t *testing.T) {
	rules := defaultRules()

	tests := []struct {
		name      string
		desired   domain.AttributeValue
		observed  domain.AttributeValue
		attribute string
		wantDrift bool
		wantKind  domain.DriftKind
	}{
		{
			name:      "ignored attribute never drifts",
			desired:   domain.StringValue("i-111"),
			observed:  domain.StringValue("i-222"),
			attribute: "id",
		},
		{
			name:      "benign null observed side",
			desired:   domain.StringValue("default"),
			observed:  domain.NullValue(),
			attribute: "cpu_core_count",
		},
		{
			name:      "both null",
			desired:   domain.NullValue(),
			observed:  domain.NullValue(),
			attribute: "key_name",
		},
		{
			name:      "empty string equals null",
			desired:   domain.StringValue(""),
			observed:  domain.NullValue(),
			attribute: "key_name",
		},
		{
			name:      "empty sequence equals null",
			desired:   domain.NullValue(),
			observed:  domain.SequenceValue(),
			attribute: "extra_ids",
		},
		{
			name:      "null versus value drifts",
			desired:   domain.StringValue("subnet-1"),
			observed:  domain.NullValue(),
			attribute: "subnet_id",
			wantDrift: true,
			wantKind:  domain.DriftValueChanged,
		},
		{
			name:      "number string coercion",
			desired:   domain.NumberValue(1),
			observed:  domain.StringValue("1"),
			attribute: "port",
		},
		{
			name:      "scalar mismatch",
			desired:   domain.StringValue("t2.micro"),
			observed:  domain.StringValue("t3.large"),
			attribute: "instance_type",
			wantDrift: true,
			wantKind:  domain.DriftValueChanged,
		},
		{
			name:      "sequence order does not drift",
			desired:   domain.MustFromRaw([]any{"sg-1", "sg-2"}),
			observed:  domain.MustFromRaw([]any{"sg-2", "sg-1"}),
			attribute: "vpc_security_group_ids",
		},
		{
			name:      "sequence multiset drifts",
			desired:   domain.MustFromRaw([]any{"sg-1"}),
			observed:  domain.MustFromRaw([]any{"sg-1", "sg-1"}),
			attribute: "vpc_security_group_ids",
			wantDrift: true,
			wantKind:  domain.DriftSequenceChanged,
		},
		{
			name:      "mapping drifts",
			desired:   domain.MustFromRaw(map[string]any{}),
			observed:  domain.MustFromRaw(map[string]any{"Owner": "ops"}),
			attribute: "tags",
			wantDrift: true,
			wantKind:  domain.DriftMappingChanged,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := diff.CompareAttribute(tc.desired, tc.observed, tc.attribute, resources.TypeInstance, rules)
			assert.Equal(t, tc.wantDrift, got.HasDrift)
			if tc.wantDrift {
				assert.Equal(t, tc.wantKind, got.Kind)
			}
		})
	}
}

func TestCompareResource_InstanceTypeDrift(t *testing.T) {
	engine := diff.NewEngine(resources.DefaultCatalog())
	rules := defaultRules()

	desired := mustSnapshot(t, resources.TypeInstance, "web", map[string]any{
		"id": "i-abc", "instance_type": "t2.micro", "ami": "ami-1",
	})
	observed := mustSnapshot(t, resources.TypeInstance, "web", map[string]any{
		"id": "i-abc", "instance_type": "t3.large", "ami": "ami-1",
	})

	finding := engine.CompareResource(desired, &observed, rules)
	assert.True(t, finding.HasDrift)
	assert.Equal(t, domain.SeverityHigh, finding.Severity)
	require.Len(t, finding.DriftedAttributes, 1)
	drift := finding.DriftedAttributes[0]
	assert.Equal(t, "instance_type", drift.Attribute)
	assert.Equal(t, domain.DriftValueChanged, drift.Kind)
	assert.Equal(t, "t2.micro", drift.DesiredValue.Str())
	assert.Equal(t, "t3.large", drift.ObservedValue.Str())
}

func TestCompareResource_Deleted(t *testing.T) {
	engine := diff.NewEngine(resources.DefaultCatalog())

	desired := mustSnapshot(t, resources.TypeInstance, "db-primary", map[string]any{
		"id": "i-db1", "instance_type": "m5.large",
	})

	finding := engine.CompareResource(desired, nil, defaultRules())
	assert.True(t, finding.HasDrift)
	assert.Equal(t, domain.SeverityCritical, finding.Severity)
	assert.Equal(t, domain.FindingResourceDeleted, finding.Kind)
	assert.NotNil(t, finding.DriftedAttributes)
	assert.Empty(t, finding.DriftedAttributes)
}

func TestCompareResource_TagsAdded(t *testing.T) {
	engine := diff.NewEngine(resources.DefaultCatalog())

	desired := mustSnapshot(t, resources.TypeInstance, "web", map[string]any{
		"id": "i-abc", "instance_type": "t2.micro", "tags": map[string]any{},
	})
	observed := mustSnapshot(t, resources.TypeInstance, "web", map[string]any{
		"id": "i-abc", "instance_type": "t2.micro", "tags": map[string]any{"Owner": "ops"},
	})

	finding := engine.CompareResource(desired, &observed, defaultRules())
	assert.True(t, finding.HasDrift)
	assert.Equal(t, domain.SeverityLow, finding.Severity)
	require.Len(t, finding.DriftedAttributes, 1)
	assert.Equal(t, domain.DriftMappingChanged, finding.DriftedAttributes[0].Kind)
}

func TestCompareResource_SecurityGroupRuleAdded(t *testing.T) {
	engine := diff.NewEngine(resources.DefaultCatalog())

	rule22 := map[string]any{"from_port": 22, "to_port": 22, "protocol": "tcp", "cidr_blocks": []any{"10.0.0.0/8"}}
	rule80 := map[string]any{"from_port": 80, "to_port": 80, "protocol": "tcp", "cidr_blocks": []any{"0.0.0.0/0"}}

	desired := mustSnapshot(t, resources.TypeSecurityGroup, "app", map[string]any{
		"id": "sg-1", "ingress": []any{rule22},
	})
	observed := mustSnapshot(t, resources.TypeSecurityGroup, "app", map[string]any{
		"id": "sg-1", "ingress": []any{rule22, rule80},
	})

	finding := engine.CompareResource(desired, &observed, defaultRules())
	assert.True(t, finding.HasDrift)
	assert.Equal(t, domain.SeverityHigh, finding.Severity)
	require.Len(t, finding.DriftedAttributes, 1)
	assert.Equal(t, "ingress", finding.DriftedAttributes[0].Attribute)
	assert.Equal(t, domain.DriftSequenceChanged, finding.DriftedAttributes[0].Kind)
}

func TestCompareResource_OnlyIgnoredAttributesDiffer(t *testing.T) {
	engine := diff.NewEngine(resources.DefaultCatalog())

	desired := mustSnapshot(t, resources.TypeInstance, "web", map[string]any{
		"id": "i-old", "arn": "arn:a", "instance_type": "t2.micro",
	})
	observed := mustSnapshot(t, resources.TypeInstance, "web", map[string]any{
		"id": "i-new", "arn": "arn:b", "instance_type": "t2.micro",
	})

	finding := engine.CompareResource(desired, &observed, defaultRules())
	assert.False(t, finding.HasDrift)
	assert.Equal(t, domain.SeverityNone, finding.Severity)
	assert.Empty(t, finding.DriftedAttributes)
}

func TestScoreSeverity_WideDriftIsMedium(t *testing.T) {
	engine := diff.NewEngine(resources.DefaultCatalog())

	desired := mustSnapshot(t, resources.TypeInstance, "web", map[string]any{
		"a": "1", "b": "1", "c": "1", "d": "1",
	})
	observed := mustSnapshot(t, resources.TypeInstance, "web", map[string]any{
		"a": "2", "b": "2", "c": "2", "d": "2",
	})

	finding := engine.CompareResource(desired, &observed, defaultRules())
	assert.True(t, finding.HasDrift)
	assert.Len(t, finding.DriftedAttributes, 4)
	assert.Equal(t, domain.SeverityMedium, finding.Severity)
}
