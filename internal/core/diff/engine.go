// Package diff classifies drift between a declared resource snapshot and
// an independently observed snapshot of the same resource. Comparison is
// type-directed over the AttributeValue union, so the engine needs no
// provider-specific knowledge beyond the suppression rules and the
// critical-attribute catalog it is handed.
package diff

import (
	"fmt"
	"sort"

	"github.com/google/go-cmp/cmp"

	"github.com/driftsentry/driftsentry/internal/core/domain"
	"github.com/driftsentry/driftsentry/internal/resources"
)

// Severity escalates to MEDIUM once more than this many attributes drift.
const mediumDriftThreshold = 3

type Comparison struct {
	HasDrift bool
	Kind     domain.DriftKind
}

// CompareAttribute applies the suppression and comparison ladder to one
// attribute pair. First match wins:
//
//  1. globally ignored attributes never drift;
//  2. observed null is benign for attributes the provider omits;
//  3. null/null and empty-vs-absent pairs are equivalent;
//  4. sequences compare as order-insensitive multisets;
//  5. mappings compare deeply and key-order-independently;
//  6. everything else compares by normalized string form.
func CompareAttribute(desired, observed domain.AttributeValue, attribute, resourceType string, rules domain.SuppressionRules) Comparison {
	if rules.IsIgnored(attribute) {
		return Comparison{}
	}
	if observed.IsNull() && rules.IsBenignNull(resourceType, attribute) {
		return Comparison{}
	}
	if desired.IsNull() && observed.IsNull() {
		return Comparison{}
	}
	if desired.IsNull() != observed.IsNull() {
		if desired.IsEmpty() && observed.IsEmpty() {
			return Comparison{}
		}
		return Comparison{HasDrift: true, Kind: domain.DriftValueChanged}
	}

	if desired.Kind() == domain.KindSequence && observed.Kind() == domain.KindSequence {
		if !desired.Equal(observed) {
			return Comparison{HasDrift: true, Kind: domain.DriftSequenceChanged}
		}
		return Comparison{}
	}

	if desired.Kind() == domain.KindMapping && observed.Kind() == domain.KindMapping {
		if !cmp.Equal(desired.Map(), observed.Map()) {
			return Comparison{HasDrift: true, Kind: domain.DriftMappingChanged}
		}
		return Comparison{}
	}

	if desired.StringForm() != observed.StringForm() {
		return Comparison{HasDrift: true, Kind: domain.DriftValueChanged}
	}
	return Comparison{}
}

type Engine struct {
	catalog *resources.Catalog
}

func NewEngine(catalog *resources.Catalog) *Engine {
	return &Engine{catalog: catalog}
}

// CompareResource produces the finding for one declared resource. A nil
// observed snapshot means the resolver confirmed the resource absent;
// deletion is always the worst case regardless of attribute content.
func (e *Engine) CompareResource(desired domain.ResourceSnapshot, observed *domain.ResourceSnapshot, rules domain.SuppressionRules) domain.DriftFinding {
	if observed == nil {
		return domain.DriftFinding{
			ResourceType:      desired.ResourceType,
			ResourceName:      desired.ResourceName,
			HasDrift:          true,
			Severity:          domain.SeverityCritical,
			Kind:              domain.FindingResourceDeleted,
			Message:           "resource declared in state but not observed on the platform",
			DriftedAttributes: []domain.AttributeDrift{},
		}
	}

	names := attributeUnion(desired, *observed)
	drifted := make([]domain.AttributeDrift, 0)
	for _, name := range names {
		if rules.IsIgnored(name) {
			continue
		}
		desiredVal := desired.Attribute(name)
		observedVal := observed.Attribute(name)

		result := CompareAttribute(desiredVal, observedVal, name, desired.ResourceType, rules)
		if !result.HasDrift {
			continue
		}
		drifted = append(drifted, domain.AttributeDrift{
			Attribute:     name,
			DesiredValue:  desiredVal,
			ObservedValue: observedVal,
			Kind:          result.Kind,
		})
	}

	return domain.DriftFinding{
		ResourceType:      desired.ResourceType,
		ResourceName:      desired.ResourceName,
		HasDrift:          len(drifted) > 0,
		Severity:          e.scoreSeverity(desired.ResourceType, drifted),
		Kind:              domain.FindingAttributesChanged,
		Message:           fmt.Sprintf("%d attribute(s) have drifted", len(drifted)),
		DriftedAttributes: drifted,
	}
}

// scoreSeverity is a coarse triage signal: HIGH when any drifted
// attribute is in the type's critical set, MEDIUM on a wide drift,
// LOW otherwise, NONE without drift. Monotonic in the drifted set so
// consumers can sort and filter deterministically.
func (e *Engine) scoreSeverity(resourceType string, drifted []domain.AttributeDrift) domain.Severity {
	if len(drifted) == 0 {
		return domain.SeverityNone
	}
	for _, d := range drifted {
		if e.catalog.IsCritical(resourceType, d.Attribute) {
			return domain.SeverityHigh
		}
	}
	if len(drifted) > mediumDriftThreshold {
		return domain.SeverityMedium
	}
	return domain.SeverityLow
}

func attributeUnion(desired, observed domain.ResourceSnapshot) []string {
	set := make(map[string]struct{}, len(desired.Attributes)+len(observed.Attributes))
	for name := range desired.Attributes {
		set[name] = struct{}{}
	}
	for name := range observed.Attributes {
		set[name] = struct{}{}
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
