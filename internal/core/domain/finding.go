package domain

import "fmt"

// Severity is an ordered triage rank, not a numeric risk score.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "NONE"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	}
	return fmt.Sprintf("SEVERITY(%d)", int(s))
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type DriftKind string

const (
	DriftValueChanged    DriftKind = "value_changed"
	DriftSequenceChanged DriftKind = "sequence_changed"
	DriftMappingChanged  DriftKind = "mapping_changed"
)

type FindingKind string

const (
	FindingResourceDeleted   FindingKind = "resource_deleted"
	FindingAttributesChanged FindingKind = "attributes_changed"
)

type AttributeDrift struct {
	Attribute     string
	DesiredValue  AttributeValue
	ObservedValue AttributeValue
	Kind          DriftKind
}

type DriftFinding struct {
	ResourceType      string
	ResourceName      string
	HasDrift          bool
	Severity          Severity
	Kind              FindingKind
	Message           string
	DriftedAttributes []AttributeDrift
}

func (f DriftFinding) Address() string {
	return f.ResourceType + "." + f.ResourceName
}
