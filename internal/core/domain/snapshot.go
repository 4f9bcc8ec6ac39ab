package domain

import "github.com/driftsentry/driftsentry/internal/errors"

// ResourceSnapshot is one normalized view of a resource, either desired
// (from declared state) or observed (from the live resolver). Snapshots
// of the same resource are correlated by (ResourceType, ResourceName);
// the snapshot source guarantees this pair is unique per analysis run by
// flattening multi-instance resources into distinct names.
type ResourceSnapshot struct {
	ResourceType string
	ResourceName string
	Attributes   map[string]AttributeValue
}

// NewSnapshot normalizes a raw attribute map into a snapshot, failing
// fast with CodeMalformedSnapshot when a value cannot be interpreted.
func NewSnapshot(resourceType, resourceName string, rawAttributes map[string]any) (ResourceSnapshot, error) {
	attrs := make(map[string]AttributeValue, len(rawAttributes))
	for name, raw := range rawAttributes {
		val, err := FromRaw(raw)
		if err != nil {
			return ResourceSnapshot{}, errors.Newf(errors.CodeMalformedSnapshot,
				"attribute %q of %s.%s: %v", name, resourceType, resourceName, err)
		}
		attrs[name] = val
	}
	return ResourceSnapshot{
		ResourceType: resourceType,
		ResourceName: resourceName,
		Attributes:   attrs,
	}, nil
}

// Address is the terraform-style resource address, e.g. aws_instance.web.
func (s ResourceSnapshot) Address() string {
	return s.ResourceType + "." + s.ResourceName
}

// Attribute returns the named attribute, or a null value when absent.
func (s ResourceSnapshot) Attribute(name string) AttributeValue {
	if v, ok := s.Attributes[name]; ok {
		return v
	}
	return NullValue()
}
