package domain

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/driftsentry/driftsentry/internal/errors"
)

type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindBool
	KindSequence
	KindMapping
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	}
	return "invalid"
}

// AttributeValue is the normalized shape of every desired and observed
// attribute: a tagged union over null, scalars, sequences, and mappings.
// Values are immutable after construction; accessors return internal
// state that callers must not mutate.
type AttributeValue struct {
	kind    ValueKind
	str     string
	num     float64
	boolean bool
	seq     []AttributeValue
	entries map[string]AttributeValue
}

func NullValue() AttributeValue {
	return AttributeValue{kind: KindNull}
}

func StringValue(s string) AttributeValue {
	return AttributeValue{kind: KindString, str: s}
}

func NumberValue(n float64) AttributeValue {
	return AttributeValue{kind: KindNumber, num: n}
}

func BoolValue(b bool) AttributeValue {
	return AttributeValue{kind: KindBool, boolean: b}
}

func SequenceValue(elems ...AttributeValue) AttributeValue {
	if elems == nil {
		elems = []AttributeValue{}
	}
	return AttributeValue{kind: KindSequence, seq: elems}
}

func MappingValue(entries map[string]AttributeValue) AttributeValue {
	if entries == nil {
		entries = map[string]AttributeValue{}
	}
	return AttributeValue{kind: KindMapping, entries: entries}
}

// FromRaw converts an arbitrary decoded value (JSON document, SDK output)
// into an AttributeValue. Values that cannot be interpreted indicate a
// caller bug and fail with CodeMalformedSnapshot.
func FromRaw(raw any) (AttributeValue, error) {
	if raw == nil {
		return NullValue(), nil
	}

	switch v := raw.(type) {
	case AttributeValue:
		return v, nil
	case string:
		return StringValue(v), nil
	case bool:
		return BoolValue(v), nil
	case float64:
		return NumberValue(v), nil
	case float32:
		return NumberValue(float64(v)), nil
	case int:
		return NumberValue(float64(v)), nil
	case int32:
		return NumberValue(float64(v)), nil
	case int64:
		return NumberValue(float64(v)), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return AttributeValue{}, errors.Newf(errors.CodeMalformedSnapshot, "unparseable number %q", v.String())
		}
		return NumberValue(f), nil
	case []any:
		return sequenceFromSlice(v)
	case []string:
		elems := make([]AttributeValue, 0, len(v))
		for _, s := range v {
			elems = append(elems, StringValue(s))
		}
		return SequenceValue(elems...), nil
	case map[string]any:
		return mappingFromMap(v)
	case map[string]string:
		entries := make(map[string]AttributeValue, len(v))
		for k, s := range v {
			entries[k] = StringValue(s)
		}
		return MappingValue(entries), nil
	}

	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return NullValue(), nil
		}
		return FromRaw(rv.Elem().Interface())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return NumberValue(float64(rv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return NumberValue(float64(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return NumberValue(rv.Float()), nil
	case reflect.Slice, reflect.Array:
		elems := make([]AttributeValue, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			elem, err := FromRaw(rv.Index(i).Interface())
			if err != nil {
				return AttributeValue{}, err
			}
			elems = append(elems, elem)
		}
		return SequenceValue(elems...), nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return AttributeValue{}, errors.Newf(errors.CodeMalformedSnapshot, "map key type %s is not a string", rv.Type().Key())
		}
		entries := make(map[string]AttributeValue, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			val, err := FromRaw(iter.Value().Interface())
			if err != nil {
				return AttributeValue{}, err
			}
			entries[iter.Key().String()] = val
		}
		return MappingValue(entries), nil
	}

	return AttributeValue{}, errors.Newf(errors.CodeMalformedSnapshot, "value of type %T cannot be interpreted as an attribute value", raw)
}

// MustFromRaw is a test helper; it panics on malformed input.
func MustFromRaw(raw any) AttributeValue {
	v, err := FromRaw(raw)
	if err != nil {
		panic(err)
	}
	return v
}

func sequenceFromSlice(raw []any) (AttributeValue, error) {
	elems := make([]AttributeValue, 0, len(raw))
	for _, item := range raw {
		elem, err := FromRaw(item)
		if err != nil {
			return AttributeValue{}, err
		}
		elems = append(elems, elem)
	}
	return SequenceValue(elems...), nil
}

func mappingFromMap(raw map[string]any) (AttributeValue, error) {
	entries := make(map[string]AttributeValue, len(raw))
	for k, item := range raw {
		val, err := FromRaw(item)
		if err != nil {
			return AttributeValue{}, err
		}
		entries[k] = val
	}
	return MappingValue(entries), nil
}

func (v AttributeValue) Kind() ValueKind { return v.kind }

func (v AttributeValue) IsNull() bool { return v.kind == KindNull }

// IsEmpty reports whether the value is "empty-like": null, an empty
// string, an empty sequence, or an empty mapping. Numbers and booleans
// are never empty.
func (v AttributeValue) IsEmpty() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == ""
	case KindSequence:
		return len(v.seq) == 0
	case KindMapping:
		return len(v.entries) == 0
	}
	return false
}

func (v AttributeValue) Str() string     { return v.str }
func (v AttributeValue) Num() float64    { return v.num }
func (v AttributeValue) Boolean() bool   { return v.boolean }

func (v AttributeValue) Seq() []AttributeValue { return v.seq }

func (v AttributeValue) Map() map[string]AttributeValue { return v.entries }

// StringForm renders the canonical string form used for permissive scalar
// comparison: numbers drop insignificant fraction digits so 1, 1.0 and "1"
// coincide, mappings sort their keys, and sequence elements are sorted so
// the form is order-insensitive. This coercion is a deliberate, tested
// policy: providers round-trip scalar types inconsistently.
func (v AttributeValue) StringForm() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.boolean)
	case KindSequence:
		forms := make([]string, 0, len(v.seq))
		for _, elem := range v.seq {
			forms = append(forms, elem.StringForm())
		}
		sort.Strings(forms)
		return "[" + strings.Join(forms, ",") + "]"
	case KindMapping:
		keys := make([]string, 0, len(v.entries))
		for k := range v.entries {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+":"+v.entries[k].StringForm())
		}
		return "{" + strings.Join(parts, ",") + "}"
	}
	return ""
}

// Equal implements the comparison policy shared by the whole engine:
// sequences compare as multisets, mappings compare deeply and
// key-order-independently, everything else compares by normalized
// string form.
func (v AttributeValue) Equal(o AttributeValue) bool {
	switch {
	case v.kind == KindSequence && o.kind == KindSequence:
		return v.multisetEqual(o)
	case v.kind == KindMapping && o.kind == KindMapping:
		if len(v.entries) != len(o.entries) {
			return false
		}
		for k, val := range v.entries {
			other, ok := o.entries[k]
			if !ok || !val.Equal(other) {
				return false
			}
		}
		return true
	default:
		return v.StringForm() == o.StringForm()
	}
}

func (v AttributeValue) multisetEqual(o AttributeValue) bool {
	if len(v.seq) != len(o.seq) {
		return false
	}
	left := make([]string, 0, len(v.seq))
	for _, elem := range v.seq {
		left = append(left, elem.StringForm())
	}
	right := make([]string, 0, len(o.seq))
	for _, elem := range o.seq {
		right = append(right, elem.StringForm())
	}
	sort.Strings(left)
	sort.Strings(right)
	for i := range left {
		if left[i] != right[i] {
			return false
		}
	}
	return true
}

// Raw converts back to plain decoded-JSON shapes for reporters.
func (v AttributeValue) Raw() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.boolean
	case KindSequence:
		out := make([]any, 0, len(v.seq))
		for _, elem := range v.seq {
			out = append(out, elem.Raw())
		}
		return out
	case KindMapping:
		out := make(map[string]any, len(v.entries))
		for k, val := range v.entries {
			out[k] = val.Raw()
		}
		return out
	}
	return nil
}

// GoString keeps test failure output readable.
func (v AttributeValue) GoString() string {
	return fmt.Sprintf("AttributeValue(%s %s)", v.kind, v.StringForm())
}
