package resources

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/driftsentry/driftsentry/internal/core/domain"
)

// ctyValue converts an AttributeValue to its cty equivalent so hclwrite
// renders the canonical configuration literal: quoted scalars,
// comma-joined lists, one key = "value" line per map entry.
func ctyValue(v domain.AttributeValue) cty.Value {
	switch v.Kind() {
	case domain.KindString:
		return cty.StringVal(v.Str())
	case domain.KindNumber:
		return cty.NumberFloatVal(v.Num())
	case domain.KindBool:
		return cty.BoolVal(v.Boolean())
	case domain.KindSequence:
		elems := v.Seq()
		if len(elems) == 0 {
			return cty.EmptyTupleVal
		}
		vals := make([]cty.Value, 0, len(elems))
		for _, elem := range elems {
			vals = append(vals, ctyValue(elem))
		}
		return cty.TupleVal(vals)
	case domain.KindMapping:
		entries := v.Map()
		if len(entries) == 0 {
			return cty.EmptyObjectVal
		}
		vals := make(map[string]cty.Value, len(entries))
		for k, elem := range entries {
			vals[k] = ctyValue(elem)
		}
		return cty.ObjectVal(vals)
	}
	return cty.NullVal(cty.DynamicPseudoType)
}

// mapLiteral renders non-mapping input as the canonical empty map.
func mapLiteral(v domain.AttributeValue) cty.Value {
	if v.Kind() != domain.KindMapping {
		return cty.EmptyObjectVal
	}
	return ctyValue(v)
}

// listLiteral renders non-sequence input as the canonical empty list.
func listLiteral(v domain.AttributeValue) cty.Value {
	if v.Kind() != domain.KindSequence {
		return cty.EmptyTupleVal
	}
	return ctyValue(v)
}

func appendComment(body *hclwrite.Body, format string, args ...any) {
	body.AppendUnstructuredTokens(hclwrite.Tokens{
		{
			Type:  hclsyntax.TokenComment,
			Bytes: []byte("# " + fmt.Sprintf(format, args...) + "\n"),
		},
	})
}

func newResourceBlock(resourceType, resourceName string) (*hclwrite.File, *hclwrite.Body) {
	f := hclwrite.NewEmptyFile()
	block := f.Body().AppendNewBlock("resource", []string{resourceType, resourceName})
	return f, block.Body()
}
