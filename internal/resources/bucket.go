package resources

import (
	"github.com/zclconf/go-cty/cty"

	"github.com/driftsentry/driftsentry/internal/core/domain"
)

const TypeBucket = "aws_s3_bucket"

func bucketSpec() TypeSpec {
	return TypeSpec{
		Type: TypeBucket,
		BenignNullAttributes: []string{
			"arn", "bucket_domain_name", "bucket_regional_domain_name",
			"hosted_zone_id", "region", "website_endpoint", "website_domain",
		},
		CriticalAttributes: []string{"versioning"},
		ImportPlaceholder:  "<bucket-name>",
		Fragment:           bucketFragment,
	}
}

func bucketFragment(resourceName string, drifted []domain.AttributeDrift) string {
	f, body := newResourceBlock(TypeBucket, resourceName)

	for _, d := range drifted {
		switch d.Attribute {
		case "versioning":
			appendComment(body, "versioning changed: %q -> %q",
				d.DesiredValue.StringForm(), d.ObservedValue.StringForm())
			vb := body.AppendNewBlock("versioning", nil).Body()
			vb.SetAttributeValue("enabled", cty.BoolVal(versioningEnabled(d.ObservedValue)))
		case "tags":
			body.SetAttributeValue("tags", mapLiteral(d.ObservedValue))
		default:
			appendComment(body, "%s changed: %q -> %q",
				d.Attribute, d.DesiredValue.StringForm(), d.ObservedValue.StringForm())
		}
	}

	return string(f.Bytes())
}

// versioningEnabled reads the enabled flag out of either shape the
// attribute takes: the state's single-element block list or a bare
// status string.
func versioningEnabled(v domain.AttributeValue) bool {
	if v.Kind() == domain.KindSequence && len(v.Seq()) > 0 {
		return v.Seq()[0].Map()["enabled"].Boolean()
	}
	return v.StringForm() == "Enabled"
}
