package resources

import (
	"github.com/hashicorp/hcl/v2/hclwrite"

	"github.com/driftsentry/driftsentry/internal/core/domain"
)

const TypeSecurityGroup = "aws_security_group"

// Rule blocks beyond this count render as a truncation comment.
const maxRulePreview = 3

func securityGroupSpec() TypeSpec {
	return TypeSpec{
		Type:                 TypeSecurityGroup,
		BenignNullAttributes: []string{"owner_id", "arn", "revoke_rules_on_delete", "timeouts"},
		CriticalAttributes:   []string{"ingress", "egress"},
		ImportPlaceholder:    "<security-group-id>",
		Fragment:             securityGroupFragment,
	}
}

func securityGroupFragment(resourceName string, drifted []domain.AttributeDrift) string {
	f, body := newResourceBlock(TypeSecurityGroup, resourceName)

	for _, d := range drifted {
		switch d.Attribute {
		case "ingress", "egress":
			appendComment(body, "%s rules changed: %d declared, %d observed",
				d.Attribute, len(d.DesiredValue.Seq()), len(d.ObservedValue.Seq()))
			writeRuleBlocks(body, d.Attribute, d.ObservedValue)
		case "description", "name":
			appendComment(body, "%s changed from %q", d.Attribute, d.DesiredValue.StringForm())
			body.SetAttributeValue(d.Attribute, ctyValue(d.ObservedValue))
		case "tags":
			body.SetAttributeValue("tags", mapLiteral(d.ObservedValue))
		default:
			appendComment(body, "%s changed: %q -> %q",
				d.Attribute, d.DesiredValue.StringForm(), d.ObservedValue.StringForm())
		}
	}

	return string(f.Bytes())
}

// writeRuleBlocks renders the observed rule set as nested blocks,
// bounded to a preview of the first maxRulePreview entries.
func writeRuleBlocks(body *hclwrite.Body, blockName string, observed domain.AttributeValue) {
	rules := observed.Seq()
	shown := rules
	if len(rules) > maxRulePreview {
		shown = rules[:maxRulePreview]
	}

	for _, rule := range shown {
		entries := rule.Map()
		rb := body.AppendNewBlock(blockName, nil).Body()
		rb.SetAttributeValue("from_port", ctyValue(entries["from_port"]))
		rb.SetAttributeValue("to_port", ctyValue(entries["to_port"]))
		rb.SetAttributeValue("protocol", ctyValue(entries["protocol"]))
		rb.SetAttributeValue("cidr_blocks", listLiteral(entries["cidr_blocks"]))
	}

	if omitted := len(rules) - len(shown); omitted > 0 {
		appendComment(body, "... %d more %s rule(s) omitted", omitted, blockName)
	}
}
