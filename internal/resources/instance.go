package resources

import (
	"github.com/driftsentry/driftsentry/internal/core/domain"
)

const TypeInstance = "aws_instance"

// Attributes AWS reports as null on a healthy instance; absence is not drift.
var instanceBenignNull = []string{
	"get_password_data", "key_name", "hibernation", "placement_partition_number",
	"private_dns", "user_data_replace_on_change", "root_block_device",
	"ebs_optimized", "disable_api_termination", "disable_api_stop",
	"source_dest_check", "ipv6_address_count", "outpost_arn", "security_groups",
	"tenancy", "ephemeral_block_device", "metadata_options", "ebs_block_device",
	"cpu_core_count", "host_id", "private_dns_name_options", "public_dns",
	"instance_lifecycle", "instance_initiated_shutdown_behavior", "tags_all",
	"associate_public_ip_address", "password_data", "capacity_reservation_specification",
	"instance_state", "launch_template", "credit_specification", "ipv6_addresses",
	"cpu_threads_per_core", "monitoring", "primary_network_interface_id",
	"spot_instance_request_id", "enclave_options", "placement_group",
	"secondary_private_ips", "maintenance_options", "network_interface",
	"cpu_options", "iam_instance_profile", "instance_market_options", "state",
}

func instanceSpec() TypeSpec {
	return TypeSpec{
		Type:                 TypeInstance,
		BenignNullAttributes: instanceBenignNull,
		CriticalAttributes:   []string{"instance_type", "ami"},
		ImportPlaceholder:    "<instance-id>",
		Fragment:             instanceFragment,
	}
}

func instanceFragment(resourceName string, drifted []domain.AttributeDrift) string {
	f, body := newResourceBlock(TypeInstance, resourceName)

	for _, d := range drifted {
		switch d.Attribute {
		case "instance_type", "ami":
			appendComment(body, "%s changed from %q", d.Attribute, d.DesiredValue.StringForm())
			body.SetAttributeValue(d.Attribute, ctyValue(d.ObservedValue))
		case "tags":
			appendComment(body, "tags changed")
			appendComment(body, "declared: %s", d.DesiredValue.StringForm())
			appendComment(body, "observed: %s", d.ObservedValue.StringForm())
			body.SetAttributeValue("tags", mapLiteral(d.ObservedValue))
		case "vpc_security_group_ids":
			body.SetAttributeValue("vpc_security_group_ids", listLiteral(d.ObservedValue))
		default:
			appendComment(body, "%s changed: %q -> %q",
				d.Attribute, d.DesiredValue.StringForm(), d.ObservedValue.StringForm())
		}
	}

	appendComment(f.Body(), "Update the declared configuration with the observed values above,")
	appendComment(f.Body(), "or run \"terraform apply\" to revert the live resource to the declared state.")
	return string(f.Bytes())
}
