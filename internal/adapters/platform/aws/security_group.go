package aws

import (
	"context"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/driftsentry/driftsentry/internal/core/domain"
	"github.com/driftsentry/driftsentry/internal/core/ports"
	"github.com/driftsentry/driftsentry/internal/errors"
	"github.com/driftsentry/driftsentry/internal/resources"
)

type describeSecurityGroupsClient interface {
	DescribeSecurityGroups(ctx context.Context, params *ec2.DescribeSecurityGroupsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error)
}

type securityGroupHandler struct {
	client  describeSecurityGroupsClient
	limiter *apiLimiter
}

func newSecurityGroupHandler(client describeSecurityGroupsClient, limiter *apiLimiter) *securityGroupHandler {
	return &securityGroupHandler{client: client, limiter: limiter}
}

func (h *securityGroupHandler) ResourceType() string { return resources.TypeSecurityGroup }

func (h *securityGroupHandler) Resolve(ctx context.Context, desired domain.ResourceSnapshot, logger ports.Logger) (*domain.ResourceSnapshot, error) {
	id, err := identifier(desired)
	if err != nil {
		return nil, err
	}
	if err := h.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	out, err := h.client.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{
		GroupIds: []string{id},
	})
	if err != nil {
		return nil, classifyAPIError(ctx, err, "security group", id)
	}
	if len(out.SecurityGroups) == 0 {
		return nil, errors.Newf(errors.CodeResourceNotFound, "security group %q not found", id)
	}

	group := out.SecurityGroups[0]
	attrs := map[string]any{
		"id":          awssdk.ToString(group.GroupId),
		"name":        awssdk.ToString(group.GroupName),
		"description": awssdk.ToString(group.Description),
		"vpc_id":      awssdk.ToString(group.VpcId),
		"ingress":     ruleList(group.IpPermissions),
		"egress":      ruleList(group.IpPermissionsEgress),
		"tags":        tagMap(group.Tags),
	}

	snap, err := domain.NewSnapshot(resources.TypeSecurityGroup, desired.ResourceName, attrs)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// ruleList flattens IP permissions into the same shape the state file
// uses for ingress and egress rule sets.
func ruleList(permissions []ec2types.IpPermission) []any {
	rules := make([]any, 0, len(permissions))
	for _, perm := range permissions {
		rule := map[string]any{
			"from_port": int(awssdk.ToInt32(perm.FromPort)),
			"to_port":   int(awssdk.ToInt32(perm.ToPort)),
			"protocol":  awssdk.ToString(perm.IpProtocol),
		}

		cidrs := make([]any, 0, len(perm.IpRanges))
		for _, r := range perm.IpRanges {
			if r.CidrIp != nil {
				cidrs = append(cidrs, *r.CidrIp)
			}
		}
		rule["cidr_blocks"] = cidrs

		if len(perm.UserIdGroupPairs) > 0 {
			groups := make([]any, 0, len(perm.UserIdGroupPairs))
			for _, pair := range perm.UserIdGroupPairs {
				if pair.GroupId != nil {
					groups = append(groups, *pair.GroupId)
				}
			}
			rule["security_groups"] = groups
		}
		rules = append(rules, rule)
	}
	return rules
}
