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

type describeInstancesClient interface {
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
}

type instanceHandler struct {
	client  describeInstancesClient
	limiter *apiLimiter
}

func newInstanceHandler(client describeInstancesClient, limiter *apiLimiter) *instanceHandler {
	return &instanceHandler{client: client, limiter: limiter}
}

func (h *instanceHandler) ResourceType() string { return resources.TypeInstance }

func (h *instanceHandler) Resolve(ctx context.Context, desired domain.ResourceSnapshot, logger ports.Logger) (*domain.ResourceSnapshot, error) {
	id, err := identifier(desired)
	if err != nil {
		return nil, err
	}
	if err := h.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	out, err := h.client.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []string{id},
	})
	if err != nil {
		return nil, classifyAPIError(ctx, err, "EC2 instance", id)
	}

	instance, ok := firstInstance(out)
	if !ok {
		return nil, errors.Newf(errors.CodeResourceNotFound, "EC2 instance %q not found", id)
	}
	// Terminated instances linger in DescribeInstances responses for a
	// while. Treat them as absent.
	if instance.State != nil && instance.State.Name == ec2types.InstanceStateNameTerminated {
		logger.Debugf(ctx, "instance %s is terminated, treating as absent", id)
		return nil, errors.Newf(errors.CodeResourceNotFound, "EC2 instance %q is terminated", id)
	}

	snap, err := domain.NewSnapshot(resources.TypeInstance, desired.ResourceName, instanceAttributes(instance))
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func firstInstance(out *ec2.DescribeInstancesOutput) (ec2types.Instance, bool) {
	for _, reservation := range out.Reservations {
		for _, instance := range reservation.Instances {
			return instance, true
		}
	}
	return ec2types.Instance{}, false
}

func instanceAttributes(instance ec2types.Instance) map[string]any {
	attrs := map[string]any{
		"id":            awssdk.ToString(instance.InstanceId),
		"instance_type": string(instance.InstanceType),
		"ami":           awssdk.ToString(instance.ImageId),
		"subnet_id":     awssdk.ToString(instance.SubnetId),
	}
	if instance.Placement != nil {
		attrs["availability_zone"] = awssdk.ToString(instance.Placement.AvailabilityZone)
	}

	groupIDs := make([]any, 0, len(instance.SecurityGroups))
	for _, sg := range instance.SecurityGroups {
		if sg.GroupId != nil {
			groupIDs = append(groupIDs, *sg.GroupId)
		}
	}
	attrs["vpc_security_group_ids"] = groupIDs
	attrs["tags"] = tagMap(instance.Tags)
	return attrs
}

func tagMap(tags []ec2types.Tag) map[string]any {
	out := make(map[string]any, len(tags))
	for _, tag := range tags {
		if tag.Key != nil {
			out[*tag.Key] = awssdk.ToString(tag.Value)
		}
	}
	return out
}
