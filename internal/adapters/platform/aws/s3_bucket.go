package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/driftsentry/driftsentry/internal/core/domain"
	"github.com/driftsentry/driftsentry/internal/core/ports"
	"github.com/driftsentry/driftsentry/internal/resources"
)

type s3Client interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	GetBucketLocation(ctx context.Context, params *s3.GetBucketLocationInput, optFns ...func(*s3.Options)) (*s3.GetBucketLocationOutput, error)
	GetBucketVersioning(ctx context.Context, params *s3.GetBucketVersioningInput, optFns ...func(*s3.Options)) (*s3.GetBucketVersioningOutput, error)
	GetBucketTagging(ctx context.Context, params *s3.GetBucketTaggingInput, optFns ...func(*s3.Options)) (*s3.GetBucketTaggingOutput, error)
}

type bucketHandler struct {
	client        s3Client
	defaultRegion string
	limiter       *apiLimiter
}

func newBucketHandler(client s3Client, defaultRegion string, limiter *apiLimiter) *bucketHandler {
	return &bucketHandler{client: client, defaultRegion: defaultRegion, limiter: limiter}
}

func (h *bucketHandler) ResourceType() string { return resources.TypeBucket }

func (h *bucketHandler) Resolve(ctx context.Context, desired domain.ResourceSnapshot, logger ports.Logger) (*domain.ResourceSnapshot, error) {
	name, err := identifier(desired)
	if err != nil {
		return nil, err
	}
	if err := h.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	if _, err := h.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: &name}); err != nil {
		return nil, classifyAPIError(ctx, err, "S3 bucket", name)
	}

	attrs := map[string]any{
		"id":     name,
		"bucket": name,
		"region": h.bucketRegion(ctx, name, logger),
	}

	if err := h.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	versioning, err := h.client.GetBucketVersioning(ctx, &s3.GetBucketVersioningInput{Bucket: &name})
	if err != nil {
		return nil, classifyAPIError(ctx, err, "S3 bucket versioning for", name)
	}
	attrs["versioning"] = []any{map[string]any{
		"enabled":    versioning.Status == s3types.BucketVersioningStatusEnabled,
		"mfa_delete": versioning.MFADelete == s3types.MFADeleteStatusEnabled,
	}}

	if err := h.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	tagging, err := h.client.GetBucketTagging(ctx, &s3.GetBucketTaggingInput{Bucket: &name})
	switch {
	case err == nil:
		tags := make(map[string]any, len(tagging.TagSet))
		for _, tag := range tagging.TagSet {
			if tag.Key != nil && tag.Value != nil {
				tags[*tag.Key] = *tag.Value
			}
		}
		attrs["tags"] = tags
	case isNoSuchTagSet(err):
		attrs["tags"] = map[string]any{}
	default:
		return nil, classifyAPIError(ctx, err, "S3 bucket tagging for", name)
	}

	snap, err := domain.NewSnapshot(resources.TypeBucket, desired.ResourceName, attrs)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// bucketRegion is best effort. GetBucketLocation needs s3:GetBucketLocation
// and some policies omit it, so failures fall back to the client region.
func (h *bucketHandler) bucketRegion(ctx context.Context, name string, logger ports.Logger) string {
	if err := h.limiter.Wait(ctx); err != nil {
		return h.defaultRegion
	}
	loc, err := h.client.GetBucketLocation(ctx, &s3.GetBucketLocationInput{Bucket: &name})
	if err != nil {
		logger.Debugf(ctx, "could not read bucket location for %s: %v", name, err)
		return h.defaultRegion
	}
	// us-east-1 is reported as an empty constraint.
	if loc.LocationConstraint == "" {
		return "us-east-1"
	}
	return string(loc.LocationConstraint)
}
