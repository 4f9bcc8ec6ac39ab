package aws

import (
	"context"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftsentry/driftsentry/internal/core/domain"
	"github.com/driftsentry/driftsentry/internal/errors"
	"github.com/driftsentry/driftsentry/internal/log"
)

type fakeS3 struct {
	headBucket    func(*s3.HeadBucketInput) (*s3.HeadBucketOutput, error)
	getLocation   func(*s3.GetBucketLocationInput) (*s3.GetBucketLocationOutput, error)
	getVersioning func(*s3.GetBucketVersioningInput) (*s3.GetBucketVersioningOutput, error)
	getTagging    func(*s3.GetBucketTaggingInput) (*s3.GetBucketTaggingOutput, error)
}

func (f *fakeS3) HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return f.headBucket(params)
}

func (f *fakeS3) GetBucketLocation(ctx context.Context, params *s3.GetBucketLocationInput, optFns ...func(*s3.Options)) (*s3.GetBucketLocationOutput, error) {
	return f.getLocation(params)
}

func (f *fakeS3) GetBucketVersioning(ctx context.Context, params *s3.GetBucketVersioningInput, optFns ...func(*s3.Options)) (*s3.GetBucketVersioningOutput, error) {
	return f.getVersioning(params)
}

func (f *fakeS3) GetBucketTagging(ctx context.Context, params *s3.GetBucketTaggingInput, optFns ...func(*s3.Options)) (*s3.GetBucketTaggingOutput, error) {
	return f.getTagging(params)
}

func desiredBucket(t *testing.T, attrs map[string]any) domain.ResourceSnapshot {
	t.Helper()
	snap, err := domain.NewSnapshot("aws_s3_bucket", "assets", attrs)
	require.NoError(t, err)
	return snap
}

func TestBucketHandler_Resolve(t *testing.T) {
	client := &fakeS3{
		headBucket: func(in *s3.HeadBucketInput) (*s3.HeadBucketOutput, error) {
			require.Equal(t, "assets-primary", awssdk.ToString(in.Bucket))
			return &s3.HeadBucketOutput{}, nil
		},
		getLocation: func(in *s3.GetBucketLocationInput) (*s3.GetBucketLocationOutput, error) {
			return &s3.GetBucketLocationOutput{LocationConstraint: s3types.BucketLocationConstraintEuWest1}, nil
		},
		getVersioning: func(in *s3.GetBucketVersioningInput) (*s3.GetBucketVersioningOutput, error) {
			return &s3.GetBucketVersioningOutput{Status: s3types.BucketVersioningStatusEnabled}, nil
		},
		getTagging: func(in *s3.GetBucketTaggingInput) (*s3.GetBucketTaggingOutput, error) {
			return &s3.GetBucketTaggingOutput{TagSet: []s3types.Tag{
				{Key: awssdk.String("Team"), Value: awssdk.String("platform")},
			}}, nil
		},
	}

	handler := newBucketHandler(client, "us-east-1", testLimiter())
	observed, err := handler.Resolve(context.Background(), desiredBucket(t, map[string]any{"bucket": "assets-primary"}), log.NewNop())
	require.NoError(t, err)
	require.NotNil(t, observed)

	assert.Equal(t, "assets-primary", observed.Attribute("bucket").Str())
	assert.Equal(t, "eu-west-1", observed.Attribute("region").Str())
	assert.Equal(t, "platform", observed.Attribute("tags").Map()["Team"].Str())

	versioning := observed.Attribute("versioning").Seq()
	require.Len(t, versioning, 1)
	assert.True(t, versioning[0].Map()["enabled"].Boolean())
}

func TestBucketHandler_Absent(t *testing.T) {
	client := &fakeS3{
		headBucket: func(in *s3.HeadBucketInput) (*s3.HeadBucketOutput, error) {
			return nil, &smithy.GenericAPIError{Code: "NotFound", Message: "Not Found"}
		},
	}

	handler := newBucketHandler(client, "us-east-1", testLimiter())
	_, err := handler.Resolve(context.Background(), desiredBucket(t, map[string]any{"bucket": "ghost"}), log.NewNop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeResourceNotFound))
}

func TestBucketHandler_NoTagsIsEmptyMap(t *testing.T) {
	client := &fakeS3{
		headBucket: func(in *s3.HeadBucketInput) (*s3.HeadBucketOutput, error) {
			return &s3.HeadBucketOutput{}, nil
		},
		getLocation: func(in *s3.GetBucketLocationInput) (*s3.GetBucketLocationOutput, error) {
			// Empty constraint is how the API spells us-east-1.
			return &s3.GetBucketLocationOutput{}, nil
		},
		getVersioning: func(in *s3.GetBucketVersioningInput) (*s3.GetBucketVersioningOutput, error) {
			return &s3.GetBucketVersioningOutput{}, nil
		},
		getTagging: func(in *s3.GetBucketTaggingInput) (*s3.GetBucketTaggingOutput, error) {
			return nil, &smithy.GenericAPIError{Code: "NoSuchTagSet"}
		},
	}

	handler := newBucketHandler(client, "us-east-1", testLimiter())
	observed, err := handler.Resolve(context.Background(), desiredBucket(t, map[string]any{"bucket": "untagged"}), log.NewNop())
	require.NoError(t, err)
	require.NotNil(t, observed)

	assert.Equal(t, "us-east-1", observed.Attribute("region").Str())
	assert.Equal(t, domain.KindMapping, observed.Attribute("tags").Kind())
	assert.Empty(t, observed.Attribute("tags").Map())

	versioning := observed.Attribute("versioning").Seq()
	require.Len(t, versioning, 1)
	assert.False(t, versioning[0].Map()["enabled"].Boolean())
}
