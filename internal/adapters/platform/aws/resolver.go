// Package aws resolves the observed state of declared resources by
// querying the AWS APIs directly, one point lookup per resource.
package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/driftsentry/driftsentry/internal/core/domain"
	"github.com/driftsentry/driftsentry/internal/core/ports"
	"github.com/driftsentry/driftsentry/internal/errors"
	"github.com/driftsentry/driftsentry/internal/resources"
)

// resourceHandler performs the live lookup for one resource type.
// A nil snapshot with a nil error means the resource was confirmed
// absent on the platform.
type resourceHandler interface {
	ResourceType() string
	Resolve(ctx context.Context, desired domain.ResourceSnapshot, logger ports.Logger) (*domain.ResourceSnapshot, error)
}

type Options struct {
	Region  string
	Profile string
	MaxRPS  int
}

// Resolver implements ports.LiveResolver for AWS.
type Resolver struct {
	handlers map[string]resourceHandler
	limiter  *apiLimiter
	logger   ports.Logger
}

var _ ports.LiveResolver = (*Resolver)(nil)

func NewResolver(ctx context.Context, opts Options, logger ports.Logger) (*Resolver, error) {
	if logger == nil {
		return nil, errors.New(errors.CodeConfigValidation, "logger cannot be nil for AWS resolver")
	}

	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	if opts.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(opts.Profile))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConfigValidation, "failed to load AWS configuration")
	}

	r := &Resolver{
		handlers: make(map[string]resourceHandler),
		limiter:  newAPILimiter(opts.MaxRPS, logger),
		logger:   logger.WithFields(map[string]any{"platform": "aws", "region": cfg.Region}),
	}
	if err := r.verifyCredentials(ctx, cfg); err != nil {
		return nil, err
	}

	ec2Client := ec2.NewFromConfig(cfg)
	r.register(newInstanceHandler(ec2Client, r.limiter))
	r.register(newSecurityGroupHandler(ec2Client, r.limiter))
	r.register(newBucketHandler(s3.NewFromConfig(cfg), cfg.Region, r.limiter))
	return r, nil
}

func (r *Resolver) register(handler resourceHandler) {
	r.handlers[handler.ResourceType()] = handler
}

func (r *Resolver) Type() string { return "aws" }

func (r *Resolver) verifyCredentials(ctx context.Context, cfg aws.Config) error {
	stsClient := sts.NewFromConfig(cfg)
	ident, err := stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return errors.WrapUserFacing(err, errors.CodePlatformAuthError,
			"failed to verify AWS credentials",
			"Check your AWS credentials, profile, and region configuration.")
	}
	if ident.Account != nil {
		r.logger.Debugf(ctx, "authenticated against AWS account %s", *ident.Account)
	}
	return nil
}

// Resolve looks up the observed counterpart of the desired snapshot.
// Resource types without a registered handler fail with
// CodeUnsupportedResourceKind so the caller can skip them.
func (r *Resolver) Resolve(ctx context.Context, desired domain.ResourceSnapshot) (*domain.ResourceSnapshot, error) {
	handler, ok := r.handlers[desired.ResourceType]
	if !ok {
		return nil, errors.Newf(errors.CodeUnsupportedResourceKind,
			"resource type %q is not supported by the AWS resolver", desired.ResourceType)
	}

	logger := r.logger.WithFields(map[string]any{"resource": desired.Address()})
	observed, err := handler.Resolve(ctx, desired, logger)
	if err != nil {
		if errors.Is(err, errors.CodeResourceNotFound) {
			logger.Debugf(ctx, "resource confirmed absent on platform")
			return nil, nil
		}
		return nil, err
	}
	return observed, nil
}

// identifier picks the platform lookup key for a desired snapshot. The
// state records the remote identifier under "id" once a resource has
// been created.
func identifier(desired domain.ResourceSnapshot) (string, error) {
	id := desired.Attribute("id")
	if id.Kind() == domain.KindString && id.Str() != "" {
		return id.Str(), nil
	}
	if desired.ResourceType == resources.TypeBucket {
		if bucket := desired.Attribute("bucket"); bucket.Kind() == domain.KindString && bucket.Str() != "" {
			return bucket.Str(), nil
		}
	}
	return "", errors.Newf(errors.CodeMalformedSnapshot,
		"snapshot %s has no usable platform identifier", desired.Address())
}
