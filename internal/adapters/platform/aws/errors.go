package aws

import (
	"context"
	stderrs "errors"
	"strings"

	"github.com/aws/smithy-go"

	"github.com/driftsentry/driftsentry/internal/errors"
)

var notFoundErrorCodes = map[string]struct{}{
	"InvalidInstanceID.NotFound":  {},
	"InvalidInstanceID.Malformed": {},
	"InvalidGroup.NotFound":       {},
	"InvalidGroupId.Malformed":    {},
	"NoSuchBucket":                {},
	"NotFound":                    {},
	"ResourceNotFoundException":   {},
}

// classifyAPIError maps an AWS SDK error onto the application error
// taxonomy: not-found, auth, or generic platform failure. Context
// cancellation is surfaced as a platform error so the orchestrator
// aborts the run.
func classifyAPIError(ctx context.Context, err error, resourceLabel, resourceID string) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil || stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return errors.Wrapf(err, errors.CodePlatformAPIError,
			"context canceled while looking up %s %q", resourceLabel, resourceID)
	}

	if isNotFound(err) {
		return errors.Wrapf(err, errors.CodeResourceNotFound,
			"%s %q not found", resourceLabel, resourceID)
	}

	msg := err.Error()
	if strings.Contains(msg, "AuthFailure") ||
		strings.Contains(msg, "UnauthorizedOperation") ||
		strings.Contains(msg, "AccessDenied") ||
		strings.Contains(msg, "ExpiredToken") {
		return errors.WrapUserFacing(err, errors.CodePlatformAuthError,
			"AWS authentication error while looking up "+resourceLabel+" "+resourceID,
			"Check your AWS credentials and IAM permissions.")
	}

	return errors.Wrapf(err, errors.CodePlatformAPIError,
		"failed to look up %s %q", resourceLabel, resourceID)
}

// isNoSuchTagSet reports whether GetBucketTagging failed only because
// the bucket carries no tags at all.
func isNoSuchTagSet(err error) bool {
	var apiErr smithy.APIError
	return stderrs.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchTagSet"
}

func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if stderrs.As(err, &apiErr) {
		if _, ok := notFoundErrorCodes[apiErr.ErrorCode()]; ok {
			return true
		}
	}
	// HeadBucket returns a bare 404 without a structured code.
	msg := err.Error()
	return strings.Contains(msg, "StatusCode: 404") ||
		strings.Contains(msg, "NotFound") ||
		strings.Contains(msg, "not found")
}
