package errors

type Code string

const (
	CodeUnknown                 Code = "UNKNOWN"
	CodeInternal                Code = "INTERNAL_ERROR"
	CodeConfigValidation        Code = "CONFIG_VALIDATION_ERROR"
	CodeConfigReadError         Code = "CONFIG_READ_ERROR"
	CodeConfigParseError        Code = "CONFIG_PARSE_ERROR"
	CodeStateReadError          Code = "STATE_READ_ERROR"
	CodeStateParseError         Code = "STATE_PARSE_ERROR"
	CodeUnsupportedStateVersion Code = "UNSUPPORTED_STATE_VERSION"
	CodeMalformedSnapshot       Code = "MALFORMED_SNAPSHOT"
	CodePlatformAPIError        Code = "PLATFORM_API_ERROR"
	CodePlatformAuthError       Code = "PLATFORM_AUTH_ERROR"
	CodeResourceNotFound        Code = "RESOURCE_NOT_FOUND"
	CodeUnsupportedResourceKind Code = "UNSUPPORTED_RESOURCE_KIND"
	CodeFixWriteError           Code = "FIX_WRITE_ERROR"
	CodeReportError             Code = "REPORT_ERROR"
)

func (c Code) String() string {
	return string(c)
}
