package errors

// Registered error codes.
const (
	CodeOverflow     = "V001"
	CodeTruncated    = "V002"
	CodeUnknownKind  = "V003"
	CodeInvalidValue = "V004"
	CodeInvalidHex   = "V005"

	CodeConfigNotFound = "V010"
	CodeConfigParse    = "V011"
	CodeConfigInvalid  = "V012"

	CodeIO        = "V020"
	CodeS3        = "V021"
	CodeBadS3URI  = "V022"
	CodeNoInput   = "V030"
	CodeUsage     = "V031"
)

// Template defines a registered error type.
type Template struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	CodeOverflow: {
		Category: CategoryDecode,
		Message:  "Encoded value overflows the target type",
		Detail:   "The encoding carries more significant bits than the target integer type can hold.",
	},
	CodeTruncated: {
		Category: CategoryDecode,
		Message:  "Encoded value is truncated",
		Detail:   "The input ended before a byte with the continuation bit cleared.",
	},
	CodeUnknownKind: {
		Category: CategoryInput,
		Message:  "Unknown integer type",
	},
	CodeInvalidValue: {
		Category: CategoryInput,
		Message:  "Invalid integer value",
	},
	CodeInvalidHex: {
		Category: CategoryInput,
		Message:  "Invalid hexadecimal input",
		Detail:   "Hex input must contain pairs of hexadecimal digits; spaces are ignored.",
	},

	CodeConfigNotFound: {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
	},
	CodeConfigParse: {
		Category: CategoryConfig,
		Message:  "Failed to parse configuration",
	},
	CodeConfigInvalid: {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
	},

	CodeIO: {
		Category: CategoryIO,
		Message:  "I/O failure",
	},
	CodeS3: {
		Category: CategoryIO,
		Message:  "S3 request failed",
	},
	CodeBadS3URI: {
		Category: CategoryInput,
		Message:  "Invalid S3 URI",
		Detail:   "S3 locations are written as s3://bucket/key.",
	},
	CodeNoInput: {
		Category: CategoryCLI,
		Message:  "No input values",
		Detail:   "Neither the arguments nor stdin contained a value to encode.",
	},
	CodeUsage: {
		Category: CategoryCLI,
		Message:  "Invalid command usage",
	},
}
