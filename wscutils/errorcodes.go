package wscutils

// Response status values.
const (
	SuccessStatus = "success"
	ErrorStatus   = "error"
)

// Error codes shared by the HTTP layer.
const (
	ErrcodeUnknown                 = "unknown"
	ErrcodeInvalidJson             = "invalid_json"
	ErrcodeInternal                = "internal"
	ErrcodeMissing                 = "missing"
	ErrcodeInvalid                 = "invalid"
	ErrcodeOutOfRange              = "out_of_range"
	ErrcodeTooLong                 = "too_long"
	ErrcodeRequestUserInvalid      = "request_user_invalid"
	ErrcodeTokenMissing            = "token_missing"
	ErrcodeTokenVerificationFailed = "token_verification_failed"
	ErrcodeTokenCacheFailed        = "token_cache_failed"
	ErrcodeRequestTimeout          = "request_timeout"
)

// Message IDs for the error codes above.
const (
	MsgIDInvalidJson             = 1001
	MsgIDMissing                 = 1002
	MsgIDInvalid                 = 1003
	MsgIDOutOfRange              = 1004
	MsgIDTooLong                 = 1005
	MsgIDInternal                = 1010
	MsgIDRequestUserInvalid      = 1030
	MsgIDTokenMissing            = 1031
	MsgIDTokenVerificationFailed = 1032
	MsgIDTokenCacheFailed        = 1033
	MsgIDRequestTimeout          = 1040

	DefaultMsgID = 9999
)
