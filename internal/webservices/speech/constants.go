package speech

// Keys under which the speech handlers find their dependencies in service.Service.
const (
	DepDefaultSystem = "default_system"
	DepEvaluator     = "evaluator"
	DepHistory       = "history"
	DepArchiver      = "archiver"
)

// Error codes and message IDs specific to the speech service.
const (
	ErrMsgIDHistoryDisabled = 1020
	ErrCodeHistoryDisabled  = "history_disabled"
	ErrMsgIDArchiveDisabled = 1021
	ErrCodeArchiveDisabled  = "archive_disabled"
	ErrMsgIDNotANumber      = 1022
	ErrCodeNotANumber       = "not_a_number"
)

// Field names used in error messages.
const (
	FieldNumber     = "number"
	FieldExpression = "expression"
	FieldSystem     = "system"
	FieldTriplet    = "n"
	FieldLimit      = "limit"
)

// Request limits.
const (
	MaxNumberLength     = 64
	MaxExpressionLength = 256
	TripletRange        = "0-999"
)

// Operation names used for logging and metrics.
const (
	OpTriplet    = "triplet"
	OpWords      = "words"
	OpExpression = "expression"
	OpFormat     = "format"
	OpCalculate  = "calculate"
	OpHistory    = "history"
	OpExport     = "export"
)
