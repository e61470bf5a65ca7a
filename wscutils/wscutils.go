package wscutils

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// RequestUserKey is the gin context key holding the authenticated user.
const RequestUserKey = "RequestUser"

// Request represents the standard structure of a request to the web service.
type Request struct {
	Data any `json:"data" binding:"required"`
}

// Response represents the standard structure of a response of the web service.
type Response struct {
	Status   string         `json:"status"`
	Data     any            `json:"data"`
	Messages []ErrorMessage `json:"messages"`
}

// ErrorMessage defines the format of error part of the standard response object.
// Clients render the message for MsgID, substituting Vals.
type ErrorMessage struct {
	MsgID   int      `json:"msgid"`
	ErrCode string   `json:"errcode"`
	Field   string   `json:"field,omitempty"`
	Vals    []string `json:"vals,omitempty"`
}

// errorTypes holds how validation tags and the fixed request errors are reported.
type errorTypes struct {
	mu                 sync.RWMutex
	tagToMsgID         map[string]int
	tagToErrCode       map[string]string
	defaultMsgID       int
	defaultErrCode     string
	msgIDInvalidJSON   int
	errCodeInvalidJSON string
}

var types = &errorTypes{
	tagToMsgID: map[string]int{
		"required": MsgIDMissing,
		"oneof":    MsgIDInvalid,
		"numeric":  MsgIDInvalid,
		"min":      MsgIDOutOfRange,
		"max":      MsgIDOutOfRange,
		"gte":      MsgIDOutOfRange,
		"lte":      MsgIDOutOfRange,
	},
	tagToErrCode: map[string]string{
		"required": ErrcodeMissing,
		"oneof":    ErrcodeInvalid,
		"numeric":  ErrcodeInvalid,
		"min":      ErrcodeOutOfRange,
		"max":      ErrcodeOutOfRange,
		"gte":      ErrcodeOutOfRange,
		"lte":      ErrcodeOutOfRange,
	},
	defaultMsgID:       DefaultMsgID,
	defaultErrCode:     ErrcodeInvalid,
	msgIDInvalidJSON:   MsgIDInvalidJson,
	errCodeInvalidJSON: ErrcodeInvalidJson,
}

// SetValidationTagToMsgIDMap replaces the message IDs used for validator tags.
func SetValidationTagToMsgIDMap(m map[string]int) {
	types.mu.Lock()
	defer types.mu.Unlock()
	types.tagToMsgID = m
}

// SetValidationTagToErrCodeMap replaces the error codes used for validator tags.
func SetValidationTagToErrCodeMap(m map[string]string) {
	types.mu.Lock()
	defer types.mu.Unlock()
	types.tagToErrCode = m
}

// SetDefaultMsgID sets the message ID for validator tags missing from the map.
func SetDefaultMsgID(msgID int) {
	types.mu.Lock()
	defer types.mu.Unlock()
	types.defaultMsgID = msgID
}

// SetDefaultErrCode sets the error code for validator tags missing from the map.
func SetDefaultErrCode(errCode string) {
	types.mu.Lock()
	defer types.mu.Unlock()
	types.defaultErrCode = errCode
}

func SetMsgIDInvalidJSON(msgID int) {
	types.mu.Lock()
	defer types.mu.Unlock()
	types.msgIDInvalidJSON = msgID
}

func SetErrCodeInvalidJSON(errCode string) {
	types.mu.Lock()
	defer types.mu.Unlock()
	types.errCodeInvalidJSON = errCode
}

// ErrorType is one entry of an error types file.
type ErrorType struct {
	MsgID   int    `yaml:"msgid"`
	ErrCode string `yaml:"errcode"`
}

// ErrorTypes is the layout of an error types file:
//
//	validation:
//	  required: {msgid: 1002, errcode: missing}
//	default: {msgid: 9999, errcode: invalid}
//	invalid_json: {msgid: 1001, errcode: invalid_json}
type ErrorTypes struct {
	Validation  map[string]ErrorType `yaml:"validation"`
	Default     *ErrorType           `yaml:"default"`
	InvalidJSON *ErrorType           `yaml:"invalid_json"`
}

// LoadErrorTypes reads an error types file and applies it. Validation tags it
// names are added to, or replace, the current mappings.
func LoadErrorTypes(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read error types: %w", err)
	}

	var et ErrorTypes
	if err := yaml.Unmarshal(data, &et); err != nil {
		return fmt.Errorf("parse error types: %w", err)
	}

	types.mu.Lock()
	defer types.mu.Unlock()

	msgIDs := make(map[string]int, len(types.tagToMsgID)+len(et.Validation))
	errCodes := make(map[string]string, len(types.tagToErrCode)+len(et.Validation))
	for tag, id := range types.tagToMsgID {
		msgIDs[tag] = id
	}
	for tag, code := range types.tagToErrCode {
		errCodes[tag] = code
	}
	for tag, t := range et.Validation {
		msgIDs[tag] = t.MsgID
		errCodes[tag] = t.ErrCode
	}
	types.tagToMsgID = msgIDs
	types.tagToErrCode = errCodes

	if et.Default != nil {
		types.defaultMsgID = et.Default.MsgID
		types.defaultErrCode = et.Default.ErrCode
	}
	if et.InvalidJSON != nil {
		types.msgIDInvalidJSON = et.InvalidJSON.MsgID
		types.errCodeInvalidJSON = et.InvalidJSON.ErrCode
	}
	return nil
}

func validationType(tag string) (int, string) {
	types.mu.RLock()
	defer types.mu.RUnlock()

	msgID, ok := types.tagToMsgID[tag]
	if !ok {
		msgID = types.defaultMsgID
	}
	errCode, ok := types.tagToErrCode[tag]
	if !ok {
		errCode = types.defaultErrCode
	}
	return msgID, errCode
}

func invalidJSONType() (int, string) {
	types.mu.RLock()
	defer types.mu.RUnlock()
	return types.msgIDInvalidJSON, types.errCodeInvalidJSON
}

var validate = validator.New()

// WscValidate validates data according to its `validate` struct tags and
// returns one ErrorMessage per failed field. getVals supplies the request
// specific values for each message and may be nil.
func WscValidate[T any](data T, getVals func(err validator.FieldError) []string) []ErrorMessage {
	var validationErrors []ErrorMessage

	err := validate.Struct(data)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		msgID, errCode := validationType("")
		return []ErrorMessage{BuildErrorMessage(msgID, errCode, "")}
	}

	for _, fieldErr := range validationErrs {
		var vals []string
		if getVals != nil {
			vals = getVals(fieldErr)
		}
		msgID, errCode := validationType(fieldErr.Tag())
		validationErrors = append(validationErrors, BuildErrorMessage(msgID, errCode, fieldErr.Field(), vals...))
	}
	return validationErrors
}

// BuildErrorMessage builds an ErrorMessage. field may be empty.
//
//	BuildErrorMessage(1004, "out_of_range", "n", "1000", "0", "999")
func BuildErrorMessage(msgID int, errCode string, field string, vals ...string) ErrorMessage {
	return ErrorMessage{
		MsgID:   msgID,
		ErrCode: errCode,
		Field:   field,
		Vals:    vals,
	}
}

// NewResponse creates a web service response with the given status, data and messages.
func NewResponse(status string, data any, messages []ErrorMessage) *Response {
	return &Response{
		Status:   status,
		Data:     data,
		Messages: messages,
	}
}

// BindJSON binds a `{"data": ...}` request body into data. On failure it
// writes the invalid JSON error response and returns the bind error.
func BindJSON(c *gin.Context, data any) error {
	req := Request{Data: data}
	if err := c.ShouldBindJSON(&req); err != nil {
		msgID, errCode := invalidJSONType()
		c.JSON(http.StatusBadRequest, NewErrorResponse(msgID, errCode))
		return err
	}
	return nil
}

// NewErrorResponse creates an error response carrying a single message.
func NewErrorResponse(msgID int, errCode string) *Response {
	return NewResponse(ErrorStatus, nil, []ErrorMessage{BuildErrorMessage(msgID, errCode, "")})
}

// NewSuccessResponse creates a success response carrying data.
func NewSuccessResponse(data any) *Response {
	return NewResponse(SuccessStatus, data, nil)
}

// GetRequestUser extracts the authenticated user from the gin context.
func GetRequestUser(c *gin.Context) (string, error) {
	requestUser, exists := c.Get(RequestUserKey)
	if !exists {
		return "", fmt.Errorf("missing_request_user")
	}

	requestUserStr, ok := requestUser.(string)
	if !ok {
		return "", fmt.Errorf("invalid_request_user")
	}

	return requestUserStr, nil
}

// SendSuccessResponse sends a JSON response.
func SendSuccessResponse(c *gin.Context, response *Response) {
	c.JSON(http.StatusOK, response)
}

// SendErrorResponse sends a JSON error response with status 400.
func SendErrorResponse(c *gin.Context, response *Response) {
	c.JSON(http.StatusBadRequest, response)
}

// SendErrorResponseWithStatus sends a JSON error response with the given HTTP status.
func SendErrorResponseWithStatus(c *gin.Context, status int, response *Response) {
	c.AbortWithStatusJSON(status, response)
}
