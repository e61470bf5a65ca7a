// Package speech serves the number-to-words conversions over HTTP.
package speech

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/remiges-tech/logharbour/logharbour"
	"github.com/remiges-tech/numspeak/calc"
	"github.com/remiges-tech/numspeak/history"
	"github.com/remiges-tech/numspeak/metrics"
	"github.com/remiges-tech/numspeak/numwords"
	"github.com/remiges-tech/numspeak/service"
	"github.com/remiges-tech/numspeak/transcript"
	"github.com/remiges-tech/numspeak/wscutils"
)

// NumberRequest is the body of POST /v1/words and POST /v1/format.
type NumberRequest struct {
	Number string `json:"number" validate:"required,max=64"`
	System string `json:"system" validate:"omitempty,oneof=international indian"`
}

// ExpressionRequest is the body of POST /v1/expression and POST /v1/calculate.
type ExpressionRequest struct {
	Expression string `json:"expression" validate:"max=256"`
	System     string `json:"system" validate:"omitempty,oneof=international indian"`
}

type tripletParams struct {
	N int `validate:"min=0,max=999"`
}

type historyParams struct {
	Limit int `validate:"min=0,max=100"`
}

type WordsResponse struct {
	Words  string `json:"words"`
	System string `json:"system"`
}

type ExpressionResponse struct {
	Words   string `json:"words"`
	Display string `json:"display"`
	System  string `json:"system"`
}

type FormatResponse struct {
	Formatted string `json:"formatted"`
	System    string `json:"system"`
}

type CalculateResponse struct {
	transcript.Transcript
	System string `json:"system"`
}

type HistoryResponse struct {
	Entries []history.Entry `json:"entries"`
}

type ExportResponse struct {
	Object  string `json:"object"`
	Entries int    `json:"entries"`
}

// Register adds the speech routes under /v1.
func Register(s *service.Service) error {
	v1 := s.CreateGroup("/v1")
	routes := []struct {
		method  string
		path    string
		handler service.HandlerFunc
	}{
		{http.MethodGet, "/triplet/:n", HandleTriplet},
		{http.MethodPost, "/words", HandleWords},
		{http.MethodPost, "/expression", HandleExpression},
		{http.MethodPost, "/format", HandleFormat},
		{http.MethodPost, "/calculate", HandleCalculate},
		{http.MethodGet, "/history", HandleHistory},
		{http.MethodPost, "/history/export", HandleExport},
	}
	for _, r := range routes {
		if err := v1.RegisterRoute(r.method, r.path, r.handler); err != nil {
			return err
		}
	}
	return nil
}

// HandleTriplet handles GET /v1/triplet/:n.
func HandleTriplet(c *gin.Context, s *service.Service) {
	start := time.Now()
	raw := c.Param("n")

	n, err := strconv.Atoi(raw)
	if err != nil {
		sendValidationErrors(c, []wscutils.ErrorMessage{
			wscutils.BuildErrorMessage(ErrMsgIDNotANumber, ErrCodeNotANumber, FieldTriplet, raw),
		})
		return
	}
	if errs := validateRequest(tripletParams{N: n}, func(validator.FieldError) []string {
		return []string{raw, TripletRange}
	}); len(errs) > 0 {
		sendValidationErrors(c, errs)
		return
	}

	words := numwords.SpellTriplet(n)
	logger(s, OpTriplet).Debug0().LogActivity("triplet spelled", map[string]any{"n": n})
	metrics.ObserveConversion(s.Metrics, OpTriplet, "", start)
	wscutils.SendSuccessResponse(c, wscutils.NewSuccessResponse(WordsResponse{Words: words}))
}

// HandleWords handles POST /v1/words.
func HandleWords(c *gin.Context, s *service.Service) {
	start := time.Now()

	var req NumberRequest
	if err := wscutils.BindJSON(c, &req); err != nil {
		return
	}
	if errs := validateNumber(req); len(errs) > 0 {
		sendValidationErrors(c, errs)
		return
	}
	system, ok := resolveSystem(c, s, req.System)
	if !ok {
		return
	}

	words := numwords.NumberToWords(req.Number, system)
	if words == "" {
		sendValidationErrors(c, []wscutils.ErrorMessage{
			wscutils.BuildErrorMessage(ErrMsgIDNotANumber, ErrCodeNotANumber, FieldNumber, req.Number),
		})
		return
	}

	logger(s, OpWords).Debug0().LogActivity("number spelled", map[string]any{"number": req.Number, "system": system.String()})
	metrics.ObserveConversion(s.Metrics, OpWords, system.String(), start)
	wscutils.SendSuccessResponse(c, wscutils.NewSuccessResponse(WordsResponse{Words: words, System: system.String()}))
}

// HandleExpression handles POST /v1/expression. The expression is spelled as
// typed and not evaluated.
func HandleExpression(c *gin.Context, s *service.Service) {
	start := time.Now()

	var req ExpressionRequest
	if err := wscutils.BindJSON(c, &req); err != nil {
		return
	}
	if errs := validateExpression(req); len(errs) > 0 {
		sendValidationErrors(c, errs)
		return
	}
	system, ok := resolveSystem(c, s, req.System)
	if !ok {
		return
	}

	live := transcript.Live(req.Expression, system)
	metrics.ObserveConversion(s.Metrics, OpExpression, system.String(), start)
	wscutils.SendSuccessResponse(c, wscutils.NewSuccessResponse(ExpressionResponse{
		Words:   live.Words,
		Display: live.Display,
		System:  system.String(),
	}))
}

// HandleFormat handles POST /v1/format.
func HandleFormat(c *gin.Context, s *service.Service) {
	start := time.Now()

	var req NumberRequest
	if err := wscutils.BindJSON(c, &req); err != nil {
		return
	}
	if errs := validateNumber(req); len(errs) > 0 {
		sendValidationErrors(c, errs)
		return
	}
	system, ok := resolveSystem(c, s, req.System)
	if !ok {
		return
	}

	formatted := numwords.FormatNumberWithCommas(req.Number, system)
	metrics.ObserveConversion(s.Metrics, OpFormat, system.String(), start)
	wscutils.SendSuccessResponse(c, wscutils.NewSuccessResponse(FormatResponse{Formatted: formatted, System: system.String()}))
}

// HandleCalculate handles POST /v1/calculate. Successfully evaluated
// expressions are added to the history when a store is configured.
func HandleCalculate(c *gin.Context, s *service.Service) {
	start := time.Now()

	var req ExpressionRequest
	if err := wscutils.BindJSON(c, &req); err != nil {
		return
	}
	if errs := validateExpression(req); len(errs) > 0 {
		sendValidationErrors(c, errs)
		return
	}
	system, ok := resolveSystem(c, s, req.System)
	if !ok {
		return
	}

	ev, ok := service.Dependency[transcript.Evaluator](s, DepEvaluator)
	if !ok {
		ev = calc.Evaluator{}
	}
	t := transcript.Build(req.Expression, system, ev)
	lh := logger(s, OpCalculate)

	if t.Failed {
		metrics.ObserveEvaluationFailure(s.Metrics)
		lh.WithStatus(logharbour.Failure).Info().LogActivity("evaluation failed", map[string]any{"expression": t.Expression})
	}

	if store, ok := service.Dependency[history.Store](s, DepHistory); ok && t.Evaluated && !t.Failed {
		user, _ := wscutils.GetRequestUser(c)
		if err := store.Add(c.Request.Context(), history.NewEntry(t, system.String(), user)); err != nil {
			lh.Error(err).LogActivity("history entry not saved", map[string]any{"expression": t.Expression})
		}
	}

	metrics.ObserveConversion(s.Metrics, OpCalculate, system.String(), start)
	wscutils.SendSuccessResponse(c, wscutils.NewSuccessResponse(CalculateResponse{Transcript: t, System: system.String()}))
}

// HandleHistory handles GET /v1/history?limit=n.
func HandleHistory(c *gin.Context, s *service.Service) {
	store, ok := service.Dependency[history.Store](s, DepHistory)
	if !ok {
		wscutils.SendErrorResponse(c, wscutils.NewErrorResponse(ErrMsgIDHistoryDisabled, ErrCodeHistoryDisabled))
		return
	}

	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	entries, err := store.Recent(c.Request.Context(), limit)
	if err != nil {
		logger(s, OpHistory).Error(err).LogActivity("history read failed", nil)
		sendInternalError(c)
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	wscutils.SendSuccessResponse(c, wscutils.NewSuccessResponse(HistoryResponse{Entries: entries}))
}

// HandleExport handles POST /v1/history/export?limit=n.
func HandleExport(c *gin.Context, s *service.Service) {
	archiver, ok := service.Dependency[*history.Archiver](s, DepArchiver)
	if !ok {
		wscutils.SendErrorResponse(c, wscutils.NewErrorResponse(ErrMsgIDArchiveDisabled, ErrCodeArchiveDisabled))
		return
	}

	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	name, n, err := archiver.Export(c.Request.Context(), limit)
	if errors.Is(err, history.ErrNoArchive) {
		wscutils.SendErrorResponse(c, wscutils.NewErrorResponse(ErrMsgIDArchiveDisabled, ErrCodeArchiveDisabled))
		return
	}
	if err != nil {
		logger(s, OpExport).Error(err).LogActivity("history export failed", nil)
		sendInternalError(c)
		return
	}

	logger(s, OpExport).Info().LogActivity("history exported", map[string]any{"object": name, "entries": n})
	wscutils.SendSuccessResponse(c, wscutils.NewSuccessResponse(ExportResponse{Object: name, Entries: n}))
}

// validateRequest reports failed fields under their lower-cased names, which
// match the JSON and query parameter names of the speech requests.
func validateRequest[T any](data T, getVals func(validator.FieldError) []string) []wscutils.ErrorMessage {
	errs := wscutils.WscValidate(data, getVals)
	for i := range errs {
		errs[i].Field = strings.ToLower(errs[i].Field)
	}
	return errs
}

func validateNumber(req NumberRequest) []wscutils.ErrorMessage {
	return validateRequest(req, func(err validator.FieldError) []string {
		switch err.Field() {
		case "Number":
			if err.Tag() == "max" {
				return []string{strconv.Itoa(MaxNumberLength)}
			}
			return nil
		case "System":
			return []string{req.System}
		}
		return nil
	})
}

func validateExpression(req ExpressionRequest) []wscutils.ErrorMessage {
	return validateRequest(req, func(err validator.FieldError) []string {
		switch err.Field() {
		case "Expression":
			return []string{strconv.Itoa(MaxExpressionLength)}
		case "System":
			return []string{req.System}
		}
		return nil
	})
}

// resolveSystem picks the number system from the request body, then the
// system query parameter, then Accept-Language, then the configured default.
// It writes the error response and returns false for an unknown name.
func resolveSystem(c *gin.Context, s *service.Service, bodySystem string) (numwords.System, bool) {
	if bodySystem != "" {
		system, _ := numwords.ParseSystem(bodySystem)
		return system, true
	}

	if q := c.Query(FieldSystem); q != "" {
		system, ok := numwords.ParseSystem(q)
		if !ok {
			sendValidationErrors(c, []wscutils.ErrorMessage{
				wscutils.BuildErrorMessage(wscutils.MsgIDInvalid, wscutils.ErrcodeInvalid, FieldSystem, q),
			})
			return system, false
		}
		return system, true
	}

	if system, ok := SystemFromAcceptLanguage(c.GetHeader("Accept-Language")); ok {
		return system, true
	}

	if setting, ok := service.Dependency[*SystemSetting](s, DepDefaultSystem); ok {
		return setting.Get(), true
	}
	return numwords.International, true
}

func parseLimit(c *gin.Context) (int, bool) {
	raw := c.Query(FieldLimit)
	if raw == "" {
		return history.DefaultLimit, true
	}

	limit, err := strconv.Atoi(raw)
	if err != nil {
		sendValidationErrors(c, []wscutils.ErrorMessage{
			wscutils.BuildErrorMessage(ErrMsgIDNotANumber, ErrCodeNotANumber, FieldLimit, raw),
		})
		return 0, false
	}
	if errs := validateRequest(historyParams{Limit: limit}, func(validator.FieldError) []string {
		return []string{raw, strconv.Itoa(history.MaxLimit)}
	}); len(errs) > 0 {
		sendValidationErrors(c, errs)
		return 0, false
	}
	return history.ClampLimit(limit), true
}

func sendValidationErrors(c *gin.Context, errs []wscutils.ErrorMessage) {
	wscutils.SendErrorResponse(c, wscutils.NewResponse(wscutils.ErrorStatus, nil, errs))
}

func sendInternalError(c *gin.Context) {
	wscutils.SendErrorResponseWithStatus(c, http.StatusInternalServerError,
		wscutils.NewErrorResponse(wscutils.MsgIDInternal, wscutils.ErrcodeInternal))
}

func logger(s *service.Service, op string) *logharbour.Logger {
	return s.LogHarbour.WithModule("speech").WithOp(op)
}
