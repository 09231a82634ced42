package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"anniversary-timeline/internal/apperr"
	"anniversary-timeline/internal/editor"
	"anniversary-timeline/internal/logger"
	"anniversary-timeline/internal/services"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// ResultResponse answers confirm-gated actions
type ResultResponse struct {
	Result string `json:"result"`
}

// RequestValidator checks request bodies and reports fields by their JSON name
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &RequestValidator{validate: v}
}

// Validate returns an *apperr.ValidationError listing every failing field
func (rv *RequestValidator) Validate(i interface{}) error {
	err := rv.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	verr := &apperr.ValidationError{}
	for _, fe := range fieldErrs {
		verr.Add(fieldPath(fe), fieldMessage(fe))
	}
	return verr
}

// fieldPath drops the struct name from the namespace: "answers[1].text"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at most %s items", fe.Param())
		}
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at least %s items", fe.Param())
		}
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s", fe.Tag())
	}
}

// decodeJSON reads a JSON body into dst and validates it
func (rv *RequestValidator) decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.NewValidationError("body", "Invalid JSON")
	}
	return rv.Validate(dst)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusFor maps an error kind to its HTTP status
func statusFor(err error) int {
	var verr *apperr.ValidationError
	switch {
	case errors.As(err, &verr), errors.Is(err, apperr.ErrValidationFailed):
		return http.StatusBadRequest
	case services.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrConfigurationIncomplete), errors.Is(err, apperr.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, apperr.ErrRemoteOperationFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, log *logger.Logger, err error) {
	status := statusFor(err)
	resp := ErrorResponse{Error: err.Error()}

	var verr *apperr.ValidationError
	if errors.As(err, &verr) {
		resp.Error = "validation failed"
		resp.Fields = verr.Fields
	}
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, resp)
}

func writeNotFound(w http.ResponseWriter, what string) {
	writeJSON(w, http.StatusNotFound, ErrorResponse{Error: what + " not found"})
}

// decisionOf reads the ?confirm= flag of a destructive request
func decisionOf(r *http.Request) editor.Decision {
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	return editor.DecisionOf(confirmed)
}

func writeDecision(w http.ResponseWriter, d editor.Decision) {
	writeJSON(w, http.StatusOK, ResultResponse{Result: d.String()})
}
