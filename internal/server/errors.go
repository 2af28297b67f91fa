package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	crisisdomain "github.com/smallbiznis/sathi/internal/crisis/domain"
	dispatchdomain "github.com/smallbiznis/sathi/internal/dispatch/domain"
	feedbackdomain "github.com/smallbiznis/sathi/internal/feedback/domain"
	matchingdomain "github.com/smallbiznis/sathi/internal/matching/domain"
	resourcedomain "github.com/smallbiznis/sathi/internal/resource/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Code    string            `json:"code,omitempty"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrRateLimited        = errors.New("rate_limited")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictMessage(err),
			Code:    conflictCode(err),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
			Code:    notFoundCode(err),
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many dispatch attempts for this resource",
		}
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isCrisisValidationError(err),
		isResourceValidationError(err),
		isMatchingValidationError(err),
		isDispatchValidationError(err),
		isFeedbackValidationError(err):
		return true
	default:
		return false
	}
}

func isCrisisValidationError(err error) bool {
	switch {
	case errors.Is(err, crisisdomain.ErrInvalidID),
		errors.Is(err, crisisdomain.ErrInvalidRawText),
		errors.Is(err, crisisdomain.ErrInvalidNeedType),
		errors.Is(err, crisisdomain.ErrInvalidQuantity),
		errors.Is(err, crisisdomain.ErrInvalidLocation),
		errors.Is(err, crisisdomain.ErrInvalidUrgencyScore),
		errors.Is(err, crisisdomain.ErrInvalidUrgencyLevel),
		errors.Is(err, crisisdomain.ErrInvalidStatus),
		errors.Is(err, crisisdomain.ErrInvalidTransition),
		errors.Is(err, crisisdomain.ErrInvalidLimit):
		return true
	default:
		return false
	}
}

func isResourceValidationError(err error) bool {
	switch {
	case errors.Is(err, resourcedomain.ErrInvalidID),
		errors.Is(err, resourcedomain.ErrInvalidType),
		errors.Is(err, resourcedomain.ErrInvalidStatus),
		errors.Is(err, resourcedomain.ErrInvalidProviderName),
		errors.Is(err, resourcedomain.ErrInvalidLocationName),
		errors.Is(err, resourcedomain.ErrInvalidLatitude),
		errors.Is(err, resourcedomain.ErrInvalidLongitude),
		errors.Is(err, resourcedomain.ErrInvalidQuantity):
		return true
	default:
		return false
	}
}

func isMatchingValidationError(err error) bool {
	switch {
	case errors.Is(err, matchingdomain.ErrMissingLocation),
		errors.Is(err, matchingdomain.ErrInvalidLocation),
		errors.Is(err, matchingdomain.ErrMissingNeedType),
		errors.Is(err, matchingdomain.ErrInvalidNeedType),
		errors.Is(err, matchingdomain.ErrMissingUrgencyTier),
		errors.Is(err, matchingdomain.ErrInvalidTopN),
		errors.Is(err, matchingdomain.ErrInvalidRequestID):
		return true
	default:
		return false
	}
}

func isDispatchValidationError(err error) bool {
	switch {
	case errors.Is(err, dispatchdomain.ErrInvalidID),
		errors.Is(err, dispatchdomain.ErrInvalidQuantity),
		errors.Is(err, dispatchdomain.ErrInvalidNote),
		errors.Is(err, dispatchdomain.ErrRequestClosed):
		return true
	default:
		return false
	}
}

func isFeedbackValidationError(err error) bool {
	switch {
	case errors.Is(err, feedbackdomain.ErrInvalidID),
		errors.Is(err, feedbackdomain.ErrMissingIsCorrect),
		errors.Is(err, feedbackdomain.ErrInvalidCorrectedText),
		errors.Is(err, feedbackdomain.ErrInvalidExtractionRating),
		errors.Is(err, feedbackdomain.ErrInvalidMatchingRating),
		errors.Is(err, feedbackdomain.ErrInvalidComment),
		errors.Is(err, feedbackdomain.ErrMissingFeedback):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, dispatchdomain.ErrInsufficientQuantity) ||
		errors.Is(err, dispatchdomain.ErrConflict)
}

func conflictCode(err error) string {
	switch {
	case errors.Is(err, dispatchdomain.ErrInsufficientQuantity):
		return dispatchdomain.ErrInsufficientQuantity.Error()
	case errors.Is(err, dispatchdomain.ErrConflict):
		return dispatchdomain.ErrConflict.Error()
	default:
		return ""
	}
}

func conflictMessage(err error) string {
	if errors.Is(err, dispatchdomain.ErrInsufficientQuantity) {
		return "resource has insufficient quantity; retry with a smaller quantity or another resource"
	}
	return "conflict"
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, crisisdomain.ErrNotFound),
		errors.Is(err, resourcedomain.ErrNotFound),
		errors.Is(err, matchingdomain.ErrRequestNotFound),
		errors.Is(err, dispatchdomain.ErrRequestNotFound),
		errors.Is(err, dispatchdomain.ErrResourceNotFound),
		errors.Is(err, feedbackdomain.ErrRequestNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func notFoundCode(err error) string {
	switch {
	case errors.Is(err, dispatchdomain.ErrRequestNotFound),
		errors.Is(err, matchingdomain.ErrRequestNotFound),
		errors.Is(err, feedbackdomain.ErrRequestNotFound):
		return "request_not_found"
	case errors.Is(err, dispatchdomain.ErrResourceNotFound):
		return "resource_not_found"
	default:
		return ""
	}
}

func validationErrorField(code string) string {
	switch {
	case code == "invalid_request":
		return "request"
	case strings.HasPrefix(code, "invalid_"):
		return strings.TrimPrefix(code, "invalid_")
	case strings.HasPrefix(code, "missing_"):
		return strings.TrimPrefix(code, "missing_")
	default:
		return ""
	}
}

func validationErrorMessage(code string) string {
	switch {
	case code == "invalid_request":
		return "invalid request"
	case code == "request_closed":
		return "request is resolved or invalid"
	case strings.HasPrefix(code, "missing_"):
		return "value is required"
	default:
		return "invalid value"
	}
}

// classifyErrorForLog gives the access log a type and code without the
// response body.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	code := payload.Code
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	if status >= http.StatusInternalServerError && code == "" {
		code = "internal_error"
	}
	return payload.Type, code
}
