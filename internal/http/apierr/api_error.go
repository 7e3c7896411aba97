package apierr

import (
	"errors"
	"net/http"

	govalidator "github.com/go-playground/validator/v10"

	"github.com/tuanvumaihuynh/tyre-inventory/pkg/validator"
	"github.com/tuanvumaihuynh/tyre-inventory/pkg/zerror"
)

// FieldError describes a single invalid field of a request body.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the error response for the API.
type ErrorResponse struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details *[]FieldError `json:"details,omitempty"`

	// StatusCode is the status code for the error response.
	StatusCode int `json:"-"`
}

func New(err error) ErrorResponse {
	return errorToErrorResponse(err)
}

var InternalServerErr = ErrorResponse{
	Code:       "internalServerError",
	Message:    "an unknown error occurred",
	StatusCode: http.StatusInternalServerError,
}

func errorToErrorResponse(err error) ErrorResponse {
	var zErr zerror.ZError
	if errors.As(err, &zErr) {
		return ErrorResponse{
			Code:       zErr.Code(),
			Message:    zErr.Msg(),
			Details:    fieldErrors(err),
			StatusCode: ZErrorStatusToHTTPStatus(zErr.Status()),
		}
	}

	if details := fieldErrors(err); details != nil {
		return ErrorResponse{
			Code:       "validationError",
			Message:    "validation error",
			Details:    details,
			StatusCode: http.StatusUnprocessableEntity,
		}
	}

	return InternalServerErr
}

// fieldErrors returns the per-field details of a validator error found in the
// chain, or nil when there is none.
func fieldErrors(err error) *[]FieldError {
	var validationErrs govalidator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil
	}

	details := make([]FieldError, len(validationErrs))
	for i, fe := range validationErrs {
		details[i] = FieldError{
			Field:   fe.Field(),
			Message: validator.ValidationErrorMessage(fe),
		}
	}
	return &details
}

func ZErrorStatusToHTTPStatus(status zerror.Status) int {
	switch status {
	case zerror.StatusUnauthorized:
		return http.StatusUnauthorized
	case zerror.StatusForbidden:
		return http.StatusForbidden
	case zerror.StatusNotFound:
		return http.StatusNotFound
	case zerror.StatusUnprocessableEntity:
		return http.StatusUnprocessableEntity
	case zerror.StatusConflict:
		return http.StatusConflict
	case zerror.StatusTooManyRequests:
		return http.StatusTooManyRequests
	case zerror.StatusBadRequest, zerror.StatusValidationFailed:
		return http.StatusBadRequest
	case zerror.StatusUnknown, zerror.StatusInternalServerError:
		return http.StatusInternalServerError
	case zerror.StatusTimeout:
		return http.StatusGatewayTimeout
	case zerror.StatusNotImplemented:
		return http.StatusNotImplemented
	case zerror.StatusBadGateway:
		return http.StatusBadGateway
	case zerror.StatusServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
