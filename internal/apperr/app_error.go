package apperr

import "github.com/tuanvumaihuynh/tyre-inventory/pkg/zerror"

const (
	ValidationErrorCode  = "VALIDATION_FAILED"
	MalformedBodyCode    = "MALFORMED_BODY"
	NoFieldsToUpdateCode = "NO_FIELDS_TO_UPDATE"
	InvalidTyreIDCode    = "INVALID_TYRE_ID"
	NegativeValueCode    = "NEGATIVE_VALUE"
	TyreNotFoundCode     = "TYRE_NOT_FOUND"
	DuplicateTyreCode    = "DUPLICATE_TYRE"
	StoreUnavailableCode = "STORE_UNAVAILABLE"
)

var (
	ValidationErr       = zerror.NewUnprocessableEntity(ValidationErrorCode, "validation error")
	MalformedBodyErr    = zerror.NewUnprocessableEntity(MalformedBodyCode, "request body is malformed")
	NoFieldsToUpdateErr = zerror.NewBadRequest(NoFieldsToUpdateCode, "no fields to update")
	InvalidTyreIDErr    = zerror.NewBadRequest(InvalidTyreIDCode, "invalid tyre id")
	NegativeValueErr    = zerror.NewUnprocessableEntity(NegativeValueCode, "stock and price must not be negative")
	TyreNotFoundErr     = zerror.NewNotFound(TyreNotFoundCode, "tyre not found")
	DuplicateTyreErr    = zerror.NewConflict(DuplicateTyreCode, "tyre id already exists")
	StoreUnavailableErr = zerror.NewServiceUnavailable(StoreUnavailableCode, "record store unavailable")
)
