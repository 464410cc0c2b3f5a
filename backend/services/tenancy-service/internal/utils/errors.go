package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/stayspot/mono-repo/backend/shared/go-utils"
)

/*
   Domain error taxonomy for the tenancy service. Controllers never inspect
   these directly; they go through ToAppError.
   Services and tests can do: if errors.Is(err, ErrAlreadyTransitioned) { ... }
*/

type ValidationReason string

const (
	ReasonUnauthorized      ValidationReason = "unauthorized"
	ReasonInvalidTransition ValidationReason = "invalid_transition"
	ReasonInvalidPayload    ValidationReason = "invalid_payload"
	ReasonUnitUnavailable   ValidationReason = "unit_unavailable"
	ReasonAmountMismatch    ValidationReason = "amount_mismatch"
	ReasonInvalidOverride   ValidationReason = "invalid_override"
)

type ConflictReason string

const (
	ConflictAlreadyTransitioned   ConflictReason = "already_transitioned"
	ConflictUnitAlreadyControlled ConflictReason = "unit_already_controlled"
	ConflictAlreadySettled        ConflictReason = "already_settled"
	ConflictDuplicateObligation   ConflictReason = "duplicate_obligation"
)

type AdapterErrorKind string

const (
	AdapterSignatureMismatch AdapterErrorKind = "signature_mismatch"
	AdapterStatusIncomplete  AdapterErrorKind = "status_incomplete"
	AdapterNetworkError      AdapterErrorKind = "network_error"
)

// Match targets for errors.Is.
var (
	ErrUnauthorized      = &ValidationError{Reason: ReasonUnauthorized}
	ErrInvalidTransition = &ValidationError{Reason: ReasonInvalidTransition}
	ErrInvalidPayload    = &ValidationError{Reason: ReasonInvalidPayload}
	ErrUnitUnavailable   = &ValidationError{Reason: ReasonUnitUnavailable}
	ErrAmountMismatch    = &ValidationError{Reason: ReasonAmountMismatch}
	ErrInvalidOverride   = &ValidationError{Reason: ReasonInvalidOverride}

	ErrAlreadyTransitioned   = &ConflictError{Reason: ConflictAlreadyTransitioned}
	ErrUnitAlreadyControlled = &ConflictError{Reason: ConflictUnitAlreadyControlled}
	ErrAlreadySettled        = &ConflictError{Reason: ConflictAlreadySettled}

	ErrSignatureMismatch = &ExternalAdapterError{Kind: AdapterSignatureMismatch}
	ErrStatusIncomplete  = &ExternalAdapterError{Kind: AdapterStatusIncomplete}
	ErrNetwork           = &ExternalAdapterError{Kind: AdapterNetworkError}
)

type ValidationError struct {
	Reason  ValidationReason
	Message string
}

func NewValidationError(reason ValidationReason, format string, args ...any) error {
	return &ValidationError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return string(e.Reason)
	}
	return string(e.Reason) + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && (t.Reason == "" || t.Reason == e.Reason)
}

// ConflictError means the caller lost a race. Current carries the state that
// won, when known.
type ConflictError struct {
	Reason  ConflictReason
	Message string
	Current any
}

func NewConflictError(reason ConflictReason, current any, format string, args ...any) error {
	return &ConflictError{Reason: reason, Current: current, Message: fmt.Sprintf(format, args...)}
}

func (e *ConflictError) Error() string {
	if e.Message == "" {
		return string(e.Reason)
	}
	return string(e.Reason) + ": " + e.Message
}

func (e *ConflictError) Is(target error) bool {
	t, ok := target.(*ConflictError)
	return ok && (t.Reason == "" || t.Reason == e.Reason)
}

type NotFoundError struct {
	Entity string
	ID     string
}

func NewNotFoundError(entity string, id fmt.Stringer) error {
	return &NotFoundError{Entity: entity, ID: id.String()}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	t, ok := target.(*NotFoundError)
	return ok && (t.Entity == "" || t.Entity == e.Entity)
}

// ExternalAdapterError wraps a settlement verification failure.
type ExternalAdapterError struct {
	Kind AdapterErrorKind
	Err  error
}

func NewAdapterError(kind AdapterErrorKind, err error) error {
	return &ExternalAdapterError{Kind: kind, Err: err}
}

func (e *ExternalAdapterError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Err.Error()
}

func (e *ExternalAdapterError) Unwrap() error { return e.Err }

func (e *ExternalAdapterError) Is(target error) bool {
	t, ok := target.(*ExternalAdapterError)
	return ok && (t.Kind == "" || t.Kind == e.Kind)
}

// ToAppError maps the domain taxonomy onto the HTTP error envelope. Errors
// that are already AppErrors pass through untouched.
func ToAppError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		status, code := http.StatusBadRequest, utils.ErrCodeValidation
		switch vErr.Reason {
		case ReasonUnauthorized:
			status, code = http.StatusForbidden, utils.ErrCodeUnauthorized
		case ReasonInvalidTransition:
			code = utils.ErrCodeInvalidTransition
		case ReasonUnitUnavailable:
			code = utils.ErrCodeUnitUnavailable
		case ReasonInvalidPayload:
			code = utils.ErrCodeInvalidPayload
		}
		return &utils.AppError{StatusCode: status, Code: code, Message: vErr.Error(), Err: err}
	}

	var cErr *ConflictError
	if errors.As(err, &cErr) {
		code := utils.ErrCodeConflict
		switch cErr.Reason {
		case ConflictAlreadyTransitioned:
			code = utils.ErrCodeAlreadyTransitioned
		case ConflictUnitAlreadyControlled:
			code = utils.ErrCodeUnitAlreadyControlled
		case ConflictAlreadySettled:
			code = utils.ErrCodeAlreadySettled
		}
		return &utils.AppError{
			StatusCode: http.StatusConflict,
			Code:       code,
			Message:    cErr.Error(),
			Details:    cErr.Current,
			Err:        err,
		}
	}

	var nfErr *NotFoundError
	if errors.As(err, &nfErr) {
		return &utils.AppError{StatusCode: http.StatusNotFound, Code: utils.ErrCodeNotFound, Message: nfErr.Error(), Err: err}
	}

	var aErr *ExternalAdapterError
	if errors.As(err, &aErr) {
		switch aErr.Kind {
		case AdapterSignatureMismatch:
			return &utils.AppError{StatusCode: http.StatusBadRequest, Code: utils.ErrCodeSignatureMismatch, Message: "Signature verification failed", Err: err}
		case AdapterStatusIncomplete:
			return &utils.AppError{StatusCode: http.StatusUnprocessableEntity, Code: utils.ErrCodeSettlementIncomplete, Message: "Settlement is not complete", Err: err}
		default:
			return &utils.AppError{StatusCode: http.StatusBadGateway, Code: utils.ErrCodeExternalServiceFailure, Message: "Settlement provider unreachable", Err: err}
		}
	}

	return &utils.AppError{StatusCode: http.StatusInternalServerError, Code: utils.ErrCodeInternal, Message: "An unexpected error occurred", Err: err}
}
