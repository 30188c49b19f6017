package services

import (
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error kinds. Handlers map them to HTTP status codes.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
)

// AppError is a domain error with a client-facing message.
type AppError struct {
	Kind    error
	Message string
}

func (e *AppError) Error() string { return e.Message }

func (e *AppError) Unwrap() error { return e.Kind }

func NewValidationError(msg string) error { return &AppError{Kind: ErrValidation, Message: msg} }

func NewNotFoundError(msg string) error { return &AppError{Kind: ErrNotFound, Message: msg} }

func NewConflictError(msg string) error { return &AppError{Kind: ErrConflict, Message: msg} }

func NewForbiddenError(msg string) error { return &AppError{Kind: ErrForbidden, Message: msg} }

// Messages shared between services and handlers.
const (
	MsgOfferNotFound    = "Offer not found"
	MsgPropertyNotFound = "Property not found"
	MsgUserNotFound     = "User not found"
	MsgReviewNotFound   = "Review not found"
	MsgFieldsRequired   = "All fields are required"
)

// parseObjectID treats a malformed id like an id that does not resolve.
func parseObjectID(id, notFoundMsg string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, NewNotFoundError(notFoundMsg)
	}
	return oid, nil
}
