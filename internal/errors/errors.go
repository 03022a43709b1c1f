// Package errors provides error handling utilities.
package errors

import (
	"fmt"
)

// Type identifies the category of error
type Type string

const (
	// TypeInvalidInterval indicates a rejected calculation interval
	// (end before start, or span above the configured maximum)
	TypeInvalidInterval Type = "INVALID_INTERVAL"

	// TypeUnknownZone indicates the zone id is absent from the registry
	TypeUnknownZone Type = "UNKNOWN_ZONE"

	// TypeNoTariffCoverage indicates a gap in the tariff schedule:
	// the zone is known but no tariff part matches some sub-interval
	TypeNoTariffCoverage Type = "NO_TARIFF_COVERAGE"

	// TypeMalformedTariffData indicates the dataset failed validation
	// during load; the prior snapshot remains active
	TypeMalformedTariffData Type = "MALFORMED_TARIFF_DATA"

	// TypeAddressNotFound indicates the address resolver found no match
	TypeAddressNotFound Type = "ADDRESS_NOT_FOUND"

	// TypeZoneNotMapped indicates the address exists but maps to no parking zone
	TypeZoneNotMapped Type = "ZONE_NOT_MAPPED"

	// TypeNotFound indicates a missing stored record
	TypeNotFound Type = "NOT_FOUND"

	// TypeInput indicates an input validation error
	TypeInput Type = "INPUT_ERROR"

	// TypeConfig indicates a configuration error
	TypeConfig Type = "CONFIG_ERROR"

	// TypeInternal indicates an internal error
	TypeInternal Type = "INTERNAL_ERROR"
)

// Error represents a domain error with context
type Error struct {
	Type    Type                   `json:"type"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error is of a specific type
func (e *Error) Is(t Type) bool {
	return e.Type == t
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new error
func New(errType Type, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new formatted error
func Newf(errType Type, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with context
func Wrap(errType Type, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(errType Type, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// IsType checks if an error is of a specific type
func IsType(err error, t Type) bool {
	if e, ok := err.(*Error); ok {
		return e.Type == t
	}
	return false
}

// TypeOf returns the type of a domain error, or TypeInternal
// for errors produced outside this package
func TypeOf(err error) Type {
	if e, ok := err.(*Error); ok {
		return e.Type
	}
	return TypeInternal
}

// InvalidInterval creates an invalid interval error
func InvalidInterval(message string) *Error {
	return New(TypeInvalidInterval, message)
}

// UnknownZone creates an unknown zone error
func UnknownZone(zoneID string) *Error {
	return Newf(TypeUnknownZone, "zone not found: %s", zoneID).WithContext("zone_id", zoneID)
}

// NoTariffCoverage creates a tariff coverage gap error
func NoTariffCoverage(zoneID string, message string) *Error {
	return New(TypeNoTariffCoverage, message).WithContext("zone_id", zoneID)
}

// MalformedTariffData creates a dataset validation error
func MalformedTariffData(message string, cause error) *Error {
	return Wrap(TypeMalformedTariffData, message, cause)
}

// AddressNotFound creates an address resolution error
func AddressNotFound(postcode, houseNumber string) *Error {
	return Newf(TypeAddressNotFound, "no address found for %s %s", postcode, houseNumber)
}

// ZoneNotMapped creates a zone mapping error
func ZoneNotMapped(postcode string) *Error {
	return Newf(TypeZoneNotMapped, "address %s is not mapped to a parking zone", postcode)
}

// Input creates an input error
func Input(message string) *Error {
	return New(TypeInput, message)
}

// Internal creates an internal error
func Internal(message string, cause error) *Error {
	return Wrap(TypeInternal, message, cause)
}
