package core

import (
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"solarcheck/internal/feasibility"
	"solarcheck/internal/types"
)

// Validator wraps go-playground/validator with SolarCheck's custom tags and
// maps failures onto API error codes.
type Validator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// ValidationError describes one failed field.
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult collects every failed field of a struct.
type ValidationResult struct {
	Errors []ValidationError `json:"errors"`
}

// IsValid reports whether no field failed.
func (r ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// NewValidator creates a Validator. Field names in errors use the json tag
// so they match what the client sent.
//
// Custom tags:
//   - panel_count: integer within the supported panel range
//   - public_ip: a globally routable IPv4 or IPv6 address
func NewValidator(logger *slog.Logger) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	mustRegister(v, "panel_count", validatePanelCount)
	mustRegister(v, "public_ip", validatePublicIP)

	return &Validator{validate: v, logger: logger}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("core: register %s validation: %v", tag, err))
	}
}

func validatePanelCount(fl validator.FieldLevel) bool {
	n := fl.Field().Int()
	return n >= feasibility.MinPanelCount && n <= feasibility.MaxPanelCount
}

func validatePublicIP(fl validator.FieldLevel) bool {
	addr, err := netip.ParseAddr(fl.Field().String())
	if err != nil {
		return false
	}
	return IsPublicIP(addr)
}

// IsPublicIP reports whether addr can be geolocated: globally routable and
// not private, loopback, link-local or unspecified.
func IsPublicIP(addr netip.Addr) bool {
	addr = addr.Unmap()
	return addr.IsValid() &&
		addr.IsGlobalUnicast() &&
		!addr.IsPrivate() &&
		!addr.IsLoopback() &&
		!addr.IsLinkLocalUnicast() &&
		!addr.IsUnspecified()
}

// Check validates s and returns every failed field. A non-struct argument
// is a programming error and is reported as a single field_constraints entry.
func (v *Validator) Check(s any) ValidationResult {
	err := v.validate.Struct(s)
	if err == nil {
		return ValidationResult{}
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		if v.logger != nil {
			v.logger.Error("validator misuse", "error", err)
		}
		return ValidationResult{Errors: []ValidationError{{
			Field:   "",
			Code:    string(types.ErrCodeValidationFieldConstraints),
			Message: err.Error(),
		}}}
	}

	result := ValidationResult{Errors: make([]ValidationError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		result.Errors = append(result.Errors, ValidationError{
			Field:   fieldPath(fe),
			Code:    string(tagToErrorCode(fe.Tag())),
			Message: messageFor(fe),
		})
	}
	return result
}

// ValidateStruct validates s and returns an AppError carrying the first
// failure's code and every failure under details["validation_errors"].
func (v *Validator) ValidateStruct(s any) error {
	result := v.Check(s)
	if result.IsValid() {
		return nil
	}

	first := result.Errors[0]
	return types.NewAppErrorWithDetails(
		types.ErrorCode(first.Code),
		first.Message,
		nil,
		map[string]any{"validation_errors": result.Errors},
	)
}

// fieldPath drops the root struct name from the namespace, so a nested
// field reads "reading.avg_temperature".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func tagToErrorCode(tag string) types.ErrorCode {
	switch tag {
	case "required":
		return types.ErrCodeValidationMissingField
	case "ip", "ipv4", "ipv6", "public_ip":
		return types.ErrCodeValidationInvalidIP
	case "panel_count":
		return types.ErrCodeValidationPanelCountRange
	case "gt", "gte", "lt", "lte", "min", "max":
		return types.ErrCodeValidationInvalidReading
	default:
		return types.ErrCodeValidationFieldConstraints
	}
}

func messageFor(fe validator.FieldError) string {
	field := fieldPath(fe)
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "ip", "ipv4", "ipv6":
		return field + " must be a valid IP address"
	case "public_ip":
		return field + " must be a public IP address"
	case "panel_count":
		return fmt.Sprintf("%s must be between %d and %d", field, feasibility.MinPanelCount, feasibility.MaxPanelCount)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte", "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, fe.Param())
	case "lte", "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
