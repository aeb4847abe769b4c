package model

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Form field names, matching the JSON keys sent to the backend
const (
	FieldTitle           = "title"
	FieldDescription     = "description"
	FieldAffectedService = "affected_service"
)

// Minimum lengths enforced before submission
const (
	TitleMinLength       = 5
	DescriptionMinLength = 20
)

// FieldErrorKind classifies a validation failure
type FieldErrorKind string

const (
	FieldRequired FieldErrorKind = "required"
	FieldTooShort FieldErrorKind = "too_short"
)

// FieldError is a validation failure on a single form field
type FieldError struct {
	Field   string
	Kind    FieldErrorKind
	Message string
}

func (e FieldError) Error() string {
	return e.Message
}

// FormErrors maps a field name to its active error
type FormErrors map[string]FieldError

// HasErrors reports whether any field has an active error. Submission is
// blocked while this is true.
func (e FormErrors) HasErrors() bool {
	return len(e) > 0
}

// Message returns the message for a field, or "" if the field is valid
func (e FormErrors) Message(field string) string {
	if fe, ok := e[field]; ok {
		return fe.Message
	}
	return ""
}

// Clear removes a field's error. Called when the user edits that field.
func (e FormErrors) Clear(field string) {
	delete(e, field)
}

// Fields returns the fields with errors in form order
func (e FormErrors) Fields() []string {
	var fields []string
	for _, f := range []string{FieldTitle, FieldDescription, FieldAffectedService} {
		if _, ok := e[f]; ok {
			fields = append(fields, f)
		}
	}
	return fields
}

var fieldLabels = map[string]string{
	FieldTitle:           "Title",
	FieldDescription:     "Description",
	FieldAffectedService: "Affected service",
}

func required(field, value string) *FieldError {
	if strings.TrimSpace(value) != "" {
		return nil
	}
	return &FieldError{
		Field:   field,
		Kind:    FieldRequired,
		Message: fieldLabels[field] + " is required",
	}
}

func minLength(field, value string, n int) *FieldError {
	if fe := required(field, value); fe != nil {
		return fe
	}
	// Length is taken from the raw input, not the trimmed one
	if utf8.RuneCountInString(value) >= n {
		return nil
	}
	return &FieldError{
		Field:   field,
		Kind:    FieldTooShort,
		Message: fmt.Sprintf("%s must be at least %d characters", fieldLabels[field], n),
	}
}

// ValidateTitle validates the title field
func ValidateTitle(v string) *FieldError {
	return minLength(FieldTitle, v, TitleMinLength)
}

// ValidateDescription validates the description field
func ValidateDescription(v string) *FieldError {
	return minLength(FieldDescription, v, DescriptionMinLength)
}

// ValidateAffectedService validates the affected service field
func ValidateAffectedService(v string) *FieldError {
	return required(FieldAffectedService, v)
}

// ValidateDraft runs every field check and returns all failures at once
func ValidateDraft(d Draft) FormErrors {
	errs := FormErrors{}
	errs.set(ValidateTitle(d.Title))
	errs.set(ValidateDescription(d.Description))
	errs.set(ValidateAffectedService(d.AffectedService))
	return errs
}

// ValidatePatch applies the creation rules to the fields a patch sets
func ValidatePatch(p Patch) FormErrors {
	errs := FormErrors{}
	if p.Title != nil {
		errs.set(ValidateTitle(*p.Title))
	}
	if p.Description != nil {
		errs.set(ValidateDescription(*p.Description))
	}
	if p.AffectedService != nil {
		errs.set(ValidateAffectedService(*p.AffectedService))
	}
	return errs
}

func (e FormErrors) set(fe *FieldError) {
	if fe != nil {
		e[fe.Field] = *fe
	}
}

// DescriptionCounter renders the informational character counter
func DescriptionCounter(description string) string {
	return fmt.Sprintf("%d/%d", utf8.RuneCountInString(description), DescriptionSoftLimit)
}
