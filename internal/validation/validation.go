// Package validation checks input fields and manages the inline error labels
// shown next to them.
//
// Each field is expected to live in its own parent element: the error label is
// appended to that parent and found again through it.
package validation

import (
	"regexp"

	"acctdesk/internal/element"
)

// Result is the outcome of checking a single field.
type Result int

const (
	// Absent means there was no field to check.
	Absent Result = iota
	Invalid
	Valid
)

func (r Result) String() string {
	switch r {
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	default:
		return "absent"
	}
}

const (
	ErrorInputClass = "validation-error"
	ErrorLabelClass = "validation-error-label"

	RequiredText = "Required field"
)

var emptyPattern = regexp.MustCompile(`^\s*$`)

// IsBlank reports whether the field holds only whitespace.
func IsBlank(field element.Element) bool {
	return emptyPattern.MatchString(field.Value())
}

// ValueOrEmpty returns the field value, or "" when the field is missing or blank.
func ValueOrEmpty(field element.Element) string {
	if field == nil || IsBlank(field) {
		return ""
	}
	return field.Value()
}

// CheckEmpty reports whether the field is blank and, when emptiness is not
// allowed and showError is set, labels it as required.
func CheckEmpty(field element.Element, canBeEmpty, showError bool) bool {
	if !IsBlank(field) {
		return false
	}
	if !canBeEmpty && showError {
		CreateError(field, RequiredText)
	}
	return true
}

// Check validates a single field.
func Check(field element.Element, canBeEmpty bool) Result {
	if field == nil {
		return Absent
	}
	if CheckEmpty(field, canBeEmpty, true) && !canBeEmpty {
		return Invalid
	}
	return Valid
}

// CheckAll checks every field, labelling each invalid one, and reports
// whether all of them passed.
func CheckAll(fields []element.Element) bool {
	ok := true
	for _, f := range fields {
		if Check(f, false) == Invalid {
			ok = false
		}
	}
	return ok
}
