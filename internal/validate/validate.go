// Package validate holds the form-level input rules shared by the auth,
// projects and notes plugins. Each rule returns a user-facing message, or
// the empty string when the value is acceptable.
package validate

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	emailPattern = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")

	// markupPattern flags the injection vectors rejected in free text.
	markupPattern = regexp.MustCompile(`(?i)<script|<iframe|javascript:|onerror=`)

	upperPattern   = regexp.MustCompile(`[A-Z]`)
	lowerPattern   = regexp.MustCompile(`[a-z]`)
	digitPattern   = regexp.MustCompile(`[0-9]`)
	specialPattern = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>/?]`)
)

// Length limits.
const (
	MaxEmailLength       = 254
	MinPasswordLength    = 8
	MaxPasswordLength    = 72
	MinNameLength        = 2
	MaxNameLength        = 100
	MinProjectNameLength = 3
	MaxDescriptionLength = 500
	MinNotesLength       = 10
	MaxNotesLength       = 10000
)

// Errors maps form field names to messages.
type Errors map[string]string

// Add records msg for field unless msg is empty or the field already has one.
func (e Errors) Add(field, msg string) {
	if msg == "" {
		return
	}
	if _, exists := e[field]; !exists {
		e[field] = msg
	}
}

// Any reports whether at least one field failed.
func (e Errors) Any() bool {
	return len(e) > 0
}

// First returns one message, preferring the "form" key, for single-line display.
func (e Errors) First() string {
	if msg, ok := e["form"]; ok {
		return msg
	}
	for _, msg := range e {
		return msg
	}
	return ""
}

// Email checks address syntax and length.
func Email(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return "Email is required"
	}
	if len(email) > MaxEmailLength {
		return "Email address is too long"
	}
	if !emailPattern.MatchString(email) {
		return "Invalid email address format"
	}
	return ""
}

// Password enforces the registration password policy.
func Password(password string) string {
	if password == "" {
		return "Password is required"
	}
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength {
		return "Password must be at least 8 characters long"
	}
	if n > MaxPasswordLength || len(password) > MaxPasswordLength {
		return "Password must be less than 72 characters"
	}
	if !upperPattern.MatchString(password) || !lowerPattern.MatchString(password) ||
		!digitPattern.MatchString(password) || !specialPattern.MatchString(password) {
		return "Password must contain uppercase, lowercase, number, and special character"
	}
	return ""
}

// Name checks a person's display name.
func Name(name string) string {
	return boundedText(name, "Name", MinNameLength, MaxNameLength)
}

// ProjectName checks a project title.
func ProjectName(name string) string {
	return boundedText(name, "Project name", MinProjectNameLength, MaxNameLength)
}

// ContactName checks the name of a canvassed contact.
func ContactName(name string) string {
	return boundedText(name, "Contact name", MinNameLength, MaxNameLength)
}

// Notes checks the body of a canvassing note.
func Notes(notes string) string {
	trimmed := strings.TrimSpace(notes)
	if trimmed == "" {
		return "Notes are required"
	}
	n := utf8.RuneCountInString(trimmed)
	if n < MinNotesLength {
		return "Notes must be at least 10 characters long"
	}
	if n > MaxNotesLength {
		return "Notes must be less than 10,000 characters"
	}
	if markupPattern.MatchString(trimmed) {
		return "Notes contain invalid content"
	}
	return ""
}

// Description checks an optional project description.
func Description(desc string) string {
	if utf8.RuneCountInString(strings.TrimSpace(desc)) > MaxDescriptionLength {
		return "Description must be less than 500 characters"
	}
	if markupPattern.MatchString(desc) {
		return "Description contains invalid characters"
	}
	return ""
}

// OptionalEmail checks an email only when one was supplied.
func OptionalEmail(email string) string {
	if strings.TrimSpace(email) == "" {
		return ""
	}
	return Email(email)
}

func boundedText(value, field string, minLen, maxLen int) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return field + " is required"
	}
	n := utf8.RuneCountInString(trimmed)
	if n < minLen {
		return field + " must be at least " + strconv.Itoa(minLen) + " characters long"
	}
	if n > maxLen {
		return field + " must be less than " + strconv.Itoa(maxLen) + " characters"
	}
	if markupPattern.MatchString(trimmed) {
		return field + " contains invalid characters"
	}
	return ""
}
