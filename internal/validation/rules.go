// Package validation holds the pure field and date rules shared by the
// workflows and the persistence layer. Every rule is side-effect free and
// returns nil on pass or an *Error carrying a stable code and a
// user-facing message.
package validation

import (
	"regexp"
	"strings"
	"time"
)

// Rule codes. Controllers treat any *Error as a 400-class failure; the
// code distinguishes the rules in logs and tests.
const (
	CodeInvalidWindow      = "invalid_window"
	CodeDeadlineTooLate    = "deadline_too_late"
	CodeMissingField       = "missing_field"
	CodeInvalidEmailFormat = "invalid_email_format"
	CodeWeakPassword       = "weak_password"
)

// Error is a failed validation rule. Message is safe to show end users.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

const (
	minPasswordLen = 12
	// specialChars is the accepted special-character set for passwords.
	specialChars = "!@#$%^&*(),./;:<>'\"{}|`~\\[]?"
)

var (
	// participantEmailRegexp accepts local@domain.tld with word
	// characters, optional dot/hyphen separators, and a TLD of at
	// least two characters.
	participantEmailRegexp = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,})+$`)
	// accountEmailRegexp is the stricter shape for provider accounts
	// (TLD of two or three characters).
	accountEmailRegexp = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)
)

// EventWindowViolation is the failure of the start-before-end rule. The
// persistence layer maps the matching database constraint to the same
// error so both layers speak with one voice.
func EventWindowViolation() *Error {
	return &Error{Code: CodeInvalidWindow, Message: "Startzeit muss vor der Endzeit liegen."}
}

// DeadlineViolation is the failure of the deadline-not-after-start rule.
func DeadlineViolation() *Error {
	return &Error{Code: CodeDeadlineTooLate, Message: "Die Anmeldefrist muss spätestens zum Beginn des Termins liegen."}
}

// EventWindow checks the date ordering invariants of an event:
// startDate must be strictly before endDate, and the registration
// deadline must not be after the start. A deadline equal to the start
// passes.
func EventWindow(startDate, endDate, registrationDeadline time.Time) *Error {
	if !startDate.Before(endDate) {
		return EventWindowViolation()
	}
	if registrationDeadline.After(startDate) {
		return DeadlineViolation()
	}
	return nil
}

// Participant checks presence of all three participant fields and the
// email shape.
func Participant(firstName, lastName, email string) *Error {
	if strings.TrimSpace(firstName) == "" || strings.TrimSpace(lastName) == "" || strings.TrimSpace(email) == "" {
		return &Error{Code: CodeMissingField, Message: "Vorname, Nachname und E-Mail sind erforderlich."}
	}
	if !participantEmailRegexp.MatchString(strings.TrimSpace(email)) {
		return &Error{Code: CodeInvalidEmailFormat, Message: "Ungültiges E-Mail-Format"}
	}
	return nil
}

// PasswordStrength enforces the account password policy: at least 12
// characters, one uppercase letter, and one special character.
func PasswordStrength(password string) *Error {
	ok := len(password) >= minPasswordLen &&
		strings.ContainsFunc(password, func(r rune) bool { return r >= 'A' && r <= 'Z' }) &&
		strings.ContainsAny(password, specialChars)
	if !ok {
		return &Error{
			Code:    CodeWeakPassword,
			Message: "Passwort muss mindestens 12 Zeichen lang sein und wenigstens einen Großbuchstaben und ein Sonderzeichen enthalten.",
		}
	}
	return nil
}

// EmailFormat checks the provider account email shape.
func EmailFormat(email string) *Error {
	if !accountEmailRegexp.MatchString(strings.TrimSpace(email)) {
		return &Error{Code: CodeInvalidEmailFormat, Message: "Ungültiges E-Mail-Format"}
	}
	return nil
}
