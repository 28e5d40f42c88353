package automation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/wolfman30/dental-booking-bridge/internal/booking"
)

// maxDiagnostic bounds how much page text an Outcome carries for logs.
const maxDiagnostic = 500

var (
	positiveTokens = []string{"confirmation", "confirmed", "success"}
	negativeTokens = []string{"error", "failed"}

	// confirmationPattern finds a label, an optional noise word, then a
	// candidate code. Candidates without a digit are discarded afterwards
	// so prose like "confirmation is on its way" never yields a number.
	confirmationPattern = regexp.MustCompile(
		`(?i)(?:confirmation|conf#|reference)(?:\s+(?:number|code|no|id))?\s*[:#]?\s*([A-Za-z0-9][A-Za-z0-9-]*)`)
	hasDigit = regexp.MustCompile(`[0-9]`)
)

// Classify reads the post-submit page text and renders a verdict. Positive
// wording wins over negative when both appear; a page that says neither is
// reported as unverified rather than failed, because the markup belongs to
// the booking platform and silence usually means an unrecognized success
// page. That optimistic default is load-bearing: callers rely on it.
func Classify(pageText string) booking.Outcome {
	out := booking.Outcome{RawDiagnostic: truncate(pageText, maxDiagnostic)}
	lower := strings.ToLower(pageText)

	if containsAny(lower, positiveTokens) {
		out.Status = booking.StatusSuccess
		out.ConfirmationNumber = extractConfirmation(pageText)
		if out.ConfirmationNumber != "" {
			out.Message = fmt.Sprintf("Appointment booked successfully. Confirmation number: %s", out.ConfirmationNumber)
		} else {
			out.Message = "Appointment booked successfully."
		}
		return out
	}

	if containsAny(lower, negativeTokens) {
		out.Status = booking.StatusFailure
		out.Message = "Booking failed: the form reported an error. Please verify the details and try again."
		return out
	}

	out.Status = booking.StatusUnverified
	out.Message = "Appointment request submitted — please verify manually"
	return out
}

func containsAny(lower string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}

// extractConfirmation pulls the first labeled code that contains a digit.
// Empty when the page confirms without quoting a number.
func extractConfirmation(pageText string) string {
	for _, match := range confirmationPattern.FindAllStringSubmatch(pageText, -1) {
		if hasDigit.MatchString(match[1]) {
			return match[1]
		}
	}
	return ""
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
