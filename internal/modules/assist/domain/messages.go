package domain

import (
	"errors"
	"strings"

	apperrors "atheneum/internal/platform/errors"
)

const billingHint = "Your Gemini API key has its free tier limit set to 0. Google usually requires billing to be enabled for the project: https://aistudio.google.com/app/apikey"

// UserMessage turns a gateway error into the text shown in place of the
// generated answer.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, apperrors.ErrNotConfigured):
		return "Add an API key in settings to use the reading companion."
	case strings.Contains(err.Error(), "limit: 0"):
		return billingHint
	case errors.Is(err, apperrors.ErrRateLimited):
		return "Slow down: " + apperrors.ErrRateLimited.Error() + "."
	case errors.Is(err, apperrors.ErrGenerationFailed):
		return "Error: " + err.Error() + ". Check your API key in settings and try again."
	default:
		return "Error: " + err.Error()
	}
}

// Retryable reports whether offering the same request again makes sense.
func Retryable(err error) bool {
	return errors.Is(err, apperrors.ErrRateLimited) || errors.Is(err, apperrors.ErrGenerationFailed)
}
