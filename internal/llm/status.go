package llm

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Normalized stop reasons carried in Response.StopReason.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
	StopRefused   = "refused"
)

// errRefused is wrapped in ErrInvalidResponse when the provider withheld
// the answer, e.g. a safety filter on a generated question.
var errRefused = errors.New("model declined to answer")

// classifyStatus turns an HTTP status from a provider API into the error
// kinds the retry layer understands.
func classifyStatus(status int, err error) error {
	switch {
	case status == http.StatusTooManyRequests:
		return &ErrRateLimit{Err: err}
	case status == http.StatusBadRequest,
		status == http.StatusUnauthorized,
		status == http.StatusForbidden,
		status == http.StatusNotFound,
		status == http.StatusUnprocessableEntity:
		return &ErrRequestRejected{Status: status, Err: err}
	default:
		// 5xx, Anthropic's 529 overload and transport failures.
		return &ErrProviderUnavailable{Err: err}
	}
}

// checkStop converts a non-terminal stop reason into an error.
func checkStop(stop string, content json.RawMessage) error {
	switch stop {
	case StopMaxTokens:
		return &ErrMaxTokensExceeded{Content: content}
	case StopRefused:
		return &ErrInvalidResponse{Content: content, Err: errRefused}
	}
	return nil
}
