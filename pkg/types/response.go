// Package types defines the wire envelopes every API response is wrapped in.
package types

// SuccessEnvelope carries successful payloads under a single data key.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the client-facing error body. Code matches the stable error
// codes from pkg/errors so clients can branch on it.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps APIError for failed requests.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
