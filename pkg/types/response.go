package types

// SuccessEnvelope wraps every 2xx JSON body under a data key.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the machine-readable error shape clients switch on.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
