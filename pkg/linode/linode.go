package linode

import (
	"fmt"
	"strings"
)

const RecordTypeTXT = "TXT"

type Domain struct {
	ID     int    `json:"id"`
	Domain string `json:"domain"`
}

type Record struct {
	ID     int    `json:"id,omitempty"`
	Type   string `json:"type"`
	Name   string `json:"name"`
	Target string `json:"target"`
	TTLSec int    `json:"ttl_sec,omitempty"`
}

// Page is the envelope of every paginated list endpoint.
type Page[T any] struct {
	Data    []T `json:"data"`
	Page    int `json:"page"`
	Pages   int `json:"pages"`
	Results int `json:"results"`
}

type ErrorReason struct {
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason"`
}

type ErrorResponse struct {
	Errors []ErrorReason `json:"errors"`
}

// APIError is returned for every response with a non-success status code.
type APIError struct {
	Method     string
	StatusCode int
	Reasons    []ErrorReason
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf(requestFailedFmt, e.Method, e.StatusCode)
	if len(e.Reasons) == 0 {
		return msg
	}

	reasons := make([]string, 0, len(e.Reasons))
	for _, r := range e.Reasons {
		if r.Field != "" {
			reasons = append(reasons, r.Field+": "+r.Reason)
		} else {
			reasons = append(reasons, r.Reason)
		}
	}
	return msg + ": " + strings.Join(reasons, "; ")
}
