package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// FailureClass is the coarse taxonomy of outbound-request failures.
type FailureClass int

const (
	// Unclassified covers statuses outside the 4xx/5xx ranges.
	Unclassified FailureClass = iota
	// NetworkUnreachable means no transport response was received.
	NetworkUnreachable
	// ClientError covers 4xx responses.
	ClientError
	// ServerError covers 5xx responses.
	ServerError
)

func (c FailureClass) String() string {
	switch c {
	case NetworkUnreachable:
		return "network_unreachable"
	case ClientError:
		return "client_error"
	case ServerError:
		return "server_error"
	default:
		return "unclassified"
	}
}

// ClassOf maps a status code to its failure class. Status 0 means no response.
func ClassOf(status int) FailureClass {
	switch {
	case status == 0:
		return NetworkUnreachable
	case status >= 400 && status < 500:
		return ClientError
	case status >= 500 && status < 600:
		return ServerError
	default:
		return Unclassified
	}
}

// FieldErrors holds the messages reported for one request field.
type FieldErrors struct {
	Field    string
	Messages []string
}

// ValidationErrors is the server's field -> messages mapping, in payload order.
type ValidationErrors []FieldErrors

// UnmarshalJSON decodes {"field": ["msg", ...] | "msg"} keeping key order.
func (v *ValidationErrors) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		// Not a mapping; ignore rather than fail the whole payload.
		*v = nil
		return nil
	}

	var out ValidationErrors
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		out = append(out, FieldErrors{Field: key, Messages: decodeMessages(raw)})
	}
	*v = out
	return nil
}

func decodeMessages(raw json.RawMessage) []string {
	var many []any
	if err := json.Unmarshal(raw, &many); err == nil {
		msgs := make([]string, 0, len(many))
		for _, m := range many {
			msgs = append(msgs, fmt.Sprint(m))
		}
		return msgs
	}
	var one any
	if err := json.Unmarshal(raw, &one); err == nil && one != nil {
		return []string{fmt.Sprint(one)}
	}
	return nil
}

// Message joins every field as "field: m1, m2" separated by "; ".
func (v ValidationErrors) Message() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Field+": "+strings.Join(fe.Messages, ", "))
	}
	return strings.Join(parts, "; ")
}

// ErrorPayload is the JSON error body the API may attach to a failure.
type ErrorPayload struct {
	Message string           `json:"message,omitempty"`
	Code    string           `json:"code,omitempty"`
	Errors  ValidationErrors `json:"errors,omitempty"`
}

// HTTPError is a raw outbound-request failure before classification.
type HTTPError struct {
	Method  string
	URL     string
	Status  int // 0 when the transport produced no response
	Reason  string
	Payload ErrorPayload
	Err     error // transport error for status 0
}

func (e *HTTPError) Error() string {
	if e.Status == 0 {
		if e.Err != nil {
			return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
		}
		return fmt.Sprintf("%s %s: no response", e.Method, e.URL)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.Status, e.Reason)
}

func (e *HTTPError) Unwrap() error { return e.Err }

// ClassifiedFailure is an HTTPError after classification. It unwraps to the
// original HTTPError so callers can still inspect the raw failure.
type ClassifiedFailure struct {
	Method    string
	URL       string
	Status    int
	Class     FailureClass
	Message   string
	Timestamp time.Time
	Cause     *HTTPError
}

func (f *ClassifiedFailure) Error() string { return f.Message }

func (f *ClassifiedFailure) Unwrap() error {
	if f.Cause == nil {
		return nil
	}
	return f.Cause
}
