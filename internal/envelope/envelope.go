// Package envelope unwraps the gateway backends' shared response wrapper.
// Backends are versioned independently and disagree on the casing of the
// status-code field and on the shape of data (absent, object or array);
// everything downstream of this package sees one normalized form.
package envelope

import (
	"bytes"
	"encoding/json"

	"haru-assistant/internal/gateway"
)

const successCode = 200

type PayloadKind int

const (
	// Empty means data was absent or null.
	Empty PayloadKind = iota
	// Single means data was one JSON object.
	Single
	// Many means data was a JSON array.
	Many
)

// Payload is the tagged union decided once here so adapters pattern-match
// instead of re-deriving array checks.
type Payload struct {
	Kind  PayloadKind
	One   json.RawMessage
	Items []json.RawMessage
}

type Envelope struct {
	OK      bool
	Code    int
	Message string
	Payload Payload
}

type wire struct {
	CodeUpper *int            `json:"Code"`
	CodeLower *int            `json:"code"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
}

// Normalize parses an already transport-decoded body into an Envelope.
// The status code may arrive as "Code" or "code"; the first present wins.
// Pure: no I/O, no retries, no mutation of its input.
func Normalize(body []byte) (Envelope, error) {
	var w wire
	if err := json.Unmarshal(body, &w); err != nil {
		return Envelope{}, gateway.WrapError(gateway.KindDecode, 0, "envelope is not a JSON object", err)
	}

	code := 0
	switch {
	case w.CodeUpper != nil:
		code = *w.CodeUpper
	case w.CodeLower != nil:
		code = *w.CodeLower
	}

	env := Envelope{
		Code:    code,
		Message: w.Message,
		OK:      code == successCode,
		Payload: classifyPayload(w.Data),
	}
	return env, nil
}

// Require returns a typed envelope error unless env reports success.
// Write-path adapters call this so the backend message travels verbatim.
func Require(env Envelope) error {
	if env.OK {
		return nil
	}
	msg := env.Message
	if msg == "" {
		msg = "backend rejected the request"
	}
	return gateway.NewError(gateway.KindEnvelope, env.Code, msg)
}

func classifyPayload(data json.RawMessage) Payload {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Payload{Kind: Empty}
	}
	if trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return Payload{Kind: Empty}
		}
		return Payload{Kind: Many, Items: items}
	}
	return Payload{Kind: Single, One: trimmed}
}

// Records flattens the union for adapters that treat one record and a
// collection the same way on read paths.
func (p Payload) Records() []json.RawMessage {
	switch p.Kind {
	case Many:
		return p.Items
	case Single:
		return []json.RawMessage{p.One}
	default:
		return nil
	}
}
