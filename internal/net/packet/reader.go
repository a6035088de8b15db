package packet

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Envelope is the frame of every message in both directions.
type Envelope struct {
	Type string          `json:"t"`
	Data json.RawMessage `json:"d,omitempty"`
}

// Reader gives handlers access to one decoded client message.
type Reader struct {
	env Envelope
}

// NewReader decodes the envelope. The payload is decoded lazily by Decode.
func NewReader(data []byte) (*Reader, error) {
	if len(data) == 0 {
		return nil, errors.New("empty message")
	}
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Type == "" {
		return nil, errors.New("message without type")
	}
	return &Reader{env: env}, nil
}

func (r *Reader) Type() string { return r.env.Type }

// Decode unmarshals the payload into v. A missing payload leaves v untouched.
func (r *Reader) Decode(v any) error {
	if len(r.env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.env.Data, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", r.env.Type, err)
	}
	return nil
}
