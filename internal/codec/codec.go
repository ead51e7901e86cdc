// Package codec implements the canonical byte encoding stored at ledger
// addresses. Records are serialized as RFC 8785 (JCS) canonical JSON:
// keys sorted, deterministic number formatting, UTF-8. Every node must
// produce identical bytes for identical records, so any hash-of-state
// comparison holds across implementations.
package codec

import (
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
)

// DecodeError reports malformed stored or incoming bytes.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Marshal encodes a record into canonical JSON bytes.
func Marshal(record any) ([]byte, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("canonicalize record: %w", err)
	}
	return canonical, nil
}

// Unmarshal decodes canonical bytes into the target record. Malformed
// input yields a *DecodeError.
func Unmarshal(data []byte, target any) error {
	if err := json.Unmarshal(data, target); err != nil {
		return &DecodeError{Err: err}
	}
	return nil
}
