package project

import (
	"encoding/json"
	"fmt"
)

// Encode serializes the full document into the one snapshot form used for
// local backup, starting-project distribution, and contribution submission.
// Serialization is deterministic: fixed field order, indented, trailing
// newline.
func Encode(doc Project) ([]byte, error) {
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return append(payload, '\n'), nil
}

// Decode parses a snapshot into a raw JSON value. It only rejects input that
// is not JSON at all; structural validity is the sanitizer's job, not the
// codec's.
func Decode(data []byte) (json.RawMessage, error) {
	var value json.RawMessage
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return value, nil
}
