// Package strictjson normalizes upstream payloads into strict JSON.
package strictjson

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// Reencode decodes raw upstream bytes and marshals them back, guaranteeing
// the result is strict JSON: non-finite numeric tokens (NaN, Infinity),
// truncated input and trailing garbage are all rejected, so nothing
// non-strict can pass through to the caller. Numbers decode as json.Number
// so integer precision survives the round trip. Any valid JSON value is
// accepted, not just objects.
func Reencode(raw []byte) (json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("strictjson: decode: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("strictjson: trailing data after JSON value")
	}

	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("strictjson: encode: %w", err)
	}
	return out, nil
}
