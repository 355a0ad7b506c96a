package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeJSONMessage decodes one protocol line into dst and rejects unknown fields.
func DecodeJSONMessage(data []byte, dst interface{}) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if decoder.More() {
		return fmt.Errorf("invalid JSON: trailing data")
	}
	return nil
}

func MustMarshal(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("marshal %T: %v", v, err))
	}
	return data
}
