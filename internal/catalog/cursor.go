package catalog

import (
	"encoding/base64"
	"encoding/json"
	"errors"
)

var ErrInvalidCursor = errors.New("invalid cursor")

// CursorData is the opaque state behind a list cursor. Paging continues
// after AfterKey, so a cursor stays valid across reloads as long as that
// entry still exists.
type CursorData struct {
	AfterKey string `json:"after_key,omitempty"`
}

// EncodeCursor encodes cursor data to a base64 string
func EncodeCursor(data CursorData) string {
	if data.AfterKey == "" {
		return ""
	}
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(jsonBytes)
}

// DecodeCursor decodes a base64 cursor string to CursorData
func DecodeCursor(cursor string) (CursorData, error) {
	if cursor == "" {
		return CursorData{}, nil
	}

	decoded, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return CursorData{}, ErrInvalidCursor
	}

	var data CursorData
	if err := json.Unmarshal(decoded, &data); err != nil || data.AfterKey == "" {
		return CursorData{}, ErrInvalidCursor
	}
	return data, nil
}
