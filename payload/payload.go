// Package payload converts text-encoded artifact payloads into raw bytes.
package payload

import (
	"encoding/base64"
	"fmt"

	"github.com/antmrlt/API64/core"
)

// Decode returns the bytes carried by encoded, which must be standard padded
// base64 (RFC 4648 section 4). Any alphabet, padding or length violation
// yields an error wrapping core.ErrDecode.
func Decode(encoded string) ([]byte, error) {
	data, err := base64.StdEncoding.Strict().DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrDecode, err)
	}
	return data, nil
}

// Encode is the inverse of Decode, used by clients building upload requests.
func Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
