package data

import (
	"encoding/base64"
	"strings"

	"github.com/roach88/armory/internal/errors"
)

// EncodeCommand trims surrounding whitespace from a command and encodes it
// as standard base64 so it survives text transports intact.
func EncodeCommand(command string) string {
	return base64.StdEncoding.EncodeToString([]byte(strings.TrimSpace(command)))
}

// DecodeCommand reverses EncodeCommand.
func DecodeCommand(encoded string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", errors.WrapMalformed(err, "decode command")
	}
	return string(b), nil
}

// encodeCleanup encodes an optional cleanup command. Absent or blank
// commands stay NULL rather than becoming an encoded empty string.
func encodeCleanup(command *string) *string {
	if command == nil || strings.TrimSpace(*command) == "" {
		return nil
	}
	encoded := EncodeCommand(*command)
	return &encoded
}
