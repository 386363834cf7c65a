package data

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/armory/internal/errors"
)

func TestEncodeCommand(t *testing.T) {
	tests := []struct {
		command string
		want    string
	}{
		{"whoami", "d2hvYW1p"},
		{"  whoami \n", "d2hvYW1p"},
		{"$env:username", "JGVudjp1c2VybmFtZQ=="},
		{"echo héllo wörld", "ZWNobyBow6lsbG8gd8O2cmxk"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			assert.Equal(t, tt.want, EncodeCommand(tt.command))
		})
	}
}

func TestEncodeCommand_RoundTrip(t *testing.T) {
	commands := []string{
		"whoami",
		"Get-Process | Where-Object {$_.CPU -gt 100}",
		"echo 'quotes \"and\" backslashes \\'",
		"printf '%s\\n' \"tab\there\"",
		"echo héllo wörld",
		"echo 日本語のコマンド",
		"echo 🚀",
		"line one\nline two",
		"  padded  ",
	}
	for _, cmd := range commands {
		t.Run(cmd, func(t *testing.T) {
			decoded, err := DecodeCommand(EncodeCommand(cmd))
			require.NoError(t, err)
			assert.Equal(t, strings.TrimSpace(cmd), decoded)
		})
	}
}

func TestDecodeCommand_Malformed(t *testing.T) {
	_, err := DecodeCommand("not base64!")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrMalformed))
}

func TestEncodeCleanup(t *testing.T) {
	assert.Nil(t, encodeCleanup(nil))
	assert.Nil(t, encodeCleanup(ptr("")))
	assert.Nil(t, encodeCleanup(ptr("   \n")))

	got := encodeCleanup(ptr(" rm -f /tmp/x "))
	require.NotNil(t, got)
	assert.Equal(t, "cm0gLWYgL3RtcC94", *got)
}
