package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsReusableSessionID(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		want      bool
	}{
		{"valid v4", "a1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d", true},
		{"valid v1", "6ba7b810-9dad-11d1-80b4-00c04fd430c8", true},
		{"valid uppercase", "A1B2C3D4-E5F6-4A7B-8C9D-0E1F2A3B4C5D", true},
		{"valid variant b", "a1b2c3d4-e5f6-4a7b-bc9d-0e1f2a3b4c5d", true},
		{"empty", "", false},
		{"not a uuid", "session-12345", false},
		{"fallback user key", "tg_anon_a1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d", false},
		{"missing dashes", "a1b2c3d4e5f64a7b8c9d0e1f2a3b4c5d", false},
		{"wrong dash positions", "a1b2c3d-4e5f6-4a7b-8c9d-0e1f2a3b4c5d", false},
		{"version 0", "a1b2c3d4-e5f6-0a7b-8c9d-0e1f2a3b4c5d", false},
		{"version 6", "a1b2c3d4-e5f6-6a7b-8c9d-0e1f2a3b4c5d", false},
		{"invalid variant nibble", "a1b2c3d4-e5f6-4a7b-0c9d-0e1f2a3b4c5d", false},
		{"non-hex character", "g1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d", false},
		{"too short", "a1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5", false},
		{"trailing garbage", "a1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsReusableSessionID(tt.candidate))
		})
	}
}
