package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeneratedIDs(t *testing.T) {
	id := GenerateUUIDWithPrefix(UUID_PREFIX_UPLOAD)
	assert.True(t, HasIDPrefix(id, UUID_PREFIX_UPLOAD))
	assert.False(t, HasIDPrefix(id, UUID_PREFIX_REPORT))

	code := GenerateShortIDWithPrefix(SHORT_ID_PREFIX_REPORT)
	assert.True(t, strings.HasPrefix(code, SHORT_ID_PREFIX_REPORT))
	assert.LessOrEqual(t, len(code), 12)
	assert.True(t, IsReportShortCode(code))
}

func TestHasIDPrefix(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"u_01HZX3Q6N5T0W8R2K4M7P9B1CD", true},
		{"u_missing", true},
		{"u_", false},
		{"r_01HZX3Q6N5T0W8R2K4M7P9B1CD", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HasIDPrefix(tt.id, UUID_PREFIX_UPLOAD), tt.id)
	}

	assert.False(t, IsReportShortCode("RPT-"))
	assert.False(t, IsReportShortCode("r_01HZX"))
}
