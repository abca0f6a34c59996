package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"Valid", "alice_01", false},
		{"Exactly Min Length", "abcd", false},
		{"Too Short", "abc", true},
		{"Too Long", strings.Repeat("a", 31), true},
		{"Uppercase Rejected After Normalization", "Alice", true},
		{"Hyphen", "al-ice", true},
		{"Space", "al ice", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalizeHandle(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "alice", NormalizeHandle("  ALiCe "))
	assert.Equal(t, "bob@example.com", NormalizeHandle("Bob@Example.COM"))
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateEmail("a@b.co"))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail("a@b"))
	assert.Error(t, ValidateEmail("a b@c.de"))
	assert.Error(t, ValidateEmail(strings.Repeat("a", 250)+"@b.co"))
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidatePassword("secret"))
	assert.Error(t, ValidatePassword("short"))
	assert.NoError(t, ValidatePassword(strings.Repeat("p", 72)))
	assert.Error(t, ValidatePassword(strings.Repeat("p", 73)))
}

func TestProfileFields(t *testing.T) {
	t.Parallel()
	assert.Error(t, ValidateDisplayName("Al"))
	assert.NoError(t, ValidateDisplayName("Ana"))
	assert.NoError(t, ValidateBio(strings.Repeat("b", 320)))
	assert.Error(t, ValidateBio(strings.Repeat("b", 321)))
	assert.Error(t, ValidateLocation(strings.Repeat("l", 121)))

	assert.NoError(t, ValidateOptionalURL("website", ""))
	assert.NoError(t, ValidateOptionalURL("website", "https://example.com/me"))
	assert.Error(t, ValidateOptionalURL("website", "example.com"))
	assert.Error(t, ValidateOptionalURL("avatar_url", "ftp://example.com/a.png"))
}
