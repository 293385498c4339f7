// ABOUTME: Tests for context and message identifier generation
// ABOUTME: Covers format, uniqueness, title sanitization, and sort order

package ids

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var contextIDPattern = regexp.MustCompile(`^\d{17}-[0-9a-f]{32}(-[a-z0-9-]+)?$`)

func TestNewContextID_Format(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 589*int(time.Millisecond), time.UTC)

	id := NewContextID(now, "")
	assert.Regexp(t, contextIDPattern, id)
	assert.True(t, strings.HasPrefix(id, "20260314092653589-"), "timestamp prefix: %s", id)
}

func TestNewContextID_TitleSuffix(t *testing.T) {
	id := NewContextID(time.Now(), "My Analysis Plan!")
	assert.Regexp(t, contextIDPattern, id)
	assert.True(t, strings.HasSuffix(id, "-my-analysis-plan"), "got %s", id)
}

func TestNewContextID_Unique(t *testing.T) {
	now := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewContextID(now, "")
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Hello World", "hello-world"},
		{"  spaces  ", "spaces"},
		{"mixed_Case-123", "mixed-case-123"},
		{"!!!", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeTitle(tt.in), "input %q", tt.in)
	}
}

func TestNewMessageID_Sortable(t *testing.T) {
	prev := ""
	for i := 0; i < 50; i++ {
		id := NewMessageID()
		require.Len(t, id, 26)
		if prev != "" {
			assert.True(t, id > prev, "ids must be monotonically increasing: %s then %s", prev, id)
		}
		prev = id
	}
}
