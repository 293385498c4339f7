// ABOUTME: Identifier generation for contexts and messages
// ABOUTME: Context ids are timestamp-prefixed and human-readable, message ids are sortable ULIDs

package ids

import (
	mathrand "math/rand"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// contextTimeLayout renders the creation instant down to milliseconds, so
// directory listings and /context list output sort chronologically.
const contextTimeLayout = "20060102150405.000"

var titleSanitizer = regexp.MustCompile(`[^a-z0-9]+`)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

// NewContextID returns a context identifier of the form
// YYYYMMDDHHMMSSmmm-<uuid-hex> with an optional sanitized title suffix.
// The timestamp prefix makes ids sortable by creation time; the uuid makes
// them unique even when two contexts are created within the same millisecond.
func NewContextID(now time.Time, title string) string {
	stamp := strings.Replace(now.UTC().Format(contextTimeLayout), ".", "", 1)
	id := stamp + "-" + strings.ReplaceAll(uuid.New().String(), "-", "")
	if suffix := SanitizeTitle(title); suffix != "" {
		id += "-" + suffix
	}
	return id
}

// SanitizeTitle lowercases a free-form title and collapses every run of
// non-alphanumeric characters into a single hyphen. Returns "" if nothing
// usable remains.
func SanitizeTitle(title string) string {
	s := titleSanitizer.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(s, "-")
}

// NewMessageID returns a lexicographically sortable identifier for stored
// messages, so listing by id matches insertion order.
func NewMessageID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
