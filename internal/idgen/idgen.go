package idgen

import (
	"strings"

	"github.com/google/uuid"
)

// tokenLength is the display-friendly size of a correlation token. Eight hex
// characters keep callback payloads short while remaining statistically unique
// among concurrently outstanding requests.
const tokenLength = 8

// NewFunc returns a new correlation token. It is a variable so tests can stub
// it with a deterministic generator.
var NewFunc = func() string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	return id[:tokenLength]
}

// New returns a fresh correlation token.
func New() string { return NewFunc() }
