package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxDiagramSize bounds the size of a diagram accepted from users.
const MaxDiagramSize = 64 << 10

// ValidateDiagram performs cheap sanity checks on raw diagram text before it
// reaches the parser:
//   - No empty input
//   - At most MaxDiagramSize bytes
//   - No control characters other than newlines, carriage returns and tabs
//
// Structural checks are left to the diagram parser.
func ValidateDiagram(text string) error {
	if strings.TrimSpace(text) == "" {
		return New(ErrCodeInvalidInput, "diagram cannot be empty")
	}

	if len(text) > MaxDiagramSize {
		return New(ErrCodeInvalidInput, "diagram too large (max %d bytes)", MaxDiagramSize)
	}

	for _, r := range text {
		if r == '\n' || r == '\r' || r == '\t' {
			continue
		}
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "diagram contains invalid control characters")
		}
	}

	return nil
}

// runIDRegex matches the canonical textual form of a UUID.
var runIDRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// ValidateRunID validates a run identifier taken from a URL or the command line.
func ValidateRunID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "run id cannot be empty")
	}

	if !runIDRegex.MatchString(strings.ToLower(id)) {
		return New(ErrCodeInvalidInput, "invalid run id: %q", id)
	}

	return nil
}

// ValidateMongoURI validates a MongoDB connection string.
// It only checks the scheme; the driver parses the rest.
func ValidateMongoURI(uri string) error {
	if uri == "" {
		return New(ErrCodeInvalidConfig, "mongo URI cannot be empty")
	}

	if !strings.HasPrefix(uri, "mongodb://") && !strings.HasPrefix(uri, "mongodb+srv://") {
		return New(ErrCodeInvalidConfig, "mongo URI must use mongodb or mongodb+srv scheme")
	}

	return nil
}

// ValidateRedisAddr validates a host:port address.
func ValidateRedisAddr(addr string) error {
	if addr == "" {
		return New(ErrCodeInvalidConfig, "redis address cannot be empty")
	}

	i := strings.LastIndex(addr, ":")
	if i <= 0 || i == len(addr)-1 {
		return New(ErrCodeInvalidConfig, "redis address must be host:port: %q", addr)
	}

	for _, r := range addr[i+1:] {
		if r < '0' || r > '9' {
			return New(ErrCodeInvalidConfig, "redis port must be numeric: %q", addr)
		}
	}

	return nil
}
