package tracing

import (
	"crypto/rand"
	"encoding/hex"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// ID formats follow the OpenTelemetry wire conventions:
//   - Trace ID: 128 bits rendered as 32 lowercase hex characters
//   - Span ID: 64 bits rendered as 16 lowercase hex characters
//   - Correlation ID: RFC 4122 UUID v4 (36 characters)
const (
	traceIDBytes = 16
	spanIDBytes  = 8

	// InteractionPrefix tags generated interaction identifiers.
	InteractionPrefix = "int"
)

// Generator produces trace, span, correlation, and interaction identifiers.
//
// Production code uses the default generator backed by crypto/rand so
// concurrently running agent instances cannot collide. Tests may inject a
// deterministic entropy source with NewGeneratorWithEntropy; production
// entropy must never be seeded deterministically.
type Generator struct {
	entropy io.Reader
	mu      sync.Mutex // protects entropy reader
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator backed by crypto/rand.
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator with cryptographically secure entropy.
func NewGenerator() *Generator {
	return &Generator{entropy: rand.Reader}
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source.
// Intended for deterministic tests.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// CorrelationID generates a UUID v4 correlation identifier.
func (g *Generator) CorrelationID() string {
	g.mu.Lock()
	u, err := uuid.NewRandomFromReader(g.entropy)
	g.mu.Unlock()
	if err != nil {
		// Generators never fail: fall back to the process CSPRNG.
		u = uuid.New()
	}
	return u.String()
}

// TraceID generates a 32-character lowercase hex trace identifier.
func (g *Generator) TraceID() string {
	return g.randomHex(traceIDBytes)
}

// SpanID generates a 16-character lowercase hex span identifier.
func (g *Generator) SpanID() string {
	return g.randomHex(spanIDBytes)
}

// InteractionID generates a prefixed, lexicographically sortable interaction
// identifier of the form "int_<ULID>".
func (g *Generator) InteractionID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return InteractionPrefix + "_" + ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy).String()
}

func (g *Generator) randomHex(n int) string {
	buf := make([]byte, n)
	g.mu.Lock()
	_, err := io.ReadFull(g.entropy, buf)
	g.mu.Unlock()
	if err != nil {
		// Generators never fail: fall back to the process CSPRNG.
		_, _ = io.ReadFull(rand.Reader, buf)
	}
	return hex.EncodeToString(buf)
}

// GenerateCorrelationID generates a UUID v4 correlation identifier using the
// default generator.
func GenerateCorrelationID() string {
	return Default().CorrelationID()
}

// GenerateTraceID generates a 128-bit trace identifier as 32 lowercase hex
// characters using the default generator.
func GenerateTraceID() string {
	return Default().TraceID()
}

// GenerateSpanID generates a 64-bit span identifier as 16 lowercase hex
// characters using the default generator.
func GenerateSpanID() string {
	return Default().SpanID()
}

// NewInteractionID generates a sortable "int_"-prefixed interaction
// identifier using the default generator.
func NewInteractionID() string {
	return Default().InteractionID()
}

// ValidateTraceID reports whether s is exactly 32 hex characters.
// It never panics; untrusted input can be branched on directly.
func ValidateTraceID(s string) bool {
	return isHex(s, 2*traceIDBytes)
}

// ValidateSpanID reports whether s is exactly 16 hex characters.
func ValidateSpanID(s string) bool {
	return isHex(s, 2*spanIDBytes)
}

// ValidateCorrelationID reports whether s parses as a UUID and its canonical
// string form equals s exactly. Non-canonical casing and alternative UUID
// renderings are rejected.
func ValidateCorrelationID(s string) bool {
	u, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	return u.String() == s
}

func isHex(s string, length int) bool {
	if len(s) != length {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
