package tracing

import (
	"net/url"
	"sort"
	"strings"
)

// Limits and names from the W3C Baggage specification.
const (
	// HeaderName is the wire header carrying baggage. Always lowercase.
	HeaderName = "baggage"

	// OSSAPrefix is the reserved key namespace for OSSA context fields.
	OSSAPrefix = "ossa."

	// MaxPairs is the maximum number of distinct keys in one baggage.
	MaxPairs = 180

	// MaxBytes is the maximum serialized header size in bytes.
	MaxBytes = 8192
)

// Property is a single entry metadata pair, carried verbatim after the entry
// value as ";key=value". Properties are ordered and are not part of entry
// identity. Per the reference behavior they are not validated against the
// W3C metadata token grammar.
type Property struct {
	Key   string
	Value string
}

// Entry is one baggage key-value pair with optional properties.
type Entry struct {
	Key        string
	Value      string
	Properties []Property
}

// Baggage is an in-memory key-value set with W3C Baggage wire encoding.
//
// Each Baggage is exclusively owned by one TraceContext and must not be
// mutated concurrently; every hop parses or constructs its own instance from
// the wire representation.
type Baggage struct {
	entries map[string]Entry
}

// NewBaggage creates an empty baggage.
func NewBaggage() *Baggage {
	return &Baggage{entries: make(map[string]Entry)}
}

// Set inserts or overwrites an entry. Keys are opaque tokens; no charset is
// enforced. Returns a SizeError when the baggage already holds MaxPairs
// distinct keys and key is new. The entry-count limit is checked here, not
// deferred to Encode, so callers can shed data before serialization.
func (b *Baggage) Set(key, value string, props ...Property) error {
	if _, exists := b.entries[key]; !exists && len(b.entries) >= MaxPairs {
		return &SizeError{Limit: MaxPairs, Actual: len(b.entries) + 1, Unit: "entries"}
	}
	b.entries[key] = Entry{Key: key, Value: value, Properties: props}
	return nil
}

// Get returns the value for key and whether the key exists.
func (b *Baggage) Get(key string) (string, bool) {
	entry, ok := b.entries[key]
	return entry.Value, ok
}

// Entry returns the full entry for key, including its properties.
func (b *Baggage) Entry(key string) (Entry, bool) {
	entry, ok := b.entries[key]
	return entry, ok
}

// Delete removes an entry, reporting whether it existed.
func (b *Baggage) Delete(key string) bool {
	if _, ok := b.entries[key]; !ok {
		return false
	}
	delete(b.entries, key)
	return true
}

// Has reports whether key exists.
func (b *Baggage) Has(key string) bool {
	_, ok := b.entries[key]
	return ok
}

// Len returns the number of entries.
func (b *Baggage) Len() int {
	return len(b.entries)
}

// Keys returns all keys in sorted order.
func (b *Baggage) Keys() []string {
	keys := make([]string, 0, len(b.entries))
	for k := range b.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Encode serializes the baggage to its W3C header value. Keys and values are
// percent-encoded; property segments are appended verbatim; entries are
// joined with "," in sorted key order. Returns a SizeError when the encoded
// form exceeds MaxBytes. The byte limit is enforced here because
// percent-encoding expansion is unknown before encoding.
func (b *Baggage) Encode() (string, error) {
	parts := make([]string, 0, len(b.entries))
	for _, key := range b.Keys() {
		entry := b.entries[key]

		var sb strings.Builder
		sb.WriteString(percentEncode(entry.Key))
		sb.WriteByte('=')
		sb.WriteString(percentEncode(entry.Value))
		for _, p := range entry.Properties {
			sb.WriteByte(';')
			sb.WriteString(p.Key)
			sb.WriteByte('=')
			sb.WriteString(p.Value)
		}
		parts = append(parts, sb.String())
	}

	encoded := strings.Join(parts, ",")
	if len(encoded) > MaxBytes {
		return "", &SizeError{Limit: MaxBytes, Actual: len(encoded), Unit: "bytes"}
	}
	return encoded, nil
}

// Headers returns the propagation header map {"baggage": <encoded>}.
func (b *Baggage) Headers() (map[string]string, error) {
	encoded, err := b.Encode()
	if err != nil {
		return nil, err
	}
	return map[string]string{HeaderName: encoded}, nil
}

// Merge returns a new baggage holding b's entries overwritten by other's on
// key collision. Neither input is mutated. Foreign keys pass through both
// inputs unchanged, so unrecognized extensions survive a
// parse/merge/serialize round trip.
func (b *Baggage) Merge(other *Baggage) *Baggage {
	merged := NewBaggage()
	for k, v := range b.entries {
		merged.entries[k] = v
	}
	if other != nil {
		for k, v := range other.entries {
			merged.entries[k] = v
		}
	}
	return merged
}

// ParseBaggage decodes a W3C Baggage header value into a new Baggage.
//
// Reads are lenient: entry segments lacking "=" are silently dropped, values
// are split at the first "=" only, and key/value percent-decoding failures
// keep the raw text. An empty header yields an empty baggage. Only
// structural failures, such as an incoming header with more than MaxPairs
// entries, produce a ParseError.
func ParseBaggage(header string) (*Baggage, error) {
	baggage := NewBaggage()
	if header == "" {
		return baggage, nil
	}

	for _, rawEntry := range strings.Split(header, ",") {
		segments := strings.Split(rawEntry, ";")

		kv := strings.TrimSpace(segments[0])
		eq := strings.IndexByte(kv, '=')
		if eq == -1 {
			// Skip entries without "=" so foreign extensions never break parsing.
			continue
		}
		key := percentDecode(strings.TrimSpace(kv[:eq]))
		value := percentDecode(strings.TrimSpace(kv[eq+1:]))

		var props []Property
		for _, seg := range segments[1:] {
			metaEq := strings.IndexByte(seg, '=')
			if metaEq == -1 {
				continue
			}
			props = append(props, Property{
				Key:   strings.TrimSpace(seg[:metaEq]),
				Value: strings.TrimSpace(seg[metaEq+1:]),
			})
		}

		if err := baggage.Set(key, value, props...); err != nil {
			return nil, &ParseError{Cause: err}
		}
	}

	return baggage, nil
}

const upperhex = "0123456789ABCDEF"

// percentEncode escapes everything outside the RFC 3986 unreserved set.
// url.QueryEscape is unsuitable here: it renders space as "+".
func percentEncode(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(upperhex[c>>4])
		sb.WriteByte(upperhex[c&0x0f])
	}
	return sb.String()
}

// percentDecode reverses percentEncode. Invalid escapes keep the raw text;
// lenient reads must not fail on foreign producers.
func percentDecode(s string) string {
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}

func isUnreserved(c byte) bool {
	return c >= 'a' && c <= 'z' ||
		c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' ||
		c == '-' || c == '_' || c == '.' || c == '~'
}
