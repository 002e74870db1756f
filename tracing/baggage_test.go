package tracing

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaggageSetGet(t *testing.T) {
	b := NewBaggage()

	require.NoError(t, b.Set("ossa.agent_id", "agent-001"))

	value, ok := b.Get("ossa.agent_id")
	assert.True(t, ok)
	assert.Equal(t, "agent-001", value)

	_, ok = b.Get("missing")
	assert.False(t, ok)

	assert.True(t, b.Has("ossa.agent_id"))
	assert.False(t, b.Has("missing"))
	assert.Equal(t, 1, b.Len())
}

func TestBaggageOverwrite(t *testing.T) {
	b := NewBaggage()
	require.NoError(t, b.Set("key", "first"))
	require.NoError(t, b.Set("key", "second"))

	value, _ := b.Get("key")
	assert.Equal(t, "second", value)
	assert.Equal(t, 1, b.Len())
}

func TestBaggageDelete(t *testing.T) {
	b := NewBaggage()
	require.NoError(t, b.Set("temp", "value"))

	assert.True(t, b.Delete("temp"))
	assert.False(t, b.Delete("temp"))
	assert.False(t, b.Has("temp"))
}

func TestBaggagePairLimit(t *testing.T) {
	b := NewBaggage()
	for i := 0; i < MaxPairs; i++ {
		require.NoError(t, b.Set(fmt.Sprintf("key-%03d", i), "v"))
	}

	// The 181st distinct key fails immediately, not at serialization time.
	err := b.Set("one-too-many", "v")
	var sizeErr *SizeError
	require.ErrorAs(t, err, &sizeErr)
	assert.Equal(t, MaxPairs, sizeErr.Limit)
	assert.Equal(t, "entries", sizeErr.Unit)

	// Overwriting an existing key at the limit still works.
	assert.NoError(t, b.Set("key-000", "updated"))
}

func TestBaggageByteLimit(t *testing.T) {
	b := NewBaggage()
	require.NoError(t, b.Set("big", strings.Repeat("x", MaxBytes)))

	_, err := b.Encode()
	var sizeErr *SizeError
	require.ErrorAs(t, err, &sizeErr)
	assert.Equal(t, "bytes", sizeErr.Unit)
	assert.Greater(t, sizeErr.Actual, MaxBytes)
}

func TestBaggageEncode(t *testing.T) {
	b := NewBaggage()
	require.NoError(t, b.Set("a", "1"))
	require.NoError(t, b.Set("b", "2", Property{Key: "ttl", Value: "60"}))

	encoded, err := b.Encode()
	require.NoError(t, err)
	assert.Equal(t, "a=1,b=2;ttl=60", encoded)
}

func TestBaggagePercentEncoding(t *testing.T) {
	t.Run("reserved characters", func(t *testing.T) {
		b := NewBaggage()
		require.NoError(t, b.Set("key with space", "a,b;c=d"))

		encoded, err := b.Encode()
		require.NoError(t, err)
		assert.Equal(t, "key%20with%20space=a%2Cb%3Bc%3Dd", encoded)

		parsed, err := ParseBaggage(encoded)
		require.NoError(t, err)
		value, ok := parsed.Get("key with space")
		assert.True(t, ok)
		assert.Equal(t, "a,b;c=d", value)
	})

	t.Run("unreserved characters untouched", func(t *testing.T) {
		b := NewBaggage()
		require.NoError(t, b.Set("Az09-_.~", "Az09-_.~"))

		encoded, err := b.Encode()
		require.NoError(t, err)
		assert.Equal(t, "Az09-_.~=Az09-_.~", encoded)
	})

	t.Run("unicode round trip", func(t *testing.T) {
		b := NewBaggage()
		require.NoError(t, b.Set("Ключ", "值-🚀"))

		encoded, err := b.Encode()
		require.NoError(t, err)

		parsed, err := ParseBaggage(encoded)
		require.NoError(t, err)
		value, ok := parsed.Get("Ключ")
		assert.True(t, ok)
		assert.Equal(t, "值-🚀", value)
	})
}

func TestParseBaggage(t *testing.T) {
	t.Run("empty header", func(t *testing.T) {
		b, err := ParseBaggage("")
		require.NoError(t, err)
		assert.Equal(t, 0, b.Len())
	})

	t.Run("lenient entry handling", func(t *testing.T) {
		// "c" has no "=" and is dropped; the rest parse normally.
		b, err := ParseBaggage("a=1,b=2;ttl=60,c")
		require.NoError(t, err)

		value, ok := b.Get("a")
		assert.True(t, ok)
		assert.Equal(t, "1", value)

		entry, ok := b.Entry("b")
		require.True(t, ok)
		assert.Equal(t, "2", entry.Value)
		require.Len(t, entry.Properties, 1)
		assert.Equal(t, Property{Key: "ttl", Value: "60"}, entry.Properties[0])

		assert.False(t, b.Has("c"))
		assert.Equal(t, 2, b.Len())
	})

	t.Run("value containing equals", func(t *testing.T) {
		// Split only at the first "=".
		b, err := ParseBaggage("query=a=1")
		require.NoError(t, err)
		value, _ := b.Get("query")
		assert.Equal(t, "a=1", value)
	})

	t.Run("whitespace tolerated", func(t *testing.T) {
		b, err := ParseBaggage(" a = 1 , b = 2 ")
		require.NoError(t, err)
		value, ok := b.Get("a")
		assert.True(t, ok)
		assert.Equal(t, "1", value)
	})

	t.Run("invalid percent escapes kept raw", func(t *testing.T) {
		b, err := ParseBaggage("key=%zz")
		require.NoError(t, err)
		value, _ := b.Get("key")
		assert.Equal(t, "%zz", value)
	})

	t.Run("too many entries is structural", func(t *testing.T) {
		parts := make([]string, MaxPairs+1)
		for i := range parts {
			parts[i] = fmt.Sprintf("k%03d=v", i)
		}
		_, err := ParseBaggage(strings.Join(parts, ","))
		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr)
		var sizeErr *SizeError
		assert.True(t, errors.As(parseErr.Unwrap(), &sizeErr))
	})
}

func TestBaggageRoundTrip(t *testing.T) {
	b := NewBaggage()
	require.NoError(t, b.Set("ossa.agent_id", "agent-001"))
	require.NoError(t, b.Set("plain", "value"))
	require.NoError(t, b.Set("spaced key", "v1,v2;v3=v4"))
	require.NoError(t, b.Set("уникод", "значение"))
	require.NoError(t, b.Set("meta", "kept", Property{Key: "ttl", Value: "3600"}, Property{Key: "hint", Value: "fast"}))

	first, err := b.Encode()
	require.NoError(t, err)

	parsed, err := ParseBaggage(first)
	require.NoError(t, err)

	second, err := parsed.Encode()
	require.NoError(t, err)

	assert.Equal(t, normalizeEntries(first), normalizeEntries(second))
	assert.Equal(t, b.Len(), parsed.Len())
}

func TestBaggageHeaders(t *testing.T) {
	b := NewBaggage()
	require.NoError(t, b.Set("key", "value"))

	headers, err := b.Headers()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"baggage": "key=value"}, headers)
}

func TestBaggageMerge(t *testing.T) {
	left := NewBaggage()
	require.NoError(t, left.Set("shared", "left"))
	require.NoError(t, left.Set("only-left", "1"))

	right := NewBaggage()
	require.NoError(t, right.Set("shared", "right"))
	require.NoError(t, right.Set("only-right", "2"))

	merged := left.Merge(right)

	value, _ := merged.Get("shared")
	assert.Equal(t, "right", value, "other side wins on collision")
	assert.True(t, merged.Has("only-left"))
	assert.True(t, merged.Has("only-right"))

	// Pure operation: inputs unchanged.
	value, _ = left.Get("shared")
	assert.Equal(t, "left", value)
	assert.Equal(t, 2, left.Len())
	assert.Equal(t, 2, right.Len())
}

func TestForeignKeysPassThrough(t *testing.T) {
	// Unrecognized keys survive parse -> merge -> serialize unchanged.
	incoming := "vendor.flag=on,ossa.agent_id=agent-001,other=opaque%2Cvalue"
	parsed, err := ParseBaggage(incoming)
	require.NoError(t, err)

	extra := NewBaggage()
	require.NoError(t, extra.Set("added", "later"))
	merged := parsed.Merge(extra)

	encoded, err := merged.Encode()
	require.NoError(t, err)

	reparsed, err := ParseBaggage(encoded)
	require.NoError(t, err)
	value, ok := reparsed.Get("vendor.flag")
	assert.True(t, ok)
	assert.Equal(t, "on", value)
	value, ok = reparsed.Get("other")
	assert.True(t, ok)
	assert.Equal(t, "opaque,value", value)
}

func TestOSSAContextProjection(t *testing.T) {
	t.Run("set and get", func(t *testing.T) {
		b := NewBaggage()
		require.NoError(t, b.SetOSSAContext(OSSAContext{
			AgentID:       "agent-001",
			InteractionID: "int-123",
			TraceID:       strings.Repeat("a", 32),
			SpanID:        strings.Repeat("b", 16),
			Custom:        map[string]string{"env": "prod"},
		}))

		ctx := b.OSSAContext()
		assert.Equal(t, "agent-001", ctx.AgentID)
		assert.Equal(t, "int-123", ctx.InteractionID)
		assert.Equal(t, strings.Repeat("a", 32), ctx.TraceID)
		assert.Equal(t, strings.Repeat("b", 16), ctx.SpanID)
		assert.Equal(t, map[string]string{"env": "prod"}, ctx.Custom)
	})

	t.Run("absent fields omitted", func(t *testing.T) {
		b := NewBaggage()
		require.NoError(t, b.SetOSSAContext(OSSAContext{AgentID: "only-agent"}))

		assert.Equal(t, 1, b.Len())
		assert.False(t, b.Has("ossa.trace_id"))
		assert.False(t, b.Has("ossa.tenant_id"))
	})

	t.Run("nil custom when no custom keys", func(t *testing.T) {
		b := NewBaggage()
		require.NoError(t, b.SetOSSAContext(OSSAContext{AgentID: "agent-001"}))

		ctx := b.OSSAContext()
		assert.Nil(t, ctx.Custom)
	})

	t.Run("namespace isolation", func(t *testing.T) {
		b := NewBaggage()
		require.NoError(t, b.Set("user.pref", "dark"))
		require.NoError(t, b.SetOSSAContext(OSSAContext{
			AgentID: "agent-001",
			Custom:  map[string]string{"env": "prod"},
		}))

		ctx := b.OSSAContext()
		assert.Equal(t, map[string]string{"env": "prod"}, ctx.Custom)

		// Non-ossa keys are unaffected by the projection.
		value, ok := b.Get("user.pref")
		assert.True(t, ok)
		assert.Equal(t, "dark", value)
	})
}

// normalizeEntries sorts the top-level entries of an encoded header so
// comparisons are order-independent.
func normalizeEntries(encoded string) []string {
	entries := strings.Split(encoded, ",")
	sort.Strings(entries)
	return entries
}
