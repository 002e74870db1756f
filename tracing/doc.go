/*
Package tracing implements distributed context propagation for multi-agent
systems using the W3C Baggage wire format with OSSA extension fields.

# Overview

Independently operated agent processes (an orchestrator delegating to
specialist agents over RPC/HTTP) need to correlate related operations without
a shared event bus or central coordinator. This package provides the three
layers that make that possible:

  - Baggage: the W3C Baggage wire codec (parse/build, percent-encoding,
    size and count limits) with an "ossa." reserved key namespace
  - CorrelationContext: correlation/trace/span identifiers with parent-child
    derivation
  - TraceContext: the facade combining both plus the derived HTTP headers

# Data Flow

A caller creates a root TraceContext, serializes it to a header map, and sends
it over RPC. The callee parses the header map back into a TraceContext and
derives child contexts for further delegation. Each hop repeats independently;
no mutable context is shared across process boundaries.

	root, _ := tracing.New("orchestrator", "int-1")
	// send root.Headers with the outbound request

	// on the callee
	ctx := tracing.FromHeaders(incoming)
	child, _ := ctx.Child("analyzer")

# Wire Format

The sole externally visible artifact is the "baggage" HTTP/RPC header:

	baggage: ossa.agent_id=agent-001,ossa.trace_id=<32-hex>,ossa.span_id=<16-hex>,ossa.custom.env=production

Keys and values are percent-encoded (RFC 3986); entry properties after ";"
are not. A header holds at most 180 entries and 8192 bytes. Keys outside the
"ossa." namespace are opaque pass-through baggage and survive a
parse/merge/serialize round trip unchanged.

# Error Model

Reads are lenient: entries without "=" are dropped, and FromHeaders never
fails, so tracing availability is preserved downstream even when an upstream
hop garbles context. Writes are strict: Set and Encode report SizeError when
a limit is violated. No other error kinds originate here. Baggage is not a
security boundary; nothing in it is authenticated.

# Concurrency

Every context is an independent value, safe to hand across goroutines by
ownership transfer or copy. Baggage.Set and TraceContext.MergeMetadata are
the only mutators; either serialize access per context or treat contexts as
immutable after creation and derive new ones. ID generation uses a
cryptographically secure RNG; tests may inject a deterministic entropy source.
*/
package tracing
