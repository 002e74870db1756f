package transport

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/blueflyio/ossa-go/internal/metrics"
	"github.com/blueflyio/ossa-go/logging"
	"github.com/blueflyio/ossa-go/tracing"
)

// GRPCUnaryInterceptor creates a server interceptor that reconstructs the
// trace context from the "baggage" metadata key before invoking the handler.
func GRPCUnaryInterceptor(logger *zap.Logger, m *metrics.Metrics) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		tc := contextFromMetadata(ctx, m)
		if logger != nil {
			logger.Debug("trace context attached",
				append(logging.TraceFields(tc), zap.String("rpc.method", info.FullMethod))...)
		}
		return handler(NewContext(ctx, tc), req)
	}
}

// GRPCStreamInterceptor creates the streaming counterpart of
// GRPCUnaryInterceptor.
func GRPCStreamInterceptor(logger *zap.Logger, m *metrics.Metrics) grpc.StreamServerInterceptor {
	return func(
		srv any,
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		tc := contextFromMetadata(ss.Context(), m)
		if logger != nil {
			logger.Debug("trace context attached",
				append(logging.TraceFields(tc), zap.String("rpc.method", info.FullMethod))...)
		}
		return handler(srv, &tracedServerStream{
			ServerStream: ss,
			ctx:          NewContext(ss.Context(), tc),
		})
	}
}

// GRPCClientInterceptor creates a client interceptor that injects the active
// context's baggage header into outgoing metadata. Calls without an active
// context are passed through untouched.
func GRPCClientInterceptor() grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply any,
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		if tc := FromContext(ctx); tc != nil {
			if value, ok := tc.Headers[tracing.HeaderName]; ok && value != "" {
				ctx = metadata.AppendToOutgoingContext(ctx, tracing.HeaderName, value)
			}
		}
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

func contextFromMetadata(ctx context.Context, m *metrics.Metrics) *tracing.TraceContext {
	var raw string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(tracing.HeaderName); len(values) > 0 {
			raw = values[0]
		}
	}

	tc := tracing.FromHeaders(map[string]string{tracing.HeaderName: raw})
	if raw == "" {
		m.ObserveParse(metrics.OutcomeEmpty)
	} else {
		m.ObserveParse(metrics.OutcomeOK)
	}
	m.ObserveContext(metrics.KindRemote, len(tc.Headers[tracing.HeaderName]))
	return tc
}

// tracedServerStream overrides Context so handlers see the trace context.
type tracedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *tracedServerStream) Context() context.Context {
	return s.ctx
}
