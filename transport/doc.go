/*
Package transport carries trace context across process boundaries.

It adapts the tracing core to concrete transports: a Gin middleware and gRPC
interceptors on the server side, and header injection for gRPC and resty
clients on the caller side. Each adapter parses or serializes the "baggage"
header; none of them ever fail a request over tracing, matching the core's
availability-over-strictness stance.

	router.Use(transport.HTTPMiddleware(logger, m))

	server := grpc.NewServer(
		grpc.UnaryInterceptor(transport.GRPCUnaryInterceptor(logger, m)),
		grpc.StreamInterceptor(transport.GRPCStreamInterceptor(logger, m)),
	)

	conn, err := grpc.NewClient(addr,
		grpc.WithUnaryInterceptor(transport.GRPCClientInterceptor()),
	)

Handlers retrieve the active context with FromContext (or FromGin) and derive
children for further delegation.
*/
package transport
