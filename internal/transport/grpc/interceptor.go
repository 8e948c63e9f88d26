package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// metadataPrefix prefixes the gRPC metadata keys the interceptors below carry
// across the wire. The engine's own invariant I5 (context/header
// propagation to every sub-request) is satisfied inside
// engine.ScrollDriver by forwarding domain.Request.Context/Headers on
// every SearchRequest/BulkRequest value; these interceptors extend the
// same guarantee to the gRPC hop between the control plane and the search
// backend, the way the teacher's auth interceptor reads bearer tokens from
// incoming metadata.
const metadataPrefix = "bulkscroll-ctx-"

// UnaryClientPropagationInterceptor copies outCtx (attached via
// ContextWithPropagated) into outgoing gRPC metadata.
func UnaryClientPropagationInterceptor(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
	if propagated, ok := PropagatedFromContext(ctx); ok && len(propagated) > 0 {
		md := metadata.MD{}
		for k, v := range propagated {
			md.Set(metadataPrefix+k, v)
		}
		ctx = metadata.NewOutgoingContext(ctx, md)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// UnaryServerPropagationInterceptor reconstructs the propagated map from
// incoming gRPC metadata and attaches it to the handler's context.
func UnaryServerPropagationInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return handler(ctx, req)
	}

	propagated := map[string]string{}
	for key, values := range md {
		if len(values) == 0 {
			continue
		}
		if trimmed, found := trimPrefix(key, metadataPrefix); found {
			propagated[trimmed] = values[0]
		}
	}
	if len(propagated) > 0 {
		ctx = ContextWithPropagated(ctx, propagated)
	}
	return handler(ctx, req)
}

func trimPrefix(s, prefix string) (string, bool) {
	if len(s) <= len(prefix) || s[:len(prefix)] != prefix {
		return "", false
	}
	return s[len(prefix):], true
}

type propagatedContextKey struct{}

// ContextWithPropagated attaches m so UnaryClientPropagationInterceptor
// forwards it on the next outgoing call.
func ContextWithPropagated(ctx context.Context, m map[string]string) context.Context {
	return context.WithValue(ctx, propagatedContextKey{}, m)
}

// PropagatedFromContext retrieves a map attached by ContextWithPropagated.
func PropagatedFromContext(ctx context.Context) (map[string]string, bool) {
	m, ok := ctx.Value(propagatedContextKey{}).(map[string]string)
	return m, ok
}
