// Package handler implements the REST surface fronting the same
// control-plane operations internal/transport/grpc exposes over gRPC:
// start a run, read its status, cancel it. Handlers call straight into
// internal/transport/grpc.Server's Go methods rather than dialing back
// into gRPC, so both transports share one admission and bookkeeping path.
package handler

import (
	grpctransport "github.com/rezkam/bulkscroll/internal/transport/grpc"
)

// Server adapts internal/transport/grpc.Server's RPC methods to net/http
// handlers.
type Server struct {
	Control *grpctransport.Server
}

// NewServer creates a new HTTP handler server.
func NewServer(control *grpctransport.Server) *Server {
	return &Server{Control: control}
}
