package grpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/rezkam/bulkscroll/internal/engine"
)

// SearchBackendServer is the RPC-facing mirror of engine.SearchClient: the
// five operations spec.md §6 treats as an opaque transport. A concrete
// backend (the distributed search/index cluster's gRPC front door) serves
// this interface; Client (below) adapts it back into engine.SearchClient
// for the ScrollDriver to consume.
type SearchBackendServer interface {
	Search(ctx context.Context, req *engine.SearchRequest) (*engine.SearchResponse, error)
	Scroll(ctx context.Context, req *ScrollRequest) (*engine.SearchResponse, error)
	ClearScroll(ctx context.Context, req *ClearScrollRequest) (*engine.ClearResponse, error)
	Refresh(ctx context.Context, req *RefreshRequest) (*engine.RefreshResponse, error)
	Bulk(ctx context.Context, req *engine.BulkRequest) (*engine.BulkResponse, error)
}

// ScrollRequest carries a scroll continuation: the cursor ID, its
// keepalive (nanoseconds), and the originating search request (context and
// headers must still be propagated — invariant I5).
type ScrollRequest struct {
	ScrollID       string               `json:"scroll_id"`
	KeepaliveNanos int64                `json:"keepalive_nanos"`
	Search         engine.SearchRequest `json:"search"`
}

// ClearScrollRequest releases one or more scroll cursors.
type ClearScrollRequest struct {
	ScrollIDs []string          `json:"scroll_ids"`
	Context   map[string]string `json:"context,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"`
}

// RefreshRequest refreshes the named indices.
type RefreshRequest struct {
	Indices []string          `json:"indices"`
	Context map[string]string `json:"context,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

const searchBackendServiceName = "bulkscroll.v1.SearchBackend"

var searchBackendServiceDesc = grpc.ServiceDesc{
	ServiceName: searchBackendServiceName,
	HandlerType: (*SearchBackendServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Search", Handler: searchBackendSearchHandler},
		{MethodName: "Scroll", Handler: searchBackendScrollHandler},
		{MethodName: "ClearScroll", Handler: searchBackendClearScrollHandler},
		{MethodName: "Refresh", Handler: searchBackendRefreshHandler},
		{MethodName: "Bulk", Handler: searchBackendBulkHandler},
	},
	Metadata: "internal/transport/grpc/searchbackend.go",
}

// RegisterSearchBackendServer attaches srv to s under the search-backend
// ServiceDesc.
func RegisterSearchBackendServer(s *grpc.Server, srv SearchBackendServer) {
	s.RegisterService(&searchBackendServiceDesc, srv)
}

func searchBackendSearchHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(engine.SearchRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SearchBackendServer).Search(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + searchBackendServiceName + "/Search"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SearchBackendServer).Search(ctx, req.(*engine.SearchRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func searchBackendScrollHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ScrollRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SearchBackendServer).Scroll(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + searchBackendServiceName + "/Scroll"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SearchBackendServer).Scroll(ctx, req.(*ScrollRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func searchBackendClearScrollHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ClearScrollRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SearchBackendServer).ClearScroll(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + searchBackendServiceName + "/ClearScroll"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SearchBackendServer).ClearScroll(ctx, req.(*ClearScrollRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func searchBackendRefreshHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(RefreshRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SearchBackendServer).Refresh(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + searchBackendServiceName + "/Refresh"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SearchBackendServer).Refresh(ctx, req.(*RefreshRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func searchBackendBulkHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(engine.BulkRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SearchBackendServer).Bulk(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + searchBackendServiceName + "/Bulk"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SearchBackendServer).Bulk(ctx, req.(*engine.BulkRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// Client adapts a gRPC connection to engine.SearchClient, so ScrollDriver
// can run against a real remote backend.
type Client struct {
	cc grpc.ClientConnInterface
}

var _ engine.SearchClient = (*Client)(nil)

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) Search(ctx context.Context, req engine.SearchRequest) (engine.SearchResponse, error) {
	out := new(engine.SearchResponse)
	if err := c.cc.Invoke(ctx, "/"+searchBackendServiceName+"/Search", &req, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return engine.SearchResponse{}, err
	}
	return *out, nil
}

func (c *Client) Scroll(ctx context.Context, scrollID string, keepalive int64, req engine.SearchRequest) (engine.SearchResponse, error) {
	in := &ScrollRequest{ScrollID: scrollID, KeepaliveNanos: keepalive, Search: req}
	out := new(engine.SearchResponse)
	if err := c.cc.Invoke(ctx, "/"+searchBackendServiceName+"/Scroll", in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return engine.SearchResponse{}, err
	}
	return *out, nil
}

func (c *Client) ClearScroll(ctx context.Context, scrollIDs []string) (engine.ClearResponse, error) {
	in := &ClearScrollRequest{ScrollIDs: scrollIDs}
	out := new(engine.ClearResponse)
	if err := c.cc.Invoke(ctx, "/"+searchBackendServiceName+"/ClearScroll", in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return engine.ClearResponse{}, err
	}
	return *out, nil
}

func (c *Client) Refresh(ctx context.Context, indices []string) (engine.RefreshResponse, error) {
	in := &RefreshRequest{Indices: indices}
	out := new(engine.RefreshResponse)
	if err := c.cc.Invoke(ctx, "/"+searchBackendServiceName+"/Refresh", in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return engine.RefreshResponse{}, err
	}
	return *out, nil
}

func (c *Client) Bulk(ctx context.Context, req engine.BulkRequest) (engine.BulkResponse, error) {
	out := new(engine.BulkResponse)
	if err := c.cc.Invoke(ctx, "/"+searchBackendServiceName+"/Bulk", &req, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return engine.BulkResponse{}, err
	}
	return *out, nil
}
