package grpc

import (
	"context"

	"google.golang.org/grpc"
)

// ControlPlaneServer is implemented by Server (server.go) and invoked
// through the hand-written ServiceDesc below.
type ControlPlaneServer interface {
	StartRun(ctx context.Context, req *StartRunRequest) (*StartRunResponse, error)
	GetStatus(ctx context.Context, req *GetStatusRequest) (*GetStatusResponse, error)
	CancelRun(ctx context.Context, req *CancelRunRequest) (*CancelRunResponse, error)
}

const controlPlaneServiceName = "bulkscroll.v1.ControlPlane"

// controlPlaneServiceDesc is hand-written in place of a protoc-generated
// one (see package doc). Method names and the service name form the
// "/bulkscroll.v1.ControlPlane/StartRun" style full method strings gRPC
// uses for routing, tracing span names, and interceptor chains.
var controlPlaneServiceDesc = grpc.ServiceDesc{
	ServiceName: controlPlaneServiceName,
	HandlerType: (*ControlPlaneServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "StartRun", Handler: controlPlaneStartRunHandler},
		{MethodName: "GetStatus", Handler: controlPlaneGetStatusHandler},
		{MethodName: "CancelRun", Handler: controlPlaneCancelRunHandler},
	},
	Metadata: "internal/transport/grpc/controlplane.go",
}

// RegisterControlPlaneServer attaches srv to s under the control-plane
// ServiceDesc.
func RegisterControlPlaneServer(s *grpc.Server, srv ControlPlaneServer) {
	s.RegisterService(&controlPlaneServiceDesc, srv)
}

func controlPlaneStartRunHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(StartRunRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlPlaneServer).StartRun(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + controlPlaneServiceName + "/StartRun"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ControlPlaneServer).StartRun(ctx, req.(*StartRunRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func controlPlaneGetStatusHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetStatusRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlPlaneServer).GetStatus(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + controlPlaneServiceName + "/GetStatus"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ControlPlaneServer).GetStatus(ctx, req.(*GetStatusRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func controlPlaneCancelRunHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CancelRunRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlPlaneServer).CancelRun(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + controlPlaneServiceName + "/CancelRun"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ControlPlaneServer).CancelRun(ctx, req.(*CancelRunRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// ControlPlaneClient is the client side of controlPlaneServiceDesc,
// negotiating the JSON codec via CallContentSubtype.
type ControlPlaneClient struct {
	cc grpc.ClientConnInterface
}

func NewControlPlaneClient(cc grpc.ClientConnInterface) *ControlPlaneClient {
	return &ControlPlaneClient{cc: cc}
}

func (c *ControlPlaneClient) StartRun(ctx context.Context, req *StartRunRequest) (*StartRunResponse, error) {
	out := new(StartRunResponse)
	if err := c.cc.Invoke(ctx, "/"+controlPlaneServiceName+"/StartRun", req, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ControlPlaneClient) GetStatus(ctx context.Context, req *GetStatusRequest) (*GetStatusResponse, error) {
	out := new(GetStatusResponse)
	if err := c.cc.Invoke(ctx, "/"+controlPlaneServiceName+"/GetStatus", req, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ControlPlaneClient) CancelRun(ctx context.Context, req *CancelRunRequest) (*CancelRunResponse, error) {
	out := new(CancelRunResponse)
	if err := c.cc.Invoke(ctx, "/"+controlPlaneServiceName+"/CancelRun", req, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}
