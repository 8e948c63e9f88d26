package grpc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/rezkam/bulkscroll/internal/audit"
	"github.com/rezkam/bulkscroll/internal/domain"
	"github.com/rezkam/bulkscroll/internal/engine"
	"github.com/rezkam/bulkscroll/internal/wire"
)

// TransformFactory builds the DocumentTransform for one accepted run, given
// its operation tag and (for reindex) destination index.
type TransformFactory func(opType, destinationIndex string) (engine.DocumentTransform, error)

// Authorizer gates StartRun/CancelRun (spec §"Admin surface
// authentication"); GetStatus never calls it. Implementations typically
// wrap internal/auth.Authenticator.
type Authorizer interface {
	Authorize(ctx context.Context) error
}

// Server implements ControlPlaneServer: it admits runs, drives them
// through engine.ScrollDriver, records their lifecycle in an audit.Store,
// and answers status/cancel requests against whichever runs are still
// in-process.
type Server struct {
	Backend   engine.SearchClient
	Audit     audit.Store
	Transform TransformFactory
	Pool      engine.WorkerPool
	Authz     Authorizer // nil disables authorization entirely

	mu      sync.Mutex
	drivers map[domain.RequestID]*runningDriver
}

// runningDriver pairs a live ScrollDriver with the operation tag GetStatus
// needs to pick the right wire.Variant.
type runningDriver struct {
	driver *engine.ScrollDriver
	opType string
}

var _ ControlPlaneServer = (*Server)(nil)

func NewServer(backend engine.SearchClient, store audit.Store, transform TransformFactory) *Server {
	return &Server{
		Backend:   backend,
		Audit:     store,
		Transform: transform,
		drivers:   make(map[domain.RequestID]*runningDriver),
	}
}

func (s *Server) StartRun(ctx context.Context, req *StartRunRequest) (*StartRunResponse, error) {
	if err := s.authorize(ctx); err != nil {
		return nil, err
	}

	conflicts, err := domain.NewConflictBehavior(req.Conflicts)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	opts := []domain.Option{
		domain.WithSearchSource(domain.SearchSource(req.SearchSource)),
		domain.WithSize(int(req.Size)),
		domain.WithConflicts(conflicts),
		domain.WithRefresh(req.Refresh),
		domain.WithContext(req.Context),
		domain.WithHeaders(req.Headers),
	}
	if req.Timeout != nil {
		opts = append(opts, domain.WithTimeout(req.Timeout.AsDuration()))
	}
	if req.Consistency != "" {
		opts = append(opts, domain.WithConsistency(domain.ConsistencyLevel(req.Consistency)))
	}
	if req.ScrollKeepalive != nil {
		opts = append(opts, domain.WithScrollKeepalive(req.ScrollKeepalive.AsDuration()))
	}
	if req.RetryBackoffInitial != nil && req.MaxRetries > 0 {
		opts = append(opts, domain.WithRetryPolicy(req.RetryBackoffInitial.AsDuration(), int(req.MaxRetries)))
	}

	domainReq := domain.NewRequest(opts...)
	if err := domainReq.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	transform, err := s.Transform(req.OpType, req.DestinationIndex)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	acceptedAt := time.Now().UTC()
	if err := s.Audit.Accept(ctx, domainReq.ID, req.OpType, acceptedAt); err != nil {
		return nil, status.Errorf(codes.Internal, "failed to record run: %s", err)
	}

	listener := &auditListener{server: s, id: domainReq.ID}
	driver := engine.NewScrollDriver(domainReq, s.Backend, transform, listener, s.Pool)

	s.mu.Lock()
	s.drivers[domainReq.ID] = &runningDriver{driver: driver, opType: req.OpType}
	s.mu.Unlock()

	go func() {
		runCtx := context.Background()
		if propagated, ok := PropagatedFromContext(ctx); ok {
			runCtx = ContextWithPropagated(runCtx, propagated)
		}
		_ = s.Audit.MarkRunning(runCtx, domainReq.ID)
		driver.Run(runCtx, "2.3.0")

		s.mu.Lock()
		delete(s.drivers, domainReq.ID)
		s.mu.Unlock()
	}()

	return &StartRunResponse{
		RequestID:  domainReq.ID.String(),
		AcceptedAt: timestamppb.New(acceptedAt),
	}, nil
}

func (s *Server) GetStatus(ctx context.Context, req *GetStatusRequest) (*GetStatusResponse, error) {
	id, err := domain.ParseRequestID(req.RequestID)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request_id")
	}

	s.mu.Lock()
	rd, running := s.drivers[id]
	s.mu.Unlock()
	if running {
		snap, _ := rd.driver.Progress.Snapshot()
		return &GetStatusResponse{
			State:  string(audit.RunRunning),
			Status: wire.NewStatus(snap, variantForOpType(rd.opType)),
		}, nil
	}

	rec, err := s.Audit.Get(ctx, id)
	if err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}
	resp := &GetStatusResponse{State: string(rec.State)}
	if rec.Progress != nil {
		resp.Status = wire.NewStatus(*rec.Progress, variantForOpType(rec.OpType))
	}
	return resp, nil
}

func (s *Server) CancelRun(ctx context.Context, req *CancelRunRequest) (*CancelRunResponse, error) {
	if err := s.authorize(ctx); err != nil {
		return nil, err
	}

	id, err := domain.ParseRequestID(req.RequestID)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid request_id")
	}

	s.mu.Lock()
	rd, running := s.drivers[id]
	s.mu.Unlock()
	if !running {
		return &CancelRunResponse{Accepted: false}, nil
	}

	reason := req.Reason
	if reason == "" {
		reason = "cancel requested"
	}
	rd.driver.Cancel(reason)
	return &CancelRunResponse{Accepted: true}, nil
}

func (s *Server) authorize(ctx context.Context) error {
	if s.Authz == nil {
		return nil
	}
	if err := s.Authz.Authorize(ctx); err != nil {
		return status.Error(codes.Unauthenticated, err.Error())
	}
	return nil
}

func variantForOpType(opType string) wire.Variant {
	switch opType {
	case "delete_by_query":
		return wire.VariantDeleteOnly
	case "update_by_query":
		return wire.VariantUpdateOnly
	default:
		return wire.VariantGeneric
	}
}

// auditListener adapts engine.Listener to audit.Store, recording the
// terminal outcome of exactly one run (invariant I3 guarantees exactly one
// of OnResponse/OnError fires).
type auditListener struct {
	server *Server
	id     domain.RequestID
}

func (l *auditListener) OnResponse(resp domain.Response) {
	_ = l.server.Audit.Complete(context.Background(), l.id, resp, time.Now().UTC())
}

func (l *auditListener) OnError(err error) {
	_ = l.server.Audit.Fail(context.Background(), l.id, fmt.Sprint(err), time.Now().UTC())
}
