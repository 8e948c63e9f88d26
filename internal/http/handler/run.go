package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	grpctransport "github.com/rezkam/bulkscroll/internal/transport/grpc"

	"github.com/rezkam/bulkscroll/internal/http/response"
)

// StartRun handles POST /v1/runs: it decodes the envelope from the request
// body and admits it through the same path StartRun's gRPC handler uses.
func (s *Server) StartRun(w http.ResponseWriter, r *http.Request) {
	var req grpctransport.StartRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "malformed request body")
		return
	}

	resp, err := s.Control.StartRun(r.Context(), &req)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.Created(w, resp)
}

// GetStatus handles GET /v1/runs/{request_id}/status.
func (s *Server) GetStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "request_id")
	resp, err := s.Control.GetStatus(r.Context(), &grpctransport.GetStatusRequest{RequestID: id})
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, resp)
}

// CancelRun handles POST /v1/runs/{request_id}/cancel.
func (s *Server) CancelRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "request_id")

	var body struct {
		Reason string `json:"reason"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	resp, err := s.Control.CancelRun(r.Context(), &grpctransport.CancelRunRequest{
		RequestID: id,
		Reason:    body.Reason,
	})
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, resp)
}
