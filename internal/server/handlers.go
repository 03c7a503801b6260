package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/jonathan/job-verifier/internal/pipeline"
	"github.com/jonathan/job-verifier/internal/types"
)

// decode reads a JSON body into dst and validates it. It writes the 400 itself.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		s.errorResponse(w, http.StatusBadRequest, validationError(err).Error())
		return false
	}
	return true
}

// handleVerify fetches and verifies the posting at the requested URL.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req types.VerifyRequest
	if !s.decode(w, r, &req) {
		return
	}

	res, err := s.verifier.ProcessJob(r.Context(), req.URL)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, res)
}

// handleAnalyze verifies a posting the caller has already scraped.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var posting types.Posting
	if !s.decode(w, r, &posting) {
		return
	}

	res, err := s.verifier.ProcessPosting(r.Context(), &posting)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, res)
}

// handleVerifyStream verifies a URL and streams stage progress via SSE,
// ending with a "result" event.
func (s *Server) handleVerifyStream(w http.ResponseWriter, r *http.Request) {
	var req types.VerifyRequest
	if !s.decode(w, r, &req) {
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	ctx := pipeline.ContextWithProgress(r.Context(), func(event pipeline.ProgressEvent) {
		if err := sse.WriteEvent(eventStep, event); err != nil {
			zap.L().Debug("server: write SSE event", zap.Error(err))
		}
	})

	res, err := s.verifier.ProcessJob(ctx, req.URL)
	if err != nil {
		sse.WriteError(err.Error())
		return
	}
	sse.WriteResult(res)
}
