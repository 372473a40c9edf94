package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/VinayRevanuruBB/Vin-Decode/internal/core"
	"github.com/VinayRevanuruBB/Vin-Decode/internal/logging"
)

// maxSelectBody bounds selection request bodies; selections are tiny.
const maxSelectBody = 4 * 1024

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := staticFiles.ReadFile("static/index.html")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":   "ok",
		"sessions": s.service.SessionCount(),
	})
}

func (s *Server) handleYears(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string][]int{"years": core.Years()})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	state, err := s.service.State(sessionID(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, state)
}

func (s *Server) decodeSelect(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxSelectBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode selection: %w: %w", core.ErrInvalidSelection, err)
	}
	return nil
}

func (s *Server) handleSelectYear(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Year int `json:"year"`
	}
	if err := s.decodeSelect(r, &body); err != nil {
		s.respondError(w, r, err)
		return
	}

	err := s.service.SelectYear(r.Context(), sessionID(r), body.Year)
	if err != nil {
		// Pagination failures keep partial rows on the session; anything
		// else is a hard stop for this request.
		var listingErr *core.ListingFetchError
		if !errors.As(err, &listingErr) {
			s.respondError(w, r, err)
			return
		}
		logging.FromContext(r.Context()).Warn("listing fetch aborted",
			"year", body.Year, "error", err.Error())
	}

	s.respondState(w, r, err)
}

func (s *Server) handleSelectMake(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Make string `json:"make"`
	}
	if err := s.decodeSelect(r, &body); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.service.SelectMake(sessionID(r), body.Make); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondState(w, r, nil)
}

func (s *Server) handleSelectVersion(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Version string `json:"version"`
	}
	if err := s.decodeSelect(r, &body); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.service.SelectVersion(sessionID(r), body.Version); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondState(w, r, nil)
}

// stateResponse is the selection state plus an optional warning describing
// a non-fatal failure from the transition that produced it.
type stateResponse struct {
	core.SelectionState
	Warning *ErrorResponse `json:"warning,omitempty"`
}

func (s *Server) respondState(w http.ResponseWriter, r *http.Request, warn error) {
	state, err := s.service.State(sessionID(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	resp := stateResponse{SelectionState: state}
	if warn != nil {
		msg := core.MapError(warn)
		resp.Warning = &ErrorResponse{
			Error:   msg.Message,
			Message: msg.Message,
			Action:  msg.Action,
			Code:    msg.Code,
		}
	}
	writeJSON(w, resp)
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	s.serveDocument(w, r, false)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	s.serveDocument(w, r, true)
}

func (s *Server) serveDocument(w http.ResponseWriter, r *http.Request, download bool) {
	doc, err := s.service.Document(r.Context(), sessionID(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	disposition := "inline"
	if download {
		disposition = "attachment"
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Bytes)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, doc.Filename))
	w.Write(doc.Bytes)
}
