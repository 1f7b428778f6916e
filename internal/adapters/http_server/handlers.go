package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"hotel_recommender/internal/app"
	"hotel_recommender/internal/domain"
	"hotel_recommender/internal/validation"
)

const maxBodyBytes = 1 << 20

type Handlers struct{ Recs *app.RecommendationService }

type problem struct {
	Type   string                  `json:"type"`
	Title  string                  `json:"title"`
	Status int                     `json:"status"`
	Detail string                  `json:"detail,omitempty"`
	Fields []validation.FieldError `json:"fields,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Post("/v1/recommendations", h.recommend)
	s.mux.Get("/v1/model", h.getModel)
	s.mux.Post("/v1/model/reload", h.reloadModel)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	writeProblemFields(w, status, title, detail, nil)
}

func writeProblemFields(w http.ResponseWriter, status int, title, detail string, fields []validation.FieldError) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	p := problem{Type: "about:blank", Title: title, Status: status, Detail: detail, Fields: fields}
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps domain errors onto problem responses.
func writeError(w http.ResponseWriter, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		writeProblemFields(w, http.StatusBadRequest, "Invalid preference", err.Error(), verr.Fields)
	case errors.Is(err, domain.ErrInvalidParameter):
		writeProblem(w, http.StatusBadRequest, "Invalid parameter", err.Error())
	case errors.Is(err, domain.ErrModelNotFitted):
		writeProblem(w, http.StatusServiceUnavailable, "Model not available", "no trained model is loaded")
	case errors.Is(err, domain.ErrSchemaMismatch):
		writeProblem(w, http.StatusUnprocessableEntity, "Schema mismatch", err.Error())
	case errors.Is(err, domain.ErrInputNotFound), errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	default:
		log.Error().Err(err).Msg("unhandled error")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func (h *Handlers) recommend(w http.ResponseWriter, r *http.Request) {
	var req app.RecommendRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}

	// ?k= wins over the body
	if ks := r.URL.Query().Get("k"); ks != "" {
		k, err := strconv.Atoi(ks)
		if err != nil || k <= 0 {
			writeProblem(w, http.StatusBadRequest, "Invalid k", "k must be a positive integer")
			return
		}
		req.K = &k
	}

	res, err := h.Recs.Recommend(r.Context(), req)
	if req.K != nil {
		annotate(r, func(f *reqFields) { f.k = *req.K })
	}
	if err != nil {
		writeError(w, err)
		return
	}
	annotate(r, func(f *reqFields) { f.modelID, f.count = res.ModelID, res.Count })
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) getModel(w http.ResponseWriter, r *http.Request) {
	info, err := h.Recs.Model()
	if err != nil {
		writeError(w, err)
		return
	}

	etag, body := calcETagAndBody(info)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write getModel body")
	}
}

// reloadModel picks up a model written by `hotelrec train` without a restart.
func (h *Handlers) reloadModel(w http.ResponseWriter, r *http.Request) {
	if err := h.Recs.Reload(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	info, _ := h.Recs.Model()
	writeJSON(w, http.StatusOK, info)
}
