package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/talent-ranker/internal/linkedin"
	"github.com/spigell/talent-ranker/internal/ranking"
	"github.com/spigell/talent-ranker/internal/recommend"
	"github.com/spigell/talent-ranker/internal/talent"
)

const resultFilename = "sorted-contestants.csv"

type urlRequest struct {
	URL string `json:"url"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) processCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("parse upload: %w", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	references, _, err := r.FormFile("file1")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("file1: %w", err))
		return
	}
	defer references.Close()

	contestants, _, err := r.FormFile("file2")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("file2: %w", err))
		return
	}
	defer contestants.Close()

	results, err := s.ranker.RankCSV(r.Context(), references, contestants)
	switch {
	case errors.Is(err, talent.ErrInvalidInput):
		s.writeError(w, http.StatusBadRequest, err)
		return
	case errors.Is(err, ranking.ErrEmptyVector):
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	case err != nil:
		s.writeError(w, http.StatusBadGateway, err)
		return
	}

	contestantsRanked.Add(float64(len(results)))

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", resultFilename))
	w.WriteHeader(http.StatusOK)

	if err := ranking.WriteCSV(w, results); err != nil {
		s.logger.Warn("writing ranking response failed", zap.Error(err))
	}
}

func (s *Server) recommend(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode body: %w", err))
		return
	}

	if strings.TrimSpace(req.URL) == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("url is required"))
		return
	}

	rec, err := s.recommender.Recommend(r.Context(), req.URL)
	switch {
	case errors.Is(err, linkedin.ErrInvalidProfileURL):
		s.writeError(w, http.StatusBadRequest, err)
		return
	case errors.Is(err, linkedin.ErrProfileNotFound):
		s.writeError(w, http.StatusNotFound, err)
		return
	case errors.Is(err, recommend.ErrInsufficientItems):
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	case err != nil:
		s.writeError(w, http.StatusBadGateway, err)
		return
	}

	recommendationsServed.Inc()
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Int("status", status), zap.Error(err))
	} else {
		s.logger.Info("request rejected", zap.Int("status", status), zap.Error(err))
	}

	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
