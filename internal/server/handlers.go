package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/shashin/internal/models"
	"github.com/hyperjump/shashin/internal/search"
	"github.com/hyperjump/shashin/internal/storage"
	"go.uber.org/zap"
)

type assetResponse struct {
	models.ManifestAsset
	Caption  string `json:"caption,omitempty"`
	Embedded bool   `json:"embedded"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	engine := s.currentEngine()
	if engine == nil {
		s.respondError(w, http.StatusServiceUnavailable, "no embedding index, run embed first")
		return
	}
	var query models.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("search request", zap.String("query", query.Query), zap.Int("limit", query.Limit))
	if strings.TrimSpace(query.Query) == "" {
		s.respondError(w, http.StatusBadRequest, "query cannot be empty")
		return
	}
	response, err := engine.Search(r.Context(), &query)
	if errors.Is(err, search.ErrSemanticUnavailable) {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		s.respondError(w, http.StatusBadRequest, "invalid asset id")
		return
	}
	manifest, err := s.storage.LoadManifest(r.Context())
	if err != nil {
		s.logger.Error("load manifest failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if manifest == nil {
		s.respondError(w, http.StatusNotFound, "asset not found")
		return
	}
	for _, a := range manifest.Assets {
		if a.ID != id {
			continue
		}
		resp := assetResponse{ManifestAsset: a}
		if engine := s.currentEngine(); engine != nil {
			if rec, ok := engine.Record(id); ok {
				resp.Caption = rec.Description
				resp.Embedded = true
			}
		}
		s.respondJSON(w, http.StatusOK, resp)
		return
	}
	s.respondError(w, http.StatusNotFound, "asset not found")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	manifest, err := s.storage.LoadManifest(ctx)
	if err != nil {
		s.logger.Error("status: load manifest failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	index, err := s.storage.LoadIndex(ctx)
	if err != nil {
		s.logger.Error("status: load index failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]interface{}{
		"assets":     0,
		"embeddings": 0,
	}
	if manifest != nil {
		resp["assets"] = len(manifest.Assets)
		resp["built_at"] = manifest.GeneratedAt
		resp["image_format"] = manifest.ImageFormat
	}
	if index != nil {
		resp["embeddings"] = len(index.Embeddings)
		resp["model"] = index.Model
		resp["embedded_at"] = index.GeneratedAt
		resp["dimensions"] = index.Dimensions()
	}
	resp["search_ready"] = s.currentEngine() != nil

	if usage, err := storage.Usage(s.storage.Paths()...); err == nil {
		resp["disk_usage_bytes"] = usage.Bytes
	}
	ext := "." + s.config.Thumbnail.Ext()
	thumbs, err := storage.MatchingUsage(s.config.Gallery.SiteDir, func(name string) bool {
		return strings.HasSuffix(name, ext)
	})
	if err == nil {
		resp["thumbnails"] = thumbs.Files
		resp["thumbnail_bytes"] = thumbs.Bytes
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
