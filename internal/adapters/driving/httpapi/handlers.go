package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/custodia-labs/figsync/internal/core/domain"
	"github.com/custodia-labs/figsync/internal/logger"
)

// maxBodyBytes caps the size of a sync request body.
const maxBodyBytes = 1 << 20

// CacheAssetsRequest is the body of POST /figma/cache-assets.
type CacheAssetsRequest struct {
	FileID  string   `json:"fileId"`
	NodeIDs []string `json:"nodeIds"`
}

// TemplatesResponse wraps the template list.
type TemplatesResponse struct {
	Templates []domain.Template `json:"templates"`
}

// FileVersionResponse carries the upstream version of a file.
type FileVersionResponse struct {
	Version string `json:"version"`
}

// AssetURLResponse carries a public asset URL.
type AssetURLResponse struct {
	URL string `json:"url"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCacheAssets(w http.ResponseWriter, r *http.Request) {
	var req CacheAssetsRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := s.sync.Sync(r.Context(), req.FileID, req.NodeIDs)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := r.URL.Query().Get("jobId")
	if jobID == "" {
		writeError(w, http.StatusBadRequest, "jobId query parameter is required")
		return
	}

	job, err := s.sync.JobStatus(r.Context(), jobID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	fileID := q.Get("fileId")
	pages := splitList(q["pages"])
	if fileID == "" || len(pages) == 0 {
		writeError(w, http.StatusBadRequest, "fileId and pages are required")
		return
	}

	assets, err := s.assets.Assets(r.Context(), fileID, pages)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assets)
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	templates, err := s.assets.Templates(r.Context(), q.Get("fileId"), splitList(q["templateNames"]))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TemplatesResponse{Templates: templates})
}

func (s *Server) handlePages(w http.ResponseWriter, r *http.Request) {
	pages, err := s.assets.Pages(r.Context(), r.URL.Query().Get("fileId"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pages)
}

func (s *Server) handleFileVersion(w http.ResponseWriter, r *http.Request) {
	version, err := s.assets.FileVersion(r.Context(), r.URL.Query().Get("fileId"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FileVersionResponse{Version: version})
}

func (s *Server) handleAssetURL(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pageName, assetID := q.Get("pageName"), q.Get("assetId")
	if pageName == "" || assetID == "" {
		writeError(w, http.StatusBadRequest, "pageName and assetId are required")
		return
	}

	version := 0
	if raw := q.Get("version"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			writeError(w, http.StatusBadRequest, "version must be a non-negative integer")
			return
		}
		version = v
	}

	writeJSON(w, http.StatusOK, AssetURLResponse{
		URL: s.assets.AssetURL(q.Get("fileId"), pageName, assetID, version),
	})
}

// handleCache serves the URLs AssetURL publishes for local backends. The
// key is decoded from the escaped path because PathValue cannot tell a '+'
// that stands for a space from one that was sent as %2B.
func (s *Server) handleCache(w http.ResponseWriter, r *http.Request) {
	escaped, _ := strings.CutPrefix(r.URL.EscapedPath(), cacheRoutePrefix)
	key, err := domain.AssetKeyFromURLPath(escaped)
	if err != nil || key == "" || strings.Contains(key, "..") {
		writeError(w, http.StatusBadRequest, "invalid key")
		return
	}

	data, info, err := s.blobs.Get(r.Context(), key)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if info.ContentType != "" {
		w.Header().Set("Content-Type", info.ContentType)
	}
	if hash := info.Hash(); hash != "" {
		w.Header().Set("ETag", strconv.Quote(hash))
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

// splitList flattens repeated and comma-separated query values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// statusFor maps a service error onto an HTTP status.
func statusFor(err error) int {
	var apiErr *domain.UpstreamAPIError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNoTemplatesFound):
		return http.StatusUnprocessableEntity
	case errors.As(err, &apiErr), errors.Is(err, domain.ErrMalformedDocument):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed: %v", err)
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
