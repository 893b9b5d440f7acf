package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nvoss/goalfeed/internal/adapters/objstore"
	"github.com/nvoss/goalfeed/pkg/metrics"
)

// VideoHandler streams object store content to clients, translating HTTP
// Range requests into partial-object reads. It is a pure streaming proxy:
// nothing is buffered beyond io.Copy's chunk.
type VideoHandler struct {
	objects objstore.ObjectStore
}

// NewVideoHandler creates a new video proxy handler.
func NewVideoHandler(objects objstore.ObjectStore) *VideoHandler {
	return &VideoHandler{objects: objects}
}

// HandleInline handles GET /video/{bucket}/* requests.
func (h *VideoHandler) HandleInline(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, false)
}

// HandleDownload handles GET /download/{bucket}/* requests. The attachment
// disposition forces a download; some mobile browsers otherwise attempt
// inline playback regardless of content type.
func (h *VideoHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, true)
}

func (h *VideoHandler) serve(w http.ResponseWriter, r *http.Request, download bool) {
	bucket := chi.URLParam(r, "bucket")
	objectPath := chi.URLParam(r, "*")
	if bucket == "" || objectPath == "" {
		writeError(w, http.StatusNotFound, "not_found", "")
		return
	}

	ctx := r.Context()
	info, err := h.objects.Stat(ctx, bucket, objectPath)
	if err != nil {
		// Store-internal details must not leak beyond a generic message.
		if errors.Is(err, objstore.ErrObjectNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "object not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", "")
		return
	}

	disposition := "inline"
	if download {
		disposition = "attachment"
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(objectPath)))
	}

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Accept-Ranges", "bytes")

	start, end, ranged := parseRange(r.Header.Get("Range"), info.Size)
	if ranged && start >= info.Size {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", info.Size))
		writeError(w, http.StatusRequestedRangeNotSatisfiable, "range_not_satisfiable", "")
		return
	}

	var (
		reader io.ReadCloser
		status int
		length int64
	)
	if ranged {
		length = end - start + 1
		status = http.StatusPartialContent
		w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, info.Size))
		reader, err = h.objects.Open(ctx, bucket, objectPath, start, length)
	} else {
		length = info.Size
		status = http.StatusOK
		reader, err = h.objects.Open(ctx, bucket, objectPath, 0, -1)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "")
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Length", strconv.FormatInt(length, 10))
	w.WriteHeader(status)

	n, copyErr := io.Copy(w, reader)
	metrics.RecordProxyBytes(n)
	metrics.RecordProxyRequest(disposition, strconv.Itoa(status))
	_ = copyErr // client disconnects mid-stream are routine
}

// parseRange parses a "bytes=start-end" header against the object size. An
// absent end means through the last byte; a supplied end past the object is
// clamped. Anything unparseable (including multi-range and suffix forms)
// reports ok=false so the caller falls back to full-object streaming.
func parseRange(header string, size int64) (start, end int64, ok bool) {
	if header == "" || !strings.HasPrefix(header, "bytes=") {
		return 0, 0, false
	}
	spec := strings.TrimPrefix(header, "bytes=")
	if strings.Contains(spec, ",") {
		return 0, 0, false
	}
	parts := strings.SplitN(spec, "-", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
		return 0, 0, false
	}

	start, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil || start < 0 {
		return 0, 0, false
	}

	end = size - 1
	if endStr := strings.TrimSpace(parts[1]); endStr != "" {
		e, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil || e < start {
			return 0, 0, false
		}
		if e < size {
			end = e
		}
	}
	return start, end, true
}
