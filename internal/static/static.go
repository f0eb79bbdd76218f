// Package static serves the landing page and its stylesheet.
package static

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"io/fs"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

//go:embed assets
var assets embed.FS

const indexKey = "index.html"

// PageSource fetches a page by key from somewhere other than the binary.
type PageSource interface {
	Download(ctx context.Context, key string) ([]byte, string, error)
}

// Site serves "/" and "/public/*".
type Site struct {
	files  fs.FS
	source PageSource
	log    zerolog.Logger
}

// NewSite returns a Site backed by the embedded assets. source may be nil;
// when set, the landing page is read from it and the embedded page is the fallback.
func NewSite(source PageSource, log zerolog.Logger) *Site {
	files, err := fs.Sub(assets, "assets")
	if err != nil {
		panic(err)
	}
	return &Site{files: files, source: source, log: log}
}

// Index writes the landing page.
func (s *Site) Index(w http.ResponseWriter, r *http.Request) {
	if s.source != nil {
		data, ct, err := s.source.Download(r.Context(), indexKey)
		if err == nil {
			if ct == "" {
				ct = "text/html; charset=utf-8"
			}
			w.Header().Set("Content-Type", ct)
			w.Write(data)
			return
		}
		s.log.Warn().Err(err).Msg("landing page source failed, serving embedded copy")
	}

	data, err := fs.ReadFile(s.files, indexKey)
	if err != nil {
		s.log.Error().Err(err).Msg("embedded landing page missing")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	http.ServeContent(w, r, indexKey, time.Time{}, bytes.NewReader(data))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// Public serves embedded assets; mount it with the /public/ prefix stripped.
func (s *Site) Public() http.Handler {
	return http.FileServer(http.FS(s.files))
}
