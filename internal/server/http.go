package server

import (
	"encoding/json"
	"net/http"

	"github.com/salinityengine/salinity/internal/core/document"
	"github.com/salinityengine/salinity/internal/core/observability/log"
)

const maxSceneBytes = 32 << 20

var contentTypes = map[document.Format]string{
	document.FormatJSON: "application/json",
	document.FormatYAML: "application/yaml",
	document.FormatCBOR: "application/cbor",
}

// requestFormat reads the "format" query parameter, falling back to def.
func requestFormat(r *http.Request, def document.Format) (document.Format, error) {
	if f := r.URL.Query().Get("format"); f != "" {
		return document.ParseFormat(f)
	}
	return def, nil
}

func (s *Server) handleGetScene(w http.ResponseWriter, r *http.Request) {
	format, err := requestFormat(r, document.FormatJSON)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	doc := s.live.Snapshot()
	if fp, err := document.Fingerprint(doc); err == nil {
		w.Header().Set("X-Scene-Fingerprint", formatHex(fp))
	}
	w.Header().Set("Content-Type", contentTypes[format])
	if err := document.Encode(w, doc, format); err != nil {
		s.logger.Warn("encode scene", log.Error(err))
	}
}

func (s *Server) handlePutScene(w http.ResponseWriter, r *http.Request) {
	format, err := requestFormat(r, document.FormatJSON)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	doc, err := document.Decode(http.MaxBytesReader(w, r.Body, maxSceneBytes), format)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.live.Replace(doc); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	s.logger.Info("scene replaced", log.String("name", doc.Name), log.String("root", doc.Root.ID))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		http.Error(w, "missing path", http.StatusBadRequest)
		return
	}
	results, err := document.Query(s.live.Snapshot(), path)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"clients": s.hub.count(),
		"events":  s.events.Metrics().Published,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
