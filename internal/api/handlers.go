package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"fortio.org/log"

	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/bim"
)

// ErrorBody is the JSON body of every non-2xx response.
type ErrorBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("Encoding response: %v", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorBody{Message: msg})
}

// writeError maps repository errors to status codes. notFoundMsg is what a
// 404 tells the caller.
func writeError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, bim.ErrNotFound):
		writeMessage(w, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, bim.ErrInvalidFilter):
		writeMessage(w, http.StatusBadRequest, err.Error())
	default:
		log.Errf("%s %s: %v", r.Method, r.URL.Path, err)
		writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleUpload(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusNotImplemented, "not implemented")
}

func (s *Server) listBridges(w http.ResponseWriter, r *http.Request) {
	list, err := s.bridges.ListBridges(r.Context())
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) getBridge(w http.ResponseWriter, r *http.Request) {
	b, err := s.bridges.GetBridge(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, "bridge not found")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) listModels(w http.ResponseWriter, r *http.Request) {
	list, err := s.models.ListModels(r.Context())
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) modelByBridge(w http.ResponseWriter, r *http.Request) {
	m, err := s.models.ModelByBridge(r.Context(), r.PathValue("bridgeId"))
	if err != nil {
		writeError(w, r, err, "BIM model not found")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) getModel(w http.ResponseWriter, r *http.Request) {
	m, err := s.models.Model(r.Context(), r.PathValue("modelId"))
	if err != nil {
		writeError(w, r, err, "BIM model not found")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// parseFilter decodes the optional JSON "filter" query parameter.
func parseFilter(r *http.Request) (bim.Filter, error) {
	var f bim.Filter
	raw := r.URL.Query().Get("filter")
	if raw == "" {
		return f, nil
	}
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		return f, fmt.Errorf("%w: %v", bim.ErrInvalidFilter, err)
	}
	return f, nil
}

// parsePage reads page and pageSize. paged is false when neither is set.
func parsePage(r *http.Request) (page, size int, paged bool, err error) {
	q := r.URL.Query()
	ps, ss := q.Get("page"), q.Get("pageSize")
	if ps == "" && ss == "" {
		return 0, 0, false, nil
	}
	page, size = 1, 20
	if ps != "" {
		if page, err = strconv.Atoi(ps); err != nil || page < 1 {
			return 0, 0, true, fmt.Errorf("invalid page %q", ps)
		}
	}
	if ss != "" {
		if size, err = strconv.Atoi(ss); err != nil || size < 1 {
			return 0, 0, true, fmt.Errorf("invalid pageSize %q", ss)
		}
	}
	return page, size, true, nil
}

// listComponents returns a plain array, or a SearchResult page when page or
// pageSize is given.
func (s *Server) listComponents(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	page, size, paged, err := parsePage(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	list, err := s.models.Components(r.Context(), r.PathValue("modelId"), f)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	if paged {
		writeJSON(w, http.StatusOK, bim.Paginate(list, page, size))
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) getComponent(w http.ResponseWriter, r *http.Request) {
	c, err := s.models.Component(r.Context(), r.PathValue("modelId"), r.PathValue("componentId"))
	if err != nil {
		writeError(w, r, err, "component not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) getGeometry(w http.ResponseWriter, r *http.Request) {
	g, err := s.models.Geometry(r.Context(), r.PathValue("modelId"), r.PathValue("componentId"))
	if err != nil {
		writeError(w, r, err, "geometry not found")
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) listRelationships(w http.ResponseWriter, r *http.Request) {
	rels, err := s.models.Relationships(r.Context(), r.PathValue("modelId"))
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, rels)
}
