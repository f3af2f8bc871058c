package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/TFMV/communitygraph/render"
)

// handleGraph returns the graph with live positions, optionally narrowed to
// one category
func (s *Server) handleGraph() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		graph := s.positioned()
		if category := r.URL.Query().Get("category"); category != "" {
			if _, err := graph.FindNodeByID(category); err != nil {
				http.Error(w, "Category not found", http.StatusNotFound)
				return
			}
			graph = graph.FilterByCategory(category)
		}
		s.writeJSON(w, http.StatusOK, graph)
	}
}

// handlePositions returns the latest snapshot
func (s *Server) handlePositions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, s.engine.Snapshot())
	}
}

// handleRender draws the current layout in the requested format
func (s *Server) handleRender() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		options := s.cfg.Render
		query := r.URL.Query()

		format := query.Get("format")
		if format == "" {
			format = options.Format
		}
		options.Format = format

		if v := query.Get("width"); v != "" {
			width, err := strconv.ParseFloat(v, 64)
			if err != nil || width <= 0 {
				http.Error(w, "Invalid width", http.StatusBadRequest)
				return
			}
			options.Width = width
		}
		if v := query.Get("height"); v != "" {
			height, err := strconv.ParseFloat(v, 64)
			if err != nil || height <= 0 {
				http.Error(w, "Invalid height", http.StatusBadRequest)
				return
			}
			options.Height = height
		}

		renderer, err := render.GetRenderer(format)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		graph := s.positioned()
		if category := query.Get("category"); category != "" {
			graph = graph.FilterByCategory(category)
		}

		output, err := renderer.Render(graph, &options)
		if err != nil {
			s.logger.Error("render failed", "format", format, "error", err)
			http.Error(w, "Error rendering graph", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", contentType(strings.ToLower(format)))
		if _, err := w.Write(output); err != nil {
			s.logger.Warn("error writing response", "path", r.URL.Path, "error", err)
		}
	}
}

func (s *Server) handlePin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.engine.Pin(r.PathValue("id")) {
			http.Error(w, "Node not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleUnpin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.engine.Unpin(r.PathValue("id")) {
			http.Error(w, "Node not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handlePosition moves a node; the move is visible to every client at once
func (s *Server) handlePosition() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			X *float64 `json:"x"`
			Y *float64 `json:"y"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.X == nil || body.Y == nil {
			http.Error(w, "Body must be {\"x\": number, \"y\": number}", http.StatusBadRequest)
			return
		}
		if !s.engine.SetPosition(r.PathValue("id"), *body.X, *body.Y) {
			http.Error(w, "Node not found", http.StatusNotFound)
			return
		}
		s.loop.Broadcast()
		w.WriteHeader(http.StatusNoContent)
	}
}

func contentType(format string) string {
	switch format {
	case "svg":
		return "image/svg+xml"
	case "json":
		return "application/json"
	case "echarts", "html":
		return "text/html; charset=utf-8"
	case "dot":
		return "text/vnd.graphviz"
	default:
		return "text/plain; charset=utf-8"
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		s.logger.Warn("error writing response", "error", err)
	}
}
