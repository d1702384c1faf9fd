package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/semaflow-labs/semaflow/request"
	"github.com/semaflow-labs/semaflow/semaerr"
)

func (s *Server) logger(r *http.Request) logrus.FieldLogger {
	return s.log.WithField("request_id", correlationIDFromContext(r.Context()))
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, semaerr.HTTPStatus(err), map[string]string{"error": err.Error()})
}

// handleListFlows serves GET /flows → { flows: { name -> description|null } }.
func (s *Server) handleListFlows(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"flows": s.handle.ListFlows()})
}

// handleGetFlow serves GET /flows/{flow} → the flow's schema view.
func (s *Server) handleGetFlow(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "flow")
	schema, err := s.handle.GetFlow(name)
	if err != nil {
		s.logger(r).WithError(err).Warn("get flow failed")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, schema)
}

// handleQuery serves POST /flows/{flow}/query, executing the request body
// against the named flow and returning either {rows} or the paginated
// {rows, cursor, has_more} shape (§6).
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req request.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, semaerr.ErrUnsupportedOp.New("request body is not valid JSON"))
		return
	}
	req.Flow = chi.URLParam(r, "flow")

	result, err := s.handle.Execute(r.Context(), req)
	if err != nil {
		s.logger(r).WithError(err).WithField("flow", req.Flow).Warn("query failed")
		writeError(w, err)
		return
	}

	if req.UsesCursorPagination() {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"rows": result.Rows, "cursor": result.Cursor, "has_more": result.HasMore,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"rows": result.Rows})
}
