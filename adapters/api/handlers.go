package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"goeffect/app"
	"goeffect/domain/core"
	"goeffect/domain/dataset"
	"goeffect/domain/standard"
	"goeffect/internal/render"
)

// standardizeRequest is the JSON envelope for one standardization job.
type standardizeRequest struct {
	DatasetName string            `json:"dataset_name,omitempty"`
	Columns     []dataset.Column  `json:"columns"`
	Spec        dataset.ModelSpec `json:"spec"`
	Request     standard.Request  `json:"request"`
}

type compareRequest struct {
	standardizeRequest
	Methods []standard.Method `json:"methods"`
}

type groupDifferenceRequest struct {
	Columns []dataset.Column `json:"columns"`
	Value   string           `json:"value"`
	Factor  string           `json:"factor"`
}

type nestedF2Request struct {
	Columns []dataset.Column  `json:"columns"`
	Reduced dataset.ModelSpec `json:"reduced"`
	Full    dataset.ModelSpec `json:"full"`
	Seed    int64             `json:"seed,omitempty"`
}

func (s *Server) handleStandardize(w http.ResponseWriter, r *http.Request) {
	var req standardizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	rep, err := s.service.Standardize(r.Context(), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	methods := req.Methods
	if len(methods) == 0 {
		methods = standard.Methods()
	}

	tables, err := s.service.Compare(r.Context(), in, methods)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tables)
}

func (s *Server) handleGroupDifference(w http.ResponseWriter, r *http.Request) {
	var req groupDifferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	data, err := dataset.NewTable(req.Columns)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	values, err := s.service.GroupDifference(r.Context(), data, req.Value, req.Factor)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, values)
}

func (s *Server) handleNestedF2(w http.ResponseWriter, r *http.Request) {
	var req nestedF2Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	data, err := dataset.NewTable(req.Columns)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	value, err := s.service.NestedF2(r.Context(), data, req.Reduced, req.Full, req.Seed)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, value)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	reports, err := s.service.ListReports(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseReportID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	rep, err := s.service.GetReport(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleReportHTML(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseReportID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	rep, err := s.service.GetReport(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(render.HTML(rep))
}

func (req standardizeRequest) toInput() (app.StandardizeInput, error) {
	data, err := dataset.NewTable(req.Columns)
	if err != nil {
		return app.StandardizeInput{}, err
	}
	return app.StandardizeInput{
		DatasetName: req.DatasetName,
		Data:        data,
		Spec:        req.Spec,
		Request:     req.Request,
	}, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// writeDomainError maps domain errors to HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case core.IsNotFoundError(err):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, core.ErrUnknownMethod),
		errors.Is(err, core.ErrMissingGrouping),
		errors.Is(err, core.ErrMissingDesignMatrix),
		errors.Is(err, core.ErrIncompatibleModels),
		errors.Is(err, core.ErrInsufficientData),
		core.IsDegenerateColumnError(err):
		writeError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, core.ErrRefit):
		writeError(w, http.StatusBadGateway, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
