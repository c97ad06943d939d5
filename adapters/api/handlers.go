package api

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"strconv"

	"godoe/domain/core"
	"godoe/domain/design"
	"godoe/internal/errors"

	"github.com/go-chi/chi/v5"
)

// SheetPayload is a design or response sheet on the wire. A null cell is an
// unmeasured value.
type SheetPayload struct {
	Rows    int                   `json:"rows"`
	Columns []string              `json:"columns"`
	Numeric map[string][]*float64 `json:"numeric,omitempty"`
	Labels  map[string][]string   `json:"labels,omitempty"`
}

// NewSheetPayload converts a sheet for the wire.
func NewSheetPayload(s *design.Sheet) SheetPayload {
	d := s.Data()
	p := SheetPayload{Rows: d.Rows, Columns: d.Columns, Labels: d.Labels, Numeric: make(map[string][]*float64, len(d.Numeric))}
	for name, col := range d.Numeric {
		cells := make([]*float64, len(col))
		for i, v := range col {
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				cells[i] = &v
			}
		}
		p.Numeric[name] = cells
	}
	return p
}

// Sheet converts the payload back, mapping null cells to NaN.
func (p SheetPayload) Sheet() (*design.Sheet, error) {
	d := design.SheetData{Rows: p.Rows, Columns: p.Columns, Labels: p.Labels, Numeric: make(map[string][]float64, len(p.Numeric))}
	for name, cells := range p.Numeric {
		col := make([]float64, len(cells))
		for i, c := range cells {
			col[i] = math.NaN()
			if c != nil {
				col[i] = *c
			}
		}
		d.Numeric[name] = col
		if d.Rows == 0 {
			d.Rows = len(col)
		}
	}
	if len(d.Columns) == 0 {
		for name := range d.Numeric {
			d.Columns = append(d.Columns, name)
		}
		for name := range d.Labels {
			d.Columns = append(d.Columns, name)
		}
		sort.Strings(d.Columns)
	}
	return design.SheetFromData(d)
}

type phaseRequest struct {
	Phase design.Phase `json:"phase"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeError(w, errors.InvalidInput(fmt.Sprintf("invalid limit %q", raw)))
			return
		}
		limit = n
	}
	recs, err := s.service.ListCampaigns(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, errors.InvalidInput(fmt.Sprintf("read campaign: %v", err)))
		return
	}
	info, err := s.service.CreateCampaign(r.Context(), raw)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

func (s *Server) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	id, ok := s.campaignID(w, r)
	if !ok {
		return
	}
	info, err := s.service.Campaign(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleNextDesign(w http.ResponseWriter, r *http.Request) {
	id, ok := s.campaignID(w, r)
	if !ok {
		return
	}
	sheet, err := s.service.NextDesign(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NewSheetPayload(sheet))
}

func (s *Server) handleSubmitResponses(w http.ResponseWriter, r *http.Request) {
	id, ok := s.campaignID(w, r)
	if !ok {
		return
	}
	var payload SheetPayload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&payload); err != nil {
		s.writeError(w, errors.InvalidInput(fmt.Sprintf("decode responses: %v", err)))
		return
	}
	sheet, err := payload.Sheet()
	if err != nil {
		s.writeError(w, errors.Classify(err))
		return
	}
	out, err := s.service.SubmitResponses(r.Context(), id, sheet)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleReevaluate(w http.ResponseWriter, r *http.Request) {
	id, ok := s.campaignID(w, r)
	if !ok {
		return
	}
	res, err := s.service.ReevaluateScreening(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSetPhase(w http.ResponseWriter, r *http.Request) {
	id, ok := s.campaignID(w, r)
	if !ok {
		return
	}
	var req phaseRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.writeError(w, errors.InvalidInput(fmt.Sprintf("decode phase: %v", err)))
		return
	}
	if err := s.service.SetPhase(r.Context(), id, req.Phase); err != nil {
		s.writeError(w, err)
		return
	}
	info, err := s.service.Campaign(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleIterations(w http.ResponseWriter, r *http.Request) {
	id, ok := s.campaignID(w, r)
	if !ok {
		return
	}
	its, err := s.service.Iterations(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, its)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	id, ok := s.campaignID(w, r)
	if !ok {
		return
	}
	md, err := s.service.Report(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	switch r.URL.Query().Get("format") {
	case "", "html":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(RenderHTML("Campaign report", md))
	case "markdown", "md":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, md)
	default:
		s.writeError(w, errors.InvalidInput(fmt.Sprintf("unknown report format %q", r.URL.Query().Get("format"))))
	}
}

func (s *Server) campaignID(w http.ResponseWriter, r *http.Request) (core.CampaignID, bool) {
	id, err := core.ParseCampaignID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, errors.WithCode(errors.CodeInvalidInput, err))
		return "", false
	}
	return id, true
}
