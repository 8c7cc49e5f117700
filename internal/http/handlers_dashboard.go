package http

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"payperless/internal/core"
	"payperless/internal/log"
	"payperless/internal/receipts"
)

type dashboardResponse struct {
	Level    string         `json:"level"`
	Category *string        `json:"category,omitempty"`
	Title    string         `json:"title"`
	Series   []displayTotal `json:"series"`
}

type seriesResponse struct {
	Series []displayTotal `json:"series"`
}

type dashboardAllResponse struct {
	Source     string         `json:"source"`
	Categories []displayTotal `json:"categories"`
	Stores     []displayTotal `json:"stores"`
	Days       []displayTotal `json:"days"`
}

// dashboardReceipts loads one snapshot for the request. On failure the
// error response has already been written.
func (s *Server) dashboardReceipts(w http.ResponseWriter, r *http.Request) ([]core.Receipt, bool) {
	list, err := s.dashboard.List(r.Context(), receipts.OrderUpload)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "failed to load dashboard receipts",
			"source", s.dashboardSource, log.FieldError, err.Error())
		writeError(w, r, http.StatusBadGateway, msgLoadFailed)
		return nil, false
	}
	return list, true
}

// handleDashboard serves the drill-down chart. Without ?category= it is the
// overview; with it (even empty) it is that category's item breakdown.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	list, ok := s.dashboardReceipts(w, r)
	if !ok {
		return
	}
	d := core.Overview()
	if q := r.URL.Query(); q.Has("category") {
		d = d.Select(q.Get("category"))
	}
	resp := dashboardResponse{
		Level:  d.Level().String(),
		Title:  d.Title(),
		Series: s.display(d.Series(list)),
	}
	if cat, ok := d.Category(); ok {
		resp.Category = &cat
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleDashboardStores(w http.ResponseWriter, r *http.Request) {
	list, ok := s.dashboardReceipts(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, seriesResponse{Series: s.display(core.ByStore(list))})
}

func (s *Server) handleDashboardDays(w http.ResponseWriter, r *http.Request) {
	list, ok := s.dashboardReceipts(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, seriesResponse{Series: s.display(core.ByDay(list))})
}

// handleDashboardAll computes the three groupings of one snapshot concurrently.
func (s *Server) handleDashboardAll(w http.ResponseWriter, r *http.Request) {
	list, ok := s.dashboardReceipts(w, r)
	if !ok {
		return
	}
	resp := dashboardAllResponse{Source: s.dashboardSource}
	g, _ := errgroup.WithContext(r.Context())
	run := func(dst *[]displayTotal, agg func([]core.Receipt) []core.KeyTotal) {
		g.Go(func() error {
			*dst = s.display(agg(list))
			return nil
		})
	}
	run(&resp.Categories, core.ByCategory)
	run(&resp.Stores, core.ByStore)
	run(&resp.Days, core.ByDay)
	_ = g.Wait()
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleDashboardSource(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"source": s.dashboardSource})
}
