package handlers

import (
	"net/http"
	"time"

	"github.com/diewo77/go-commandes/httpx"
	"github.com/diewo77/go-commandes/internal/catalog"
	"github.com/diewo77/go-commandes/internal/export"
	"github.com/diewo77/go-commandes/internal/observability"
	"github.com/diewo77/go-commandes/internal/orders"
)

// OrderHandler serves the purchase order aggregated from the reservations.
type OrderHandler struct {
	ws  Workspaces
	now func() time.Time
}

func NewOrderHandler(ws Workspaces) *OrderHandler {
	return &OrderHandler{ws: ws, now: time.Now}
}

func (h *OrderHandler) Register(mux *http.ServeMux) {
	mux.Handle("GET /api/orders", protect(h.list))
	mux.Handle("GET /api/orders.pdf", protect(h.pdf))
}

type orderResponse struct {
	Lines []orders.Line `json:"lines"`
	Total float64       `json:"total"`
}

func (h *OrderHandler) aggregate(r *http.Request, ws *catalog.Workspace) []orders.Line {
	m := observability.StartTiming(r.Context(), "aggregate")
	defer m.Stop()
	return ws.Orders()
}

func (h *OrderHandler) list(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(h.ws, w, r)
	if !ok {
		return
	}
	lines := h.aggregate(r, ws)
	httpx.JSONWithETag(w, r, orderResponse{Lines: lines, Total: orders.Total(lines)})
}

func (h *OrderHandler) pdf(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(h.ws, w, r)
	if !ok {
		return
	}
	lines := h.aggregate(r, ws)
	now := h.now()
	m := observability.StartTiming(r.Context(), "pdf")
	body, err := export.OrderPDF(lang(r), lines, now)
	m.Stop()
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.Attachment(w, export.OrderPDFFilename(now), "application/pdf", body)
}
