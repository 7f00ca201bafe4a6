package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/diewo77/go-commandes/httpx"
	"github.com/diewo77/go-commandes/i18n"
	"github.com/diewo77/go-commandes/internal/catalog"
	"github.com/diewo77/go-commandes/internal/export"
)

// DataHandler serves the whole catalog: read, reload and JSON backup.
type DataHandler struct {
	ws  Workspaces
	now func() time.Time
}

func NewDataHandler(ws Workspaces) *DataHandler {
	return &DataHandler{ws: ws, now: time.Now}
}

func (h *DataHandler) Register(mux *http.ServeMux) {
	mux.Handle("GET /api/data", protect(h.data))
	mux.Handle("POST /api/reload", protect(h.reload))
	mux.Handle("GET /api/export", protect(h.export))
}

type dataResponse struct {
	catalog.Snapshot
	LoadedAt time.Time `json:"loadedAt"`
}

func (h *DataHandler) data(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(h.ws, w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, dataResponse{Snapshot: ws.Snapshot(), LoadedAt: ws.LoadedAt()})
}

func (h *DataHandler) reload(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(h.ws, w, r)
	if !ok {
		return
	}
	if err := ws.Load(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "reload failed", "err", err)
		httpx.JSONErrorMessage(w, http.StatusBadGateway, "load_failed", i18n.T(lang(r), "load_failed"), nil)
		return
	}
	respond(w, r, http.StatusOK, dataResponse{Snapshot: ws.Snapshot(), LoadedAt: ws.LoadedAt()}, "data_loaded")
}

func (h *DataHandler) export(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(h.ws, w, r)
	if !ok {
		return
	}
	body, err := export.BackupJSON(ws.Snapshot())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.Attachment(w, export.BackupFilename(h.now()), "application/json", body)
}
