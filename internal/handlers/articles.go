package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/diewo77/go-commandes/httpx"
	"github.com/diewo77/go-commandes/i18n"
	"github.com/diewo77/go-commandes/internal/catalog"
	"github.com/diewo77/go-commandes/internal/csvimport"
	"github.com/diewo77/go-commandes/validation"
)

type ArticleHandler struct {
	ws Workspaces
}

func NewArticleHandler(ws Workspaces) *ArticleHandler { return &ArticleHandler{ws: ws} }

func (h *ArticleHandler) Register(mux *http.ServeMux) {
	mux.Handle("GET /api/articles", protect(h.list))
	mux.Handle("POST /api/articles", protect(h.create))
	mux.Handle("PATCH /api/articles/{id}", protect(h.update))
	mux.Handle("DELETE /api/articles/{id}", protect(h.delete))
	mux.Handle("POST /api/articles/import", protect(h.importCSV))
}

func validateArticle(p catalog.ArticlePatch) validation.Violations {
	v := make(validation.Violations)
	if p.ProductName != nil {
		validation.Required("productName", *p.ProductName, v)
	}
	if p.PriceHT != nil {
		validation.NonNegativeFloat("priceHT", *p.PriceHT, v)
	}
	if p.PriceTTC != nil {
		validation.NonNegativeFloat("priceTTC", *p.PriceTTC, v)
	}
	if p.VATRate != nil {
		validation.RangeFloat("tvaRate", *p.VATRate, 0, 100, v)
	}
	return v
}

// list returns every article, or those matching ?q= on product, supplier or reference.
func (h *ArticleHandler) list(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(h.ws, w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, ws.SearchArticles(r.URL.Query().Get("q")))
}

func (h *ArticleHandler) create(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(h.ws, w, r)
	if !ok {
		return
	}
	var p catalog.ArticlePatch
	if !decode(w, r, &p) {
		return
	}
	if invalid(w, r, validateArticle(p)) {
		return
	}
	a := catalog.NewArticle()
	if p.Reference != nil {
		a.Reference = *p.Reference
	}
	if p.ProductName != nil {
		a.ProductName = *p.ProductName
	}
	if p.Supplier != nil {
		a.Supplier = *p.Supplier
	}
	if p.Unit != nil {
		a.Unit = *p.Unit
	}
	if p.VATRate != nil {
		a.VATRate = *p.VATRate
	}
	if p.PriceHT != nil {
		a.PriceHT = *p.PriceHT
	}
	if p.PriceTTC != nil {
		a.PriceTTC = *p.PriceTTC
	}
	a, err := ws.AddArticle(r.Context(), a)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, a, "saved")
}

func (h *ArticleHandler) update(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(h.ws, w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var p catalog.ArticlePatch
	if !decode(w, r, &p) {
		return
	}
	if invalid(w, r, validateArticle(p)) {
		return
	}
	a, err := ws.UpdateArticle(r.Context(), id, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, a, "saved")
}

func (h *ArticleHandler) delete(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(h.ws, w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := ws.DeleteArticle(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, nil, "deleted")
}

// importCSV adds every row of the multipart "file" field. A malformed file
// adds nothing.
func (h *ArticleHandler) importCSV(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(h.ws, w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, csvimport.MaxSize+1<<20)
	file, _, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, r, csvimport.ErrTooLarge)
			return
		}
		invalid(w, r, validation.Violations{"file": "required"})
		return
	}
	defer file.Close()

	parsed, err := csvimport.Parse(file)
	if err != nil {
		if errors.Is(err, csvimport.ErrEmptyFile) || errors.Is(err, csvimport.ErrTooLarge) {
			writeError(w, r, err)
			return
		}
		httpx.JSONErrorMessage(w, http.StatusBadRequest, "import_failed", i18n.T(lang(r), "import_failed"), err.Error())
		return
	}
	added, err := ws.ImportArticles(r.Context(), parsed)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, httpx.Envelope{
		Data:    added,
		Message: fmt.Sprintf("%d %s", len(added), i18n.T(lang(r), "articles_imported")),
	})
}
