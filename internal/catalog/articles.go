package catalog

import (
	"context"
	"strings"

	"github.com/diewo77/go-commandes/internal/models"
	"github.com/diewo77/go-commandes/internal/pricing"
)

// ArticlePatch lists the article fields to change. Nil means unchanged.
// PriceHT and PriceTTC cannot both be set.
type ArticlePatch struct {
	Reference   *string  `json:"reference"`
	ProductName *string  `json:"productName"`
	Supplier    *string  `json:"supplier"`
	Unit        *string  `json:"unit"`
	PriceHT     *float64 `json:"priceHT"`
	PriceTTC    *float64 `json:"priceTTC"`
	VATRate     *float64 `json:"tvaRate"`
}

// Prices returns the price part of the patch.
func (p ArticlePatch) Prices() pricing.Edit {
	return pricing.Edit{HT: p.PriceHT, TTC: p.PriceTTC, VAT: p.VATRate}
}

// NewArticle returns an article carrying the creation defaults.
func NewArticle() models.Article {
	return models.Article{
		ProductName: models.DefaultProductName,
		Supplier:    models.DefaultSupplier,
		VATRate:     models.DefaultVATRate,
		Unit:        models.DefaultUnit,
	}
}

// normalizePrices makes TTC consistent with HT, or HT with TTC when only TTC is known.
func normalizePrices(a *models.Article) {
	switch {
	case a.PriceHT != 0:
		a.PriceTTC = pricing.TTCFromHT(a.PriceHT, a.VATRate)
	case a.PriceTTC != 0:
		a.PriceHT = pricing.HTFromTTC(a.PriceTTC, a.VATRate)
	}
}

func (w *Workspace) Articles() []models.Article {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]models.Article{}, w.snap.Articles...)
}

// Article returns a cached article by id.
func (w *Workspace) Article(id uint) (models.Article, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := w.articleIndex(id)
	if i < 0 {
		return models.Article{}, ErrNotFound
	}
	return w.snap.Articles[i], nil
}

// SearchArticles returns the articles whose product name, supplier or
// reference contains q, ignoring case. An empty q returns every article.
func (w *Workspace) SearchArticles(q string) []models.Article {
	w.mu.Lock()
	defer w.mu.Unlock()
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return append([]models.Article{}, w.snap.Articles...)
	}
	out := []models.Article{}
	for _, a := range w.snap.Articles {
		if strings.Contains(strings.ToLower(a.ProductName), q) ||
			strings.Contains(strings.ToLower(a.Supplier), q) ||
			strings.Contains(strings.ToLower(a.Reference), q) {
			out = append(out, a)
		}
	}
	return out
}

// AddArticle stores a. HT wins when both prices are given.
func (w *Workspace) AddArticle(ctx context.Context, a models.Article) (models.Article, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	a.ID = 0
	normalizePrices(&a)
	if err := w.write(ctx, "add_article", func(ctx context.Context) error {
		return w.store.CreateArticle(ctx, &a)
	}); err != nil {
		return models.Article{}, err
	}
	w.snap.Articles = append(w.snap.Articles, a)
	return a, nil
}

// UpdateArticle applies p, keeping TTC = round(HT*(1+VAT/100), 2).
func (w *Workspace) UpdateArticle(ctx context.Context, id uint, p ArticlePatch) (models.Article, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := w.articleIndex(id)
	if i < 0 {
		return models.Article{}, ErrNotFound
	}
	a := w.snap.Articles[i]
	prices, err := pricing.Apply(pricing.Prices{HT: a.PriceHT, TTC: a.PriceTTC, VAT: a.VATRate}, p.Prices())
	if err != nil {
		return models.Article{}, err
	}
	a.PriceHT, a.PriceTTC, a.VATRate = prices.HT, prices.TTC, prices.VAT
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
	w.snap.Articles[i] = a
	if err := w.write(ctx, "update_article", func(ctx context.Context) error {
		return w.store.UpdateArticle(ctx, a)
	}); err != nil {
		return models.Article{}, err
	}
	return a, nil
}

// DeleteArticle removes the article and every recipe line using it.
func (w *Workspace) DeleteArticle(ctx context.Context, id uint) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := w.articleIndex(id)
	if i < 0 {
		return ErrNotFound
	}
	w.snap.Articles = append(w.snap.Articles[:i], w.snap.Articles[i+1:]...)
	kept := w.snap.Recipes[:0]
	for _, r := range w.snap.Recipes {
		if r.ArticleID == nil || *r.ArticleID != id {
			kept = append(kept, r)
		}
	}
	w.snap.Recipes = kept
	return w.write(ctx, "delete_article", func(ctx context.Context) error {
		return w.store.DeleteArticle(ctx, id)
	})
}

// ImportArticles stores every article in one batch. Either all rows are
// added or none.
func (w *Workspace) ImportArticles(ctx context.Context, as []models.Article) ([]models.Article, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	batch := make([]models.Article, len(as))
	for i, a := range as {
		a.ID = 0
		batch[i] = a
	}
	if err := w.write(ctx, "import_articles", func(ctx context.Context) error {
		for i := range batch {
			batch[i].ID = 0
		}
		return w.store.CreateArticles(ctx, batch)
	}); err != nil {
		return nil, err
	}
	w.snap.Articles = append(w.snap.Articles, batch...)
	return batch, nil
}
