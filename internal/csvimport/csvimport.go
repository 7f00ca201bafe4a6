// Package csvimport reads supplier article lists exported from spreadsheets.
package csvimport

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/diewo77/go-commandes/internal/models"
	"github.com/diewo77/go-commandes/internal/pricing"
)

// ErrEmptyFile is returned when the file has no data row after the header.
var ErrEmptyFile = errors.New("csvimport: file is empty")

// ErrTooLarge is returned when the input exceeds MaxSize.
var ErrTooLarge = errors.New("csvimport: file too large")

// MaxSize bounds the bytes read from an upload.
const MaxSize = 4 << 20

const (
	fieldReference = iota
	fieldProduct
	fieldSupplier
	fieldHT
	fieldTTC
	fieldVAT
	fieldUnit
)

// Header synonyms, compared after trimming and lower-casing.
var synonyms = map[string]int{
	"reference":      fieldReference,
	"référence":      fieldReference,
	"ref":            fieldReference,
	"productname":    fieldProduct,
	"produit":        fieldProduct,
	"nom du produit": fieldProduct,
	"product":        fieldProduct,
	"supplier":       fieldSupplier,
	"fournisseur":    fieldSupplier,
	"priceht":        fieldHT,
	"prix ht":        fieldHT,
	"prix_ht":        fieldHT,
	"pricettc":       fieldTTC,
	"prix ttc":       fieldTTC,
	"prix_ttc":       fieldTTC,
	"tvarate":        fieldVAT,
	"tva":            fieldVAT,
	"taux tva":       fieldVAT,
	"unit":           fieldUnit,
	"unité":          fieldUnit,
	"unite":          fieldUnit,
}

// Defaults for cells that are missing or blank.
const (
	DefaultProduct  = "Produit"
	DefaultSupplier = models.DefaultSupplier
	DefaultVAT      = models.DefaultVATRate
	DefaultUnit     = models.DefaultUnit
)

// Parse reads r and returns one unsaved article per data row. The delimiter is
// ';' when the header line contains one and ',' otherwise. A missing price is
// back-filled from the other price and the VAT rate. Input over MaxSize is
// rejected whole with ErrTooLarge.
func Parse(r io.Reader) ([]models.Article, error) {
	raw, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("csvimport: read: %w", err)
	}
	if len(raw) > MaxSize {
		return nil, ErrTooLarge
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.Comma = detectDelimiter(raw)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	var records [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csvimport: %w", err)
		}
		if blank(rec) {
			continue
		}
		records = append(records, rec)
	}
	if len(records) < 2 {
		return nil, ErrEmptyFile
	}

	columns := mapHeader(records[0])
	articles := make([]models.Article, 0, len(records)-1)
	for _, rec := range records[1:] {
		articles = append(articles, rowToArticle(columns, rec))
	}
	return articles, nil
}

func detectDelimiter(raw []byte) rune {
	for _, line := range bytes.Split(raw, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		if bytes.ContainsRune(line, ';') {
			return ';'
		}
		return ','
	}
	return ','
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// mapHeader returns, for each known field, the first column carrying it.
func mapHeader(header []string) map[int]int {
	cols := make(map[int]int)
	for i, h := range header {
		f, ok := synonyms[strings.ToLower(strings.TrimSpace(h))]
		if !ok {
			continue
		}
		if _, dup := cols[f]; !dup {
			cols[f] = i
		}
	}
	return cols
}

func rowToArticle(cols map[int]int, rec []string) models.Article {
	cell := func(f int) string {
		i, ok := cols[f]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	orDefault := func(v, def string) string {
		if v == "" {
			return def
		}
		return v
	}

	vat, ok := parseNumber(cell(fieldVAT))
	if !ok {
		vat = DefaultVAT
	}
	ht, _ := parseNumber(cell(fieldHT))
	ttc, _ := parseNumber(cell(fieldTTC))
	ht, ttc = pricing.Fill(ht, ttc, vat)

	return models.Article{
		Reference:   cell(fieldReference),
		ProductName: orDefault(cell(fieldProduct), DefaultProduct),
		Supplier:    orDefault(cell(fieldSupplier), DefaultSupplier),
		PriceHT:     ht,
		PriceTTC:    ttc,
		VATRate:     vat,
		Unit:        orDefault(cell(fieldUnit), DefaultUnit),
	}
}

// parseNumber accepts a decimal comma and an optional euro sign.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "€"))
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	if s == "" {
		return 0, false
	}
	s = strings.Replace(s, ",", ".", 1)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
