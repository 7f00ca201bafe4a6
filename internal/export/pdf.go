package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/diewo77/go-commandes/i18n"
	"github.com/diewo77/go-commandes/internal/orders"
)

// OrderPDFFilename is commande-YYYY-MM-DD.pdf.
func OrderPDFFilename(now time.Time) string {
	return "commande-" + now.Format("2006-01-02") + ".pdf"
}

func amount(v float64) string {
	return strings.Replace(fmt.Sprintf("%.2f €", v), ".", ",", 1)
}

func quantity(v float64, unit string) string {
	return strings.Replace(fmt.Sprintf("%.3f", v), ".", ",", 1) + " " + unit
}

// OrderPDF renders the purchase order as an A4 PDF.
func OrderPDF(lang string, lines []orders.Line, now time.Time) ([]byte, error) {
	cfg := config.NewBuilder().
		WithLeftMargin(12).
		WithRightMargin(12).
		WithTopMargin(12).
		Build()
	m := maroto.New(cfg)

	bold := props.Text{Style: fontstyle.Bold, Size: 9}
	boldRight := props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}
	cell := props.Text{Size: 9}
	right := props.Text{Size: 9, Align: align.Right}

	m.AddRows(
		text.NewRow(12, i18n.T(lang, "purchase_order"), props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Center}),
		text.NewRow(8, i18n.T(lang, "generated_on")+" "+now.Format("02/01/2006"), props.Text{Size: 9, Align: align.Center}),
		line.NewRow(4),
	)
	m.AddRow(7,
		text.NewCol(4, i18n.T(lang, "product"), bold),
		text.NewCol(3, i18n.T(lang, "supplier"), bold),
		text.NewCol(2, i18n.T(lang, "quantity"), boldRight),
		text.NewCol(1, i18n.T(lang, "unit_price_ttc"), boldRight),
		text.NewCol(2, i18n.T(lang, "total"), boldRight),
	)
	for _, l := range lines {
		m.AddRow(6,
			text.NewCol(4, l.ProductName, cell),
			text.NewCol(3, l.Supplier, cell),
			text.NewCol(2, quantity(l.Quantity, l.Unit), right),
			text.NewCol(1, amount(l.PriceTTC), right),
			text.NewCol(2, amount(l.TotalCost), right),
		)
	}
	m.AddRows(line.NewRow(4))
	m.AddRow(8,
		text.NewCol(10, i18n.T(lang, "grand_total"), boldRight),
		text.NewCol(2, amount(orders.Total(lines)), boldRight),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("export: order pdf: %w", err)
	}
	return doc.GetBytes(), nil
}
