// Package pdf genera la hoja imprimible de tarjetas de vouchers con Maroto v2.
//
// Layout de la página A4: una grilla de tarjetas de 3 columnas, cada tarjeta
// con el nombre del paquete, el código en grande y el precio. Pensada para
// recortarse y venderse en mostrador.
package pdf

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/tu-usuario/wisp-core/internal/application/vouchers"
	"github.com/tu-usuario/wisp-core/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

const cardsPerRow = 3

var _ vouchers.CardRenderer = (*VoucherCardRenderer)(nil)

// VoucherCardRenderer implementa vouchers.CardRenderer usando Maroto v2.
type VoucherCardRenderer struct{}

// NewVoucherCardRenderer construye el renderizador.
func NewVoucherCardRenderer() *VoucherCardRenderer { return &VoucherCardRenderer{} }

// RenderCards genera el PDF del lote y devuelve sus bytes.
func (r *VoucherCardRenderer) RenderCards(pkg *entity.Package, batch []*entity.Voucher) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Vouchers "+pkg.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(titleRow(pkg, len(batch)))
	m.AddRows(line.NewRow(2, props.Line{Color: colorPrimary, Thickness: 0.5}))

	for i := 0; i < len(batch); i += cardsPerRow {
		end := i + cardsPerRow
		if end > len(batch) {
			end = len(batch)
		}
		m.AddRows(cardRow(pkg, batch[i:end]))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// titleRow: nombre del paquete + cantidad de tarjetas del lote.
func titleRow(pkg *entity.Package, count int) core.Row {
	return row.New(10).Add(
		col.New(8).Add(
			text.New(pkg.Name, props.Text{
				Size: 14, Style: fontstyle.Bold, Color: colorPrimary,
			}),
		),
		col.New(4).Add(
			text.New(fmt.Sprintf("%d tarjetas", count), props.Text{
				Size: 10, Align: align.Right, Color: colorGray,
			}),
		),
	)
}

// cardRow: hasta tres tarjetas lado a lado.
func cardRow(pkg *entity.Package, cards []*entity.Voucher) core.Row {
	cols := make([]core.Col, 0, cardsPerRow)
	for _, v := range cards {
		cols = append(cols, col.New(4).Add(
			text.New(pkg.Name, props.Text{
				Size: 8, Top: 2, Align: align.Center, Color: colorGray,
			}),
			text.New(v.Code, props.Text{
				Size: 16, Top: 7, Align: align.Center, Style: fontstyle.Bold, Color: colorPrimary,
			}),
			text.New(fmt.Sprintf("$%s · %s", pkg.Price.StringFixed(0), durationLabel(pkg)), props.Text{
				Size: 8, Top: 16, Align: align.Center, Color: colorGray,
			}),
		))
	}
	// Columnas vacías para cerrar la grilla de la última fila.
	for len(cols) < cardsPerRow {
		cols = append(cols, col.New(4))
	}
	return row.New(24).Add(cols...)
}

func durationLabel(pkg *entity.Package) string {
	switch {
	case pkg.DurationDays > 0:
		return fmt.Sprintf("%d días", pkg.DurationDays)
	case pkg.DurationHours > 0:
		return fmt.Sprintf("%d horas", pkg.DurationHours)
	case pkg.DurationMinutes > 0:
		return fmt.Sprintf("%d min", pkg.DurationMinutes)
	default:
		return ""
	}
}
