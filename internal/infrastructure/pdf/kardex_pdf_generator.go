// Package pdf genera el reporte de kardex (tarjeta de existencias) de un ítem.
//
// Layout de la página A4 horizontal:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Repuesto + SKU       │  Bodega + fecha de emisión   │
//	│  RESUMEN: Stock / Costo promedio / Valor / Estado           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Motivo | Ref | Entrada | Salida | Costo ... │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR con id del ítem + leyenda                        │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/flota-api/internal/application/inventory"
	"github.com/jhoicas/flota-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorEntry   = &props.Color{Red: 0, Green: 110, Blue: 60}
	colorExit    = &props.Color{Red: 160, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ inventory.KardexPDFGenerator = (*KardexPDFGenerator)(nil)

// KardexPDFGenerator implementa inventory.KardexPDFGenerator usando Maroto v2.
type KardexPDFGenerator struct {
	now func() time.Time
}

// NewKardexPDFGenerator construye el generador.
func NewKardexPDFGenerator() *KardexPDFGenerator { return &KardexPDFGenerator{now: time.Now} }

// GenerateKardexPDF genera el PDF del kardex y devuelve sus bytes.
func (g *KardexPDFGenerator) GenerateKardexPDF(
	_ context.Context,
	item *entity.InventoryItem,
	part *entity.Part,
	movements []*entity.InventoryMovement,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Horizontal).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle("Kardex "+partLabel(part), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(item, part, g.now()))
	m.AddRows(summaryRow(item))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	m.AddRows(movementRows(movements)...)
	if len(movements) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("Sin movimientos registrados", props.Text{Align: align.Center, Color: colorGray, Top: 2}),
		)))
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(item, len(movements)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar kardex: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(item *entity.InventoryItem, part *entity.Part, now time.Time) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New(partLabel(part), props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New("SKU: "+nonEmpty(part.SKU, "—")+"   |   Repuesto: "+item.PartID, props.Text{Size: 8, Top: 9, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("KARDEX DE INVENTARIO", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1}),
			text.New("Bodega: "+item.WarehouseID, props.Text{Size: 9, Align: align.Right, Top: 6}),
			text.New("Emitido: "+now.Format("02/01/2006 15:04"), props.Text{Size: 7, Align: align.Right, Top: 11, Color: colorGray}),
		),
	)
}

func summaryRow(item *entity.InventoryItem) core.Row {
	cell := func(label, value string) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{Style: fontstyle.Bold, Size: 7, Color: colorGray, Top: 1}),
			text.New(value, props.Text{Style: fontstyle.Bold, Size: 10, Top: 5}),
		)
	}
	return row.New(12).Add(
		cell("STOCK", item.Quantity.String()),
		cell("COSTO PROMEDIO", "$"+formatMoney(item.AverageCost, 6)),
		cell("VALOR TOTAL", "$"+formatMoney(item.TotalValue, 2)),
		cell("ESTADO", item.Status),
	)
}

// tableHeaderRow cabecera de la tabla (12 columnas).
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 7, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Fecha", 1, align.Left),
		h("Motivo", 2, align.Left),
		h("Referencia", 2, align.Left),
		h("Entrada", 1, align.Right),
		h("Salida", 1, align.Right),
		h("Costo unit.", 1, align.Right),
		h("Costo total", 1, align.Right),
		h("Saldo", 1, align.Right),
		h("Promedio", 2, align.Right),
	)
}

// movementRows una fila por movimiento, en orden cronológico.
func movementRows(movements []*entity.InventoryMovement) []core.Row {
	rows := make([]core.Row, 0, len(movements))
	for _, mv := range movements {
		in, out := "", ""
		qtyColor := colorEntry
		if mv.Direction == entity.DirectionEntry {
			in = mv.Quantity.String()
		} else {
			out = mv.Quantity.String()
			qtyColor = colorExit
		}
		cell := func(s string, size int, a align.Type, c *props.Color) core.Col {
			return col.New(size).Add(text.New(s, props.Text{Size: 7, Align: a, Top: 1, Left: 1, Right: 1, Color: c}))
		}
		rows = append(rows, row.New(6).Add(
			cell(mv.CreatedAt.Format("02/01/06"), 1, align.Left, nil),
			cell(reasonLabel(mv.Reason), 2, align.Left, nil),
			cell(referenceLabel(mv), 2, align.Left, colorGray),
			cell(in, 1, align.Right, qtyColor),
			cell(out, 1, align.Right, qtyColor),
			cell("$"+formatMoney(mv.UnitCost, 2), 1, align.Right, nil),
			cell("$"+formatMoney(mv.TotalCost, 2), 1, align.Right, nil),
			cell(mv.NewStock.String(), 1, align.Right, nil),
			cell("$"+formatMoney(mv.NewAvgCost, 6), 2, align.Right, nil),
		))
	}
	return rows
}

func footerRow(item *entity.InventoryItem, count int) core.Row {
	return row.New(30).Add(
		col.New(2).Add(code.NewQr(item.ID, props.Rect{Percent: 90, Center: true})),
		col.New(10).Add(
			text.New(fmt.Sprintf("%d movimientos. Kardex valorizado por costo promedio móvil.", count),
				props.Text{Size: 8, Top: 4, Left: 3, Color: colorGray}),
			text.New("Ítem: "+item.ID, props.Text{Size: 7, Top: 10, Left: 3, Color: colorGray}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

var reasonLabels = map[entity.MovementReason]string{
	entity.ReasonPurchaseReceipt:  "Recepción de compra",
	entity.ReasonAdjustmentIn:     "Ajuste (+)",
	entity.ReasonAdjustmentOut:    "Ajuste (-)",
	entity.ReasonTransferIn:       "Traslado entrada",
	entity.ReasonTransferOut:      "Traslado salida",
	entity.ReasonReturnToStock:    "Devolución a stock",
	entity.ReasonReturnToSupplier: "Devolución a proveedor",
	entity.ReasonConsumption:      "Consumo",
	entity.ReasonDamage:           "Daño",
	entity.ReasonCountAdjustment:  "Ajuste por conteo",
}

func reasonLabel(r entity.MovementReason) string {
	if l, ok := reasonLabels[r]; ok {
		return l
	}
	return string(r)
}

func referenceLabel(mv *entity.InventoryMovement) string {
	if mv.ReferenceType == "" {
		return "—"
	}
	id := mv.ReferenceID
	if len(id) > 12 {
		id = id[:12] + "…"
	}
	return strings.TrimSpace(mv.ReferenceType + " " + id)
}

func partLabel(p *entity.Part) string {
	if p.Name != "" {
		return p.Name
	}
	return nonEmpty(p.SKU, p.ID)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney puntos de miles y coma decimal.
// Ej: 1234567.5 (2) → "1.234.567,50"
func formatMoney(v decimal.Decimal, places int32) string {
	s := v.StringFixed(places)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	if frac != "" {
		return sign + string(buf) + "," + frac
	}
	return sign + string(buf)
}
