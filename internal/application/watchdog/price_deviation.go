package watchdog

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/flota-api/internal/domain/entity"
)

// PriceCheckInput precio propuesto para un repuesto y contexto del evento.
type PriceCheckInput struct {
	TenantID          string
	PartID            string
	ProposedUnitPrice decimal.Decimal
	MovementID        string
	WorkOrderID       string
	Source            string // RECEIPT, PURCHASE_ORDER, ...
}

// PriceDeviationResult resultado del chequeo; AlertID vacío si no se creó alerta.
type PriceDeviationResult struct {
	ReferencePrice   decimal.Decimal `json:"reference_price"`
	ProposedPrice    decimal.Decimal `json:"proposed_price"`
	DeviationPercent int64           `json:"deviation_percent"`
	ExceedsThreshold bool            `json:"exceeds_threshold"`
	AlertID          string          `json:"alert_id,omitempty"`
}

// CheckPriceDeviation compara el precio propuesto contra el precio de referencia
// del catálogo y crea una alerta PRICE_DEVIATION si lo supera en más del 10%.
// Sin precio de referencia no hay chequeo (nil). No deduplica: cada evento es
// un incidente distinto. Los errores se registran y se descartan (nil).
func (w *FinancialWatchdog) CheckPriceDeviation(ctx context.Context, in PriceCheckInput) *PriceDeviationResult {
	ctx, cancel := w.checkContext(ctx)
	defer cancel()

	res, err := w.checkPriceDeviation(ctx, in)
	if err != nil {
		w.log.Warn().Err(err).
			Str("tenant_id", in.TenantID).
			Str("part_id", in.PartID).
			Str("movement_id", in.MovementID).
			Msg("chequeo de desviación de precio descartado")
		return nil
	}
	return res
}

func (w *FinancialWatchdog) checkPriceDeviation(ctx context.Context, in PriceCheckInput) (*PriceDeviationResult, error) {
	part, err := w.catalog.GetPart(ctx, in.TenantID, in.PartID)
	if err != nil {
		return nil, fmt.Errorf("leer repuesto: %w", err)
	}
	if part == nil || part.ReferencePrice == nil || !part.ReferencePrice.IsPositive() {
		return nil, nil
	}
	ref := *part.ReferencePrice

	res := &PriceDeviationResult{
		ReferencePrice:   ref,
		ProposedPrice:    in.ProposedUnitPrice,
		DeviationPercent: DeviationPercent(in.ProposedUnitPrice, ref),
		ExceedsThreshold: in.ProposedUnitPrice.GreaterThan(ref.Mul(PriceToleranceFactor)),
	}
	if !res.ExceedsThreshold {
		return res, nil
	}

	severity := entity.AlertSeverityMedium
	if res.DeviationPercent > 50 {
		severity = entity.AlertSeverityHigh
	}
	alert, err := w.newAlert(in.TenantID, entity.AlertTypePriceDeviation, severity,
		fmt.Sprintf("Precio de %s supera la referencia en %d%% (%s vs %s)",
			partLabel(part), res.DeviationPercent, in.ProposedUnitPrice.StringFixed(2), ref.StringFixed(2)),
		map[string]any{
			"part_id":           in.PartID,
			"proposed_price":    in.ProposedUnitPrice,
			"reference_price":   ref,
			"deviation_percent": res.DeviationPercent,
			"threshold_percent": PriceTolerancePercent,
			"exceeds_threshold": true,
			"source":            in.Source,
		})
	if err != nil {
		return nil, fmt.Errorf("construir alerta: %w", err)
	}
	alert.PartID = optional(in.PartID)
	alert.MovementID = optional(in.MovementID)
	alert.WorkOrderID = optional(in.WorkOrderID)
	if err := w.alerts.Create(ctx, alert); err != nil {
		return nil, fmt.Errorf("crear alerta de precio: %w", err)
	}
	res.AlertID = alert.ID

	w.log.Info().
		Str("tenant_id", in.TenantID).
		Str("part_id", in.PartID).
		Int64("deviation_percent", res.DeviationPercent).
		Str("alert_id", alert.ID).
		Msg("alerta de desviación de precio creada")
	return res, nil
}

// DeviationPercent round(((propuesto - referencia) / referencia) * 100).
func DeviationPercent(proposed, reference decimal.Decimal) int64 {
	if reference.IsZero() {
		return 0
	}
	return proposed.Sub(reference).Div(reference).Mul(hundred).Round(0).IntPart()
}

func partLabel(p *entity.Part) string {
	if p.Name != "" {
		return p.Name
	}
	if p.SKU != "" {
		return p.SKU
	}
	return p.ID
}
