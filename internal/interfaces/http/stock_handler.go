package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockHandler maneja las consultas y la administración de registros de stock.
type StockHandler struct {
	uc *ledger.UseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *ledger.UseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// GetRecord godoc
// @Summary      Consultar un registro de stock
// @Description  Devuelve cantidades, umbrales, costo promedio y valor total
//
//	del par artículo-ubicación, con las cantidades derivadas.
//
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        item_id      path  string  true  "Artículo"
// @Param        location_id  path  string  true  "Ubicación"
// @Success      200  {object}  dto.StockRecordResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{item_id}/{location_id} [get]
func (h *StockHandler) GetRecord(c *fiber.Ctx) error {
	rec, err := h.uc.GetRecord(c.Context(), c.Params("item_id"), c.Params("location_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewStockRecordResponse(rec))
}

// UpdateThresholds godoc
// @Summary      Actualizar umbrales de un registro
// @Description  Mínimo, máximo, punto de reorden, plazo de entrega y datos de
//
//	lote. Reevalúa las alertas con los nuevos umbrales.
//
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        item_id      path  string                 true  "Artículo"
// @Param        location_id  path  string                 true  "Ubicación"
// @Param        body         body  dto.ThresholdsRequest  true  "Umbrales"
// @Success      200  {object}  dto.MutationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/{item_id}/{location_id}/thresholds [put]
func (h *StockHandler) UpdateThresholds(c *fiber.Ctx) error {
	var in dto.ThresholdsRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.uc.UpdateThresholds(c.Context(), ledger.ThresholdsInput{
		ItemID:         c.Params("item_id"),
		LocationID:     c.Params("location_id"),
		Minimum:        in.Minimum,
		Maximum:        in.Maximum,
		ReorderPoint:   in.ReorderPoint,
		LeadTimeDays:   in.LeadTimeDays,
		LotNumber:      in.LotNumber,
		ExpirationDate: in.ExpirationDate,
		OccurredAt:     time.Now(),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewMutationResponse(res))
}

// SetStatus godoc
// @Summary      Cambiar el estado de un registro
// @Description  ACTIVE, BLOCKED o UNDER_REVIEW. Un registro bloqueado rechaza
//
//	movimientos pero sigue siendo consultable.
//
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        item_id      path  string             true  "Artículo"
// @Param        location_id  path  string             true  "Ubicación"
// @Param        body         body  dto.StatusRequest  true  "Estado destino"
// @Success      200  {object}  dto.StockRecordResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/{item_id}/{location_id}/status [put]
func (h *StockHandler) SetStatus(c *fiber.Ctx) error {
	var in dto.StatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	rec, err := h.uc.SetStatus(c.Context(), c.Params("item_id"), c.Params("location_id"), entity.RecordStatus(in.Status), time.Now())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewStockRecordResponse(rec))
}

// OpenAlerts godoc
// @Summary      Listar alertas abiertas de un registro
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        item_id      path  string  true  "Artículo"
// @Param        location_id  path  string  true  "Ubicación"
// @Success      200  {array}  dto.AlertResponse
// @Router       /api/stock/{item_id}/{location_id}/alerts [get]
func (h *StockHandler) OpenAlerts(c *fiber.Ctx) error {
	alerts, err := h.uc.OpenAlerts(c.Context(), c.Params("item_id"), c.Params("location_id"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, dto.NewAlertResponse(a))
	}
	return c.JSON(fiber.Map{"total": len(out), "alerts": out})
}
