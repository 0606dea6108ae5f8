package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/ledger"
)

// LedgerHandler maneja las peticiones HTTP del libro de movimientos (protegido).
// El actor sale del token; la hora se fija en el borde, una vez por petición.
type LedgerHandler struct {
	uc *ledger.UseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(uc *ledger.UseCase) *LedgerHandler {
	return &LedgerHandler{uc: uc}
}

// movementInput arma el input del caso de uso desde el request y el contexto.
func movementInput(c *fiber.Ctx, in dto.MovementRequest) ledger.MovementInput {
	return ledger.MovementInput{
		ItemID:         in.ItemID,
		LocationID:     in.LocationID,
		Quantity:       in.Quantity,
		UnitCost:       in.UnitCost,
		SourceDocument: in.SourceDocument,
		Actor:          GetUserID(c),
		OccurredAt:     time.Now(),
	}
}

// RecordEntry godoc
// @Summary      Registrar entrada de mercancía
// @Description  Evento de recepción (artículo, ubicación, cantidad, costo unitario,
//
//	documento origen): actualiza el costo promedio ponderado y suma al stock.
//
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MovementRequest  true  "item_id, location_id, quantity, unit_cost, source_document"
// @Success      201   {object}  dto.MutationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ledger/entries [post]
func (h *LedgerHandler) RecordEntry(c *fiber.Ctx) error {
	var in dto.MovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.uc.RecordEntry(c.Context(), movementInput(c, in))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMutationResponse(res))
}

// RecordExit godoc
// @Summary      Registrar salida de mercancía
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MovementRequest  true  "item_id, location_id, quantity, source_document"
// @Success      201   {object}  dto.MutationResponse
// @Failure      409   {object}  dto.ErrorResponse  "INSUFFICIENT_AVAILABLE si la cantidad supera la disponible"
// @Router       /api/ledger/exits [post]
func (h *LedgerHandler) RecordExit(c *fiber.Ctx) error {
	var in dto.MovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.uc.RecordExit(c.Context(), movementInput(c, in))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMutationResponse(res))
}

// RecordLoss godoc
// @Summary      Registrar pérdida (merma, rotura, robo)
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MovementRequest  true  "item_id, location_id, quantity, source_document"
// @Success      201   {object}  dto.MutationResponse
// @Router       /api/ledger/losses [post]
func (h *LedgerHandler) RecordLoss(c *fiber.Ctx) error {
	var in dto.MovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.uc.RecordLoss(c.Context(), movementInput(c, in))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMutationResponse(res))
}

// RecordReturn godoc
// @Summary      Registrar devolución de cliente
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MovementRequest  true  "item_id, location_id, quantity, unit_cost, source_document"
// @Success      201   {object}  dto.MutationResponse
// @Router       /api/ledger/returns [post]
func (h *LedgerHandler) RecordReturn(c *fiber.Ctx) error {
	var in dto.MovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.uc.RecordReturn(c.Context(), movementInput(c, in))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMutationResponse(res))
}

// RecordTransfer godoc
// @Summary      Trasladar stock entre ubicaciones
// @Description  Atómico: ambas patas se confirman o ninguna se aplica.
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "item_id, from_location_id, to_location_id, quantity"
// @Success      201   {object}  dto.MutationResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ledger/transfers [post]
func (h *LedgerHandler) RecordTransfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.uc.RecordTransfer(c.Context(), ledger.TransferInput{
		ItemID:         in.ItemID,
		FromLocationID: in.FromLocationID,
		ToLocationID:   in.ToLocationID,
		Quantity:       in.Quantity,
		SourceDocument: in.SourceDocument,
		Actor:          GetUserID(c),
		OccurredAt:     time.Now(),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMutationResponse(res))
}

// RecordAdjustment godoc
// @Summary      Registrar ajuste por conteo físico
// @Description  Delta con signo; omite la verificación de disponibilidad.
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustmentRequest  true  "item_id, location_id, delta, reason"
// @Success      201   {object}  dto.MutationResponse
// @Router       /api/ledger/adjustments [post]
func (h *LedgerHandler) RecordAdjustment(c *fiber.Ctx) error {
	var in dto.AdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.uc.RecordAdjustment(c.Context(), ledger.AdjustmentInput{
		ItemID:     in.ItemID,
		LocationID: in.LocationID,
		Delta:      in.Delta,
		Reason:     in.Reason,
		Actor:      GetUserID(c),
		OccurredAt: time.Now(),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMutationResponse(res))
}

// Reserve godoc
// @Summary      Reservar cantidad disponible
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReservationRequest  true  "item_id, location_id, quantity, document_ref"
// @Success      201   {object}  dto.MutationResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ledger/reservations [post]
func (h *LedgerHandler) Reserve(c *fiber.Ctx) error {
	var in dto.ReservationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.uc.Reserve(c.Context(), reservationInput(c, in))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMutationResponse(res))
}

// Release godoc
// @Summary      Liberar reserva
// @Description  Recorta a min(cantidad, reservado); nunca falla por cantidad.
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReservationRequest  true  "item_id, location_id, quantity, document_ref"
// @Success      201   {object}  dto.MutationResponse
// @Router       /api/ledger/reservations/release [post]
func (h *LedgerHandler) Release(c *fiber.Ctx) error {
	var in dto.ReservationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.uc.Release(c.Context(), reservationInput(c, in))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMutationResponse(res))
}

func reservationInput(c *fiber.Ctx, in dto.ReservationRequest) ledger.ReservationInput {
	return ledger.ReservationInput{
		ItemID:      in.ItemID,
		LocationID:  in.LocationID,
		Quantity:    in.Quantity,
		DocumentRef: in.DocumentRef,
		Actor:       GetUserID(c),
		OccurredAt:  time.Now(),
	}
}

// CancelMovement godoc
// @Summary      Cancelar un movimiento confirmado
// @Description  Revierte el efecto neto sobre el registro. Cancelar dos veces
//
//	devuelve ALREADY_CANCELLED: la reversión no ocurre dos veces.
//
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID del movimiento"
// @Param        body  body  dto.CancelRequest  true  "reason"
// @Success      200   {object}  dto.MutationResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ledger/movements/{id}/cancel [post]
func (h *LedgerHandler) CancelMovement(c *fiber.Ctx) error {
	var in dto.CancelRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.uc.Cancel(c.Context(), c.Params("id"), in.Reason, GetUserID(c), time.Now())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewMutationResponse(res))
}

// ListMovements godoc
// @Summary      Historial del libro de movimientos
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        item_id      query  string  true   "Artículo"
// @Param        location_id  query  string  false  "Ubicación (vacío = todas)"
// @Param        from         query  string  false  "Desde (RFC3339)"
// @Param        to           query  string  false  "Hasta (RFC3339)"
// @Param        limit        query  int     false  "Límite"
// @Param        offset       query  int     false  "Offset"
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/ledger/movements [get]
func (h *LedgerHandler) ListMovements(c *fiber.Ctx) error {
	itemID := c.Query("item_id")
	if itemID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "item_id requerido"})
	}
	var from, to *time.Time
	if s := c.Query("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido (RFC3339)"})
		}
		from = &t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido (RFC3339)"})
		}
		to = &t
	}
	list, err := h.uc.ListMovements(c.Context(), itemID, c.Query("location_id"), from, to, c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.NewMovementResponse(m))
	}
	return c.JSON(fiber.Map{"total": len(out), "movements": out})
}
