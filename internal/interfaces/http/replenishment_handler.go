package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/replenishment"
)

// ReplenishmentHandler maneja el ciclo de vida de las solicitudes de reposición.
type ReplenishmentHandler struct {
	mgr *replenishment.Manager
}

// NewReplenishmentHandler construye el handler.
func NewReplenishmentHandler(mgr *replenishment.Manager) *ReplenishmentHandler {
	return &ReplenishmentHandler{mgr: mgr}
}

// Suggest godoc
// @Summary      Evaluar y sugerir reposición para un registro
// @Description  Si el registro necesita reposición y no tiene solicitud abierta,
//
//	crea una sugerencia. Si ya existe una abierta la devuelve con 200
//	en lugar de duplicarla.
//
// @Tags         replenishment
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SuggestRequest  true  "item_id, location_id"
// @Success      200   {object}  dto.ReplenishmentResponse  "Solicitud abierta ya existente"
// @Success      201   {object}  dto.ReplenishmentResponse  "Sugerencia creada"
// @Failure      409   {object}  dto.ErrorResponse  "El registro no necesita reposición"
// @Router       /api/replenishment/suggest [post]
func (h *ReplenishmentHandler) Suggest(c *fiber.Ctx) error {
	var in dto.SuggestRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	now := time.Now()
	req, created, err := h.mgr.SuggestIfNeeded(c.Context(), in.ItemID, in.LocationID, now)
	if err != nil {
		return respondError(c, err)
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(dto.NewReplenishmentResponse(req, now))
}

// List godoc
// @Summary      Listar solicitudes de reposición
// @Tags         replenishment
// @Security     Bearer
// @Produce      json
// @Param        open    query  bool  false  "Solo solicitudes abiertas"
// @Param        limit   query  int   false  "Límite"
// @Param        offset  query  int   false  "Offset"
// @Success      200  {array}  dto.ReplenishmentResponse
// @Router       /api/replenishment [get]
func (h *ReplenishmentHandler) List(c *fiber.Ctx) error {
	now := time.Now()
	list, err := h.mgr.List(c.Context(), c.QueryBool("open"), c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.ReplenishmentResponse, 0, len(list))
	for _, r := range list {
		out = append(out, dto.NewReplenishmentResponse(r, now))
	}
	return c.JSON(fiber.Map{"total": len(out), "requests": out})
}

// Approve godoc
// @Summary      Aprobar una sugerencia de reposición
// @Description  Solo desde el estado suggested. Admite override de cantidad.
// @Tags         replenishment
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true   "ID de la solicitud"
// @Param        body  body  dto.ApproveRequest  false  "quantity_override opcional"
// @Success      200   {object}  dto.ReplenishmentResponse
// @Failure      409   {object}  dto.ErrorResponse  "INVALID_STATE"
// @Router       /api/replenishment/{id}/approve [post]
func (h *ReplenishmentHandler) Approve(c *fiber.Ctx) error {
	var in dto.ApproveRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	now := time.Now()
	req, err := h.mgr.Approve(c.Context(), c.Params("id"), GetUserID(c), in.QuantityOverride, now)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewReplenishmentResponse(req, now))
}

// PlaceOrder godoc
// @Summary      Emitir la solicitud al proveedor
// @Description  Pasa a requested con proveedor y fecha esperada de entrega.
// @Tags         replenishment
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID de la solicitud"
// @Param        body  body  dto.PlaceOrderRequest  true  "supplier_id, expected_delivery_date"
// @Success      200   {object}  dto.ReplenishmentResponse
// @Failure      409   {object}  dto.ErrorResponse  "INVALID_STATE"
// @Router       /api/replenishment/{id}/request [post]
func (h *ReplenishmentHandler) PlaceOrder(c *fiber.Ctx) error {
	var in dto.PlaceOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	now := time.Now()
	req, err := h.mgr.Request(c.Context(), c.Params("id"), in.SupplierID, in.ExpectedDeliveryDate, now)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewReplenishmentResponse(req, now))
}

// MarkInTransit godoc
// @Summary      Marcar la solicitud como en tránsito
// @Tags         replenishment
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.ReplenishmentResponse
// @Failure      409  {object}  dto.ErrorResponse  "INVALID_STATE"
// @Router       /api/replenishment/{id}/in-transit [post]
func (h *ReplenishmentHandler) MarkInTransit(c *fiber.Ctx) error {
	now := time.Now()
	req, err := h.mgr.MarkInTransit(c.Context(), c.Params("id"), now)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewReplenishmentResponse(req, now))
}

// Receive godoc
// @Summary      Registrar recepción total o parcial
// @Description  Avanza la solicitud y asienta la entrada de mercancía en el
//
//	libro dentro de la misma transacción: o ambos efectos quedan o ninguno.
//
// @Tags         replenishment
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID de la solicitud"
// @Param        body  body  dto.ReceiveRequest  true  "quantity, unit_cost, source_document"
// @Success      200   {object}  map[string]interface{}  "request + mutation"
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/replenishment/{id}/receive [post]
func (h *ReplenishmentHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	now := time.Now()
	req, res, err := h.mgr.ReceivePartial(c.Context(), c.Params("id"), in.Quantity, in.UnitCost, in.SourceDocument, GetUserID(c), now)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"request":  dto.NewReplenishmentResponse(req, now),
		"mutation": dto.NewMutationResponse(res),
	})
}

// Cancel godoc
// @Summary      Cancelar una solicitud de reposición
// @Tags         replenishment
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID de la solicitud"
// @Param        body  body  dto.CancelRequest  true  "reason"
// @Success      200   {object}  dto.ReplenishmentResponse
// @Failure      409   {object}  dto.ErrorResponse  "INVALID_STATE si ya es terminal"
// @Router       /api/replenishment/{id}/cancel [post]
func (h *ReplenishmentHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	now := time.Now()
	req, err := h.mgr.Cancel(c.Context(), c.Params("id"), in.Reason, now)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewReplenishmentResponse(req, now))
}

// OpenForRecord godoc
// @Summary      Consultar la solicitud abierta de un registro
// @Tags         replenishment
// @Security     Bearer
// @Produce      json
// @Param        item_id      path  string  true  "Artículo"
// @Param        location_id  path  string  true  "Ubicación"
// @Success      200  {object}  dto.ReplenishmentResponse
// @Failure      404  {object}  dto.ErrorResponse  "Sin solicitud abierta"
// @Router       /api/replenishment/record/{item_id}/{location_id} [get]
func (h *ReplenishmentHandler) OpenForRecord(c *fiber.Ctx) error {
	now := time.Now()
	req, err := h.mgr.OpenForRecord(c.Context(), c.Params("item_id"), c.Params("location_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewReplenishmentResponse(req, now))
}
