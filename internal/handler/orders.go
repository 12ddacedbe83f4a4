package handler

import (
	"net/http"
	"path/filepath"

	"github.com/codefren/s4t-koroshi-sms-backend/internal/dto"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/service"

	"github.com/gin-gonic/gin"
)

type OrdersHandler struct{ svc service.OrderService }

func NewOrdersHandler(svc service.OrderService) *OrdersHandler {
	return &OrdersHandler{svc: svc}
}

// Listar godoc
// @Summary      List orders
// @Tags         orders
// @Produce      json
// @Param        estado       query string false "PENDING, ASSIGNED, IN_PICKING, ..."
// @Param        prioridad    query string false "NORMAL, HIGH, URGENT"
// @Param        operator_id  query string false "operator uuid"
// @Param        page         query int    false "page"
// @Param        limit        query int    false "page size"
// @Success      200 {object} dto.OrderListResponse
// @Router       /api/v1/orders [get]
func (h *OrdersHandler) Listar(c *gin.Context) {
	var filter dto.OrderFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Detalle godoc
// @Summary      Order detail with lines, locations and progress
// @Tags         orders
// @Produce      json
// @Param        id path string true "order uuid"
// @Success      200 {object} dto.OrderDetailResponse
// @Failure      404 {object} apierror.Response
// @Router       /api/v1/orders/{id} [get]
func (h *OrdersHandler) Detalle(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Detail(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AsignarOperario godoc
// @Summary      Assign an operator (PENDING or ASSIGNED orders)
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id   path string                    true "order uuid"
// @Param        body body dto.AssignOperatorRequest true "operator"
// @Success      200 {object} dto.OrderDetailResponse
// @Failure      409 {object} apierror.Response
// @Router       /api/v1/orders/{id}/assign [put]
func (h *OrdersHandler) AsignarOperario(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.AssignOperatorRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AssignOperator(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CambiarEstado godoc
// @Summary      Move an order through its lifecycle
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id   path string                  true "order uuid"
// @Param        body body dto.ChangeStatusRequest true "target status"
// @Success      200 {object} dto.OrderDetailResponse
// @Failure      409 {object} apierror.Response
// @Router       /api/v1/orders/{id}/status [put]
func (h *OrdersHandler) CambiarEstado(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ChangeStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ChangeStatus(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Historial godoc
// @Summary      Audit trail of an order
// @Tags         orders
// @Produce      json
// @Param        id path string true "order uuid"
// @Success      200 {array} dto.OrderHistoryResponse
// @Router       /api/v1/orders/{id}/history [get]
func (h *OrdersHandler) Historial(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.History(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// OptimizarRuta godoc
// @Summary      Build the picking route for an order
// @Tags         picking
// @Produce      json
// @Param        id path string true "order uuid"
// @Success      200 {object} dto.PickingRouteResponse
// @Router       /api/v1/orders/{id}/optimize-picking-route [post]
func (h *OrdersHandler) OptimizarRuta(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.OptimizeRoute(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ValidarStock godoc
// @Summary      Check whether every line can be picked from current stock
// @Tags         picking
// @Produce      json
// @Param        id path string true "order uuid"
// @Success      200 {object} dto.StockValidationResponse
// @Router       /api/v1/orders/{id}/stock-validation [get]
func (h *OrdersHandler) ValidarStock(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.StockValidation(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HojaPicking godoc
// @Summary      Printable picking sheet
// @Tags         picking
// @Produce      application/pdf
// @Param        id path string true "order uuid"
// @Success      200 {file} file
// @Router       /api/v1/orders/{id}/picking-sheet.pdf [get]
func (h *OrdersHandler) HojaPicking(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	path, err := h.svc.PickingSheet(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}
