package handler

import (
	"net/http"

	"github.com/codefren/s4t-koroshi-sms-backend/internal/dto"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/service"

	"github.com/gin-gonic/gin"
)

type InventarioHandler struct{ svc service.InventarioService }

func NewInventarioHandler(svc service.InventarioService) *InventarioHandler {
	return &InventarioHandler{svc: svc}
}

// AjustarStock godoc
// @Summary      Manual stock correction on a location
// @Tags         inventario
// @Accept       json
// @Produce      json
// @Param        id   path string                  true "location uuid"
// @Param        body body dto.AjustarStockRequest true "delta"
// @Success      200 {object} dto.UbicacionResponse
// @Failure      400 {object} apierror.Response
// @Router       /api/v1/ubicaciones/{id}/stock [patch]
func (h *InventarioHandler) AjustarStock(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.AjustarStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AjustarStock(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerAlertas godoc
// @Summary      Active locations below their minimum
// @Tags         inventario
// @Produce      json
// @Success      200 {array} dto.AlertaStockResponse
// @Router       /api/v1/inventario/alertas [get]
func (h *InventarioHandler) ObtenerAlertas(c *gin.Context) {
	resp, err := h.svc.ObtenerAlertas(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarMovimientos godoc
// @Summary      Stock movement ledger
// @Tags         inventario
// @Produce      json
// @Param        location_id query string false "location uuid"
// @Param        tipo        query string false "ajuste_manual / reposicion"
// @Param        page        query int    false "page"
// @Param        limit       query int    false "page size"
// @Success      200 {object} dto.MovimientoListResponse
// @Router       /api/v1/inventario/movimientos [get]
func (h *InventarioHandler) ListarMovimientos(c *gin.Context) {
	var filter dto.MovimientoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListarMovimientos(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Reposiciones ─────────────────────────────────────────────────────────────

// CrearReposicion godoc
// @Summary      Open a replenishment request
// @Tags         reposiciones
// @Accept       json
// @Produce      json
// @Param        body body dto.CrearReposicionRequest true "request"
// @Success      201 {object} dto.ReposicionResponse
// @Failure      409 {object} apierror.Response
// @Router       /api/v1/reposiciones [post]
func (h *InventarioHandler) CrearReposicion(c *gin.Context) {
	var req dto.CrearReposicionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearReposicion(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarReposiciones godoc
// @Summary      List replenishment requests
// @Tags         reposiciones
// @Produce      json
// @Param        estado query string false "PENDING, IN_PROGRESS, COMPLETED, REJECTED"
// @Param        page   query int    false "page"
// @Param        limit  query int    false "page size"
// @Success      200 {object} dto.ReposicionListResponse
// @Router       /api/v1/reposiciones [get]
func (h *InventarioHandler) ListarReposiciones(c *gin.Context) {
	var filter dto.ReposicionFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListarReposiciones(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// IniciarReposicion godoc
// @Summary      PENDING → IN_PROGRESS
// @Tags         reposiciones
// @Accept       json
// @Produce      json
// @Param        id   path string                       true "request uuid"
// @Param        body body dto.IniciarReposicionRequest true "executor"
// @Success      200 {object} dto.ReposicionResponse
// @Failure      409 {object} apierror.Response
// @Router       /api/v1/reposiciones/{id}/iniciar [put]
func (h *InventarioHandler) IniciarReposicion(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.IniciarReposicionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.IniciarReposicion(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CompletarReposicion godoc
// @Summary      IN_PROGRESS → COMPLETED, adds stock to the location
// @Tags         reposiciones
// @Accept       json
// @Produce      json
// @Param        id   path string                         true "request uuid"
// @Param        body body dto.CompletarReposicionRequest true "quantity restocked"
// @Success      200 {object} dto.ReposicionResponse
// @Failure      409 {object} apierror.Response
// @Router       /api/v1/reposiciones/{id}/completar [put]
func (h *InventarioHandler) CompletarReposicion(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.CompletarReposicionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CompletarReposicion(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RechazarReposicion godoc
// @Summary      Reject an open request
// @Tags         reposiciones
// @Accept       json
// @Produce      json
// @Param        id   path string                        true "request uuid"
// @Param        body body dto.RechazarReposicionRequest true "reason"
// @Success      200 {object} dto.ReposicionResponse
// @Failure      409 {object} apierror.Response
// @Router       /api/v1/reposiciones/{id}/rechazar [put]
func (h *InventarioHandler) RechazarReposicion(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.RechazarReposicionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RechazarReposicion(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
