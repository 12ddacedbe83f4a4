package handler

import (
	"net/http"

	"github.com/codefren/s4t-koroshi-sms-backend/internal/dto"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductosHandler struct{ svc service.ProductService }

func NewProductosHandler(svc service.ProductService) *ProductosHandler {
	return &ProductosHandler{svc: svc}
}

// Crear godoc
// @Summary      Create a product reference
// @Tags         productos
// @Accept       json
// @Produce      json
// @Param        body body dto.CrearProductoRequest true "product"
// @Success      201 {object} dto.ProductoResponse
// @Failure      409 {object} apierror.Response
// @Router       /api/v1/productos [post]
func (h *ProductosHandler) Crear(c *gin.Context) {
	var req dto.CrearProductoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary      List product references
// @Tags         productos
// @Produce      json
// @Param        nombre    query string false "name contains"
// @Param        temporada query string false "season"
// @Param        activo    query string false "true / false"
// @Param        page      query int    false "page"
// @Param        limit     query int    false "page size"
// @Success      200 {object} dto.ProductoListResponse
// @Router       /api/v1/productos [get]
func (h *ProductosHandler) Listar(c *gin.Context) {
	var filter dto.ProductoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerPorID godoc
// @Summary      Product detail with locations and total stock
// @Tags         productos
// @Produce      json
// @Param        id path string true "product uuid"
// @Success      200 {object} dto.ProductoResponse
// @Failure      404 {object} apierror.Response
// @Router       /api/v1/productos/{id} [get]
func (h *ProductosHandler) ObtenerPorID(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Ubicaciones ──────────────────────────────────────────────────────────────

// CrearUbicacion godoc
// @Summary      Add a picking location to a product
// @Tags         ubicaciones
// @Accept       json
// @Produce      json
// @Param        id   path string                    true "product uuid"
// @Param        body body dto.CrearUbicacionRequest true "location"
// @Success      201 {object} dto.UbicacionResponse
// @Failure      409 {object} apierror.Response
// @Failure      422 {object} apierror.Response
// @Router       /api/v1/productos/{id}/ubicaciones [post]
func (h *ProductosHandler) CrearUbicacion(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.CrearUbicacionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearUbicacion(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarUbicaciones godoc
// @Summary      Active locations of a product, by priority
// @Tags         ubicaciones
// @Produce      json
// @Param        id path string true "product uuid"
// @Success      200 {array} dto.UbicacionResponse
// @Router       /api/v1/productos/{id}/ubicaciones [get]
func (h *ProductosHandler) ListarUbicaciones(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ListarUbicaciones(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DesactivarUbicacion godoc
// @Summary      Deactivate a location
// @Tags         ubicaciones
// @Param        id path string true "location uuid"
// @Success      204
// @Failure      404 {object} apierror.Response
// @Router       /api/v1/ubicaciones/{id} [delete]
func (h *ProductosHandler) DesactivarUbicacion(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DesactivarUbicacion(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ResumenStock godoc
// @Summary      Stock overview of a product with locations below minimum
// @Tags         productos
// @Produce      json
// @Param        id path string true "product uuid"
// @Success      200 {object} dto.ResumenStockResponse
// @Failure      404 {object} apierror.Response
// @Router       /api/v1/productos/{id}/stock-summary [get]
func (h *ProductosHandler) ResumenStock(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ResumenStock(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
