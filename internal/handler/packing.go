package handler

import (
	"net/http"

	"github.com/codefren/s4t-koroshi-sms-backend/internal/dto"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/service"

	"github.com/gin-gonic/gin"
)

type PackingHandler struct{ svc service.PackingService }

func NewPackingHandler(svc service.PackingService) *PackingHandler {
	return &PackingHandler{svc: svc}
}

// AbrirCaja godoc
// @Summary      Open the next packing box of an order
// @Description  Order must be IN_PICKING or PICKED with no other OPEN box. Body is optional.
// @Tags         packing
// @Accept       json
// @Produce      json
// @Param        id   path string               true  "order uuid"
// @Param        body body dto.AbrirCajaRequest false "notes"
// @Success      201 {object} dto.CajaResponse
// @Failure      404 {object} apierror.Response
// @Failure      409 {object} apierror.Response
// @Router       /api/v1/orders/{id}/boxes [post]
func (h *PackingHandler) AbrirCaja(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.AbrirCajaRequest
	if c.Request.ContentLength != 0 && !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AbrirCaja(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarCajas godoc
// @Summary      Boxes of an order, by number
// @Tags         packing
// @Produce      json
// @Param        id     path  string true  "order uuid"
// @Param        estado query string false "OPEN or CLOSED"
// @Success      200 {array} dto.CajaResponse
// @Failure      404 {object} apierror.Response
// @Router       /api/v1/orders/{id}/boxes [get]
func (h *PackingHandler) ListarCajas(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var filter dto.CajaFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListarCajas(c.Request.Context(), id, filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DetalleCaja godoc
// @Summary      Box with its packed lines
// @Tags         packing
// @Produce      json
// @Param        caja path string true "box uuid"
// @Success      200 {object} dto.CajaDetalleResponse
// @Failure      404 {object} apierror.Response
// @Router       /api/v1/packing-boxes/{caja} [get]
func (h *PackingHandler) DetalleCaja(c *gin.Context) {
	id, ok := paramUUID(c, "caja")
	if !ok {
		return
	}
	resp, err := h.svc.DetalleCaja(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ActualizarCaja godoc
// @Summary      Set weight, dimensions or notes of a box
// @Tags         packing
// @Accept       json
// @Produce      json
// @Param        caja path string                    true "box uuid"
// @Param        body body dto.ActualizarCajaRequest true "fields to change"
// @Success      200 {object} dto.CajaResponse
// @Failure      404 {object} apierror.Response
// @Router       /api/v1/packing-boxes/{caja} [put]
func (h *PackingHandler) ActualizarCaja(c *gin.Context) {
	id, ok := paramUUID(c, "caja")
	if !ok {
		return
	}
	var req dto.ActualizarCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarCaja(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CerrarCaja godoc
// @Summary      Close a box by its label code
// @Tags         packing
// @Accept       json
// @Produce      json
// @Param        caja path string                 true  "box code, e.g. ORD-1001-BOX-001"
// @Param        body body dto.CerrarCajaRequest false "final weight, dimensions and notes"
// @Success      200 {object} dto.CajaResponse
// @Failure      404 {object} apierror.Response
// @Failure      409 {object} apierror.Response
// @Router       /api/v1/packing-boxes/{caja}/close [put]
func (h *PackingHandler) CerrarCaja(c *gin.Context) {
	var req dto.CerrarCajaRequest
	if c.Request.ContentLength != 0 && !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CerrarCaja(c.Request.Context(), c.Param("caja"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// EmpacarLinea godoc
// @Summary      Put an order line into an open box
// @Tags         packing
// @Accept       json
// @Produce      json
// @Param        caja path string                  true "box uuid"
// @Param        body body dto.EmpacarLineaRequest true "line"
// @Success      200 {object} dto.CajaResponse
// @Failure      404 {object} apierror.Response
// @Failure      409 {object} apierror.Response
// @Router       /api/v1/packing-boxes/{caja}/lines [post]
func (h *PackingHandler) EmpacarLinea(c *gin.Context) {
	id, ok := paramUUID(c, "caja")
	if !ok {
		return
	}
	var req dto.EmpacarLineaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.EmpacarLinea(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
