package handler

import (
	"net/http"

	"github.com/codefren/s4t-koroshi-sms-backend/internal/dto"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/service"

	"github.com/gin-gonic/gin"
)

type OperariosHandler struct{ svc service.OperatorService }

func NewOperariosHandler(svc service.OperatorService) *OperariosHandler {
	return &OperariosHandler{svc: svc}
}

// Crear godoc
// @Summary      Register a picker
// @Tags         operarios
// @Accept       json
// @Produce      json
// @Param        body body dto.CrearOperarioRequest true "operator"
// @Success      201 {object} dto.OperarioResponse
// @Failure      409 {object} apierror.Response
// @Router       /api/v1/operarios [post]
func (h *OperariosHandler) Crear(c *gin.Context) {
	var req dto.CrearOperarioRequest
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
// @Summary      List pickers
// @Tags         operarios
// @Produce      json
// @Param        incluir_inactivos query bool false "include deactivated operators"
// @Success      200 {array} dto.OperarioResponse
// @Router       /api/v1/operarios [get]
func (h *OperariosHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context(), c.Query("incluir_inactivos") == "true")
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerPorCodigo godoc
// @Summary      Picker by PDA code
// @Tags         operarios
// @Produce      json
// @Param        codigo path string true "operator code"
// @Success      200 {object} dto.OperarioResponse
// @Failure      404 {object} apierror.Response
// @Router       /api/v1/operarios/{codigo} [get]
func (h *OperariosHandler) ObtenerPorCodigo(c *gin.Context) {
	resp, err := h.svc.ObtenerPorCodigo(c.Request.Context(), c.Param("codigo"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Desactivar godoc
// @Summary      Deactivate a picker
// @Tags         operarios
// @Param        id path string true "operator uuid"
// @Success      204
// @Failure      404 {object} apierror.Response
// @Router       /api/v1/operarios/{id} [delete]
func (h *OperariosHandler) Desactivar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Desactivar(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Actualizar godoc
// @Summary      Rename or (re)activate a picker
// @Tags         operarios
// @Accept       json
// @Produce      json
// @Param        id   path string                        true "operator uuid"
// @Param        body body dto.ActualizarOperarioRequest true "fields to change"
// @Success      200 {object} dto.OperarioResponse
// @Failure      404 {object} apierror.Response
// @Router       /api/v1/operarios/{id} [put]
func (h *OperariosHandler) Actualizar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarOperarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AlternarEstado godoc
// @Summary      Toggle a picker between active and inactive
// @Tags         operarios
// @Produce      json
// @Param        id path string true "operator uuid"
// @Success      200 {object} dto.OperarioResponse
// @Failure      404 {object} apierror.Response
// @Router       /api/v1/operarios/{id}/toggle-status [patch]
func (h *OperariosHandler) AlternarEstado(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.AlternarEstado(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
