package handler

import (
	"net/http"
	"strings"

	"github.com/codefren/s4t-koroshi-sms-backend/internal/apierror"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// ConsultaEANHandler serves the PDA barcode lookup. Read-only: it never
// touches orders or stock. Results are cached by the product service.
type ConsultaEANHandler struct{ svc service.ProductService }

func NewConsultaEANHandler(svc service.ProductService) *ConsultaEANHandler {
	return &ConsultaEANHandler{svc: svc}
}

// ConsultarEAN godoc
// @Summary      Product and active locations for a scanned barcode
// @Tags         productos
// @Produce      json
// @Param        ean path string true "EAN"
// @Success      200 {object} dto.ConsultaEANResponse
// @Failure      404 {object} apierror.Response
// @Router       /api/v1/ean/{ean} [get]
func (h *ConsultaEANHandler) ConsultarEAN(c *gin.Context) {
	ean := strings.TrimSpace(c.Param("ean"))
	if ean == "" {
		fail(c, apierror.MissingEAN())
		return
	}
	resp, err := h.svc.ConsultarEAN(c.Request.Context(), ean)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
