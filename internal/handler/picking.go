package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/codefren/s4t-koroshi-sms-backend/internal/apierror"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/dto"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocket close codes sent when the operator cannot be resolved.
const (
	CloseOperatorInactive = 4003
	CloseOperatorNotFound = 4004
)

const wsWriteTimeout = 10 * time.Second

type PickingHandler struct {
	svc      service.PickingService
	upgrader websocket.Upgrader
}

func NewPickingHandler(svc service.PickingService) *PickingHandler {
	return &PickingHandler{
		svc: svc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// PDAs connect from the warehouse LAN without an Origin header.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Escanear godoc
// @Summary      Register one scanned unit against an order line
// @Tags         picking
// @Accept       json
// @Produce      json
// @Param        body body dto.ScanRequest true "scan"
// @Success      200 {object} picking.ScanConfirmation
// @Failure      403 {object} apierror.Response
// @Failure      409 {object} apierror.Response
// @Failure      422 {object} apierror.Response
// @Router       /api/v1/picking/scan [post]
func (h *PickingHandler) Escanear(c *gin.Context) {
	var req dto.ScanRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if strings.TrimSpace(req.OperatorCode) == "" {
		fail(c, apierror.InvalidRequest("codigo_operario es obligatorio"))
		return
	}
	ctx := c.Request.Context()
	op, err := h.svc.ResolveOperator(ctx, req.OperatorCode)
	if err != nil {
		fail(c, err)
		return
	}
	conf, err := h.svc.Scan(ctx, op, req, service.ChannelHTTP)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, conf)
}

// ── WebSocket ────────────────────────────────────────────────────────────────
//  1. Upgrade, then resolve the operator (close 4004 / 4003 on failure)
//  2. Send "connected"
//  3. Read, process and answer one message at a time until the PDA hangs up

// OperatorChannel godoc
// @Summary      PDA scan channel
// @Tags         picking
// @Param        codigo path string true "operator code"
// @Router       /ws/operators/{codigo} [get]
func (h *PickingHandler) OperatorChannel(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Str("codigo", c.Param("codigo")).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	op, err := h.svc.ResolveOperator(ctx, c.Param("codigo"))
	if err != nil {
		closeWith(conn, closeCodeFor(err), err)
		return
	}

	logger := log.With().Str("operator", op.CodigoOperario).Logger()
	logger.Info().Msg("operator connected")
	defer logger.Info().Msg("operator disconnected")

	if err := writeJSON(conn, dto.ActionConnected, dto.WSConnected{
		OperatorID:     op.ID.String(),
		CodigoOperario: op.CodigoOperario,
		Nombre:         op.Nombre,
		Mensaje:        "Conectado como " + op.Nombre,
	}); err != nil {
		return
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn().Err(err).Msg("websocket read failed")
			}
			return
		}

		action, reply := h.handleMessage(c, raw)
		if err := writeJSON(conn, action, reply); err != nil {
			logger.Warn().Err(err).Msg("websocket write failed")
			return
		}
	}
}

func (h *PickingHandler) handleMessage(c *gin.Context, raw []byte) (string, any) {
	var in dto.WSInbound
	if err := json.Unmarshal(raw, &in); err != nil {
		return dto.ActionError, apierror.ToResponse(apierror.InvalidRequest("mensaje JSON invalido"))
	}

	switch in.Action {
	case dto.ActionScanProduct:
		var req dto.ScanRequest
		if len(in.Data) > 0 {
			if err := json.Unmarshal(in.Data, &req); err != nil {
				return dto.ActionScanError, apierror.ToResponse(apierror.InvalidRequest("data invalida"))
			}
		}
		// The operator is re-read on every scan so a deactivation takes
		// effect on the next message.
		ctx := c.Request.Context()
		op, err := h.svc.ResolveOperator(ctx, c.Param("codigo"))
		if err != nil {
			return dto.ActionScanError, errorBody(err)
		}
		conf, err := h.svc.Scan(ctx, op, req, service.ChannelWebSocket)
		if err != nil {
			return dto.ActionScanError, errorBody(err)
		}
		return dto.ActionScanConfirmed, conf
	default:
		return dto.ActionError, apierror.ToResponse(apierror.UnknownAction(in.Action))
	}
}

func errorBody(err error) apierror.Response {
	if apiErr, ok := apierror.As(err); ok {
		return apierror.ToResponse(apiErr)
	}
	log.Error().Err(err).Msg("websocket scan failed")
	return apierror.ToResponse(apierror.Internal(err))
}

func closeCodeFor(err error) int {
	switch {
	case errors.Is(err, apierror.ErrOperatorNotFound):
		return CloseOperatorNotFound
	case errors.Is(err, apierror.ErrOperatorInactive):
		return CloseOperatorInactive
	default:
		return websocket.CloseInternalServerErr
	}
}

func closeWith(conn *websocket.Conn, code int, err error) {
	reason := "error interno"
	if apiErr, ok := apierror.As(err); ok && apiErr.Code != apierror.CodeInternal {
		reason = apiErr.Message
	}
	// Control frame payloads are capped at 125 bytes, 2 of which are the code.
	for len(reason) > 123 {
		r := []rune(reason)
		reason = string(r[:len(r)-1])
	}
	msg := websocket.FormatCloseMessage(code, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsWriteTimeout))
}

func writeJSON(conn *websocket.Conn, action string, data any) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(dto.WSOutbound{Action: action, Data: data})
}
