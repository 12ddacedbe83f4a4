package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes. They are part of the wire contract with the PDA clients.
const (
	CodeOrderNotFound       = "ORDER_NOT_FOUND"
	CodeOperatorNotFound    = "OPERATOR_NOT_FOUND"
	CodeOperatorInactive    = "OPERATOR_INACTIVE"
	CodeLineNotFound        = "LINE_NOT_FOUND"
	CodeProductNotFound     = "PRODUCT_NOT_FOUND"
	CodeLocationNotFound    = "LOCATION_NOT_FOUND"
	CodeRequestNotFound     = "REQUEST_NOT_FOUND"
	CodeBoxNotFound         = "BOX_NOT_FOUND"
	CodeBoxAlreadyOpen      = "BOX_ALREADY_OPEN"
	CodeBoxNotOpen          = "BOX_NOT_OPEN"
	CodeOrderNotAssigned    = "ORDER_NOT_ASSIGNED"
	CodeOrderWrongStatus    = "ORDER_WRONG_STATUS"
	CodeInvalidTransition   = "INVALID_TRANSITION"
	CodeEanNotInOrder       = "EAN_NOT_IN_ORDER"
	CodeMaxQuantityReached  = "MAX_QUANTITY_REACHED"
	CodeInvalidQuantity     = "INVALID_QUANTITY"
	CodeInvalidLocation     = "INVALID_LOCATION"
	CodeDuplicateLocation   = "DUPLICATE_LOCATION"
	CodeDuplicateEntity     = "DUPLICATE_ENTITY"
	CodeMissingOrderNumber  = "MISSING_ORDER_NUMBER"
	CodeMissingEAN          = "MISSING_EAN"
	CodeUnknownAction       = "UNKNOWN_ACTION"
	CodeInvalidRequestState = "INVALID_REQUEST_STATE"
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeInternal            = "INTERNAL_ERROR"
)

// Sentinels for errors.Is checks. Matching is by Code only, so a sentinel
// matches every Error carrying the same code regardless of its message.
var (
	ErrOrderNotFound      = &Error{Code: CodeOrderNotFound}
	ErrOperatorNotFound   = &Error{Code: CodeOperatorNotFound}
	ErrOperatorInactive   = &Error{Code: CodeOperatorInactive}
	ErrLineNotFound       = &Error{Code: CodeLineNotFound}
	ErrProductNotFound    = &Error{Code: CodeProductNotFound}
	ErrLocationNotFound   = &Error{Code: CodeLocationNotFound}
	ErrRequestNotFound    = &Error{Code: CodeRequestNotFound}
	ErrBoxNotFound        = &Error{Code: CodeBoxNotFound}
	ErrBoxAlreadyOpen     = &Error{Code: CodeBoxAlreadyOpen}
	ErrBoxNotOpen         = &Error{Code: CodeBoxNotOpen}
	ErrOrderNotAssigned   = &Error{Code: CodeOrderNotAssigned}
	ErrOrderWrongStatus   = &Error{Code: CodeOrderWrongStatus}
	ErrInvalidTransition  = &Error{Code: CodeInvalidTransition}
	ErrEanNotInOrder      = &Error{Code: CodeEanNotInOrder}
	ErrMaxQuantityReached = &Error{Code: CodeMaxQuantityReached}
	ErrInvalidQuantity    = &Error{Code: CodeInvalidQuantity}
	ErrInvalidLocation    = &Error{Code: CodeInvalidLocation}
	ErrDuplicateLocation  = &Error{Code: CodeDuplicateLocation}
)

// Error is a typed, caller-recoverable domain error.
type Error struct {
	Code       string
	Message    string
	CanRetry   bool
	HTTPStatus int
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Wrap attaches an underlying cause.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

func newError(code string, status int, format string, args ...any) *Error {
	return &Error{
		Code:       code,
		Message:    fmt.Sprintf(format, args...),
		CanRetry:   true,
		HTTPStatus: status,
	}
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf returns the error code carried by err, or CodeInternal.
func CodeOf(err error) string {
	if e, ok := As(err); ok {
		return e.Code
	}
	return CodeInternal
}

// ── Constructors ─────────────────────────────────────────────────────────────

func OrderNotFound(ref string) *Error {
	if ref == "" {
		return newError(CodeOrderNotFound, http.StatusNotFound, "Orden no encontrada")
	}
	return newError(CodeOrderNotFound, http.StatusNotFound, "Orden %s no encontrada", ref)
}

func OperatorNotFound(ref string) *Error {
	return newError(CodeOperatorNotFound, http.StatusNotFound, "Operario %s no encontrado", ref)
}

func OperatorInactive(nombre string) *Error {
	return newError(CodeOperatorInactive, http.StatusBadRequest, "El operario '%s' está inactivo", nombre)
}

func LineNotFound(ref string) *Error {
	return newError(CodeLineNotFound, http.StatusNotFound, "Línea %s no encontrada en la orden", ref)
}

func ProductNotFound(ref string) *Error {
	return newError(CodeProductNotFound, http.StatusNotFound, "Producto %s no encontrado", ref)
}

func LocationNotFound(ref string) *Error {
	return newError(CodeLocationNotFound, http.StatusNotFound, "Ubicación %s no encontrada", ref)
}

func RequestNotFound(ref string) *Error {
	return newError(CodeRequestNotFound, http.StatusNotFound, "Solicitud de reposición %s no encontrada", ref)
}

func BoxNotFound(ref string) *Error {
	return newError(CodeBoxNotFound, http.StatusNotFound, "Caja %s no encontrada", ref)
}

// BoxAlreadyOpen is returned when an order already has an open box.
func BoxAlreadyOpen(codigo string) *Error {
	return newError(CodeBoxAlreadyOpen, http.StatusConflict,
		"Ya existe una caja abierta (%s). Ciérrela antes de abrir una nueva", codigo)
}

func BoxNotOpen(codigo, estado string) *Error {
	e := newError(CodeBoxNotOpen, http.StatusConflict,
		"La caja %s está en estado %s. Solo se aceptan cajas OPEN", codigo, estado)
	e.CanRetry = false
	return e
}

func OrderNotAssigned() *Error {
	return newError(CodeOrderNotAssigned, http.StatusForbidden, "Esta orden no está asignada a ti")
}

// OrderWrongStatus builds the status-gate error. Retrying is pointless once
// the order reached a terminal status, so CanRetry is cleared for those.
func OrderWrongStatus(current string, terminal bool, expected string) *Error {
	e := newError(CodeOrderWrongStatus, http.StatusConflict,
		"La orden está en estado %s. Debe estar en %s", current, expected)
	e.CanRetry = !terminal
	return e
}

func InvalidTransition(from, to string) *Error {
	return newError(CodeInvalidTransition, http.StatusConflict,
		"Transición de estado no permitida: %s → %s", from, to)
}

func EanNotInOrder(ean string) *Error {
	return newError(CodeEanNotInOrder, http.StatusUnprocessableEntity, "El EAN %s no pertenece a esta orden", ean)
}

func MaxQuantityReached(solicitada int) *Error {
	return newError(CodeMaxQuantityReached, http.StatusConflict,
		"Ya se completó la cantidad solicitada (%d)", solicitada)
}

func InvalidQuantity(delta int) *Error {
	return newError(CodeInvalidQuantity, http.StatusBadRequest, "Incremento inválido: %d", delta)
}

func InvalidLocation(format string, args ...any) *Error {
	return newError(CodeInvalidLocation, http.StatusUnprocessableEntity, format, args...)
}

func DuplicateLocation(codigo string) *Error {
	return newError(CodeDuplicateLocation, http.StatusConflict,
		"Ya existe una ubicación activa %s para este producto", codigo)
}

func DuplicateEntity(format string, args ...any) *Error {
	return newError(CodeDuplicateEntity, http.StatusConflict, format, args...)
}

func MissingOrderNumber() *Error {
	return newError(CodeMissingOrderNumber, http.StatusBadRequest, "Falta el ID o número de orden")
}

func MissingEAN() *Error {
	return newError(CodeMissingEAN, http.StatusBadRequest, "Falta el código EAN")
}

func UnknownAction(action string) *Error {
	return newError(CodeUnknownAction, http.StatusBadRequest, "Acción desconocida: %s", action)
}

func InvalidRequestState(current, expected string) *Error {
	return newError(CodeInvalidRequestState, http.StatusConflict,
		"La solicitud está en estado %s. Debe estar en %s", current, expected)
}

func InvalidRequest(format string, args ...any) *Error {
	return newError(CodeInvalidRequest, http.StatusBadRequest, format, args...)
}

// Internal hides err behind a generic message; err stays in the chain for logs.
func Internal(err error) *Error {
	e := newError(CodeInternal, http.StatusInternalServerError, "Error interno del servidor")
	return e.Wrap(err)
}
