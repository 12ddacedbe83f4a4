package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// OrderStatus is the order lifecycle. The numeric value is the ordinal of the
// forward progression; StatusCancelled sits outside it.
type OrderStatus int

const (
	StatusPending OrderStatus = iota + 1
	StatusAssigned
	StatusInPicking
	StatusPicked
	StatusPacking
	StatusReady
	StatusShipped
	StatusCancelled
)

var statusCodes = map[OrderStatus]string{
	StatusPending:   "PENDING",
	StatusAssigned:  "ASSIGNED",
	StatusInPicking: "IN_PICKING",
	StatusPicked:    "PICKED",
	StatusPacking:   "PACKING",
	StatusReady:     "READY",
	StatusShipped:   "SHIPPED",
	StatusCancelled: "CANCELLED",
}

var statusNames = map[OrderStatus]string{
	StatusPending:   "Pendiente",
	StatusAssigned:  "Asignada",
	StatusInPicking: "En picking",
	StatusPicked:    "Recogida",
	StatusPacking:   "En embalaje",
	StatusReady:     "Lista",
	StatusShipped:   "Enviada",
	StatusCancelled: "Cancelada",
}

func (s OrderStatus) String() string {
	if code, ok := statusCodes[s]; ok {
		return code
	}
	return "UNKNOWN"
}

// Nombre is the human label shown in listings.
func (s OrderStatus) Nombre() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "Desconocido"
}

func (s OrderStatus) Valid() bool {
	_, ok := statusCodes[s]
	return ok
}

func ParseOrderStatus(code string) (OrderStatus, error) {
	c := strings.ToUpper(strings.TrimSpace(code))
	for s, v := range statusCodes {
		if v == c {
			return s, nil
		}
	}
	return 0, fmt.Errorf("estado de orden desconocido: %q", code)
}

// IsTerminal reports whether no further transition is possible.
func (s OrderStatus) IsTerminal() bool { return s == StatusShipped || s == StatusCancelled }

// AcceptsScans is the scan gate: only orders being picked take scans.
func (s OrderStatus) AcceptsScans() bool { return s == StatusInPicking }

// Before compares positions along the forward progression. Cancelled is
// out-of-band and is neither before nor after anything.
func (s OrderStatus) Before(o OrderStatus) bool {
	if s == StatusCancelled || o == StatusCancelled || !s.Valid() || !o.Valid() {
		return false
	}
	return s < o
}

// CanTransitionTo allows one step forward, or cancellation from any
// non-terminal status.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if !s.Valid() || !next.Valid() || s.IsTerminal() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	return next == s+1
}

func (s OrderStatus) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

func (s *OrderStatus) UnmarshalJSON(b []byte) error {
	var code string
	if err := json.Unmarshal(b, &code); err != nil {
		return err
	}
	parsed, err := ParseOrderStatus(code)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Value implements driver.Valuer.
func (s OrderStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("estado de orden inválido: %d", int(s))
	}
	return s.String(), nil
}

// Scan implements sql.Scanner.
func (s *OrderStatus) Scan(src any) error {
	var code string
	switch v := src.(type) {
	case string:
		code = v
	case []byte:
		code = string(v)
	default:
		return fmt.Errorf("estado de orden: tipo no soportado %T", src)
	}
	parsed, err := ParseOrderStatus(code)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// OrderPriority is the fulfillment urgency of an order.
type OrderPriority string

const (
	PriorityNormal OrderPriority = "NORMAL"
	PriorityHigh   OrderPriority = "HIGH"
	PriorityUrgent OrderPriority = "URGENT"
)

func ParseOrderPriority(s string) (OrderPriority, error) {
	switch p := OrderPriority(strings.ToUpper(strings.TrimSpace(s))); p {
	case PriorityNormal, PriorityHigh, PriorityUrgent:
		return p, nil
	}
	return "", fmt.Errorf("prioridad desconocida: %q", s)
}
