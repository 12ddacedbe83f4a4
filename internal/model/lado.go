package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Lado is the side of the aisle a shelf slot faces. On the wire and in the
// database it is always one of the two tokens IZQUIERDA / DERECHA.
type Lado int

const (
	LadoIzquierda Lado = iota + 1
	LadoDerecha
)

const (
	ladoIzquierdaToken = "IZQUIERDA"
	ladoDerechaToken   = "DERECHA"
)

func (l Lado) String() string {
	switch l {
	case LadoIzquierda:
		return ladoIzquierdaToken
	case LadoDerecha:
		return ladoDerechaToken
	default:
		return ""
	}
}

func (l Lado) Valid() bool { return l == LadoIzquierda || l == LadoDerecha }

// ParseLado accepts the wire tokens case-insensitively.
func ParseLado(s string) (Lado, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case ladoIzquierdaToken:
		return LadoIzquierda, nil
	case ladoDerechaToken:
		return LadoDerecha, nil
	}
	return 0, fmt.Errorf("lado inválido %q: debe ser IZQUIERDA o DERECHA", s)
}

func (l Lado) MarshalJSON() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("lado inválido: %d", int(l))
	}
	return json.Marshal(l.String())
}

func (l *Lado) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseLado(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Value implements driver.Valuer.
func (l Lado) Value() (driver.Value, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("lado inválido: %d", int(l))
	}
	return l.String(), nil
}

// Scan implements sql.Scanner.
func (l *Lado) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("lado: tipo no soportado %T", src)
	}
	parsed, err := ParseLado(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
