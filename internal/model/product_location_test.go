package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/codefren/s4t-koroshi-sms-backend/internal/apierror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSpec() LocationSpec {
	return LocationSpec{
		ProductID: uuid.New(),
		Pasillo:   "B3",
		Lado:      "DERECHA",
		Ubicacion: "05",
		Altura:    1,
		Prioridad: 3,
	}
}

func TestLocationCodeRoundTrip(t *testing.T) {
	loc, err := NewProductLocation(validSpec())
	require.NoError(t, err)
	assert.Equal(t, "B3-DERECHA-05-1", loc.CodigoUbicacion)
	assert.True(t, loc.Activa)

	parsed, err := ParseLocationCode(loc.CodigoUbicacion)
	require.NoError(t, err)
	assert.Equal(t, "B3", parsed.Pasillo)
	assert.Equal(t, LadoDerecha, parsed.Lado)
	assert.Equal(t, "05", parsed.Ubicacion)
	assert.Equal(t, 1, parsed.Altura)
	assert.Equal(t, loc.CodigoUbicacion, parsed.String())
}

func TestNewProductLocationLowercaseLado(t *testing.T) {
	spec := validSpec()
	spec.Lado = " izquierda "
	spec.Pasillo = "A"
	spec.Ubicacion = "12"
	spec.Altura = 2

	loc, err := NewProductLocation(spec)
	require.NoError(t, err)
	assert.Equal(t, "A-IZQUIERDA-12-2", loc.CodigoUbicacion)
}

func TestNewProductLocationRejectsInvalid(t *testing.T) {
	cases := map[string]func(*LocationSpec){
		"pasillo vacío":       func(s *LocationSpec) { s.Pasillo = "" },
		"pasillo con guion":   func(s *LocationSpec) { s.Pasillo = "A-1" },
		"lado desconocido":    func(s *LocationSpec) { s.Lado = "CENTRO" },
		"ubicación con guion": func(s *LocationSpec) { s.Ubicacion = "0-5" },
		"altura cero":         func(s *LocationSpec) { s.Altura = 0 },
		"altura once":         func(s *LocationSpec) { s.Altura = 11 },
		"prioridad cero":      func(s *LocationSpec) { s.Prioridad = 0 },
		"prioridad seis":      func(s *LocationSpec) { s.Prioridad = 6 },
		"stock negativo":      func(s *LocationSpec) { s.StockActual = -1 },
		"mínimo negativo":     func(s *LocationSpec) { s.StockMinimo = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			spec := validSpec()
			mutate(&spec)
			_, err := NewProductLocation(spec)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apierror.ErrInvalidLocation))
		})
	}
}

func TestParseLocationCodeRejectsMalformed(t *testing.T) {
	for _, code := range []string{"", "A-IZQUIERDA-12", "A-ARRIBA-12-2", "A-DERECHA-12-x", "A-DERECHA-12-0", "A-DERECHA-12-2-9"} {
		_, err := ParseLocationCode(code)
		assert.Error(t, err, code)
	}
}

func TestCheckDuplicateLocation(t *testing.T) {
	first, err := NewProductLocation(validSpec())
	require.NoError(t, err)
	first.ID = uuid.New()

	spec := validSpec()
	spec.ProductID = first.ProductID
	dup, err := NewProductLocation(spec)
	require.NoError(t, err)

	err = CheckDuplicateLocation([]ProductLocation{*first}, dup)
	assert.True(t, errors.Is(err, apierror.ErrDuplicateLocation))

	// An inactive slot with the same tuple does not block a new one.
	first.Activa = false
	assert.NoError(t, CheckDuplicateLocation([]ProductLocation{*first}, dup))

	// Another product may share the physical tuple.
	first.Activa = true
	other, err := NewProductLocation(validSpec())
	require.NoError(t, err)
	assert.NoError(t, CheckDuplicateLocation([]ProductLocation{*first}, other))
}

func TestLadoJSONTokens(t *testing.T) {
	b, err := json.Marshal(LadoIzquierda)
	require.NoError(t, err)
	assert.Equal(t, `"IZQUIERDA"`, string(b))

	var l Lado
	require.NoError(t, json.Unmarshal([]byte(`"derecha"`), &l))
	assert.Equal(t, LadoDerecha, l)
	assert.Error(t, json.Unmarshal([]byte(`"LEFT"`), &l))
}

func TestBajoMinimo(t *testing.T) {
	cases := []struct {
		stock, minimo int
		want          bool
	}{
		{4, 5, true},
		{0, 1, true},
		{5, 5, false},
		{6, 5, false},
		{0, 0, false},
	}
	for _, tc := range cases {
		loc := &ProductLocation{StockActual: tc.stock, StockMinimo: tc.minimo}
		assert.Equal(t, tc.want, loc.BajoMinimo(), "stock %d minimo %d", tc.stock, tc.minimo)
	}
}
