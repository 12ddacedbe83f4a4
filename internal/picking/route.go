package picking

import (
	"sort"

	"github.com/codefren/s4t-koroshi-sms-backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultMinutesPerStop is the coarse per-stop walking+picking estimate.
const DefaultMinutesPerStop = 1.5

// TimeEstimator turns a stop count into minutes. Swapping it never changes
// the stop order.
type TimeEstimator func(stops int) float64

// PerStopEstimator charges a fixed number of minutes per stop, rounded to one decimal.
func PerStopEstimator(minutesPerStop float64) TimeEstimator {
	per := decimal.NewFromFloat(minutesPerStop)
	return func(stops int) float64 {
		return per.Mul(decimal.NewFromInt(int64(stops))).Round(1).InexactFloat64()
	}
}

type RouteStop struct {
	Secuencia       int        `json:"secuencia"`
	OrderLineID     uuid.UUID  `json:"order_line_id"`
	Producto        string     `json:"producto"`
	EAN             string     `json:"ean"`
	Cantidad        int        `json:"cantidad"`
	CantidadServida int        `json:"cantidad_servida"`
	Ubicacion       string     `json:"ubicacion"`
	Pasillo         string     `json:"pasillo"`
	Lado            model.Lado `json:"lado"`
	Altura          int        `json:"altura"`
	Prioridad       int        `json:"prioridad"`
	StockDisponible int        `json:"stock_disponible"`
}

type AisleSummary struct {
	Pasillo  string `json:"pasillo"`
	Paradas  int    `json:"paradas"`
	Unidades int    `json:"unidades"`
}

// UnlocatedLine is a line left out of the route.
type UnlocatedLine struct {
	OrderLineID        uuid.UUID `json:"order_line_id"`
	Producto           string    `json:"producto"`
	UbicacionHistorica *string   `json:"ubicacion_historica"`
	Motivo             string    `json:"motivo"`
}

type RouteWarnings struct {
	LinesWithoutLocation int             `json:"lines_without_location"`
	Details              []UnlocatedLine `json:"details"`
}

type Route struct {
	TotalStops           int            `json:"total_stops"`
	AislesToVisit        []string       `json:"aisles_to_visit"`
	EstimatedTimeMinutes float64        `json:"estimated_time_minutes"`
	PickingRoute         []RouteStop    `json:"picking_route"`
	AisleSummary         []AisleSummary `json:"aisle_summary"`
	Warnings             RouteWarnings  `json:"warnings"`
}

// RouteOptimizer builds the walk order for an order's lines.
type RouteOptimizer struct {
	estimate TimeEstimator
}

// NewRouteOptimizer returns an optimizer using est, or the 1.5 min/stop
// estimator when est is nil.
func NewRouteOptimizer(est TimeEstimator) *RouteOptimizer {
	if est == nil {
		est = PerStopEstimator(DefaultMinutesPerStop)
	}
	return &RouteOptimizer{estimate: est}
}

type routeCandidate struct {
	line *model.OrderLine
	loc  *model.ProductLocation
}

// BuildRoute groups located lines by aisle, visits aisles in lexicographic
// order and, inside an aisle, lower prioridad first then lower altura.
// Remaining ties break on location code and line id so the output is fully
// determined by the input.
func (r *RouteOptimizer) BuildRoute(order *model.Order) *Route {
	route := &Route{
		AislesToVisit: []string{},
		PickingRoute:  []RouteStop{},
		AisleSummary:  []AisleSummary{},
		Warnings:      RouteWarnings{Details: []UnlocatedLine{}},
	}

	byAisle := make(map[string][]routeCandidate)
	for i := range order.Lines {
		line := &order.Lines[i]
		loc := line.ProductLocation
		switch {
		case loc == nil:
			route.Warnings.Details = append(route.Warnings.Details, unlocated(line, "Sin ubicación asignada"))
			continue
		case !loc.Activa:
			route.Warnings.Details = append(route.Warnings.Details, unlocated(line, "Ubicación inactiva: "+loc.CodigoUbicacion))
			continue
		}
		byAisle[loc.Pasillo] = append(byAisle[loc.Pasillo], routeCandidate{line: line, loc: loc})
	}
	route.Warnings.LinesWithoutLocation = len(route.Warnings.Details)

	aisles := make([]string, 0, len(byAisle))
	for aisle := range byAisle {
		aisles = append(aisles, aisle)
	}
	sort.Strings(aisles)

	seq := 0
	for _, aisle := range aisles {
		group := byAisle[aisle]
		sort.SliceStable(group, func(i, j int) bool { return lessStop(group[i], group[j]) })

		summary := AisleSummary{Pasillo: aisle}
		for _, c := range group {
			seq++
			route.PickingRoute = append(route.PickingRoute, RouteStop{
				Secuencia:       seq,
				OrderLineID:     c.line.ID,
				Producto:        c.line.DisplayName(),
				EAN:             c.line.EAN,
				Cantidad:        c.line.CantidadSolicitada,
				CantidadServida: c.line.CantidadServida,
				Ubicacion:       c.loc.CodigoUbicacion,
				Pasillo:         c.loc.Pasillo,
				Lado:            c.loc.Lado,
				Altura:          c.loc.Altura,
				Prioridad:       c.loc.Prioridad,
				StockDisponible: c.loc.StockActual,
			})
			summary.Paradas++
			summary.Unidades += c.line.CantidadSolicitada
		}
		route.AislesToVisit = append(route.AislesToVisit, aisle)
		route.AisleSummary = append(route.AisleSummary, summary)
	}

	route.TotalStops = seq
	route.EstimatedTimeMinutes = r.estimate(seq)
	return route
}

func lessStop(a, b routeCandidate) bool {
	if a.loc.Prioridad != b.loc.Prioridad {
		return a.loc.Prioridad < b.loc.Prioridad
	}
	if a.loc.Altura != b.loc.Altura {
		return a.loc.Altura < b.loc.Altura
	}
	if a.loc.CodigoUbicacion != b.loc.CodigoUbicacion {
		return a.loc.CodigoUbicacion < b.loc.CodigoUbicacion
	}
	return a.line.ID.String() < b.line.ID.String()
}

func unlocated(line *model.OrderLine, motivo string) UnlocatedLine {
	return UnlocatedLine{
		OrderLineID:        line.ID,
		Producto:           line.DisplayName(),
		UbicacionHistorica: line.UbicacionHistorica,
		Motivo:             motivo,
	}
}
