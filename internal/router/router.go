package router

import (
	"time"

	"github.com/codefren/s4t-koroshi-sms-backend/internal/config"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/handler"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/infra"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/metrics"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/middleware"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/picking"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/repository"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/service"
	"github.com/codefren/s4t-koroshi-sms-backend/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const defaultRateLimit = 600 // req/min per IP

// Deps are the process-wide collaborators built by main. Nil fields get a
// working default so tests can pass an empty Deps.
type Deps struct {
	Metrics     *metrics.Metrics
	Dispatcher  *worker.Dispatcher
	MailCB      *infra.CircuitBreaker
	RateLimiter *middleware.RateLimiter
}

// Services is the application layer shared by the HTTP surface and the
// background workers.
type Services struct {
	Orders     service.OrderService
	Picking    service.PickingService
	Products   service.ProductService
	Inventario service.InventarioService
	Operators  service.OperatorService
	Packing    service.PackingService
}

// NewServices wires repositories into services.
// Dependency graph: Service ← Repository ← DB/Redis
func NewServices(cfg *config.Config, db *gorm.DB, rdb *redis.Client, d Deps) *Services {
	d = d.withDefaults(cfg)

	// ── Repositories ─────────────────────────────────────────────────────────
	orderRepo := repository.NewOrderRepository(db)
	operatorRepo := repository.NewOperatorRepository(db)
	historyRepo := repository.NewOrderHistoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	movimientoRepo := repository.NewMovimientoStockRepository(db)
	reposicionRepo := repository.NewReposicionRepository(db)
	boxRepo := repository.NewPackingBoxRepository(db)

	// ── Core ─────────────────────────────────────────────────────────────────
	// One lock table per process: scans and status changes on the same order
	// must serialize on the same mutex.
	locks := picking.NewOrderLocks()
	var estimator picking.TimeEstimator
	if cfg.PickingMinutesPerStop > 0 {
		estimator = picking.PerStopEstimator(cfg.PickingMinutesPerStop)
	}
	optimizer := picking.NewRouteOptimizer(estimator)
	eanCache := infra.NewJSONCache(rdb, infra.EANCachePrefix, cfg.EANCacheTTL)

	return &Services{
		Orders:     service.NewOrderService(orderRepo, operatorRepo, historyRepo, optimizer, locks, d.Metrics, cfg.PDFStoragePath),
		Picking:    service.NewPickingService(orderRepo, operatorRepo, historyRepo, locks, d.Dispatcher, d.Metrics, cfg.SupervisorEmail),
		Products:   service.NewProductService(productRepo, eanCache),
		Inventario: service.NewInventarioService(productRepo, movimientoRepo, reposicionRepo, operatorRepo, eanCache, d.Metrics),
		Operators:  service.NewOperatorService(operatorRepo),
		Packing:    service.NewPackingService(orderRepo, boxRepo, historyRepo, locks),
	}
}

func (d Deps) withDefaults(cfg *config.Config) Deps {
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}
	if d.RateLimiter == nil {
		limit := cfg.RateLimitPerMinute
		if limit <= 0 {
			limit = defaultRateLimit
		}
		d.RateLimiter = middleware.NewRateLimiter(limit, time.Minute)
	}
	return d
}

// New returns a configured Gin engine serving svcs.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, svcs *Services, d Deps) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	d = d.withDefaults(cfg)

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.Metrics(d.Metrics))
	r.Use(middleware.ErrorHandler())

	// ── Handlers ─────────────────────────────────────────────────────────────
	ordersH := handler.NewOrdersHandler(svcs.Orders)
	pickingH := handler.NewPickingHandler(svcs.Picking)
	productosH := handler.NewProductosHandler(svcs.Products)
	eanH := handler.NewConsultaEANHandler(svcs.Products)
	inventarioH := handler.NewInventarioHandler(svcs.Inventario)
	operariosH := handler.NewOperariosHandler(svcs.Operators)
	packingH := handler.NewPackingHandler(svcs.Packing)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Platform
	r.GET("/health", handler.Health(db, rdb, d.MailCB))
	r.GET("/metrics", middleware.MetricsEndpoint(d.Metrics))

	// PDA channel. Not rate limited: one long-lived connection per device.
	r.GET("/ws/operators/:codigo", pickingH.OperatorChannel)

	v1 := r.Group("/api/v1", d.RateLimiter.Handler())
	{
		orders := v1.Group("/orders")
		{
			orders.GET("", ordersH.Listar)
			orders.GET("/:id", ordersH.Detalle)
			orders.PUT("/:id/assign", ordersH.AsignarOperario)
			orders.PUT("/:id/status", ordersH.CambiarEstado)
			orders.GET("/:id/history", ordersH.Historial)
			orders.POST("/:id/optimize-picking-route", ordersH.OptimizarRuta)
			orders.GET("/:id/stock-validation", ordersH.ValidarStock)
			orders.GET("/:id/picking-sheet.pdf", ordersH.HojaPicking)
			orders.POST("/:id/boxes", packingH.AbrirCaja)
			orders.GET("/:id/boxes", packingH.ListarCajas)
		}

		// Boxes are addressed by uuid, except close which takes the label code.
		boxes := v1.Group("/packing-boxes")
		{
			boxes.GET("/:caja", packingH.DetalleCaja)
			boxes.PUT("/:caja", packingH.ActualizarCaja)
			boxes.PUT("/:caja/close", packingH.CerrarCaja)
			boxes.POST("/:caja/lines", packingH.EmpacarLinea)
		}

		v1.POST("/picking/scan", pickingH.Escanear)

		prods := v1.Group("/productos")
		{
			prods.POST("", productosH.Crear)
			prods.GET("", productosH.Listar)
			prods.GET("/:id", productosH.ObtenerPorID)
			prods.POST("/:id/ubicaciones", productosH.CrearUbicacion)
			prods.GET("/:id/ubicaciones", productosH.ListarUbicaciones)
			prods.GET("/:id/stock-summary", productosH.ResumenStock)
		}
		v1.GET("/ean/:ean", eanH.ConsultarEAN)

		ubic := v1.Group("/ubicaciones")
		{
			ubic.PATCH("/:id/stock", inventarioH.AjustarStock)
			ubic.DELETE("/:id", productosH.DesactivarUbicacion)
		}

		inv := v1.Group("/inventario")
		{
			inv.GET("/alertas", inventarioH.ObtenerAlertas)
			inv.GET("/movimientos", inventarioH.ListarMovimientos)
		}

		repo := v1.Group("/reposiciones")
		{
			repo.POST("", inventarioH.CrearReposicion)
			repo.GET("", inventarioH.ListarReposiciones)
			repo.PUT("/:id/iniciar", inventarioH.IniciarReposicion)
			repo.PUT("/:id/completar", inventarioH.CompletarReposicion)
			repo.PUT("/:id/rechazar", inventarioH.RechazarReposicion)
		}

		ops := v1.Group("/operarios")
		{
			ops.POST("", operariosH.Crear)
			ops.GET("", operariosH.Listar)
			ops.GET("/:codigo", operariosH.ObtenerPorCodigo)
			ops.DELETE("/:id", operariosH.Desactivar)
			ops.PUT("/:id", operariosH.Actualizar)
			ops.PATCH("/:id/toggle-status", operariosH.AlternarEstado)
		}
	}

	// Swagger UI outside production only
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
