package router

import (
	"context"

	"atasrp/internal/config"
	"atasrp/internal/handler"
	"atasrp/internal/infra"
	"atasrp/internal/middleware"
	"atasrp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// Deps is everything the HTTP layer needs, built by the composition root.
type Deps struct {
	Atas      service.AtaService
	Alertas   service.AlertaService
	Agendador handler.Agendador
	Store     interface{ Ping(ctx context.Context) error }
	Redis     *redis.Client // nil unless NOTIFIER=queue
	Breakers  map[string]*infra.CircuitBreaker
	Limiter   *middleware.IPRateLimiter
}

// New returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/file
func New(cfg *config.Config, d Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.Origins()))
	r.Use(middleware.ErrorHandler())
	if d.Limiter != nil {
		r.Use(d.Limiter.Middleware())
	}

	// ── Handlers ─────────────────────────────────────────────────────────────
	atasH := handler.NewAtasHandler(d.Atas)
	alertasH := handler.NewAlertasHandler(d.Atas, d.Alertas, d.Agendador)
	relatoriosH := handler.NewRelatoriosHandler(d.Atas, d.Alertas, d.Agendador)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(d.Store, d.Redis, d.Breakers))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	leitura := middleware.RequireRole(middleware.RolAdministrador, middleware.RolConsulta)
	escrita := middleware.RequireRole(middleware.RolAdministrador)

	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		atas := v1.Group("/atas")
		{
			atas.GET("", leitura, atasH.Listar)
			atas.GET("/estatisticas", leitura, atasH.Estatisticas)
			atas.GET("/vencimento-proximo", leitura, atasH.VencimentoProximo)
			atas.GET("/proxima-numeracao", leitura, atasH.ProximaNumeracao)
			atas.GET("/numero-disponivel", leitura, atasH.NumeroDisponivel)
			atas.GET("/:seq/:ano", leitura, atasH.Obter)

			atas.POST("", escrita, atasH.Criar)
			atas.PUT("/:seq/:ano", escrita, atasH.Substituir)
			atas.DELETE("/:seq/:ano", escrita, atasH.Excluir)
		}

		alertas := v1.Group("/alertas")
		{
			alertas.POST("/verificar", escrita, alertasH.Verificar)
			alertas.GET("/historico", leitura, alertasH.Historico)
			alertas.GET("/criticas", leitura, alertasH.Criticas)
		}

		rel := v1.Group("/relatorios")
		{
			rel.GET("/semanal", leitura, relatoriosH.Semanal)
			rel.GET("/mensal", leitura, relatoriosH.Mensal)
			rel.GET("/planilha", leitura, relatoriosH.Planilha)
			rel.POST("/:tipo/enviar", escrita, relatoriosH.Enviar)
		}

		v1.GET("/agendador/status", leitura, alertasH.Status)
	}

	return r
}
