package handler

import (
	"context"
	"net/http"

	"atasrp/internal/dto"
	"atasrp/internal/service"

	"github.com/gin-gonic/gin"
)

// Agendador is what the HTTP layer triggers on the scheduler.
type Agendador interface {
	ExecutarVerificacaoManual(ctx context.Context) (dto.ResultadoVerificacao, error)
	GerarRelatorioManual(ctx context.Context, tipo dto.TipoRelatorio) (bool, error)
	Status() dto.AgendadorStatus
}

type AlertasHandler struct {
	atas      service.AtaService
	alertas   service.AlertaService
	agendador Agendador
}

func NewAlertasHandler(atas service.AtaService, alertas service.AlertaService, ag Agendador) *AlertasHandler {
	return &AlertasHandler{atas: atas, alertas: alertas, agendador: ag}
}

// Verificar POST /v1/alertas/verificar
func (h *AlertasHandler) Verificar(c *gin.Context) {
	res, err := h.agendador.ExecutarVerificacaoManual(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Historico GET /v1/alertas/historico?dias=30
func (h *AlertasHandler) Historico(c *gin.Context) {
	dias, ok := intQuery(c, "dias", 30)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.alertas.HistoricoAlertas(dias, h.atas.Hoje()))
}

// Criticas GET /v1/alertas/criticas
func (h *AlertasHandler) Criticas(c *gin.Context) {
	atas, err := h.atas.Todas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.alertas.AtasCriticas(atas, h.atas.Hoje()))
}

// Status GET /v1/agendador/status
func (h *AlertasHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.agendador.Status())
}
