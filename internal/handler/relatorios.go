package handler

import (
	"net/http"

	"atasrp/internal/apierror"
	"atasrp/internal/dto"
	"atasrp/internal/infra"
	"atasrp/internal/service"

	"github.com/gin-gonic/gin"
)

const mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type RelatoriosHandler struct {
	atas      service.AtaService
	alertas   service.AlertaService
	agendador Agendador
}

func NewRelatoriosHandler(atas service.AtaService, alertas service.AlertaService, ag Agendador) *RelatoriosHandler {
	return &RelatoriosHandler{atas: atas, alertas: alertas, agendador: ag}
}

// Semanal GET /v1/relatorios/semanal
func (h *RelatoriosHandler) Semanal(c *gin.Context) {
	atas, err := h.atas.Todas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.alertas.RelatorioSemanal(atas, h.atas.Hoje()))
}

// Mensal GET /v1/relatorios/mensal
func (h *RelatoriosHandler) Mensal(c *gin.Context) {
	atas, err := h.atas.Todas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.alertas.RelatorioMensal(atas, h.atas.Hoje()))
}

// Enviar POST /v1/relatorios/:tipo/enviar
func (h *RelatoriosHandler) Enviar(c *gin.Context) {
	tipo := dto.TipoRelatorio(c.Param("tipo"))
	if tipo != dto.RelatorioSemanalTipo && tipo != dto.RelatorioMensalTipo {
		c.JSON(http.StatusBadRequest, apierror.New("Tipo de relatório deve ser semanal ou mensal"))
		return
	}
	ok, err := h.agendador.GerarRelatorioManual(c.Request.Context(), tipo)
	if err != nil {
		c.JSON(http.StatusBadGateway, apierror.New("Falha ao enviar relatório: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, dto.EnvioRelatorioResponse{Tipo: tipo, Enviado: ok})
}

// Planilha GET /v1/relatorios/planilha
func (h *RelatoriosHandler) Planilha(c *gin.Context) {
	atas, err := h.atas.Listar(c.Request.Context(), dto.ListarAtasFilter{})
	if err != nil {
		respondError(c, err)
		return
	}
	data, err := infra.GerarPlanilhaAtas(atas)
	if err != nil {
		respondError(c, err)
		return
	}
	nome := infra.NomePlanilha(h.atas.Hoje().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+nome+`"`)
	c.Data(http.StatusOK, mimeXLSX, data)
}
