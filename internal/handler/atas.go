package handler

import (
	"net/http"
	"strings"

	"atasrp/internal/apierror"
	"atasrp/internal/dto"
	"atasrp/internal/model"
	"atasrp/internal/service"

	"github.com/gin-gonic/gin"
)

type AtasHandler struct{ svc service.AtaService }

func NewAtasHandler(svc service.AtaService) *AtasHandler {
	return &AtasHandler{svc: svc}
}

// Criar POST /v1/atas
func (h *AtasHandler) Criar(c *gin.Context) {
	var req dto.AtaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Criar(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	auditar(c, "criar", resp.NumeroAta)
	c.JSON(http.StatusCreated, resp)
}

// Listar GET /v1/atas?status=&q=
func (h *AtasHandler) Listar(c *gin.Context) {
	var f dto.ListarAtasFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Filtro inválido"))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Obter GET /v1/atas/:seq/:ano
func (h *AtasHandler) Obter(c *gin.Context) {
	numero, ok := numeroParam(c)
	if !ok {
		return
	}
	resp, err := h.svc.Obter(c.Request.Context(), numero)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Substituir PUT /v1/atas/:seq/:ano
func (h *AtasHandler) Substituir(c *gin.Context) {
	numero, ok := numeroParam(c)
	if !ok {
		return
	}
	var req dto.AtaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Substituir(c.Request.Context(), numero, req)
	if err != nil {
		respondError(c, err)
		return
	}
	auditar(c, "substituir", numero)
	c.JSON(http.StatusOK, resp)
}

// Excluir DELETE /v1/atas/:seq/:ano
func (h *AtasHandler) Excluir(c *gin.Context) {
	numero, ok := numeroParam(c)
	if !ok {
		return
	}
	if err := h.svc.Excluir(c.Request.Context(), numero); err != nil {
		respondError(c, err)
		return
	}
	auditar(c, "excluir", numero)
	c.Status(http.StatusNoContent)
}

// Estatisticas GET /v1/atas/estatisticas
func (h *AtasHandler) Estatisticas(c *gin.Context) {
	resp, err := h.svc.Estatisticas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// VencimentoProximo GET /v1/atas/vencimento-proximo?dias=
func (h *AtasHandler) VencimentoProximo(c *gin.Context) {
	dias, ok := intQuery(c, "dias", 0)
	if !ok {
		return
	}
	resp, err := h.svc.VencimentoProximo(c.Request.Context(), dias)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ProximaNumeracao GET /v1/atas/proxima-numeracao?ano=
func (h *AtasHandler) ProximaNumeracao(c *gin.Context) {
	ano, ok := intQuery(c, "ano", 0)
	if !ok {
		return
	}
	numero, err := h.svc.ProximaNumeracao(c.Request.Context(), ano)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ProximaNumeracaoResponse{NumeroAta: numero})
}

// NumeroDisponivel GET /v1/atas/numero-disponivel?numero=&excluir=
// excluir names the ata being edited, whose own number counts as free.
func (h *AtasHandler) NumeroDisponivel(c *gin.Context) {
	numero := strings.TrimSpace(c.Query("numero"))
	if !model.ValidNumeroAta(numero) {
		c.JSON(http.StatusBadRequest, apierror.New("Número da ata deve seguir o formato XXXX/AAAA"))
		return
	}
	ok, err := h.svc.NumeroDisponivel(c.Request.Context(), numero, strings.TrimSpace(c.Query("excluir")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NumeroDisponivelResponse{NumeroAta: numero, Disponivel: ok})
}
