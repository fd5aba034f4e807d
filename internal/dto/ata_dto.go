package dto

import (
	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemInput struct {
	Descricao  string          `json:"descricao"`
	Quantidade int             `json:"quantidade"`
	Valor      decimal.Decimal `json:"valor"`
}

// AtaRequest is the body of create and replace. Field rules live in the
// domain model; here only presence is checked.
type AtaRequest struct {
	NumeroAta    string      `json:"numero_ata"           validate:"required"`
	DocumentoSEI string      `json:"documento_sei"        validate:"required"`
	DataVigencia string      `json:"data_vigencia"        validate:"required"` // YYYY-MM-DD or DD/MM/YYYY
	Objeto       string      `json:"objeto"`
	Fornecedor   string      `json:"fornecedor"`
	Telefones    []string    `json:"telefones_fornecedor"`
	Emails       []string    `json:"emails_fornecedor"`
	Itens        []ItemInput `json:"itens"`
}

type ListarAtasFilter struct {
	Status string `form:"status"`
	Q      string `form:"q"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemResponse struct {
	Descricao  string          `json:"descricao"`
	Quantidade int             `json:"quantidade"`
	Valor      decimal.Decimal `json:"valor"`
	ValorTotal decimal.Decimal `json:"valor_total"`
}

type AtaResponse struct {
	NumeroAta     string          `json:"numero_ata"`
	DocumentoSEI  string          `json:"documento_sei"`
	DataVigencia  string          `json:"data_vigencia"`
	Objeto        string          `json:"objeto"`
	Fornecedor    string          `json:"fornecedor"`
	Telefones     []string        `json:"telefones_fornecedor"`
	Emails        []string        `json:"emails_fornecedor"`
	Itens         []ItemResponse  `json:"itens"`
	Status        string          `json:"status"`
	StatusLabel   string          `json:"status_label"`
	DiasRestantes int             `json:"dias_restantes"`
	ValorTotal    decimal.Decimal `json:"valor_total"`
}

type EstatisticasResponse struct {
	Total      int             `json:"total"`
	Vigentes   int             `json:"vigentes"`
	AVencer    int             `json:"a_vencer"`
	Vencidas   int             `json:"vencidas"`
	ValorTotal decimal.Decimal `json:"valor_total"`
}

type ProximaNumeracaoResponse struct {
	NumeroAta string `json:"numero_ata"`
}

type NumeroDisponivelResponse struct {
	NumeroAta  string `json:"numero_ata"`
	Disponivel bool   `json:"disponivel"`
}
