package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type TipoRelatorio string

const (
	RelatorioSemanalTipo TipoRelatorio = "semanal"
	RelatorioMensalTipo  TipoRelatorio = "mensal"
)

// ResumoAta is the compact row used by reports and listings.
type ResumoAta struct {
	NumeroAta     string          `json:"numero_ata"`
	Objeto        string          `json:"objeto"`
	Fornecedor    string          `json:"fornecedor"`
	DataVigencia  string          `json:"data_vigencia"`
	DiasRestantes int             `json:"dias_restantes"`
	Status        string          `json:"status"`
	ValorTotal    decimal.Decimal `json:"valor_total"`
}

type ContagemStatus struct {
	Total             int     `json:"total"`
	Vigentes          int     `json:"vigentes"`
	AVencer           int     `json:"a_vencer"`
	Vencidas          int     `json:"vencidas"`
	PercentualVigente float64 `json:"percentual_vigentes"`
	PercentualAVencer float64 `json:"percentual_a_vencer"`
	PercentualVencida float64 `json:"percentual_vencidas"`
}

type RelatorioSemanal struct {
	Contagem         ContagemStatus `json:"contagem"`
	LimiteAVencer    int            `json:"limite_a_vencer"`
	Proximas         []ResumoAta    `json:"proximas"`
	ProximasOmitidas int            `json:"proximas_omitidas"`
}

type FornecedorResumo struct {
	Fornecedor string          `json:"fornecedor"`
	Quantidade int             `json:"quantidade"`
	ValorTotal decimal.Decimal `json:"valor_total"`
}

type RelatorioMensal struct {
	Periodo          string             `json:"periodo"` // MM/AAAA
	Contagem         ContagemStatus     `json:"contagem"`
	ValorTotal       decimal.Decimal    `json:"valor_total"`
	PorFornecedor    []FornecedorResumo `json:"por_fornecedor"`
	Proximas         []ResumoAta        `json:"proximas"`
	Vencidas         []ResumoAta        `json:"vencidas"`
	VencemEsteAno    int                `json:"vencem_este_ano"`
	VencemProximoAno int                `json:"vencem_proximo_ano"`
	Tendencia        string             `json:"tendencia,omitempty"`
	Recomendacoes    []string           `json:"recomendacoes"`
}

// Relatorio is the envelope handed to a notifier. Exactly one of Semanal or
// Mensal is set, matching Tipo.
type Relatorio struct {
	Tipo          TipoRelatorio     `json:"tipo"`
	GeradoEm      time.Time         `json:"gerado_em"`
	Destinatarios []string          `json:"destinatarios"`
	Semanal       *RelatorioSemanal `json:"semanal,omitempty"`
	Mensal        *RelatorioMensal  `json:"mensal,omitempty"`
}

type EnvioRelatorioResponse struct {
	Tipo    TipoRelatorio `json:"tipo"`
	Enviado bool          `json:"enviado"`
}
