package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AlertaVencimento is what a notifier receives for one ata crossing a
// threshold. It carries everything the message needs so transports never
// reach back into the store.
type AlertaVencimento struct {
	ID            uuid.UUID       `json:"id"`
	Tipo          string          `json:"tipo"` // D-90 … D-1, VENCIMENTO, POS-VENCIMENTO
	NumeroAta     string          `json:"numero_ata"`
	DocumentoSEI  string          `json:"documento_sei"`
	Objeto        string          `json:"objeto"`
	Fornecedor    string          `json:"fornecedor"`
	DataVigencia  time.Time       `json:"data_vigencia"`
	DiasRestantes int             `json:"dias_restantes"`
	Status        string          `json:"status"`
	ValorTotal    decimal.Decimal `json:"valor_total"`
	Itens         []ItemResponse  `json:"itens"`
	Telefones     []string        `json:"telefones_fornecedor"`
	Emails        []string        `json:"emails_fornecedor"`
	Destinatarios []string        `json:"destinatarios"`
	GeradoEm      time.Time       `json:"gerado_em"`
}

type AtaAlertada struct {
	NumeroAta     string `json:"numero_ata"`
	TipoAlerta    string `json:"tipo_alerta"`
	DiasRestantes int    `json:"dias_restantes"`
}

// ResultadoVerificacao summarises one alert run. Errors are per ata and never
// abort the run.
type ResultadoVerificacao struct {
	Data            string        `json:"data"`
	AlertasEnviados int           `json:"alertas_enviados"`
	AtasAlertadas   []AtaAlertada `json:"atas_alertadas"`
	Erros           []string      `json:"erros"`
}

// RegistroAlerta is one alert history entry: (ata, tipo, dia) already sent.
type RegistroAlerta struct {
	ID         uuid.UUID `json:"id"`
	NumeroAta  string    `json:"numero_ata"`
	TipoAlerta string    `json:"tipo_alerta"`
	Data       string    `json:"data"` // YYYY-MM-DD
	EnviadoEm  time.Time `json:"enviado_em"`
}

type CriticidadeResponse struct {
	Nivel         string          `json:"nivel"`
	Motivo        string          `json:"motivo"`
	DiasRestantes int             `json:"dias_restantes"`
	Valor         decimal.Decimal `json:"valor"`
}

type AtaCritica struct {
	Ata         ResumoAta           `json:"ata"`
	Criticidade CriticidadeResponse `json:"criticidade"`
}
