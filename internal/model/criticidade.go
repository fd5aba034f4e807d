package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// NivelCriticidade orders how urgently an ata needs attention.
type NivelCriticidade string

const (
	CriticidadeNormal  NivelCriticidade = "NORMAL"
	CriticidadeBaixa   NivelCriticidade = "BAIXA"
	CriticidadeMedia   NivelCriticidade = "MÉDIA"
	CriticidadeAlta    NivelCriticidade = "ALTA"
	CriticidadeCritica NivelCriticidade = "CRÍTICA"
)

// DefaultValorAltoCriticidade raises the tier of high-value atas.
var DefaultValorAltoCriticidade = decimal.NewFromInt(1_000_000)

// Peso ranks levels; higher is more urgent.
func (n NivelCriticidade) Peso() int {
	switch n {
	case CriticidadeBaixa:
		return 1
	case CriticidadeMedia:
		return 2
	case CriticidadeAlta:
		return 3
	case CriticidadeCritica:
		return 4
	}
	return 0
}

type Criticidade struct {
	Nivel         NivelCriticidade `json:"nivel"`
	Motivo        string           `json:"motivo"`
	DiasRestantes int              `json:"dias_restantes"`
	ValorTotal    decimal.Decimal  `json:"valor_total"`
}

// AvaliarCriticidade rates an ata by days left, bumping one tier when its
// total value exceeds valorAlto. CRÍTICA and ALTA are never bumped.
func AvaliarCriticidade(a *Ata, hoje time.Time, valorAlto decimal.Decimal) Criticidade {
	dias := a.DiasRestantes(hoje)
	valor := a.ValorTotal()

	var nivel NivelCriticidade
	var motivo string
	switch {
	case dias < 0:
		nivel = CriticidadeCritica
		motivo = fmt.Sprintf("Ata vencida há %d dias", -dias)
	case dias <= 7:
		nivel = CriticidadeCritica
		motivo = fmt.Sprintf("Vencimento em %d dias", dias)
	case dias <= 15:
		nivel = CriticidadeAlta
		motivo = fmt.Sprintf("Vencimento em %d dias", dias)
	case dias <= 30:
		nivel = CriticidadeMedia
		motivo = fmt.Sprintf("Vencimento em %d dias", dias)
	case dias <= 60:
		nivel = CriticidadeBaixa
		motivo = fmt.Sprintf("Vencimento em %d dias", dias)
	default:
		nivel = CriticidadeNormal
		motivo = "Ata vigente"
	}

	if valor.GreaterThan(valorAlto) {
		switch nivel {
		case CriticidadeMedia:
			nivel = CriticidadeAlta
		case CriticidadeBaixa:
			nivel = CriticidadeMedia
		}
	}
	return Criticidade{Nivel: nivel, Motivo: motivo, DiasRestantes: dias, ValorTotal: valor}
}
