package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassificarStatus_Fronteiras(t *testing.T) {
	hoje := dia(2024, time.March, 1)
	cases := []struct {
		dias int
		want Status
	}{
		{91, StatusVigente},
		{90, StatusAVencer},
		{1, StatusAVencer},
		{0, StatusAVencer},
		{-1, StatusVencida},
	}
	for _, tc := range cases {
		venc := hoje.AddDate(0, 0, tc.dias)
		assert.Equal(t, tc.dias, DiasRestantes(venc, hoje))
		assert.Equal(t, tc.want, ClassificarStatus(venc, hoje, DefaultLimiteAVencer), "dias=%d", tc.dias)
	}
}

func TestDiasRestantes_IgnoraHorario(t *testing.T) {
	hoje := time.Date(2024, time.March, 1, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, 1, DiasRestantes(dia(2024, time.March, 2), hoje))
}

func TestDiasRestantes_AnoBissexto(t *testing.T) {
	assert.Equal(t, 2, DiasRestantes(dia(2024, time.March, 1), dia(2024, time.February, 28)))
}

func TestParseData(t *testing.T) {
	d, err := ParseData("2025-12-31")
	require.NoError(t, err)
	assert.Equal(t, dia(2025, time.December, 31), d)

	d, err = ParseData("31/12/2025")
	require.NoError(t, err)
	assert.Equal(t, dia(2025, time.December, 31), d)

	_, err = ParseData("31-12-2025")
	assert.Error(t, err)
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "A Vencer", StatusAVencer.Label())
	assert.True(t, StatusVencida.Valid())
	assert.False(t, Status("outro").Valid())
}

func TestAvaliarCriticidade(t *testing.T) {
	hoje := dia(2024, time.January, 10)
	base := func(dias int, valor string) *Ata {
		a := ataValida()
		a.DataVigencia = hoje.AddDate(0, 0, dias)
		a.Itens = []Item{{Descricao: "x", Quantidade: 1, Valor: decimal.RequireFromString(valor)}}
		return &a
	}
	alto := DefaultValorAltoCriticidade

	cases := []struct {
		name   string
		dias   int
		valor  string
		nivel  NivelCriticidade
		motivo string
	}{
		{"vencida", -3, "10", CriticidadeCritica, "Ata vencida há 3 dias"},
		{"sete dias", 7, "10", CriticidadeCritica, "Vencimento em 7 dias"},
		{"quinze dias", 15, "10", CriticidadeAlta, "Vencimento em 15 dias"},
		{"trinta dias", 30, "10", CriticidadeMedia, "Vencimento em 30 dias"},
		{"sessenta dias", 60, "10", CriticidadeBaixa, "Vencimento em 60 dias"},
		{"vigente", 61, "10", CriticidadeNormal, "Ata vigente"},
		{"media alto valor", 25, "1000000.01", CriticidadeAlta, "Vencimento em 25 dias"},
		{"baixa alto valor", 45, "2000000", CriticidadeMedia, "Vencimento em 45 dias"},
		{"normal alto valor", 120, "2000000", CriticidadeNormal, "Ata vigente"},
		{"limite exato", 45, "1000000", CriticidadeBaixa, "Vencimento em 45 dias"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := AvaliarCriticidade(base(tc.dias, tc.valor), hoje, alto)
			assert.Equal(t, tc.nivel, c.Nivel)
			assert.Equal(t, tc.motivo, c.Motivo)
			assert.Equal(t, tc.dias, c.DiasRestantes)
		})
	}
}

func TestFormatadores(t *testing.T) {
	assert.Equal(t, "(61) 3333-4444", FormatarTelefone("6133334444"))
	assert.Equal(t, "(61) 99999-8888", FormatarTelefone("61 99999 8888"))
	assert.Equal(t, "123", FormatarTelefone(" 123 "))
	assert.Equal(t, "12345.678901/2024-11", FormatarDocumentoSEI("12345678901202411"))
	assert.Equal(t, "0012/2024", FormatarNumeroAta(12, 2024))
	assert.Equal(t, "31/12/2025", FormatarData(dia(2025, time.December, 31)))
}
