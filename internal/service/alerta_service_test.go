package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"atasrp/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Tests: VerificarAlertas ───────────────────────────────────────────────────

func TestVerificarAlertas_D90(t *testing.T) {
	n := &stubNotificador{}
	svc := novoAlertaService(n)
	atas := []model.Ata{ataVencendoEm(t, "0001/2024", 90, "100")}

	res := svc.VerificarAlertas(context.Background(), atas, hojeFixo)

	assert.Equal(t, 1, res.AlertasEnviados)
	require.Len(t, res.AtasAlertadas, 1)
	assert.Equal(t, "0001/2024", res.AtasAlertadas[0].NumeroAta)
	assert.Equal(t, "D-90", res.AtasAlertadas[0].TipoAlerta)
	assert.Equal(t, 90, res.AtasAlertadas[0].DiasRestantes)
	assert.Empty(t, res.Erros)

	require.Len(t, n.alertas, 1)
	assert.Equal(t, []string{"diatu@trf1.jus.br", "seae1@trf1.jus.br"}, n.alertas[0].Destinatarios)
	assert.Equal(t, "a_vencer", n.alertas[0].Status)
}

func TestVerificarAlertas_PosVencimento(t *testing.T) {
	n := &stubNotificador{}
	svc := novoAlertaService(n)
	a := ataVencendoEm(t, "0002/2024", -10, "100")
	assert.Equal(t, model.StatusVencida, a.Status(hojeFixo, model.DefaultLimiteAVencer))

	res := svc.VerificarAlertas(context.Background(), []model.Ata{a}, hojeFixo)

	require.Equal(t, 1, res.AlertasEnviados)
	assert.Equal(t, TipoPosVencimento, res.AtasAlertadas[0].TipoAlerta)
	assert.Equal(t, -10, res.AtasAlertadas[0].DiasRestantes)
}

func TestVerificarAlertas_Rotulos(t *testing.T) {
	svc := novoAlertaService(&stubNotificador{})
	cases := map[int]string{90: "D-90", 60: "D-60", 30: "D-30", 15: "D-15", 7: "D-7", 1: "D-1", 0: "VENCIMENTO", -1: "POS-VENCIMENTO", -30: "POS-VENCIMENTO"}
	for dias, want := range cases {
		got, ok := svc.TipoAlerta(dias)
		assert.True(t, ok, "dias=%d", dias)
		assert.Equal(t, want, got)
	}
	for _, dias := range []int{91, 89, 45, 2, -31} {
		_, ok := svc.TipoAlerta(dias)
		assert.False(t, ok, "dias=%d", dias)
	}
}

func TestVerificarAlertas_DeduplicaMesmoDia(t *testing.T) {
	n := &stubNotificador{}
	svc := novoAlertaService(n)
	atas := []model.Ata{ataVencendoEm(t, "0001/2024", 30, "100")}

	first := svc.VerificarAlertas(context.Background(), atas, hojeFixo)
	second := svc.VerificarAlertas(context.Background(), atas, hojeFixo.Add(3*time.Hour))

	assert.Equal(t, 1, first.AlertasEnviados)
	assert.Equal(t, 0, second.AlertasEnviados)
	assert.Equal(t, 1, n.enviados())
	assert.Equal(t, 1, svc.TamanhoHistorico())
}

func TestVerificarAlertas_PosVencimentoDiario(t *testing.T) {
	n := &stubNotificador{}
	svc := novoAlertaService(n)
	a := ataVencendoEm(t, "0001/2024", -5, "100")

	svc.VerificarAlertas(context.Background(), []model.Ata{a}, hojeFixo)
	svc.VerificarAlertas(context.Background(), []model.Ata{a}, hojeFixo.AddDate(0, 0, 1))

	assert.Equal(t, 2, n.enviados(), "one alert per day inside the band")
}

func TestVerificarAlertas_IsolaFalhas(t *testing.T) {
	n := &stubNotificador{falhar: func(numero string) (bool, error) {
		if numero == "0001/2024" {
			return false, errTransporte
		}
		return true, nil
	}}
	svc := novoAlertaService(n)
	atas := []model.Ata{
		ataVencendoEm(t, "0001/2024", 7, "100"),
		ataVencendoEm(t, "0002/2024", 7, "100"),
	}

	res := svc.VerificarAlertas(context.Background(), atas, hojeFixo)

	assert.Equal(t, 1, res.AlertasEnviados)
	assert.Equal(t, "0002/2024", res.AtasAlertadas[0].NumeroAta)
	require.Len(t, res.Erros, 1)
	assert.Contains(t, res.Erros[0], "0001/2024")
}

func TestVerificarAlertas_FalhaReenviaNaProximaExecucao(t *testing.T) {
	falhando := true
	n := &stubNotificador{falhar: func(string) (bool, error) {
		if falhando {
			return false, nil
		}
		return true, nil
	}}
	svc := novoAlertaService(n)
	atas := []model.Ata{ataVencendoEm(t, "0001/2024", 1, "100")}

	res := svc.VerificarAlertas(context.Background(), atas, hojeFixo)
	assert.Equal(t, 0, res.AlertasEnviados)
	require.Len(t, res.Erros, 1)
	assert.Contains(t, res.Erros[0], ErrEnvioRecusado.Error())
	assert.Equal(t, 0, svc.TamanhoHistorico())

	falhando = false
	res = svc.VerificarAlertas(context.Background(), atas, hojeFixo)
	assert.Equal(t, 1, res.AlertasEnviados)
}

func TestVerificarAlertas_PanicoNaoAbortaExecucao(t *testing.T) {
	n := &stubNotificador{panico: "0001/2024"}
	svc := novoAlertaService(n)
	atas := []model.Ata{
		ataVencendoEm(t, "0001/2024", 0, "100"),
		ataVencendoEm(t, "0002/2024", 0, "100"),
	}

	res := svc.VerificarAlertas(context.Background(), atas, hojeFixo)

	assert.Equal(t, 1, res.AlertasEnviados)
	require.Len(t, res.Erros, 1)
	assert.Contains(t, res.Erros[0], "0001/2024")
}

func TestVerificarAlertas_ThresholdsConfiguraveis(t *testing.T) {
	n := &stubNotificador{}
	cfg := DefaultAlertaConfig()
	cfg.Now = relogioFixo
	cfg.Thresholds = []int{45}
	cfg.PosVencimento = 0
	svc := NewAlertaService(n, cfg)

	atas := []model.Ata{
		ataVencendoEm(t, "0001/2024", 45, "100"),
		ataVencendoEm(t, "0002/2024", 90, "100"),
		ataVencendoEm(t, "0003/2024", -1, "100"),
	}
	res := svc.VerificarAlertas(context.Background(), atas, hojeFixo)
	require.Equal(t, 1, res.AlertasEnviados)
	assert.Equal(t, "D-45", res.AtasAlertadas[0].TipoAlerta)
}

func TestVerificarAlertas_ConcorrenteNaoDuplica(t *testing.T) {
	n := &stubNotificador{delay: 5 * time.Millisecond}
	svc := novoAlertaService(n)
	atas := []model.Ata{ataVencendoEm(t, "0001/2024", 15, "100")}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.VerificarAlertas(context.Background(), atas, hojeFixo)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, n.enviados())
}

// ── Tests: Histórico ──────────────────────────────────────────────────────────

func TestHistorico_RetencaoELimite(t *testing.T) {
	n := &stubNotificador{}
	cfg := DefaultAlertaConfig()
	cfg.Now = relogioFixo
	cfg.MaxHistorico = 3
	cfg.RetencaoDias = 10
	svc := NewAlertaService(n, cfg)

	a := ataVencendoEm(t, "0001/2024", -1, "100")
	// The ata stays in the post-expiration band; run it over five days.
	for d := 0; d < 5; d++ {
		svc.VerificarAlertas(context.Background(), []model.Ata{a}, hojeFixo.AddDate(0, 0, d))
	}
	assert.Equal(t, 3, svc.TamanhoHistorico(), "cap drops oldest")

	hist := svc.HistoricoAlertas(30, hojeFixo.AddDate(0, 0, 4))
	require.Len(t, hist, 3)
	assert.Equal(t, "2024-03-03", hist[0].Data)

	assert.Len(t, svc.HistoricoAlertas(1, hojeFixo.AddDate(0, 0, 4)), 2)

	removed := svc.LimparHistoricoAntigo(hojeFixo.AddDate(0, 0, 14))
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, svc.TamanhoHistorico())
}

// ── Tests: Criticidade ────────────────────────────────────────────────────────

func TestAtasCriticas_OrdenadasPorUrgencia(t *testing.T) {
	svc := novoAlertaService(&stubNotificador{})
	atas := []model.Ata{
		ataVencendoEm(t, "0001/2024", 120, "100"),    // NORMAL
		ataVencendoEm(t, "0002/2024", 12, "100"),     // ALTA
		ataVencendoEm(t, "0003/2024", -3, "100"),     // CRÍTICA
		ataVencendoEm(t, "0004/2024", 25, "2000000"), // MÉDIA → ALTA
		ataVencendoEm(t, "0005/2024", 5, "100"),      // CRÍTICA
		ataVencendoEm(t, "0006/2024", 45, "100"),     // BAIXA
	}

	criticas := svc.AtasCriticas(atas, hojeFixo)

	require.Len(t, criticas, 4)
	assert.Equal(t, "0003/2024", criticas[0].Ata.NumeroAta)
	assert.Equal(t, "0005/2024", criticas[1].Ata.NumeroAta)
	assert.Equal(t, "0002/2024", criticas[2].Ata.NumeroAta)
	assert.Equal(t, "0004/2024", criticas[3].Ata.NumeroAta)
	assert.Equal(t, "ALTA", criticas[3].Criticidade.Nivel)
	assert.Equal(t, "Ata vencida há 3 dias", criticas[0].Criticidade.Motivo)
}

// ── Tests: Relatórios ─────────────────────────────────────────────────────────

func TestRelatorioSemanal(t *testing.T) {
	svc := novoAlertaService(&stubNotificador{})
	var atas []model.Ata
	for i := 0; i < 12; i++ {
		atas = append(atas, ataVencendoEm(t, fmt.Sprintf("%04d/2024", i+1), 80-i, "10"))
	}
	atas = append(atas, ataVencendoEm(t, "0100/2024", 200, "10"), ataVencendoEm(t, "0101/2024", -2, "10"))

	r := svc.RelatorioSemanal(atas, hojeFixo)

	assert.Equal(t, 14, r.Contagem.Total)
	assert.Equal(t, 1, r.Contagem.Vigentes)
	assert.Equal(t, 12, r.Contagem.AVencer)
	assert.Equal(t, 1, r.Contagem.Vencidas)
	assert.InDelta(t, 85.7, r.Contagem.PercentualAVencer, 0.01)
	require.Len(t, r.Proximas, 10)
	assert.Equal(t, 2, r.ProximasOmitidas)
	assert.Equal(t, 69, r.Proximas[0].DiasRestantes, "soonest first")
}

func TestRelatorioMensal(t *testing.T) {
	svc := novoAlertaService(&stubNotificador{})
	a1 := ataVencendoEm(t, "0001/2024", 20, "100")
	a2 := ataVencendoEm(t, "0002/2024", -40, "300")
	a3 := ataVencendoEm(t, "0003/2024", -5, "50")
	a4 := ataVencendoEm(t, "0004/2024", 400, "1000")
	a3.Fornecedor = a1.Fornecedor

	r := svc.RelatorioMensal([]model.Ata{a1, a2, a3, a4}, hojeFixo)

	assert.Equal(t, "03/2024", r.Periodo)
	assert.True(t, r.ValorTotal.Equal(decimal.RequireFromString("1450")))
	require.Len(t, r.PorFornecedor, 3)
	assert.Equal(t, "Fornecedor 0004/2024", r.PorFornecedor[0].Fornecedor)
	assert.Equal(t, 2, r.PorFornecedor[2].Quantidade)
	assert.True(t, r.PorFornecedor[2].ValorTotal.Equal(decimal.NewFromInt(150)))

	require.Len(t, r.Vencidas, 2)
	assert.Equal(t, "0002/2024", r.Vencidas[0].NumeroAta)
	require.Len(t, r.Proximas, 1)

	assert.Equal(t, 3, r.VencemEsteAno)
	assert.Equal(t, 1, r.VencemProximoAno)
	assert.Equal(t, []string{
		"Iniciar processos de renovação para atas próximas do vencimento",
		"Regularizar situação das atas vencidas",
		"Considerar ampliação do portfólio de atas",
	}, r.Recomendacoes)
}

func TestEnviarRelatorio(t *testing.T) {
	n := &stubNotificador{}
	svc := novoAlertaService(n)
	atas := []model.Ata{ataVencendoEm(t, "0001/2024", 20, "100")}

	ok, err := svc.EnviarRelatorioSemanal(context.Background(), atas, hojeFixo)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = svc.EnviarRelatorioMensal(context.Background(), atas, hojeFixo)
	require.NoError(t, err)
	assert.True(t, ok)

	require.Len(t, n.relatorios, 2)
	assert.NotNil(t, n.relatorios[0].Semanal)
	assert.NotNil(t, n.relatorios[1].Mensal)

	n.falhar = func(string) (bool, error) { return false, nil }
	ok, err = svc.EnviarRelatorioSemanal(context.Background(), atas, hojeFixo)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrEnvioRecusado)
}
