package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"atasrp/internal/dto"
	"atasrp/internal/metrics"
	"atasrp/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	TipoVencimento    = "VENCIMENTO"
	TipoPosVencimento = "POS-VENCIMENTO"

	maxProximasSemanal = 10
)

// AlertaConfig carries every business constant the alert engine uses.
// Nothing here is read from the environment; the composition root fills it.
type AlertaConfig struct {
	Thresholds    []int // days before expiration; 0 is the expiration day itself
	PosVencimento int   // days after expiration still alerted daily
	LimiteAVencer int
	ValorAlto     decimal.Decimal
	RetencaoDias  int
	MaxHistorico  int
	Destinatarios []string
	Now           Clock
}

// DefaultAlertaConfig mirrors the legacy defaults.
func DefaultAlertaConfig() AlertaConfig {
	return AlertaConfig{
		Thresholds:    []int{90, 60, 30, 15, 7, 1, 0},
		PosVencimento: 30,
		LimiteAVencer: model.DefaultLimiteAVencer,
		ValorAlto:     model.DefaultValorAltoCriticidade,
		RetencaoDias:  90,
		MaxHistorico:  1000,
		Destinatarios: []string{"diatu@trf1.jus.br", "seae1@trf1.jus.br"},
		Now:           time.Now,
	}
}

// AlertaService decides which atas need a notification on a given day,
// dispatches it and remembers what was sent.
type AlertaService interface {
	VerificarAlertas(ctx context.Context, atas []model.Ata, hoje time.Time) dto.ResultadoVerificacao
	TipoAlerta(dias int) (string, bool)

	HistoricoAlertas(dias int, hoje time.Time) []dto.RegistroAlerta
	TamanhoHistorico() int
	LimparHistoricoAntigo(hoje time.Time) int

	AvaliarCriticidade(a *model.Ata, hoje time.Time) model.Criticidade
	AtasCriticas(atas []model.Ata, hoje time.Time) []dto.AtaCritica

	RelatorioSemanal(atas []model.Ata, hoje time.Time) dto.RelatorioSemanal
	RelatorioMensal(atas []model.Ata, hoje time.Time) dto.RelatorioMensal
	EnviarRelatorioSemanal(ctx context.Context, atas []model.Ata, hoje time.Time) (bool, error)
	EnviarRelatorioMensal(ctx context.Context, atas []model.Ata, hoje time.Time) (bool, error)
}

type alertaService struct {
	notificador Notificador
	cfg         AlertaConfig
	thresholds  map[int]struct{}

	// mu guards historico for a whole run so a manual check racing the
	// scheduler cannot send the same (ata, tipo, dia) twice.
	mu        sync.Mutex
	historico []dto.RegistroAlerta
}

func NewAlertaService(notificador Notificador, cfg AlertaConfig) AlertaService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.LimiteAVencer <= 0 {
		cfg.LimiteAVencer = model.DefaultLimiteAVencer
	}
	if cfg.MaxHistorico <= 0 {
		cfg.MaxHistorico = 1000
	}
	th := make(map[int]struct{}, len(cfg.Thresholds))
	for _, d := range cfg.Thresholds {
		th[d] = struct{}{}
	}
	return &alertaService{notificador: notificador, cfg: cfg, thresholds: th}
}

// ── Alert run ─────────────────────────────────────────────────────────────────

// TipoAlerta returns the threshold label for dias, if any.
func (s *alertaService) TipoAlerta(dias int) (string, bool) {
	if _, ok := s.thresholds[dias]; ok {
		if dias == 0 {
			return TipoVencimento, true
		}
		return fmt.Sprintf("D-%d", dias), true
	}
	if dias < 0 && dias >= -s.cfg.PosVencimento {
		return TipoPosVencimento, true
	}
	return "", false
}

func (s *alertaService) VerificarAlertas(ctx context.Context, atas []model.Ata, hoje time.Time) dto.ResultadoVerificacao {
	start := time.Now()
	defer func() { metrics.VerificacaoDuracao.Observe(time.Since(start).Seconds()) }()

	hoje = model.Data(hoje)
	dia := model.FormatarDataISO(hoje)
	res := dto.ResultadoVerificacao{
		Data:          dia,
		AtasAlertadas: []dto.AtaAlertada{},
		Erros:         []string{},
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range atas {
		a := &atas[i]
		dias := a.DiasRestantes(hoje)
		tipo, ok := s.TipoAlerta(dias)
		if !ok || s.jaAlertado(a.NumeroAta, tipo, dia) {
			continue
		}
		if err := s.despachar(ctx, a, tipo, dias, hoje); err != nil {
			metrics.AlertasFalhos.WithLabelValues(tipo).Inc()
			log.Warn().Err(err).Str("numero_ata", a.NumeroAta).Str("tipo", tipo).Msg("alertas: falha no envio")
			res.Erros = append(res.Erros, err.Error())
			continue
		}
		// History is written only after the transport accepted, so a failed
		// send is retried on the next run of the same day.
		s.registrar(a.NumeroAta, tipo, dia)
		metrics.AlertasEnviados.WithLabelValues(tipo).Inc()
		res.AlertasEnviados++
		res.AtasAlertadas = append(res.AtasAlertadas, dto.AtaAlertada{
			NumeroAta: a.NumeroAta, TipoAlerta: tipo, DiasRestantes: dias,
		})
		log.Info().Str("numero_ata", a.NumeroAta).Str("tipo", tipo).Int("dias_restantes", dias).Msg("alertas: alerta enviado")
	}
	metrics.HistoricoTamanho.Set(float64(len(s.historico)))
	return res
}

// despachar isolates one ata: transport errors, refusals and panics all come
// back as an error naming the ata.
func (s *alertaService) despachar(ctx context.Context, a *model.Ata, tipo string, dias int, hoje time.Time) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("erro ao processar ata %s: %v", a.NumeroAta, r)
		}
	}()
	ok, sendErr := s.notificador.EnviarAlertaVencimento(ctx, s.montarAlerta(a, tipo, dias, hoje))
	if sendErr != nil {
		return fmt.Errorf("erro ao processar ata %s: %w", a.NumeroAta, sendErr)
	}
	if !ok {
		return fmt.Errorf("erro ao enviar alerta para ata %s: %w", a.NumeroAta, ErrEnvioRecusado)
	}
	return nil
}

func (s *alertaService) montarAlerta(a *model.Ata, tipo string, dias int, hoje time.Time) dto.AlertaVencimento {
	return dto.AlertaVencimento{
		ID:            uuid.New(),
		Tipo:          tipo,
		NumeroAta:     a.NumeroAta,
		DocumentoSEI:  a.DocumentoSEI,
		Objeto:        a.Objeto,
		Fornecedor:    a.Fornecedor,
		DataVigencia:  a.DataVigencia,
		DiasRestantes: dias,
		Status:        string(a.Status(hoje, s.cfg.LimiteAVencer)),
		ValorTotal:    a.ValorTotal(),
		Itens:         mapItens(a.Itens),
		Telefones:     a.Telefones,
		Emails:        a.Emails,
		Destinatarios: s.cfg.Destinatarios,
		GeradoEm:      s.cfg.Now(),
	}
}

// ── History ───────────────────────────────────────────────────────────────────

func (s *alertaService) jaAlertado(numero, tipo, dia string) bool {
	for _, r := range s.historico {
		if r.NumeroAta == numero && r.TipoAlerta == tipo && r.Data == dia {
			return true
		}
	}
	return false
}

func (s *alertaService) registrar(numero, tipo, dia string) {
	s.historico = append(s.historico, dto.RegistroAlerta{
		ID:         uuid.New(),
		NumeroAta:  numero,
		TipoAlerta: tipo,
		Data:       dia,
		EnviadoEm:  s.cfg.Now(),
	})
	if excess := len(s.historico) - s.cfg.MaxHistorico; excess > 0 {
		s.historico = append([]dto.RegistroAlerta(nil), s.historico[excess:]...)
	}
}

// HistoricoAlertas returns entries from the last dias days, oldest first.
func (s *alertaService) HistoricoAlertas(dias int, hoje time.Time) []dto.RegistroAlerta {
	limite := model.FormatarDataISO(model.Data(hoje).AddDate(0, 0, -dias))
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]dto.RegistroAlerta, 0, len(s.historico))
	for _, r := range s.historico {
		// ISO dates compare lexically.
		if r.Data >= limite {
			out = append(out, r)
		}
	}
	return out
}

func (s *alertaService) TamanhoHistorico() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.historico)
}

// LimparHistoricoAntigo drops entries older than the retention window and
// returns how many were removed.
func (s *alertaService) LimparHistoricoAntigo(hoje time.Time) int {
	limite := model.FormatarDataISO(model.Data(hoje).AddDate(0, 0, -s.cfg.RetencaoDias))
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.historico[:0]
	for _, r := range s.historico {
		if r.Data >= limite {
			kept = append(kept, r)
		}
	}
	removed := len(s.historico) - len(kept)
	s.historico = kept
	metrics.HistoricoTamanho.Set(float64(len(s.historico)))
	if removed > 0 {
		log.Info().Int("removidos", removed).Msg("alertas: histórico antigo removido")
	}
	return removed
}

// ── Criticality ───────────────────────────────────────────────────────────────

func (s *alertaService) AvaliarCriticidade(a *model.Ata, hoje time.Time) model.Criticidade {
	return model.AvaliarCriticidade(a, hoje, s.cfg.ValorAlto)
}

// AtasCriticas returns the ALTA and CRÍTICA atas, most urgent first.
func (s *alertaService) AtasCriticas(atas []model.Ata, hoje time.Time) []dto.AtaCritica {
	hoje = model.Data(hoje)
	out := make([]dto.AtaCritica, 0)
	for i := range atas {
		c := s.AvaliarCriticidade(&atas[i], hoje)
		if c.Nivel != model.CriticidadeAlta && c.Nivel != model.CriticidadeCritica {
			continue
		}
		out = append(out, dto.AtaCritica{
			Ata: s.resumo(&atas[i], hoje),
			Criticidade: dto.CriticidadeResponse{
				Nivel:         string(c.Nivel),
				Motivo:        c.Motivo,
				DiasRestantes: c.DiasRestantes,
				Valor:         c.ValorTotal,
			},
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := model.NivelCriticidade(out[i].Criticidade.Nivel).Peso(), model.NivelCriticidade(out[j].Criticidade.Nivel).Peso()
		if pi != pj {
			return pi > pj
		}
		return out[i].Criticidade.DiasRestantes < out[j].Criticidade.DiasRestantes
	})
	return out
}

// ── Reports ───────────────────────────────────────────────────────────────────

func (s *alertaService) resumo(a *model.Ata, hoje time.Time) dto.ResumoAta {
	return dto.ResumoAta{
		NumeroAta:     a.NumeroAta,
		Objeto:        a.Objeto,
		Fornecedor:    a.Fornecedor,
		DataVigencia:  model.FormatarDataISO(a.DataVigencia),
		DiasRestantes: a.DiasRestantes(hoje),
		Status:        string(a.Status(hoje, s.cfg.LimiteAVencer)),
		ValorTotal:    a.ValorTotal(),
	}
}

func percentual(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(n)/float64(total)*1000) / 10
}

func (s *alertaService) contar(atas []model.Ata, hoje time.Time) dto.ContagemStatus {
	c := dto.ContagemStatus{Total: len(atas)}
	for i := range atas {
		switch atas[i].Status(hoje, s.cfg.LimiteAVencer) {
		case model.StatusVigente:
			c.Vigentes++
		case model.StatusAVencer:
			c.AVencer++
		case model.StatusVencida:
			c.Vencidas++
		}
	}
	c.PercentualVigente = percentual(c.Vigentes, c.Total)
	c.PercentualAVencer = percentual(c.AVencer, c.Total)
	c.PercentualVencida = percentual(c.Vencidas, c.Total)
	return c
}

// proximas lists atas with 0..limite days left, soonest first.
func (s *alertaService) proximas(atas []model.Ata, hoje time.Time) []dto.ResumoAta {
	out := make([]dto.ResumoAta, 0)
	for i := range atas {
		if d := atas[i].DiasRestantes(hoje); d >= 0 && d <= s.cfg.LimiteAVencer {
			out = append(out, s.resumo(&atas[i], hoje))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DiasRestantes < out[j].DiasRestantes })
	return out
}

func (s *alertaService) RelatorioSemanal(atas []model.Ata, hoje time.Time) dto.RelatorioSemanal {
	hoje = model.Data(hoje)
	prox := s.proximas(atas, hoje)
	r := dto.RelatorioSemanal{
		Contagem:      s.contar(atas, hoje),
		LimiteAVencer: s.cfg.LimiteAVencer,
		Proximas:      prox,
	}
	if len(prox) > maxProximasSemanal {
		r.Proximas = prox[:maxProximasSemanal]
		r.ProximasOmitidas = len(prox) - maxProximasSemanal
	}
	return r
}

func (s *alertaService) RelatorioMensal(atas []model.Ata, hoje time.Time) dto.RelatorioMensal {
	hoje = model.Data(hoje)
	r := dto.RelatorioMensal{
		Periodo:       hoje.Format("01/2006"),
		Contagem:      s.contar(atas, hoje),
		ValorTotal:    decimal.Zero,
		PorFornecedor: []dto.FornecedorResumo{},
		Proximas:      s.proximas(atas, hoje),
		Vencidas:      []dto.ResumoAta{},
		Recomendacoes: []string{},
	}

	idx := map[string]int{}
	for i := range atas {
		a := &atas[i]
		v := a.ValorTotal()
		r.ValorTotal = r.ValorTotal.Add(v)

		j, ok := idx[a.Fornecedor]
		if !ok {
			j = len(r.PorFornecedor)
			idx[a.Fornecedor] = j
			r.PorFornecedor = append(r.PorFornecedor, dto.FornecedorResumo{Fornecedor: a.Fornecedor, ValorTotal: decimal.Zero})
		}
		r.PorFornecedor[j].Quantidade++
		r.PorFornecedor[j].ValorTotal = r.PorFornecedor[j].ValorTotal.Add(v)

		if a.DiasRestantes(hoje) < 0 {
			r.Vencidas = append(r.Vencidas, s.resumo(a, hoje))
		}
		switch a.DataVigencia.Year() {
		case hoje.Year():
			r.VencemEsteAno++
		case hoje.Year() + 1:
			r.VencemProximoAno++
		}
	}
	sort.SliceStable(r.PorFornecedor, func(i, j int) bool {
		return r.PorFornecedor[i].ValorTotal.GreaterThan(r.PorFornecedor[j].ValorTotal)
	})
	// Most overdue first.
	sort.SliceStable(r.Vencidas, func(i, j int) bool { return r.Vencidas[i].DiasRestantes < r.Vencidas[j].DiasRestantes })

	switch {
	case r.VencemEsteAno > r.VencemProximoAno:
		r.Tendencia = "Concentração de vencimentos este ano - atenção redobrada necessária"
	case r.VencemProximoAno > r.VencemEsteAno:
		r.Tendencia = "Distribuição equilibrada de vencimentos"
	}

	if r.Contagem.AVencer > 0 {
		r.Recomendacoes = append(r.Recomendacoes, "Iniciar processos de renovação para atas próximas do vencimento")
	}
	if r.Contagem.Vencidas > 0 {
		r.Recomendacoes = append(r.Recomendacoes, "Regularizar situação das atas vencidas")
	}
	if r.Contagem.Total < 5 {
		r.Recomendacoes = append(r.Recomendacoes, "Considerar ampliação do portfólio de atas")
	}
	return r
}

func (s *alertaService) EnviarRelatorioSemanal(ctx context.Context, atas []model.Ata, hoje time.Time) (bool, error) {
	sem := s.RelatorioSemanal(atas, hoje)
	return s.enviarRelatorio(ctx, dto.Relatorio{
		Tipo:          dto.RelatorioSemanalTipo,
		GeradoEm:      s.cfg.Now(),
		Destinatarios: s.cfg.Destinatarios,
		Semanal:       &sem,
	})
}

func (s *alertaService) EnviarRelatorioMensal(ctx context.Context, atas []model.Ata, hoje time.Time) (bool, error) {
	men := s.RelatorioMensal(atas, hoje)
	return s.enviarRelatorio(ctx, dto.Relatorio{
		Tipo:          dto.RelatorioMensalTipo,
		GeradoEm:      s.cfg.Now(),
		Destinatarios: s.cfg.Destinatarios,
		Mensal:        &men,
	})
}

func (s *alertaService) enviarRelatorio(ctx context.Context, r dto.Relatorio) (bool, error) {
	ok, err := s.notificador.EnviarRelatorio(ctx, r)
	switch {
	case err != nil:
		metrics.RelatoriosEnviados.WithLabelValues(string(r.Tipo), "erro").Inc()
		return false, fmt.Errorf("relatório %s: %w", r.Tipo, err)
	case !ok:
		metrics.RelatoriosEnviados.WithLabelValues(string(r.Tipo), "recusado").Inc()
		return false, fmt.Errorf("relatório %s: %w", r.Tipo, ErrEnvioRecusado)
	}
	metrics.RelatoriosEnviados.WithLabelValues(string(r.Tipo), "enviado").Inc()
	log.Info().Str("tipo", string(r.Tipo)).Strs("destinatarios", r.Destinatarios).Msg("relatorios: relatório enviado")
	return true, nil
}
