package worker

// agendador.go
// Cron-driven scheduler for the three recurring jobs:
//   - diario:  alert check over every ata + history pruning
//   - semanal: weekly status report + critical atas scan
//   - mensal:  monthly report
// Each slot records the period it last ran for (day, ISO week, month) so a
// slot fires at most once per period even if cron triggers it twice.

import (
	"context"
	"fmt"
	"sync"
	"time"

	"atasrp/internal/dto"
	"atasrp/internal/metrics"
	"atasrp/internal/model"
	"atasrp/internal/service"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const (
	JobDiario  = "diario"
	JobSemanal = "semanal"
	JobMensal  = "mensal"
)

// fonteAtas is what the scheduler needs from the ata service.
type fonteAtas interface {
	Todas(ctx context.Context) ([]model.Ata, error)
	Hoje() time.Time
}

type AgendadorConfig struct {
	Location      *time.Location
	DiarioHora    int
	DiarioMinuto  int
	SemanalDia    int // 0 = Monday … 6 = Sunday
	SemanalHora   int
	SemanalMinuto int
	MensalDia     int
	MensalHora    int
	MensalMinuto  int
}

// Specs returns the cron expressions per job.
func (c AgendadorConfig) Specs() map[string]string {
	return map[string]string{
		JobDiario:  fmt.Sprintf("%d %d * * *", c.DiarioMinuto, c.DiarioHora),
		JobSemanal: fmt.Sprintf("%d %d * * %d", c.SemanalMinuto, c.SemanalHora, (c.SemanalDia+1)%7),
		JobMensal:  fmt.Sprintf("%d %d %d * *", c.MensalMinuto, c.MensalHora, c.MensalDia),
	}
}

type Agendador struct {
	atas    fonteAtas
	alertas service.AlertaService
	cfg     AgendadorConfig
	cron    *cron.Cron

	mu         sync.Mutex
	ctx        context.Context
	cancel     context.CancelFunc
	executando bool
	entradas   map[string]cron.EntryID
	ultima     map[string]time.Time
	periodo    map[string]string
}

func NewAgendador(atas fonteAtas, alertas service.AlertaService, cfg AgendadorConfig) (*Agendador, error) {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	a := &Agendador{
		atas:     atas,
		alertas:  alertas,
		cfg:      cfg,
		ctx:      context.Background(),
		cancel:   func() {},
		entradas: make(map[string]cron.EntryID),
		ultima:   make(map[string]time.Time),
		periodo:  make(map[string]string),
	}
	lg := cronLogger{}
	a.cron = cron.New(
		cron.WithLocation(cfg.Location),
		cron.WithChain(cron.Recover(lg), cron.SkipIfStillRunning(lg)),
	)

	jobs := map[string]func(context.Context) error{
		JobDiario:  a.executarDiario,
		JobSemanal: a.executarSemanal,
		JobMensal:  a.executarMensal,
	}
	for nome, spec := range cfg.Specs() {
		nome, fn := nome, jobs[nome]
		id, err := a.cron.AddFunc(spec, func() { a.rodar(nome, fn) })
		if err != nil {
			return nil, fmt.Errorf("agendador: spec %s %q: %w", nome, spec, err)
		}
		a.entradas[nome] = id
	}
	return a, nil
}

// Start begins firing jobs. Jobs run with a child of ctx; cancelling ctx
// aborts a job in flight but does not stop the cron, call Stop for that.
func (a *Agendador) Start(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.executando {
		return
	}
	a.ctx, a.cancel = context.WithCancel(ctx)
	a.executando = true
	a.cron.Start()
	log.Info().Str("fuso", a.cfg.Location.String()).Msg("agendador: iniciado")
}

// Stop halts the cron and always waits for running jobs to return. When ctx
// expires first, the jobs' context is cancelled and Stop keeps waiting; the
// returned error then reports that they were cut short.
func (a *Agendador) Stop(ctx context.Context) error {
	a.mu.Lock()
	if !a.executando {
		a.mu.Unlock()
		return nil
	}
	a.executando = false
	cancel := a.cancel
	a.mu.Unlock()
	defer cancel()

	done := a.cron.Stop()
	var err error
	select {
	case <-done.Done():
	case <-ctx.Done():
		err = fmt.Errorf("agendador: stop: %w", ctx.Err())
		log.Warn().Err(ctx.Err()).Msg("agendador: cancelando jobs em execução")
		cancel()
		<-done.Done()
	}
	log.Info().Msg("agendador: parado")
	return err
}

func (a *Agendador) Status() dto.AgendadorStatus {
	a.mu.Lock()
	defer a.mu.Unlock()

	st := dto.AgendadorStatus{
		Executando:       a.executando,
		ProximaExecucao:  make(map[string]string, len(a.entradas)),
		UltimaExecucao:   make(map[string]string, len(a.ultima)),
		HistoricoAlertas: a.alertas.TamanhoHistorico(),
		Fuso:             a.cfg.Location.String(),
		ConsultadoEm:     time.Now().In(a.cfg.Location),
	}
	for nome, id := range a.entradas {
		if next := a.cron.Entry(id).Next; !next.IsZero() {
			st.ProximaExecucao[nome] = next.In(a.cfg.Location).Format(time.RFC3339)
		}
	}
	for nome, t := range a.ultima {
		st.UltimaExecucao[nome] = t.In(a.cfg.Location).Format(time.RFC3339)
	}
	return st
}

// ExecutarVerificacaoManual runs an alert check now, outside the daily slot.
// Same-day de-duplication still applies through the alert history.
func (a *Agendador) ExecutarVerificacaoManual(ctx context.Context) (dto.ResultadoVerificacao, error) {
	atas, err := a.atas.Todas(ctx)
	if err != nil {
		return dto.ResultadoVerificacao{}, err
	}
	res := a.alertas.VerificarAlertas(ctx, atas, a.atas.Hoje())
	log.Info().Int("enviados", res.AlertasEnviados).Int("erros", len(res.Erros)).
		Msg("agendador: verificação manual concluída")
	return res, nil
}

// GerarRelatorioManual builds and dispatches a report of the given type now.
func (a *Agendador) GerarRelatorioManual(ctx context.Context, tipo dto.TipoRelatorio) (bool, error) {
	atas, err := a.atas.Todas(ctx)
	if err != nil {
		return false, err
	}
	hoje := a.atas.Hoje()
	switch tipo {
	case dto.RelatorioSemanalTipo:
		return a.alertas.EnviarRelatorioSemanal(ctx, atas, hoje)
	case dto.RelatorioMensalTipo:
		return a.alertas.EnviarRelatorioMensal(ctx, atas, hoje)
	}
	return false, fmt.Errorf("agendador: tipo de relatório %q desconhecido", tipo)
}

// ── Jobs ─────────────────────────────────────────────────────────────────────

// rodar wraps a job with the once-per-period guard, panic recovery and metrics.
func (a *Agendador) rodar(nome string, fn func(context.Context) error) {
	hoje := a.atas.Hoje()
	chave := chavePeriodo(nome, hoje)

	a.mu.Lock()
	if a.periodo[nome] == chave {
		a.mu.Unlock()
		log.Debug().Str("job", nome).Str("periodo", chave).Msg("agendador: período já executado")
		return
	}
	a.periodo[nome] = chave
	ctx := a.ctx
	a.mu.Unlock()

	resultado := "ok"
	defer func() {
		if r := recover(); r != nil {
			resultado = "panic"
			log.Error().Str("job", nome).Interface("panic", r).Msg("agendador: job panicked")
		}
		metrics.AgendadorExecucoes.WithLabelValues(nome, resultado).Inc()
		a.mu.Lock()
		a.ultima[nome] = time.Now()
		a.mu.Unlock()
	}()

	log.Info().Str("job", nome).Str("periodo", chave).Msg("agendador: executando job")
	if err := fn(ctx); err != nil {
		resultado = "erro"
		log.Error().Err(err).Str("job", nome).Msg("agendador: job failed")
	}
}

func (a *Agendador) executarDiario(ctx context.Context) error {
	atas, err := a.atas.Todas(ctx)
	if err != nil {
		return err
	}
	hoje := a.atas.Hoje()
	res := a.alertas.VerificarAlertas(ctx, atas, hoje)
	removidos := a.alertas.LimparHistoricoAntigo(hoje)
	log.Info().Int("atas", len(atas)).Int("enviados", res.AlertasEnviados).
		Int("erros", len(res.Erros)).Int("historico_removidos", removidos).
		Msg("agendador: verificação diária concluída")
	return nil
}

func (a *Agendador) executarSemanal(ctx context.Context) error {
	atas, err := a.atas.Todas(ctx)
	if err != nil {
		return err
	}
	hoje := a.atas.Hoje()
	for _, c := range a.alertas.AtasCriticas(atas, hoje) {
		log.Warn().Str("ata", c.Ata.NumeroAta).Str("nivel", c.Criticidade.Nivel).
			Str("motivo", c.Criticidade.Motivo).Msg("agendador: ata crítica")
	}
	ok, err := a.alertas.EnviarRelatorioSemanal(ctx, atas, hoje)
	if err != nil {
		return err
	}
	if !ok {
		return service.ErrEnvioRecusado
	}
	return nil
}

func (a *Agendador) executarMensal(ctx context.Context) error {
	atas, err := a.atas.Todas(ctx)
	if err != nil {
		return err
	}
	ok, err := a.alertas.EnviarRelatorioMensal(ctx, atas, a.atas.Hoje())
	if err != nil {
		return err
	}
	if !ok {
		return service.ErrEnvioRecusado
	}
	return nil
}

// chavePeriodo identifies the period a run belongs to.
func chavePeriodo(job string, hoje time.Time) string {
	switch job {
	case JobSemanal:
		y, w := hoje.ISOWeek()
		return fmt.Sprintf("%d-W%02d", y, w)
	case JobMensal:
		return hoje.Format("2006-01")
	default:
		return hoje.Format("2006-01-02")
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, kv ...interface{}) {
	log.Debug().Fields(kv).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, kv ...interface{}) {
	log.Error().Err(err).Fields(kv).Msg("cron: " + msg)
}
