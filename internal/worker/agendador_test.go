package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"atasrp/internal/dto"
	"atasrp/internal/model"
	"atasrp/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func novoAgendador(t *testing.T, fonte *stubFonte, n *stubNotificador) *Agendador {
	t.Helper()
	cfg := service.DefaultAlertaConfig()
	cfg.Now = func() time.Time { return fonte.hoje }
	alertas := service.NewAlertaService(n, cfg)

	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		loc = time.UTC
	}
	a, err := NewAgendador(fonte, alertas, AgendadorConfig{
		Location:   loc,
		DiarioHora: 9,
		SemanalDia: 0, SemanalHora: 8,
		MensalDia: 1, MensalHora: 7,
	})
	require.NoError(t, err)
	return a
}

func TestAgendadorConfig_Specs(t *testing.T) {
	specs := AgendadorConfig{
		DiarioHora: 9, DiarioMinuto: 30,
		SemanalDia: 0, SemanalHora: 8,
		MensalDia: 1, MensalHora: 7, MensalMinuto: 15,
	}.Specs()
	assert.Equal(t, "30 9 * * *", specs[JobDiario])
	assert.Equal(t, "0 8 * * 1", specs[JobSemanal]) // Monday
	assert.Equal(t, "15 7 1 * *", specs[JobMensal])

	sunday := AgendadorConfig{SemanalDia: 6}.Specs()
	assert.Equal(t, "0 0 * * 0", sunday[JobSemanal])
}

func TestNewAgendador_RejectsInvalidCronExpr(t *testing.T) {
	_, err := NewAgendador(&stubFonte{}, service.NewAlertaService(&stubNotificador{}, service.DefaultAlertaConfig()),
		AgendadorConfig{DiarioHora: 25})
	assert.Error(t, err)
}

func TestAgendador_DailyJobRunsOncePerDay(t *testing.T) {
	fonte := &stubFonte{atas: []model.Ata{ataVencendoEm("0016/2024", 30)}, hoje: hojeFixo}
	n := &stubNotificador{}
	a := novoAgendador(t, fonte, n)

	a.rodar(JobDiario, a.executarDiario)
	a.rodar(JobDiario, a.executarDiario)
	assert.Equal(t, 1, n.totalAlertas())

	st := a.Status()
	assert.Contains(t, st.UltimaExecucao, JobDiario)
	assert.Equal(t, 1, st.HistoricoAlertas)

	// next day a different ata reaches D-30
	fonte.hoje = hojeFixo.AddDate(0, 0, 1)
	fonte.atas = append(fonte.atas, ataVencendoEm("0017/2024", 31))
	a.rodar(JobDiario, a.executarDiario)
	assert.Equal(t, 2, n.totalAlertas())
}

func TestAgendador_WeeklyAndMonthlyReports(t *testing.T) {
	fonte := &stubFonte{atas: []model.Ata{ataVencendoEm("0016/2024", 10)}, hoje: hojeFixo}
	n := &stubNotificador{}
	a := novoAgendador(t, fonte, n)

	a.rodar(JobSemanal, a.executarSemanal)
	a.rodar(JobMensal, a.executarMensal)
	a.rodar(JobMensal, a.executarMensal)

	rels := n.relatorios()
	require.Len(t, rels, 2)
	assert.Equal(t, dto.RelatorioSemanalTipo, rels[0].Tipo)
	assert.Equal(t, dto.RelatorioMensalTipo, rels[1].Tipo)
}

func TestAgendador_JobPanicIsRecovered(t *testing.T) {
	fonte := &stubFonte{hoje: hojeFixo}
	n := &stubNotificador{panico: true}
	a := novoAgendador(t, fonte, n)

	assert.NotPanics(t, func() { a.rodar(JobMensal, a.executarMensal) })
	assert.Contains(t, a.Status().UltimaExecucao, JobMensal)
}

func TestAgendador_ManualEntryPoints(t *testing.T) {
	fonte := &stubFonte{atas: []model.Ata{ataVencendoEm("0016/2024", 7)}, hoje: hojeFixo}
	n := &stubNotificador{}
	a := novoAgendador(t, fonte, n)

	res, err := a.ExecutarVerificacaoManual(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.AlertasEnviados)

	// same day: history de-duplicates
	res, err = a.ExecutarVerificacaoManual(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.AlertasEnviados)

	ok, err := a.GerarRelatorioManual(context.Background(), dto.RelatorioSemanalTipo)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = a.GerarRelatorioManual(context.Background(), "anual")
	assert.Error(t, err)
}

func TestAgendador_ManualCheckStoreError(t *testing.T) {
	a := novoAgendador(t, &stubFonte{hoje: hojeFixo, err: assert.AnError}, &stubNotificador{})
	_, err := a.ExecutarVerificacaoManual(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
}

func TestAgendador_StartStopStatus(t *testing.T) {
	a := novoAgendador(t, &stubFonte{hoje: hojeFixo}, &stubNotificador{})
	assert.False(t, a.Status().Executando)

	a.Start(context.Background())
	assert.True(t, a.Status().Executando)
	assert.Eventually(t, func() bool { return len(a.Status().ProximaExecucao) == 3 },
		time.Second, 10*time.Millisecond)
	assert.NotEmpty(t, a.Status().Fuso)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, a.Stop(ctx))
	assert.False(t, a.Status().Executando)
	require.NoError(t, a.Stop(ctx))
}

// jobBloqueante registers a job that fires within a second and blocks until
// liberar is closed or, when honraCtx is set, the job context is cancelled.
func jobBloqueante(t *testing.T, a *Agendador, liberar <-chan struct{}, honraCtx bool) (iniciou, terminou chan struct{}) {
	t.Helper()
	iniciou, terminou = make(chan struct{}), make(chan struct{})
	var once sync.Once
	_, err := a.cron.AddFunc("@every 1s", func() {
		first := false
		once.Do(func() { first = true })
		if !first {
			return
		}
		a.mu.Lock()
		ctx := a.ctx
		a.mu.Unlock()
		close(iniciou)
		if honraCtx {
			select {
			case <-liberar:
			case <-ctx.Done():
			}
		} else {
			<-liberar
		}
		close(terminou)
	})
	require.NoError(t, err)
	return iniciou, terminou
}

func TestAgendador_StopWaitsForRunningJob(t *testing.T) {
	a := novoAgendador(t, &stubFonte{hoje: hojeFixo}, &stubNotificador{})
	liberar := make(chan struct{})
	iniciou, terminou := jobBloqueante(t, a, liberar, false)

	a.Start(context.Background())
	select {
	case <-iniciou:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not start")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	parou := make(chan error, 1)
	go func() { parou <- a.Stop(ctx) }()

	select {
	case <-parou:
		t.Fatal("Stop returned while the job was still running")
	case <-time.After(300 * time.Millisecond):
	}

	close(liberar)
	select {
	case err := <-parou:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(3 * time.Second):
		t.Fatal("Stop did not return after the job finished")
	}
	select {
	case <-terminou:
	default:
		t.Fatal("Stop returned before the job finished")
	}
}

func TestAgendador_StopCancelsJobContextOnTimeout(t *testing.T) {
	a := novoAgendador(t, &stubFonte{hoje: hojeFixo}, &stubNotificador{})
	iniciou, terminou := jobBloqueante(t, a, make(chan struct{}), true)

	a.Start(context.Background())
	select {
	case <-iniciou:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not start")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := a.Stop(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	select {
	case <-terminou:
	default:
		t.Fatal("Stop returned before the job finished")
	}
	assert.False(t, a.Status().Executando)
}

func TestChavePeriodo(t *testing.T) {
	d := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-01", chavePeriodo(JobDiario, d))
	assert.Equal(t, "2024-W09", chavePeriodo(JobSemanal, d))
	assert.Equal(t, "2024-03", chavePeriodo(JobMensal, d))
}
