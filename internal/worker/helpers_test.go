package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"atasrp/internal/dto"
	"atasrp/internal/infra"
	"atasrp/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// ── In-memory Redis list stub ────────────────────────────────────────────────

type fakeRedis struct {
	mu     sync.Mutex
	lists  map[string][]string
	notify chan struct{}
	err    error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{lists: make(map[string][]string), notify: make(chan struct{}, 64)}
}

func (f *fakeRedis) LPush(_ context.Context, key string, values ...interface{}) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	for _, v := range values {
		var s string
		switch x := v.(type) {
		case []byte:
			s = string(x)
		case string:
			s = x
		}
		f.lists[key] = append([]string{s}, f.lists[key]...)
	}
	select {
	case f.notify <- struct{}{}:
	default:
	}
	return redis.NewIntResult(int64(len(f.lists[key])), nil)
}

func (f *fakeRedis) BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd {
	deadline := time.After(timeout)
	for {
		f.mu.Lock()
		for _, k := range keys {
			if l := f.lists[k]; len(l) > 0 {
				v := l[len(l)-1]
				f.lists[k] = l[:len(l)-1]
				f.mu.Unlock()
				return redis.NewStringSliceResult([]string{k, v}, nil)
			}
		}
		f.mu.Unlock()
		select {
		case <-ctx.Done():
			return redis.NewStringSliceResult(nil, ctx.Err())
		case <-deadline:
			return redis.NewStringSliceResult(nil, redis.Nil)
		case <-f.notify:
		}
	}
}

func (f *fakeRedis) LLen(_ context.Context, key string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	return redis.NewIntResult(int64(len(f.lists[key])), nil)
}

func (f *fakeRedis) items(key string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.lists[key]...)
}

// ── Mailer stub ──────────────────────────────────────────────────────────────

type stubMailer struct {
	mu     sync.Mutex
	sent   []infra.Mail
	falhas int // fail this many calls before succeeding; -1 always fails
	calls  int
}

func (m *stubMailer) Send(_ context.Context, mail infra.Mail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.falhas < 0 || m.calls <= m.falhas {
		return errors.New("relay down")
	}
	m.sent = append(m.sent, mail)
	return nil
}

func (m *stubMailer) enviados() []infra.Mail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]infra.Mail(nil), m.sent...)
}

// ── Notifier / ata source stubs ──────────────────────────────────────────────

type stubNotificador struct {
	mu        sync.Mutex
	alertas   []dto.AlertaVencimento
	relatorio []dto.Relatorio
	panico    bool
}

func (n *stubNotificador) EnviarAlertaVencimento(_ context.Context, a dto.AlertaVencimento) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alertas = append(n.alertas, a)
	return true, nil
}

func (n *stubNotificador) EnviarRelatorio(_ context.Context, r dto.Relatorio) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.panico {
		panic("smtp exploded")
	}
	n.relatorio = append(n.relatorio, r)
	return true, nil
}

func (n *stubNotificador) totalAlertas() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.alertas)
}

func (n *stubNotificador) relatorios() []dto.Relatorio {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]dto.Relatorio(nil), n.relatorio...)
}

type stubFonte struct {
	atas []model.Ata
	hoje time.Time
	err  error
}

func (s *stubFonte) Todas(context.Context) ([]model.Ata, error) { return s.atas, s.err }
func (s *stubFonte) Hoje() time.Time                            { return s.hoje }

var hojeFixo = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func ataVencendoEm(numero string, dias int) model.Ata {
	return model.Ata{
		NumeroAta:    numero,
		DocumentoSEI: "12345.678901/2024-12",
		DataVigencia: hojeFixo.AddDate(0, 0, dias),
		Objeto:       "Material de escritório",
		Fornecedor:   "Papelaria Central Ltda",
		Emails:       []string{"vendas@papelaria.com.br"},
		Itens: []model.Item{{Descricao: "Resma A4", Quantidade: 10,
			Valor: decimal.RequireFromString("25.50")}},
	}
}
