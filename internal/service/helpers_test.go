package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"atasrp/internal/dto"
	"atasrp/internal/model"
	"atasrp/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// ── In-memory Repository Stub ─────────────────────────────────────────────────

type stubAtaRepo struct {
	mu   sync.Mutex
	atas []*model.Ata
}

func newStubRepo() *stubAtaRepo { return &stubAtaRepo{} }

func (r *stubAtaRepo) idx(numero string) int {
	for i, a := range r.atas {
		if a.NumeroAta == numero {
			return i
		}
	}
	return -1
}

func (r *stubAtaRepo) Create(_ context.Context, a *model.Ata) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.idx(a.NumeroAta) >= 0 {
		return repository.ErrNumeroDuplicado
	}
	r.atas = append(r.atas, a.Clone())
	return nil
}

func (r *stubAtaRepo) FindByNumero(_ context.Context, numero string) (*model.Ata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.idx(numero)
	if i < 0 {
		return nil, repository.ErrNaoEncontrada
	}
	return r.atas[i].Clone(), nil
}

func (r *stubAtaRepo) List(_ context.Context) ([]model.Ata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Ata, 0, len(r.atas))
	for _, a := range r.atas {
		out = append(out, *a.Clone())
	}
	return out, nil
}

func (r *stubAtaRepo) Replace(_ context.Context, numero string, a *model.Ata) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.idx(numero)
	if i < 0 {
		return repository.ErrNaoEncontrada
	}
	if a.NumeroAta != numero && r.idx(a.NumeroAta) >= 0 {
		return repository.ErrNumeroDuplicado
	}
	r.atas[i] = a.Clone()
	return nil
}

func (r *stubAtaRepo) Delete(_ context.Context, numero string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.idx(numero)
	if i < 0 {
		return false, nil
	}
	r.atas = append(r.atas[:i], r.atas[i+1:]...)
	return true, nil
}

func (r *stubAtaRepo) Ping(context.Context) error { return nil }

// ── Notifier Stub ─────────────────────────────────────────────────────────────

type stubNotificador struct {
	mu         sync.Mutex
	alertas    []dto.AlertaVencimento
	relatorios []dto.Relatorio
	// falhar decides per ata: return (accepted, error). nil = accept all.
	falhar func(numero string) (bool, error)
	panico string
	delay  time.Duration
}

func (n *stubNotificador) EnviarAlertaVencimento(_ context.Context, a dto.AlertaVencimento) (bool, error) {
	if n.delay > 0 {
		time.Sleep(n.delay)
	}
	if n.panico != "" && a.NumeroAta == n.panico {
		panic("transporte quebrado")
	}
	if n.falhar != nil {
		if ok, err := n.falhar(a.NumeroAta); !ok || err != nil {
			return ok, err
		}
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alertas = append(n.alertas, a)
	return true, nil
}

func (n *stubNotificador) EnviarRelatorio(_ context.Context, r dto.Relatorio) (bool, error) {
	if n.falhar != nil {
		if ok, err := n.falhar(string(r.Tipo)); !ok || err != nil {
			return ok, err
		}
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.relatorios = append(n.relatorios, r)
	return true, nil
}

func (n *stubNotificador) enviados() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.alertas)
}

var errTransporte = errors.New("smtp indisponível")

// ── Helpers ───────────────────────────────────────────────────────────────────

var hojeFixo = time.Date(2024, time.March, 1, 10, 30, 0, 0, time.UTC)

func relogioFixo() time.Time { return hojeFixo }

func ataVencendoEm(t *testing.T, numero string, dias int, valor string) model.Ata {
	t.Helper()
	a, err := model.NewAta(model.Ata{
		NumeroAta:    numero,
		DocumentoSEI: "23106.033566/2023-30",
		DataVigencia: model.Data(hojeFixo).AddDate(0, 0, dias),
		Objeto:       "Objeto " + numero,
		Fornecedor:   "Fornecedor " + numero,
		Telefones:    []string{"(61) 99999-0000"},
		Emails:       []string{"contato@empresa.com"},
		Itens:        []model.Item{{Descricao: "Item", Quantidade: 1, Valor: decimal.RequireFromString(valor)}},
	})
	require.NoError(t, err)
	return *a
}

func novoAlertaService(n Notificador) AlertaService {
	cfg := DefaultAlertaConfig()
	cfg.Now = relogioFixo
	return NewAlertaService(n, cfg)
}

func ataRequest(numero, vigencia string) dto.AtaRequest {
	return dto.AtaRequest{
		NumeroAta:    numero,
		DocumentoSEI: "23106.033566/2023-30",
		DataVigencia: vigencia,
		Objeto:       "Micro Tipo I",
		Fornecedor:   "Empresa XYZ Ltda",
		Telefones:    []string{"61999990000"},
		Emails:       []string{"contato@empresa.com"},
		Itens: []dto.ItemInput{
			{Descricao: "Notebook com SSD", Quantidade: 15, Valor: decimal.RequireFromString("3500.00")},
		},
	}
}
