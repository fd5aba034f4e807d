package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"atasrp/internal/dto"
	"atasrp/internal/model"
	"atasrp/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Clock returns the current instant in the configured location. Services
// derive "today" from it so tests can pin the calendar.
type Clock func() time.Time

// AtaService orchestrates CRUD over atas plus the read-side queries the UI
// needs (status filter, text search, statistics, numbering).
type AtaService interface {
	Criar(ctx context.Context, req dto.AtaRequest) (*dto.AtaResponse, error)
	Obter(ctx context.Context, numero string) (*dto.AtaResponse, error)
	Listar(ctx context.Context, filter dto.ListarAtasFilter) ([]dto.AtaResponse, error)
	Substituir(ctx context.Context, numero string, req dto.AtaRequest) (*dto.AtaResponse, error)
	Excluir(ctx context.Context, numero string) error

	Estatisticas(ctx context.Context) (*dto.EstatisticasResponse, error)
	VencimentoProximo(ctx context.Context, dias int) ([]dto.AtaResponse, error)
	ProximaNumeracao(ctx context.Context, ano int) (string, error)
	NumeroDisponivel(ctx context.Context, numero, excluir string) (bool, error)

	// Todas returns the domain records, used by alerts, reports and exports.
	Todas(ctx context.Context) ([]model.Ata, error)
	Hoje() time.Time
}

type ataService struct {
	repo   repository.AtaRepository
	limite int
	now    Clock
}

func NewAtaService(repo repository.AtaRepository, limiteAVencer int, now Clock) AtaService {
	if limiteAVencer <= 0 {
		limiteAVencer = model.DefaultLimiteAVencer
	}
	if now == nil {
		now = time.Now
	}
	return &ataService{repo: repo, limite: limiteAVencer, now: now}
}

func (s *ataService) Hoje() time.Time { return model.Data(s.now()) }

// ── Mapping ───────────────────────────────────────────────────────────────────

// ataFromRequest normalises masks and dates, then runs full domain validation.
func ataFromRequest(req dto.AtaRequest) (*model.Ata, error) {
	venc, err := model.ParseData(req.DataVigencia)
	if err != nil {
		return nil, model.NewFieldError("data_vigencia", "data", "Data de vigência deve estar no formato YYYY-MM-DD ou DD/MM/YYYY")
	}
	a := model.Ata{
		NumeroAta:    req.NumeroAta,
		DocumentoSEI: model.FormatarDocumentoSEI(req.DocumentoSEI),
		DataVigencia: venc,
		Objeto:       req.Objeto,
		Fornecedor:   req.Fornecedor,
		Telefones:    make([]string, 0, len(req.Telefones)),
		Emails:       req.Emails,
		Itens:        make([]model.Item, 0, len(req.Itens)),
	}
	for _, t := range req.Telefones {
		a.Telefones = append(a.Telefones, model.FormatarTelefone(t))
	}
	for _, it := range req.Itens {
		a.Itens = append(a.Itens, model.Item{Descricao: it.Descricao, Quantidade: it.Quantidade, Valor: it.Valor})
	}
	return model.NewAta(a)
}

func MapAta(a *model.Ata, hoje time.Time, limite int) dto.AtaResponse {
	st := a.Status(hoje, limite)
	resp := dto.AtaResponse{
		NumeroAta:     a.NumeroAta,
		DocumentoSEI:  a.DocumentoSEI,
		DataVigencia:  model.FormatarDataISO(a.DataVigencia),
		Objeto:        a.Objeto,
		Fornecedor:    a.Fornecedor,
		Telefones:     a.Telefones,
		Emails:        a.Emails,
		Itens:         mapItens(a.Itens),
		Status:        string(st),
		StatusLabel:   st.Label(),
		DiasRestantes: a.DiasRestantes(hoje),
		ValorTotal:    a.ValorTotal(),
	}
	return resp
}

func mapItens(itens []model.Item) []dto.ItemResponse {
	out := make([]dto.ItemResponse, 0, len(itens))
	for _, it := range itens {
		out = append(out, dto.ItemResponse{
			Descricao:  it.Descricao,
			Quantidade: it.Quantidade,
			Valor:      it.Valor,
			ValorTotal: it.ValorTotal(),
		})
	}
	return out
}

func (s *ataService) mapAll(atas []model.Ata) []dto.AtaResponse {
	hoje := s.Hoje()
	out := make([]dto.AtaResponse, 0, len(atas))
	for i := range atas {
		out = append(out, MapAta(&atas[i], hoje, s.limite))
	}
	return out
}

// ── CRUD ──────────────────────────────────────────────────────────────────────

func (s *ataService) Criar(ctx context.Context, req dto.AtaRequest) (*dto.AtaResponse, error) {
	a, err := ataFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	log.Info().Str("numero_ata", a.NumeroAta).Str("fornecedor", a.Fornecedor).Msg("atas: ata criada")
	resp := MapAta(a, s.Hoje(), s.limite)
	return &resp, nil
}

func (s *ataService) Obter(ctx context.Context, numero string) (*dto.AtaResponse, error) {
	a, err := s.repo.FindByNumero(ctx, numero)
	if err != nil {
		return nil, err
	}
	resp := MapAta(a, s.Hoje(), s.limite)
	return &resp, nil
}

func (s *ataService) Listar(ctx context.Context, filter dto.ListarAtasFilter) ([]dto.AtaResponse, error) {
	atas, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if filter.Status != "" {
		st := model.Status(filter.Status)
		if !st.Valid() {
			return nil, model.NewFieldError("status", "oneof", "Status deve ser vigente, a_vencer ou vencida")
		}
		atas = s.porStatus(atas, st)
	}
	if q := strings.TrimSpace(filter.Q); q != "" {
		atas = porTexto(atas, q)
	}
	return s.mapAll(atas), nil
}

func (s *ataService) Substituir(ctx context.Context, numero string, req dto.AtaRequest) (*dto.AtaResponse, error) {
	a, err := ataFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Replace(ctx, numero, a); err != nil {
		return nil, err
	}
	log.Info().Str("numero_ata", numero).Str("novo_numero", a.NumeroAta).Msg("atas: ata substituída")
	resp := MapAta(a, s.Hoje(), s.limite)
	return &resp, nil
}

func (s *ataService) Excluir(ctx context.Context, numero string) error {
	ok, err := s.repo.Delete(ctx, numero)
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrNaoEncontrada
	}
	log.Info().Str("numero_ata", numero).Msg("atas: ata excluída")
	return nil
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (s *ataService) Todas(ctx context.Context) ([]model.Ata, error) {
	return s.repo.List(ctx)
}

func (s *ataService) porStatus(atas []model.Ata, st model.Status) []model.Ata {
	hoje := s.Hoje()
	out := make([]model.Ata, 0, len(atas))
	for i := range atas {
		if atas[i].Status(hoje, s.limite) == st {
			out = append(out, atas[i])
		}
	}
	return out
}

func porTexto(atas []model.Ata, texto string) []model.Ata {
	q := strings.ToLower(texto)
	out := make([]model.Ata, 0, len(atas))
	for _, a := range atas {
		if strings.Contains(strings.ToLower(a.NumeroAta), q) ||
			strings.Contains(strings.ToLower(a.Objeto), q) ||
			strings.Contains(strings.ToLower(a.Fornecedor), q) ||
			strings.Contains(strings.ToLower(a.DocumentoSEI), q) {
			out = append(out, a)
		}
	}
	return out
}

func (s *ataService) Estatisticas(ctx context.Context) (*dto.EstatisticasResponse, error) {
	atas, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	hoje := s.Hoje()
	resp := &dto.EstatisticasResponse{Total: len(atas), ValorTotal: decimal.Zero}
	for i := range atas {
		switch atas[i].Status(hoje, s.limite) {
		case model.StatusVigente:
			resp.Vigentes++
		case model.StatusAVencer:
			resp.AVencer++
		case model.StatusVencida:
			resp.Vencidas++
		}
		resp.ValorTotal = resp.ValorTotal.Add(atas[i].ValorTotal())
	}
	return resp, nil
}

// VencimentoProximo lists atas expiring within dias (0 included), soonest first.
func (s *ataService) VencimentoProximo(ctx context.Context, dias int) ([]dto.AtaResponse, error) {
	if dias <= 0 {
		dias = s.limite
	}
	atas, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	hoje := s.Hoje()
	proximas := make([]model.Ata, 0)
	for _, a := range atas {
		if d := a.DiasRestantes(hoje); d >= 0 && d <= dias {
			proximas = append(proximas, a)
		}
	}
	sort.SliceStable(proximas, func(i, j int) bool {
		return proximas[i].DiasRestantes(hoje) < proximas[j].DiasRestantes(hoje)
	})
	return s.mapAll(proximas), nil
}

// ErrNumeracaoEsgotada means every sequence 0001..9999 of a year is taken.
var ErrNumeracaoEsgotada = errors.New("atas: numeração do ano esgotada")

const maxSequencia = 9999

// ProximaNumeracao returns the next free sequence for ano (current year when 0).
func (s *ataService) ProximaNumeracao(ctx context.Context, ano int) (string, error) {
	if ano <= 0 {
		ano = s.now().Year()
	}
	if ano < 1000 || ano > 9999 {
		return "", model.NewFieldError("ano", "max", "Ano deve ter quatro dígitos")
	}
	atas, err := s.repo.List(ctx)
	if err != nil {
		return "", err
	}
	sufixo := "/" + strconv.Itoa(ano)
	maior := 0
	for _, a := range atas {
		if !strings.HasSuffix(a.NumeroAta, sufixo) {
			continue
		}
		seq, err := strconv.Atoi(strings.TrimSuffix(a.NumeroAta, sufixo))
		if err != nil {
			continue
		}
		if seq > maior {
			maior = seq
		}
	}
	if maior >= maxSequencia {
		return "", fmt.Errorf("%w: %d", ErrNumeracaoEsgotada, ano)
	}
	return model.FormatarNumeroAta(maior+1, ano), nil
}

// NumeroDisponivel reports whether numero is unused, or used only by excluir
// (the ata being edited).
func (s *ataService) NumeroDisponivel(ctx context.Context, numero, excluir string) (bool, error) {
	_, err := s.repo.FindByNumero(ctx, numero)
	if errors.Is(err, repository.ErrNaoEncontrada) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return numero == excluir, nil
}
