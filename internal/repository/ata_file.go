package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"atasrp/internal/model"

	"github.com/shopspring/decimal"
)

// fileAta is the on-disk shape: one JSON array of these, dates as YYYY-MM-DD.
type fileAta struct {
	NumeroAta    string     `json:"numero_ata"`
	DocumentoSEI string     `json:"documento_sei"`
	DataVigencia string     `json:"data_vigencia"`
	Objeto       string     `json:"objeto"`
	Fornecedor   string     `json:"fornecedor"`
	Telefones    []string   `json:"telefones_fornecedor"`
	Emails       []string   `json:"emails_fornecedor"`
	Itens        []fileItem `json:"itens"`
}

type fileItem struct {
	Descricao  string          `json:"descricao"`
	Quantidade int             `json:"quantidade"`
	Valor      decimal.Decimal `json:"valor"`
}

// ataFileRepo keeps the whole collection in memory and rewrites the file on
// every mutation. mu serialises readers and writers.
type ataFileRepo struct {
	path string
	mu   sync.RWMutex
	atas []*model.Ata
}

// NewAtaFileRepository opens (or lazily creates) the JSON document at path.
// A missing file is an empty store; a malformed one is an error.
func NewAtaFileRepository(path string) (AtaRepository, error) {
	r := &ataFileRepo{path: path}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *ataFileRepo) load() error {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("persistência: ler %s: %w", r.path, err)
	}
	if len(data) == 0 {
		return nil
	}
	var doc []fileAta
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("persistência: decodificar %s: %w", r.path, err)
	}
	r.atas = make([]*model.Ata, 0, len(doc))
	for _, fa := range doc {
		a, err := fa.toModel()
		if err != nil {
			return fmt.Errorf("persistência: %s: %w", r.path, err)
		}
		r.atas = append(r.atas, a)
	}
	return nil
}

// flush writes next to a temp file in the same directory and renames it over
// the target, so readers never observe a half-written document.
func (r *ataFileRepo) flush(atas []*model.Ata) error {
	doc := make([]fileAta, len(atas))
	for i, a := range atas {
		doc[i] = fromModel(a)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("persistência: codificar: %w", err)
	}
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("persistência: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("persistência: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("persistência: gravar: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("persistência: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("persistência: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("persistência: renomear: %w", err)
	}
	return nil
}

func (r *ataFileRepo) indexOf(numero string) int {
	for i, a := range r.atas {
		if a.NumeroAta == numero {
			return i
		}
	}
	return -1
}

func (r *ataFileRepo) Create(_ context.Context, a *model.Ata) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOf(a.NumeroAta) >= 0 {
		return ErrNumeroDuplicado
	}
	next := append(append([]*model.Ata(nil), r.atas...), a.Clone())
	if err := r.flush(next); err != nil {
		return err
	}
	r.atas = next
	return nil
}

func (r *ataFileRepo) FindByNumero(_ context.Context, numero string) (*model.Ata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexOf(numero)
	if i < 0 {
		return nil, ErrNaoEncontrada
	}
	return r.atas[i].Clone(), nil
}

func (r *ataFileRepo) List(_ context.Context) ([]model.Ata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Ata, len(r.atas))
	for i, a := range r.atas {
		out[i] = *a.Clone()
	}
	return out, nil
}

func (r *ataFileRepo) Replace(_ context.Context, numero string, a *model.Ata) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(numero)
	if i < 0 {
		return ErrNaoEncontrada
	}
	if a.NumeroAta != numero && r.indexOf(a.NumeroAta) >= 0 {
		return ErrNumeroDuplicado
	}
	next := append([]*model.Ata(nil), r.atas...)
	next[i] = a.Clone()
	if err := r.flush(next); err != nil {
		return err
	}
	r.atas = next
	return nil
}

func (r *ataFileRepo) Delete(_ context.Context, numero string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(numero)
	if i < 0 {
		return false, nil
	}
	next := make([]*model.Ata, 0, len(r.atas)-1)
	next = append(next, r.atas[:i]...)
	next = append(next, r.atas[i+1:]...)
	if err := r.flush(next); err != nil {
		return false, err
	}
	r.atas = next
	return true, nil
}

// Ping checks that the data directory is still reachable.
func (r *ataFileRepo) Ping(_ context.Context) error {
	if _, err := os.Stat(filepath.Dir(r.path)); err != nil {
		return fmt.Errorf("persistência: %w", err)
	}
	return nil
}

func fromModel(a *model.Ata) fileAta {
	fa := fileAta{
		NumeroAta:    a.NumeroAta,
		DocumentoSEI: a.DocumentoSEI,
		DataVigencia: model.FormatarDataISO(a.DataVigencia),
		Objeto:       a.Objeto,
		Fornecedor:   a.Fornecedor,
		Telefones:    append([]string{}, a.Telefones...),
		Emails:       append([]string{}, a.Emails...),
		Itens:        make([]fileItem, len(a.Itens)),
	}
	for i, it := range a.Itens {
		fa.Itens[i] = fileItem{Descricao: it.Descricao, Quantidade: it.Quantidade, Valor: it.Valor}
	}
	return fa
}

func (fa fileAta) toModel() (*model.Ata, error) {
	venc, err := model.ParseData(fa.DataVigencia)
	if err != nil {
		return nil, fmt.Errorf("ata %s: %w", fa.NumeroAta, err)
	}
	a := &model.Ata{
		NumeroAta:    fa.NumeroAta,
		DocumentoSEI: fa.DocumentoSEI,
		DataVigencia: venc,
		Objeto:       fa.Objeto,
		Fornecedor:   fa.Fornecedor,
		Telefones:    append([]string{}, fa.Telefones...),
		Emails:       append([]string{}, fa.Emails...),
		Itens:        make([]model.Item, len(fa.Itens)),
	}
	for i, it := range fa.Itens {
		a.Itens[i] = model.Item{Descricao: it.Descricao, Quantidade: it.Quantidade, Valor: it.Valor}
	}
	return a, nil
}
