package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Ata is a price-registration record ("Ata de Registro de Preços").
// Status is never stored: it is derived from DataVigencia on every read.
type Ata struct {
	NumeroAta    string    `json:"numero_ata"           validate:"numero_ata"`
	DocumentoSEI string    `json:"documento_sei"        validate:"documento_sei"`
	DataVigencia time.Time `json:"data_vigencia"`
	Objeto       string    `json:"objeto"               validate:"notblank"`
	Fornecedor   string    `json:"fornecedor"           validate:"notblank"`
	Telefones    []string  `json:"telefones_fornecedor" validate:"dive,telefone"`
	Emails       []string  `json:"emails_fornecedor"    validate:"dive,email_fornecedor"`
	Itens        []Item    `json:"itens"                validate:"min=1,dive"`
}

// Item is one procured line of an Ata.
type Item struct {
	Descricao  string          `json:"descricao"  validate:"notblank"`
	Quantidade int             `json:"quantidade" validate:"gt=0"`
	Valor      decimal.Decimal `json:"valor"      validate:"gt=0"`
}

// NewItem builds a validated Item.
func NewItem(descricao string, quantidade int, valor decimal.Decimal) (Item, error) {
	it := Item{
		Descricao:  strings.TrimSpace(descricao),
		Quantidade: quantidade,
		Valor:      valor,
	}
	if err := validateStruct(it); err != nil {
		return Item{}, err
	}
	return it, nil
}

// ValorTotal is Quantidade × Valor.
func (i Item) ValorTotal() decimal.Decimal {
	return i.Valor.Mul(decimal.NewFromInt(int64(i.Quantidade)))
}

// NewAta normalizes a and validates every field, items included.
// Nothing is persisted here; callers hand the result to a repository.
func NewAta(a Ata) (*Ata, error) {
	out := &Ata{
		NumeroAta:    strings.TrimSpace(a.NumeroAta),
		DocumentoSEI: strings.TrimSpace(a.DocumentoSEI),
		DataVigencia: a.DataVigencia,
		Objeto:       strings.TrimSpace(a.Objeto),
		Fornecedor:   strings.TrimSpace(a.Fornecedor),
		Telefones:    trimAll(a.Telefones),
		Emails:       trimAll(a.Emails),
		Itens:        make([]Item, len(a.Itens)),
	}
	if !a.DataVigencia.IsZero() {
		out.DataVigencia = Data(a.DataVigencia)
	}
	for i, it := range a.Itens {
		it.Descricao = strings.TrimSpace(it.Descricao)
		out.Itens[i] = it
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// Validate checks all invariants of the record and its children.
func (a *Ata) Validate() error {
	verr := &ValidationError{}
	if a.DataVigencia.IsZero() {
		verr.add("data_vigencia", "required", "Data de vigência é obrigatória")
	}
	if err := validateStruct(a); err != nil {
		if fe, ok := err.(*ValidationError); ok {
			verr.Fields = append(verr.Fields, fe.Fields...)
		} else {
			return err
		}
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

// ValorTotal sums the totals of every item.
func (a *Ata) ValorTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range a.Itens {
		total = total.Add(it.ValorTotal())
	}
	return total
}

// DiasRestantes is the signed number of days between hoje and the expiration date.
func (a *Ata) DiasRestantes(hoje time.Time) int {
	return DiasRestantes(a.DataVigencia, hoje)
}

// Status derives the status for hoje using limite as the "a vencer" window.
func (a *Ata) Status(hoje time.Time, limite int) Status {
	return ClassificarStatus(a.DataVigencia, hoje, limite)
}

// Clone returns a deep copy so stores never share slices with callers.
func (a *Ata) Clone() *Ata {
	if a == nil {
		return nil
	}
	c := *a
	c.Telefones = make([]string, len(a.Telefones))
	copy(c.Telefones, a.Telefones)
	c.Emails = make([]string, len(a.Emails))
	copy(c.Emails, a.Emails)
	c.Itens = make([]Item, len(a.Itens))
	copy(c.Itens, a.Itens)
	return &c
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
