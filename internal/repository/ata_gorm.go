package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"atasrp/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Rows ──────────────────────────────────────────────────────────────────────

// ataRow keeps the surrogate ID as insertion order; numero_ata is the
// business key. Dates are stored as YYYY-MM-DD so both drivers agree.
type ataRow struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"`
	NumeroAta    string `gorm:"column:numero_ata;size:9;uniqueIndex;not null"`
	DocumentoSEI string `gorm:"column:documento_sei;size:20;not null"`
	DataVigencia string `gorm:"column:data_vigencia;size:10;not null;index"`
	Objeto       string `gorm:"type:text;not null"`
	Fornecedor   string `gorm:"size:255;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Itens     []itemRow     `gorm:"foreignKey:AtaID;constraint:OnDelete:CASCADE"`
	Telefones []telefoneRow `gorm:"foreignKey:AtaID;constraint:OnDelete:CASCADE"`
	Emails    []emailRow    `gorm:"foreignKey:AtaID;constraint:OnDelete:CASCADE"`
}

func (ataRow) TableName() string { return "atas" }

type itemRow struct {
	ID         uint            `gorm:"primaryKey;autoIncrement"`
	AtaID      uint            `gorm:"index;not null"`
	Posicao    int             `gorm:"not null"`
	Descricao  string          `gorm:"type:text;not null"`
	Quantidade int             `gorm:"not null"`
	Valor      decimal.Decimal `gorm:"type:numeric(15,2);not null"`
}

func (itemRow) TableName() string { return "ata_itens" }

type telefoneRow struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"`
	AtaID    uint   `gorm:"index;not null"`
	Posicao  int    `gorm:"not null"`
	Telefone string `gorm:"size:20;not null"`
}

func (telefoneRow) TableName() string { return "ata_telefones" }

type emailRow struct {
	ID      uint   `gorm:"primaryKey;autoIncrement"`
	AtaID   uint   `gorm:"index;not null"`
	Posicao int    `gorm:"not null"`
	Email   string `gorm:"size:255;not null"`
}

func (emailRow) TableName() string { return "ata_emails" }

// Models lists the tables AutoMigrate must create, parents first.
func Models() []interface{} {
	return []interface{}{&ataRow{}, &itemRow{}, &telefoneRow{}, &emailRow{}}
}

func toRow(a *model.Ata) ataRow {
	r := ataRow{
		NumeroAta:    a.NumeroAta,
		DocumentoSEI: a.DocumentoSEI,
		DataVigencia: model.FormatarDataISO(a.DataVigencia),
		Objeto:       a.Objeto,
		Fornecedor:   a.Fornecedor,
	}
	r.Itens, r.Telefones, r.Emails = childRows(0, a)
	return r
}

func childRows(ataID uint, a *model.Ata) ([]itemRow, []telefoneRow, []emailRow) {
	itens := make([]itemRow, len(a.Itens))
	for i, it := range a.Itens {
		itens[i] = itemRow{AtaID: ataID, Posicao: i, Descricao: it.Descricao, Quantidade: it.Quantidade, Valor: it.Valor}
	}
	tels := make([]telefoneRow, len(a.Telefones))
	for i, t := range a.Telefones {
		tels[i] = telefoneRow{AtaID: ataID, Posicao: i, Telefone: t}
	}
	emails := make([]emailRow, len(a.Emails))
	for i, e := range a.Emails {
		emails[i] = emailRow{AtaID: ataID, Posicao: i, Email: e}
	}
	return itens, tels, emails
}

func (r *ataRow) toModel() (*model.Ata, error) {
	venc, err := model.ParseData(r.DataVigencia)
	if err != nil {
		return nil, fmt.Errorf("ata %s: %w", r.NumeroAta, err)
	}
	a := &model.Ata{
		NumeroAta:    r.NumeroAta,
		DocumentoSEI: r.DocumentoSEI,
		DataVigencia: venc,
		Objeto:       r.Objeto,
		Fornecedor:   r.Fornecedor,
		Telefones:    make([]string, 0, len(r.Telefones)),
		Emails:       make([]string, 0, len(r.Emails)),
		Itens:        make([]model.Item, 0, len(r.Itens)),
	}
	for _, t := range r.Telefones {
		a.Telefones = append(a.Telefones, t.Telefone)
	}
	for _, e := range r.Emails {
		a.Emails = append(a.Emails, e.Email)
	}
	for _, it := range r.Itens {
		a.Itens = append(a.Itens, model.Item{Descricao: it.Descricao, Quantidade: it.Quantidade, Valor: it.Valor})
	}
	return a, nil
}

// ── Repository ────────────────────────────────────────────────────────────────

type ataRepo struct{ db *gorm.DB }

// NewAtaRepository returns the relational backend. db must have been
// migrated with Models().
func NewAtaRepository(db *gorm.DB) AtaRepository { return &ataRepo{db: db} }

func byPosicao(db *gorm.DB) *gorm.DB { return db.Order("posicao") }

func (r *ataRepo) withChildren(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Itens", byPosicao).
		Preload("Telefones", byPosicao).
		Preload("Emails", byPosicao)
}

func (r *ataRepo) Create(ctx context.Context, a *model.Ata) error {
	row := toRow(a)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&ataRow{}).Where("numero_ata = ?", a.NumeroAta).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrNumeroDuplicado
		}
		// Children are inserted by gorm's association save in the same transaction.
		return tx.Create(&row).Error
	})
	return translate(err)
}

func (r *ataRepo) FindByNumero(ctx context.Context, numero string) (*model.Ata, error) {
	var row ataRow
	if err := r.withChildren(ctx).Where("numero_ata = ?", numero).First(&row).Error; err != nil {
		return nil, translate(err)
	}
	return row.toModel()
}

func (r *ataRepo) List(ctx context.Context) ([]model.Ata, error) {
	var rows []ataRow
	if err := r.withChildren(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	out := make([]model.Ata, 0, len(rows))
	for i := range rows {
		a, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, nil
}

func (r *ataRepo) Replace(ctx context.Context, numero string, a *model.Ata) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur ataRow
		if err := tx.Where("numero_ata = ?", numero).First(&cur).Error; err != nil {
			return err
		}
		if a.NumeroAta != numero {
			var n int64
			if err := tx.Model(&ataRow{}).Where("numero_ata = ?", a.NumeroAta).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				return ErrNumeroDuplicado
			}
		}
		if err := deleteChildren(tx, cur.ID); err != nil {
			return err
		}
		err := tx.Model(&cur).Updates(map[string]interface{}{
			"numero_ata":    a.NumeroAta,
			"documento_sei": a.DocumentoSEI,
			"data_vigencia": model.FormatarDataISO(a.DataVigencia),
			"objeto":        a.Objeto,
			"fornecedor":    a.Fornecedor,
		}).Error
		if err != nil {
			return err
		}
		itens, tels, emails := childRows(cur.ID, a)
		if len(itens) > 0 {
			if err := tx.Create(&itens).Error; err != nil {
				return err
			}
		}
		if len(tels) > 0 {
			if err := tx.Create(&tels).Error; err != nil {
				return err
			}
		}
		if len(emails) > 0 {
			if err := tx.Create(&emails).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return translate(err)
}

func (r *ataRepo) Delete(ctx context.Context, numero string) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur ataRow
		err := tx.Where("numero_ata = ?", numero).First(&cur).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		// ON DELETE CASCADE covers this too; explicit deletes keep drivers
		// without enforced foreign keys consistent.
		if err := deleteChildren(tx, cur.ID); err != nil {
			return err
		}
		res := tx.Delete(&ataRow{}, cur.ID)
		deleted = res.RowsAffected > 0
		return res.Error
	})
	if err != nil {
		return false, translate(err)
	}
	return deleted, nil
}

func (r *ataRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func deleteChildren(tx *gorm.DB, ataID uint) error {
	for _, m := range []interface{}{&itemRow{}, &telefoneRow{}, &emailRow{}} {
		if err := tx.Where("ata_id = ?", ataID).Delete(m).Error; err != nil {
			return err
		}
	}
	return nil
}

// translate maps driver errors onto the repository sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNumeroDuplicado), errors.Is(err, ErrNaoEncontrada):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNaoEncontrada
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrNumeroDuplicado
	}
	return fmt.Errorf("persistência: %w", err)
}
