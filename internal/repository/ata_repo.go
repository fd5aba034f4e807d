package repository

import (
	"context"
	"errors"

	"atasrp/internal/model"
)

var (
	// ErrNaoEncontrada is returned when no ata carries the requested number.
	ErrNaoEncontrada = errors.New("ata não encontrada")
	// ErrNumeroDuplicado is returned when another ata already uses the number.
	ErrNumeroDuplicado = errors.New("já existe uma ata com este número")
)

// AtaRepository persists atas. Every mutation is durable when it returns.
// Both the relational and the JSON-file backend satisfy it with identical
// observable behaviour, List included (insertion order).
type AtaRepository interface {
	Create(ctx context.Context, a *model.Ata) error
	FindByNumero(ctx context.Context, numero string) (*model.Ata, error)
	List(ctx context.Context) ([]model.Ata, error)
	// Replace swaps the ata stored under numero for a, keeping its position.
	// a.NumeroAta may differ from numero (renumbering).
	Replace(ctx context.Context, numero string, a *model.Ata) error
	Delete(ctx context.Context, numero string) (bool, error)
	Ping(ctx context.Context) error
}
