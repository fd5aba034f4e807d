//go:build integration

package repository

// Runs the store contract against a real Postgres via testcontainers.
// Run with: go test -tags integration ./internal/repository/... -v

import (
	"context"
	"testing"

	"atasrp/internal/config"
	"atasrp/internal/infra"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("atasrp_test"),
		tcPostgres.WithUsername("atasrp"),
		tcPostgres.WithPassword("atasrp"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	url, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return url
}

func TestPostgres_Contract(t *testing.T) {
	url := startPostgres(t)
	db, err := infra.NewDatabase(url, Models()...)
	require.NoError(t, err)
	repo := NewAtaRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Ping(ctx))

	a := novaAta(t, "0001/2024")
	require.NoError(t, repo.Create(ctx, a))
	assert.ErrorIs(t, repo.Create(ctx, novaAta(t, "0001/2024")), ErrNumeroDuplicado)

	got, err := repo.FindByNumero(ctx, "0001/2024")
	require.NoError(t, err)
	assertAtaIgual(t, a, got)

	// extremes of the money column come back exactly, like the other backends
	limites := novaAta(t, "0004/2024")
	limites.Itens[0].Valor = decimal.RequireFromString("0.01")
	limites.Itens[1].Valor = decimal.RequireFromString("9999999999999.99")
	require.NoError(t, limites.Validate())
	require.NoError(t, repo.Create(ctx, limites))
	got, err = repo.FindByNumero(ctx, "0004/2024")
	require.NoError(t, err)
	assertAtaIgual(t, limites, got)
	_, err = repo.Delete(ctx, "0004/2024")
	require.NoError(t, err)

	b := novaAta(t, "0002/2024")
	require.NoError(t, repo.Create(ctx, b))

	renumerada := novaAta(t, "0003/2024")
	renumerada.Itens = renumerada.Itens[:1]
	require.NoError(t, repo.Replace(ctx, "0001/2024", renumerada))

	todas, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, todas, 2)
	assert.Equal(t, "0003/2024", todas[0].NumeroAta)
	assert.Len(t, todas[0].Itens, 1)

	ok, err := repo.Delete(ctx, "0002/2024")
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = repo.FindByNumero(ctx, "0002/2024")
	assert.ErrorIs(t, err, ErrNaoEncontrada)
}

func TestPostgres_OpenRunsMigrationsTwice(t *testing.T) {
	cfg := &config.Config{StoreBackend: "gorm", DatabaseURL: startPostgres(t)}

	for i := 0; i < 2; i++ {
		repo, closeStore, err := Open(cfg)
		require.NoError(t, err)
		require.NoError(t, repo.Ping(context.Background()))
		require.NoError(t, closeStore())
	}
}
