// cmd/seedatas/main.go: loads the sample atas into the configured store.
// Usage: go run ./cmd/seedatas
// Existing numbers are skipped, so it is safe to run twice.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"atasrp/internal/config"
	"atasrp/internal/dto"
	"atasrp/internal/infra"
	"atasrp/internal/repository"
	"atasrp/internal/service"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

func item(desc string, qtd int, valor string) dto.ItemInput {
	return dto.ItemInput{Descricao: desc, Quantidade: qtd, Valor: decimal.RequireFromString(valor)}
}

var amostras = []dto.AtaRequest{
	{
		NumeroAta:    "0016/2024",
		DocumentoSEI: "23106.033566/2023-30",
		DataVigencia: "2024-12-31",
		Objeto:       "Micro Tipo I",
		Fornecedor:   "Empresa XYZ Ltda",
		Telefones:    []string{"(61) 99999-0000"},
		Emails:       []string{"contato@empresa.com"},
		Itens:        []dto.ItemInput{item("Notebook com SSD", 15, "3500.00")},
	},
	{
		NumeroAta:    "0015/2024",
		DocumentoSEI: "23106.033566/2023-29",
		DataVigencia: "2024-08-15",
		Objeto:       "Material de Escritório",
		Fornecedor:   "Papelaria ABC",
		Telefones:    []string{"(61) 88888-1111"},
		Emails:       []string{"vendas@papelaria.com"},
		Itens:        []dto.ItemInput{item("Papel A4", 100, "25.00"), item("Canetas", 50, "2.50")},
	},
	{
		NumeroAta:    "0014/2024",
		DocumentoSEI: "23106.033566/2023-28",
		DataVigencia: "2023-12-31",
		Objeto:       "Equipamentos de TI",
		Fornecedor:   "TechCorp Ltda",
		Telefones:    []string{"(61) 77777-2222"},
		Emails:       []string{"tech@techcorp.com"},
		Itens:        []dto.ItemInput{item("Monitor 24 polegadas", 20, "800.00")},
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	infra.SetupLogger(infra.LogConfig{Env: "development", Level: cfg.LogLevel})

	repo, closeStore, err := repository.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer closeStore()

	svc := service.NewAtaService(repo, cfg.VencimentoAlertDays, time.Now)
	ctx := context.Background()

	criadas := 0
	for _, req := range amostras {
		_, err := svc.Criar(ctx, req)
		switch {
		case errors.Is(err, repository.ErrNumeroDuplicado):
			log.Info().Str("numero_ata", req.NumeroAta).Msg("seedatas: já existe, ignorada")
		case err != nil:
			log.Error().Err(err).Str("numero_ata", req.NumeroAta).Msg("seedatas: falha ao criar")
			os.Exit(1)
		default:
			criadas++
		}
	}
	log.Info().Int("criadas", criadas).Str("backend", cfg.StoreBackend).Msg("seedatas: concluído")
}
