package infra

import (
	"time"

	"atasrp/internal/dto"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var geradoEm = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func alertaExemplo() dto.AlertaVencimento {
	return dto.AlertaVencimento{
		ID:            uuid.New(),
		Tipo:          "D-30",
		NumeroAta:     "0016/2024",
		DocumentoSEI:  "12345.678901/2024-12",
		Objeto:        "Aquisição de material de escritório",
		Fornecedor:    "Papelaria Central Ltda",
		DataVigencia:  time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		DiasRestantes: 30,
		Status:        "a_vencer",
		ValorTotal:    decimal.RequireFromString("1250.50"),
		Itens: []dto.ItemResponse{{
			Descricao:  "Resma A4",
			Quantidade: 50,
			Valor:      decimal.RequireFromString("25.01"),
			ValorTotal: decimal.RequireFromString("1250.50"),
		}},
		Telefones:     []string{"(61) 99999-0000"},
		Emails:        []string{"vendas@papelaria.com.br"},
		Destinatarios: []string{"diatu@trf1.jus.br"},
		GeradoEm:      geradoEm,
	}
}

func relatorioMensalExemplo() dto.Relatorio {
	return dto.Relatorio{
		Tipo:          dto.RelatorioMensalTipo,
		GeradoEm:      geradoEm,
		Destinatarios: []string{"seae1@trf1.jus.br"},
		Mensal: &dto.RelatorioMensal{
			Periodo:    "03/2024",
			Contagem:   dto.ContagemStatus{Total: 2, Vigentes: 1, AVencer: 1, PercentualVigente: 50, PercentualAVencer: 50},
			ValorTotal: decimal.RequireFromString("5000"),
			PorFornecedor: []dto.FornecedorResumo{
				{Fornecedor: "Papelaria Central Ltda", Quantidade: 2, ValorTotal: decimal.RequireFromString("5000")},
			},
			Proximas: []dto.ResumoAta{{NumeroAta: "0016/2024", Objeto: "Material de escritório",
				DataVigencia: "31/03/2024", DiasRestantes: 30}},
			VencemEsteAno: 2,
			Tendencia:     "Estável",
			Recomendacoes: []string{"Iniciar renovação das atas a vencer"},
		},
	}
}

func relatorioSemanalExemplo() dto.Relatorio {
	return dto.Relatorio{
		Tipo:          dto.RelatorioSemanalTipo,
		GeradoEm:      geradoEm,
		Destinatarios: []string{"seae1@trf1.jus.br"},
		Semanal: &dto.RelatorioSemanal{
			Contagem:      dto.ContagemStatus{Total: 1, Vigentes: 1, PercentualVigente: 100},
			LimiteAVencer: 90,
		},
	}
}
