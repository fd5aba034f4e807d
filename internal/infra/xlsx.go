package infra

import (
	"fmt"
	"strings"

	"atasrp/internal/dto"

	"github.com/xuri/excelize/v2"
)

const (
	sheetAtas  = "Atas"
	sheetItens = "Itens"
)

// GerarPlanilhaAtas exports atas to an XLSX workbook with two sheets: one
// row per ata on "Atas", one row per item on "Itens" keyed by numero_ata.
func GerarPlanilhaAtas(atas []dto.AtaResponse) ([]byte, error) {
	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	if err := xl.SetSheetName(xl.GetSheetName(0), sheetAtas); err != nil {
		return nil, fmt.Errorf("xlsx: rename sheet: %w", err)
	}
	if _, err := xl.NewSheet(sheetItens); err != nil {
		return nil, fmt.Errorf("xlsx: new sheet: %w", err)
	}

	header := []string{"numero_ata", "documento_sei", "data_vigencia", "objeto", "fornecedor",
		"telefones", "emails", "status", "dias_restantes", "valor_total"}
	if err := xl.SetSheetRow(sheetAtas, "A1", &header); err != nil {
		return nil, fmt.Errorf("xlsx: header: %w", err)
	}
	itemHeader := []string{"numero_ata", "descricao", "quantidade", "valor", "valor_total"}
	if err := xl.SetSheetRow(sheetItens, "A1", &itemHeader); err != nil {
		return nil, fmt.Errorf("xlsx: header: %w", err)
	}

	itemRow := 2
	for i, a := range atas {
		record := []interface{}{
			a.NumeroAta,
			a.DocumentoSEI,
			a.DataVigencia,
			a.Objeto,
			a.Fornecedor,
			joinCSV(a.Telefones),
			joinCSV(a.Emails),
			a.StatusLabel,
			a.DiasRestantes,
			a.ValorTotal.InexactFloat64(),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := xl.SetSheetRow(sheetAtas, cell, &record); err != nil {
			return nil, fmt.Errorf("xlsx: row %s: %w", a.NumeroAta, err)
		}
		for _, it := range a.Itens {
			row := []interface{}{
				a.NumeroAta,
				it.Descricao,
				it.Quantidade,
				it.Valor.InexactFloat64(),
				it.ValorTotal.InexactFloat64(),
			}
			cell, _ := excelize.CoordinatesToCellName(1, itemRow)
			if err := xl.SetSheetRow(sheetItens, cell, &row); err != nil {
				return nil, fmt.Errorf("xlsx: item row %d: %w", itemRow, err)
			}
			itemRow++
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: write: %w", err)
	}
	return buf.Bytes(), nil
}

func joinCSV(in []string) string { return strings.Join(in, ", ") }

// NomePlanilha is the download file name for a given date stamp.
func NomePlanilha(stamp string) string {
	return "atas_" + stamp + ".xlsx"
}
