package infra

// pdf.go: monthly report rendered with go-pdf/fpdf:
//   - header with period and generation date
//   - executive summary (status counts, total value)
//   - supplier table
//   - near-expiration and expired tables
//   - trends and recommendations

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"atasrp/internal/dto"
	"atasrp/internal/mensagem"

	"github.com/go-pdf/fpdf"
)

// GerarRelatorioMensalPDF renders the monthly report as an A4 PDF.
func GerarRelatorioMensalPDF(rel dto.Relatorio) ([]byte, error) {
	if rel.Mensal == nil {
		return nil, fmt.Errorf("pdf: relatório %q não é mensal", rel.Tipo)
	}
	m := rel.Mensal

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("") // cp1252 for accents

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, tr("Relatório Mensal - Atas de Registro de Preços"), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, tr(fmt.Sprintf("Período: %s   Gerado em: %s",
		m.Periodo, rel.GeradoEm.Format("02/01/2006 15:04"))), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// ── Resumo ────────────────────────────────────────────────────────────────
	secao(pdf, tr, contentW, "Resumo Executivo")
	pdf.SetFont("Helvetica", "", 9)
	linhas := []string{
		fmt.Sprintf("Total de Atas: %d", m.Contagem.Total),
		fmt.Sprintf("Valor Total: %s", mensagem.Moeda(m.ValorTotal)),
		fmt.Sprintf("Vigentes: %d (%s)", m.Contagem.Vigentes, mensagem.Percentual(m.Contagem.PercentualVigente)),
		fmt.Sprintf("A Vencer: %d (%s)", m.Contagem.AVencer, mensagem.Percentual(m.Contagem.PercentualAVencer)),
		fmt.Sprintf("Vencidas: %d (%s)", m.Contagem.Vencidas, mensagem.Percentual(m.Contagem.PercentualVencida)),
	}
	for _, l := range linhas {
		pdf.CellFormat(contentW, 5, tr(l), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	// ── Fornecedores ──────────────────────────────────────────────────────────
	if len(m.PorFornecedor) > 0 {
		secao(pdf, tr, contentW, "Atas por Fornecedor")
		c1, c2, c3 := contentW*0.55, contentW*0.15, contentW*0.30
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(c1, 5, "Fornecedor", "B", 0, "L", false, 0, "")
		pdf.CellFormat(c2, 5, "Atas", "B", 0, "C", false, 0, "")
		pdf.CellFormat(c3, 5, "Valor", "B", 1, "R", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		for _, f := range m.PorFornecedor {
			pdf.CellFormat(c1, 5, tr(truncar(f.Fornecedor, 60)), "", 0, "L", false, 0, "")
			pdf.CellFormat(c2, 5, fmt.Sprintf("%d", f.Quantidade), "", 0, "C", false, 0, "")
			pdf.CellFormat(c3, 5, tr(mensagem.Moeda(f.ValorTotal)), "", 1, "R", false, 0, "")
		}
		pdf.Ln(3)
	}

	tabelaAtas(pdf, tr, contentW, "Atas Próximas do Vencimento", m.Proximas)
	tabelaAtas(pdf, tr, contentW, "Atas Vencidas", m.Vencidas)

	// ── Tendências ────────────────────────────────────────────────────────────
	secao(pdf, tr, contentW, "Análise de Tendências")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, tr(fmt.Sprintf("Atas vencendo este ano: %d", m.VencemEsteAno)), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, tr(fmt.Sprintf("Atas vencendo próximo ano: %d", m.VencemProximoAno)), "", 1, "L", false, 0, "")
	if m.Tendencia != "" {
		pdf.MultiCell(contentW, 5, tr("Tendência: "+m.Tendencia), "", "L", false)
	}
	pdf.Ln(3)

	if len(m.Recomendacoes) > 0 {
		secao(pdf, tr, contentW, "Recomendações")
		pdf.SetFont("Helvetica", "", 9)
		for _, r := range m.Recomendacoes {
			pdf.MultiCell(contentW, 5, tr("- "+r), "", "L", false)
		}
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, tr("Relatório gerado automaticamente pelo Sistema de Atas de Registro de Preços"), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render: %w", err)
	}
	return buf.Bytes(), nil
}

// SalvarPDF writes data under dir, creating it if needed, and returns the path.
func SalvarPDF(dir, nome string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	path := filepath.Join(dir, nome)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return path, nil
}

func secao(pdf *fpdf.Fpdf, tr func(string) string, w float64, titulo string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(w, 6, tr(titulo), "B", 1, "L", false, 0, "")
	pdf.Ln(1)
}

func tabelaAtas(pdf *fpdf.Fpdf, tr func(string) string, w float64, titulo string, atas []dto.ResumoAta) {
	if len(atas) == 0 {
		return
	}
	secao(pdf, tr, w, titulo)
	c1, c2, c3, c4 := w*0.15, w*0.50, w*0.17, w*0.18
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(c1, 5, tr("Número"), "B", 0, "L", false, 0, "")
	pdf.CellFormat(c2, 5, "Objeto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(c3, 5, tr("Vigência"), "B", 0, "C", false, 0, "")
	pdf.CellFormat(c4, 5, "Dias", "B", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	for _, a := range atas {
		pdf.CellFormat(c1, 5, a.NumeroAta, "", 0, "L", false, 0, "")
		pdf.CellFormat(c2, 5, tr(truncar(a.Objeto, 55)), "", 0, "L", false, 0, "")
		pdf.CellFormat(c3, 5, a.DataVigencia, "", 0, "C", false, 0, "")
		pdf.CellFormat(c4, 5, fmt.Sprintf("%d", a.DiasRestantes), "", 1, "R", false, 0, "")
	}
	pdf.Ln(3)
}

// truncar cuts s to n runes.
func truncar(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
