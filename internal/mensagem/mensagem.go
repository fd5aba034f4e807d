// Package mensagem renders alert and report e-mails as plain text.
// Every transport (console, SMTP, queue worker) goes through here so the
// wording is identical whichever notifier is configured.
package mensagem

import (
	"fmt"
	"strings"
	"time"

	"atasrp/internal/dto"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const rodapeAlerta = "Este é um alerta automático do Sistema de Atas de Registro de Preços.\nPor favor, tome as providências necessárias."

var printer = message.NewPrinter(language.BrazilianPortuguese)

var meses = [...]string{"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro"}

type Mensagem struct {
	Assunto string
	Corpo   string
}

// Moeda formats v as Brazilian reais: R$ 1.234,56.
func Moeda(v decimal.Decimal) string {
	f, _ := v.Round(2).Float64()
	return printer.Sprintf("R$ %.2f", f)
}

// Percentual formats p with one decimal place: 33,3%.
func Percentual(p float64) string {
	return printer.Sprintf("%.1f%%", p)
}

func data(t time.Time) string { return t.Format("02/01/2006") }

// MesAno renders "outubro/2026".
func MesAno(t time.Time) string {
	return fmt.Sprintf("%s/%d", meses[t.Month()-1], t.Year())
}

func statusTitulo(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Alerta renders the expiration alert for one ata.
func Alerta(a dto.AlertaVencimento) Mensagem {
	var assunto string
	switch {
	case a.DiasRestantes < 0:
		assunto = fmt.Sprintf("[%s] Ata %s vencida há %d dias", a.Tipo, a.NumeroAta, -a.DiasRestantes)
	case a.DiasRestantes == 0:
		assunto = fmt.Sprintf("[%s] Ata %s vence hoje", a.Tipo, a.NumeroAta)
	default:
		assunto = fmt.Sprintf("[%s] Ata %s próxima do vencimento", a.Tipo, a.NumeroAta)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "A Ata de Registro de Preços %s está próxima do vencimento.\n\n", a.NumeroAta)
	b.WriteString("Detalhes da Ata:\n")
	fmt.Fprintf(&b, "- Número: %s\n", a.NumeroAta)
	fmt.Fprintf(&b, "- SEI: %s\n", a.DocumentoSEI)
	fmt.Fprintf(&b, "- Objeto: %s\n", a.Objeto)
	fmt.Fprintf(&b, "- Fornecedor: %s\n", a.Fornecedor)
	fmt.Fprintf(&b, "- Data de Vencimento: %s\n", data(a.DataVigencia))
	fmt.Fprintf(&b, "- Dias Restantes: %d\n", a.DiasRestantes)
	fmt.Fprintf(&b, "- Status: %s\n", statusTitulo(a.Status))
	fmt.Fprintf(&b, "\nValor Total da Ata: %s\n", Moeda(a.ValorTotal))

	b.WriteString("\nItens da Ata:\n")
	for i, it := range a.Itens {
		fmt.Fprintf(&b, "%d. %s\n", i+1, it.Descricao)
		fmt.Fprintf(&b, "   Quantidade: %d\n", it.Quantidade)
		fmt.Fprintf(&b, "   Valor Unitário: %s\n", Moeda(it.Valor))
		fmt.Fprintf(&b, "   Valor Total: %s\n", Moeda(it.ValorTotal))
	}

	b.WriteString("\nContatos do Fornecedor:\n")
	if len(a.Telefones) > 0 {
		fmt.Fprintf(&b, "Telefones: %s\n", strings.Join(a.Telefones, ", "))
	}
	if len(a.Emails) > 0 {
		fmt.Fprintf(&b, "E-mails: %s\n", strings.Join(a.Emails, ", "))
	}
	b.WriteString("\n" + rodapeAlerta + "\n")
	return Mensagem{Assunto: assunto, Corpo: b.String()}
}

// Relatorio renders a weekly or monthly report.
func Relatorio(r dto.Relatorio) Mensagem {
	switch {
	case r.Semanal != nil:
		return semanal(r.GeradoEm, r.Semanal)
	case r.Mensal != nil:
		return mensal(r.GeradoEm, r.Mensal)
	}
	return Mensagem{Assunto: "Relatório - Atas de Registro de Preços", Corpo: "Relatório vazio.\n"}
}

// contagem writes the per-status lines; limite > 0 annotates the "a vencer" window.
func contagem(b *strings.Builder, c dto.ContagemStatus, limite int) {
	if c.Total == 0 {
		b.WriteString("- Vigentes: 0\n- A Vencer: 0\n- Vencidas: 0\n")
		return
	}
	fmt.Fprintf(b, "- Vigentes: %d (%s)\n", c.Vigentes, Percentual(c.PercentualVigente))
	if limite > 0 {
		fmt.Fprintf(b, "- A Vencer (≤%d dias): %d (%s)\n", limite, c.AVencer, Percentual(c.PercentualAVencer))
	} else {
		fmt.Fprintf(b, "- A Vencer: %d (%s)\n", c.AVencer, Percentual(c.PercentualAVencer))
	}
	fmt.Fprintf(b, "- Vencidas: %d (%s)\n", c.Vencidas, Percentual(c.PercentualVencida))
}

func semanal(gerado time.Time, s *dto.RelatorioSemanal) Mensagem {
	var b strings.Builder
	fmt.Fprintf(&b, "Relatório Semanal - Status das Atas (%s)\n\n", data(gerado))
	b.WriteString("Resumo Geral:\n")
	fmt.Fprintf(&b, "- Total de Atas: %d\n", s.Contagem.Total)
	contagem(&b, s.Contagem, s.LimiteAVencer)

	if len(s.Proximas) > 0 {
		b.WriteString("\nAtas que requerem atenção especial:\n")
		for _, a := range s.Proximas {
			fmt.Fprintf(&b, "- %s: %s (vence em %d dias)\n", a.NumeroAta, a.Objeto, a.DiasRestantes)
		}
		if s.ProximasOmitidas > 0 {
			fmt.Fprintf(&b, "... e mais %d atas\n", s.ProximasOmitidas)
		}
	}
	b.WriteString("\nEste relatório é gerado automaticamente pelo Sistema de Atas de Registro de Preços.\n")
	return Mensagem{Assunto: "Relatório Semanal - Atas de Registro de Preços", Corpo: b.String()}
}

func mensal(gerado time.Time, m *dto.RelatorioMensal) Mensagem {
	var b strings.Builder
	b.WriteString("RELATÓRIO MENSAL - ATAS DE REGISTRO DE PREÇOS\n")
	fmt.Fprintf(&b, "Período: %s\n", MesAno(gerado))
	fmt.Fprintf(&b, "Data de Geração: %s\n", data(gerado))

	b.WriteString("\nRESUMO EXECUTIVO:\n")
	fmt.Fprintf(&b, "- Total de Atas: %d\n", m.Contagem.Total)
	fmt.Fprintf(&b, "- Valor Total: %s\n", Moeda(m.ValorTotal))
	contagem(&b, m.Contagem, 0)

	if len(m.PorFornecedor) > 0 {
		b.WriteString("\nATAS POR FORNECEDOR:\n")
		for _, f := range m.PorFornecedor {
			fmt.Fprintf(&b, "- %s: %d ata(s) - %s\n", f.Fornecedor, f.Quantidade, Moeda(f.ValorTotal))
		}
	}
	if len(m.Proximas) > 0 {
		b.WriteString("\nATAS PRÓXIMAS DO VENCIMENTO:\n")
		for _, a := range m.Proximas {
			fmt.Fprintf(&b, "- %s: %s (vence em %d dias)\n", a.NumeroAta, a.Objeto, a.DiasRestantes)
		}
	}
	if len(m.Vencidas) > 0 {
		b.WriteString("\nATAS VENCIDAS:\n")
		for _, a := range m.Vencidas {
			fmt.Fprintf(&b, "- %s: %s (vencida há %d dias)\n", a.NumeroAta, a.Objeto, -a.DiasRestantes)
		}
	}

	b.WriteString("\nANÁLISE DE TENDÊNCIAS:\n")
	fmt.Fprintf(&b, "- Atas vencendo este ano: %d\n", m.VencemEsteAno)
	fmt.Fprintf(&b, "- Atas vencendo próximo ano: %d\n", m.VencemProximoAno)
	if m.Tendencia != "" {
		fmt.Fprintf(&b, "- Tendência: %s\n", m.Tendencia)
	}

	if len(m.Recomendacoes) > 0 {
		b.WriteString("\nRECOMENDAÇÕES:\n")
		for _, r := range m.Recomendacoes {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}
	b.WriteString("\nRelatório gerado automaticamente pelo Sistema de Atas de Registro de Preços\n")
	return Mensagem{
		Assunto: fmt.Sprintf("Relatório Mensal - Atas de Registro de Preços - %s", m.Periodo),
		Corpo:   b.String(),
	}
}
