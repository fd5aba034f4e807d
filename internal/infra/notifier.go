package infra

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"atasrp/internal/dto"
	"atasrp/internal/mensagem"

	"github.com/rs/zerolog/log"
)

// ── Mail builders ────────────────────────────────────────────────────────────

// MailAlerta renders an alert into a Mail addressed to its recipients.
func MailAlerta(a dto.AlertaVencimento) Mail {
	msg := mensagem.Alerta(a)
	return Mail{Para: a.Destinatarios, Assunto: msg.Assunto, Corpo: msg.Corpo}
}

// MailRelatorio renders a report; the monthly one carries the PDF version.
func MailRelatorio(r dto.Relatorio) (Mail, error) {
	msg := mensagem.Relatorio(r)
	m := Mail{Para: r.Destinatarios, Assunto: msg.Assunto, Corpo: msg.Corpo}
	if r.Mensal != nil {
		pdf, err := GerarRelatorioMensalPDF(r)
		if err != nil {
			return Mail{}, err
		}
		m.Anexos = append(m.Anexos, Attachment{
			Nome:        nomeRelatorioMensal(r),
			ContentType: "application/pdf",
			Conteudo:    pdf,
		})
	}
	return m, nil
}

func nomeRelatorioMensal(r dto.Relatorio) string {
	return "relatorio_mensal_" + strings.ReplaceAll(r.Mensal.Periodo, "/", "_") + ".pdf"
}

// ── Report archive ───────────────────────────────────────────────────────────

// notificador is the dispatch contract the archive wraps.
type notificador interface {
	EnviarAlertaVencimento(ctx context.Context, a dto.AlertaVencimento) (bool, error)
	EnviarRelatorio(ctx context.Context, r dto.Relatorio) (bool, error)
}

// ArquivoRelatorios stores every monthly report as a PDF under dir and then
// hands it to the wrapped transport. A failed write is logged, never blocks
// delivery.
type ArquivoRelatorios struct {
	next notificador
	dir  string
}

func NewArquivoRelatorios(next notificador, dir string) *ArquivoRelatorios {
	return &ArquivoRelatorios{next: next, dir: dir}
}

func (a *ArquivoRelatorios) EnviarAlertaVencimento(ctx context.Context, al dto.AlertaVencimento) (bool, error) {
	return a.next.EnviarAlertaVencimento(ctx, al)
}

func (a *ArquivoRelatorios) EnviarRelatorio(ctx context.Context, r dto.Relatorio) (bool, error) {
	if r.Mensal != nil {
		if path, err := a.arquivar(r); err != nil {
			log.Error().Err(err).Str("periodo", r.Mensal.Periodo).Msg("relatorios: falha ao arquivar PDF")
		} else {
			log.Info().Str("path", path).Msg("relatorios: PDF mensal arquivado")
		}
	}
	return a.next.EnviarRelatorio(ctx, r)
}

func (a *ArquivoRelatorios) arquivar(r dto.Relatorio) (string, error) {
	data, err := GerarRelatorioMensalPDF(r)
	if err != nil {
		return "", err
	}
	return SalvarPDF(a.dir, nomeRelatorioMensal(r), data)
}

// ── Console ──────────────────────────────────────────────────────────────────

// ConsoleNotifier prints messages instead of sending them. Default transport
// for development and for installations without a mail relay.
type ConsoleNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsoleNotifier(out io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{out: out}
}

func (n *ConsoleNotifier) EnviarAlertaVencimento(ctx context.Context, a dto.AlertaVencimento) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	mail := MailAlerta(a)
	if err := n.imprimir(mail); err != nil {
		return false, err
	}
	log.Info().Str("ata", a.NumeroAta).Str("tipo", a.Tipo).Strs("para", a.Destinatarios).
		Msg("console_notifier: alerta emitido")
	return true, nil
}

func (n *ConsoleNotifier) EnviarRelatorio(ctx context.Context, r dto.Relatorio) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	msg := mensagem.Relatorio(r)
	if err := n.imprimir(Mail{Para: r.Destinatarios, Assunto: msg.Assunto, Corpo: msg.Corpo}); err != nil {
		return false, err
	}
	log.Info().Str("tipo", string(r.Tipo)).Msg("console_notifier: relatório emitido")
	return true, nil
}

func (n *ConsoleNotifier) imprimir(m Mail) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	sep := strings.Repeat("=", 60)
	_, err := fmt.Fprintf(n.out, "%s\nPara: %s\nAssunto: %s\n%s\n%s%s\n",
		sep, strings.Join(m.Para, ", "), m.Assunto, sep, m.Corpo, sep)
	return err
}

// ── SMTP ─────────────────────────────────────────────────────────────────────

// mailSender is satisfied by *Mailer.
type mailSender interface {
	Send(ctx context.Context, m Mail) error
}

// SMTPNotifier sends synchronously through the Mailer.
type SMTPNotifier struct {
	mailer mailSender
}

func NewSMTPNotifier(m mailSender) *SMTPNotifier {
	return &SMTPNotifier{mailer: m}
}

func (n *SMTPNotifier) EnviarAlertaVencimento(ctx context.Context, a dto.AlertaVencimento) (bool, error) {
	if err := n.mailer.Send(ctx, MailAlerta(a)); err != nil {
		log.Error().Err(err).Str("ata", a.NumeroAta).Str("tipo", a.Tipo).Msg("smtp_notifier: falha no envio")
		return false, err
	}
	return true, nil
}

func (n *SMTPNotifier) EnviarRelatorio(ctx context.Context, r dto.Relatorio) (bool, error) {
	m, err := MailRelatorio(r)
	if err != nil {
		return false, err
	}
	if err := n.mailer.Send(ctx, m); err != nil {
		log.Error().Err(err).Str("tipo", string(r.Tipo)).Msg("smtp_notifier: falha no envio do relatório")
		return false, err
	}
	return true, nil
}
