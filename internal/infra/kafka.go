package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"atasrp/internal/dto"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafka.Writer the notifier uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 250 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
}

// EventoNotificacao is the JSON value published per notification. Downstream
// consumers (mail gateway, dashboards) read Assunto/Corpo or the typed payload.
type EventoNotificacao struct {
	ID            uuid.UUID             `json:"id"`
	Tipo          string                `json:"tipo"` // alerta | relatorio
	Assunto       string                `json:"assunto"`
	Corpo         string                `json:"corpo"`
	Destinatarios []string              `json:"destinatarios"`
	Alerta        *dto.AlertaVencimento `json:"alerta,omitempty"`
	Relatorio     *dto.Relatorio        `json:"relatorio,omitempty"`
	EmitidoEm     time.Time             `json:"emitido_em"`
}

// KafkaNotifier publishes notification events. Accepted means the broker
// acknowledged the write.
type KafkaNotifier struct {
	writer  messageWriter
	breaker *CircuitBreaker
	now     func() time.Time
}

func NewKafkaNotifier(w messageWriter) *KafkaNotifier {
	return &KafkaNotifier{
		writer:  w,
		breaker: NewCircuitBreaker(DefaultCBConfig("kafka")),
		now:     time.Now,
	}
}

func (n *KafkaNotifier) EnviarAlertaVencimento(ctx context.Context, a dto.AlertaVencimento) (bool, error) {
	mail := MailAlerta(a)
	ev := EventoNotificacao{
		ID:            uuid.New(),
		Tipo:          "alerta",
		Assunto:       mail.Assunto,
		Corpo:         mail.Corpo,
		Destinatarios: a.Destinatarios,
		Alerta:        &a,
		EmitidoEm:     n.now().UTC(),
	}
	if err := n.publicar(ctx, a.NumeroAta+"/"+a.Tipo, ev); err != nil {
		return false, err
	}
	return true, nil
}

func (n *KafkaNotifier) EnviarRelatorio(ctx context.Context, r dto.Relatorio) (bool, error) {
	mail, err := MailRelatorio(r)
	if err != nil {
		return false, err
	}
	ev := EventoNotificacao{
		ID:            uuid.New(),
		Tipo:          "relatorio",
		Assunto:       mail.Assunto,
		Corpo:         mail.Corpo,
		Destinatarios: r.Destinatarios,
		Relatorio:     &r,
		EmitidoEm:     n.now().UTC(),
	}
	if err := n.publicar(ctx, "relatorio/"+string(r.Tipo), ev); err != nil {
		return false, err
	}
	return true, nil
}

func (n *KafkaNotifier) publicar(ctx context.Context, key string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("kafka: marshal: %w", err)
	}
	return n.breaker.Execute(func() error {
		if err := n.writer.WriteMessages(ctx, kafka.Message{
			Key:   []byte(key),
			Value: body,
			Time:  n.now().UTC(),
		}); err != nil {
			return fmt.Errorf("kafka: publish %s: %w", key, err)
		}
		return nil
	})
}

func (n *KafkaNotifier) Close() error { return n.writer.Close() }
