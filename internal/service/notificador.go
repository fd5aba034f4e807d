package service

import (
	"context"
	"errors"

	"atasrp/internal/dto"
)

// ErrEnvioRecusado is reported when a transport returns false without an error.
var ErrEnvioRecusado = errors.New("notificação recusada pelo transporte")

// Notificador delivers alerts and reports. The bool reports whether the
// transport accepted the message; a false or an error is always surfaced
// to the caller, never swallowed.
type Notificador interface {
	EnviarAlertaVencimento(ctx context.Context, alerta dto.AlertaVencimento) (bool, error)
	EnviarRelatorio(ctx context.Context, relatorio dto.Relatorio) (bool, error)
}
