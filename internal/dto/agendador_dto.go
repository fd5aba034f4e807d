package dto

import "time"

type AgendadorStatus struct {
	Executando       bool              `json:"executando"`
	ProximaExecucao  map[string]string `json:"proxima_execucao"`
	UltimaExecucao   map[string]string `json:"ultima_execucao"`
	HistoricoAlertas int               `json:"historico_alertas"`
	Fuso             string            `json:"fuso"`
	ConsultadoEm     time.Time         `json:"consultado_em"`
}
