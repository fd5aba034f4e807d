package model

import (
	"fmt"
	"strings"
	"time"
)

// Status is derived from DataVigencia and the current day, never stored.
type Status string

const (
	StatusVigente Status = "vigente"
	StatusAVencer Status = "a_vencer"
	StatusVencida Status = "vencida"
)

// DefaultLimiteAVencer is the "a vencer" window in days.
const DefaultLimiteAVencer = 90

// Label returns the display text of s.
func (s Status) Label() string {
	switch s {
	case StatusVigente:
		return "Vigente"
	case StatusAVencer:
		return "A Vencer"
	case StatusVencida:
		return "Vencida"
	}
	return string(s)
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s == StatusVigente || s == StatusAVencer || s == StatusVencida
}

// Data truncates t to its calendar date (00:00 UTC of the same Y/M/D).
func Data(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DiasRestantes counts whole calendar days from hoje until vigencia.
// Negative once vigencia is in the past.
func DiasRestantes(vigencia, hoje time.Time) int {
	return int(Data(vigencia).Sub(Data(hoje)).Hours() / 24)
}

// ClassificarStatus maps the remaining days to a Status.
// Zero days left is still "a vencer".
func ClassificarStatus(vigencia, hoje time.Time, limite int) Status {
	dias := DiasRestantes(vigencia, hoje)
	switch {
	case dias < 0:
		return StatusVencida
	case dias <= limite:
		return StatusAVencer
	default:
		return StatusVigente
	}
}

const (
	layoutISO = "2006-01-02"
	layoutBR  = "02/01/2006"
)

// ParseData accepts YYYY-MM-DD or DD/MM/YYYY.
func ParseData(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{layoutISO, layoutBR} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("data %q inválida: use YYYY-MM-DD ou DD/MM/YYYY", s)
}

// FormatarData renders a date as DD/MM/YYYY.
func FormatarData(t time.Time) string { return t.Format(layoutBR) }

// FormatarDataISO renders a date as YYYY-MM-DD.
func FormatarDataISO(t time.Time) string { return t.Format(layoutISO) }
