package model

import (
	"fmt"
	"strings"
	"unicode"
)

func soDigitos(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

// FormatarTelefone masks a bare 10 or 11 digit number as (XX) XXXX-XXXX or
// (XX) XXXXX-XXXX. Anything else is returned trimmed and untouched.
func FormatarTelefone(s string) string {
	d := soDigitos(s)
	switch len(d) {
	case 10:
		return fmt.Sprintf("(%s) %s-%s", d[:2], d[2:6], d[6:])
	case 11:
		return fmt.Sprintf("(%s) %s-%s", d[:2], d[2:7], d[7:])
	}
	return strings.TrimSpace(s)
}

// FormatarDocumentoSEI masks 17 digits as 00000.000000/0000-00.
func FormatarDocumentoSEI(s string) string {
	d := soDigitos(s)
	if len(d) != 17 {
		return strings.TrimSpace(s)
	}
	return fmt.Sprintf("%s.%s/%s-%s", d[:5], d[5:11], d[11:15], d[15:])
}

// FormatarNumeroAta pads the sequence: "12/2024" → "0012/2024".
func FormatarNumeroAta(seq, ano int) string {
	return fmt.Sprintf("%04d/%d", seq, ano)
}
