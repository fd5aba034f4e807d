// cmd/gentoken/main.go: issues an API token for a role.
// Usage: JWT_SECRET=... go run ./cmd/gentoken -usuario diatu -rol consulta
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"atasrp/internal/config"
	"atasrp/internal/middleware"
)

func main() {
	usuario := flag.String("usuario", "admin", "token subject")
	rol := flag.String("rol", middleware.RolAdministrador, "administrador | consulta")
	horas := flag.Int("horas", 0, "validity in hours (default JWT_EXPIRATION_HOURS)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if cfg.JWTSecret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET não definido")
		os.Exit(1)
	}
	if *rol != middleware.RolAdministrador && *rol != middleware.RolConsulta {
		fmt.Fprintf(os.Stderr, "rol %q inválido\n", *rol)
		os.Exit(2)
	}
	ttl := *horas
	if ttl <= 0 {
		ttl = cfg.JWTExpirationHours
	}

	tok, err := middleware.GenerateToken(cfg.JWTSecret, *usuario, *rol, time.Duration(ttl)*time.Hour)
	if err != nil {
		fmt.Fprintln(os.Stderr, "token:", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
