package handler

import (
	"errors"
	"net/http"
	"strconv"

	"atasrp/internal/apierror"
	"atasrp/internal/middleware"
	"atasrp/internal/model"
	"atasrp/internal/repository"
	"atasrp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var validate = validator.New()

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails,
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON inválido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		var ves validator.ValidationErrors
		if !errors.As(err, &ves) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string, len(ves))
		for _, fe := range ves {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError maps domain and store errors onto status codes.
func respondError(c *gin.Context, err error) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, apierror.FromModel(verr))
	case errors.Is(err, repository.ErrNaoEncontrada):
		c.JSON(http.StatusNotFound, apierror.New("Ata não encontrada"))
	case errors.Is(err, repository.ErrNumeroDuplicado):
		c.JSON(http.StatusConflict, apierror.New("Já existe uma ata com este número"))
	case errors.Is(err, service.ErrNumeracaoEsgotada):
		c.JSON(http.StatusConflict, apierror.New("Não há numeração disponível para este ano"))
	default:
		log.Error().Err(err).Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("path", c.FullPath()).Msg("handler: unexpected error")
		c.JSON(http.StatusInternalServerError, apierror.New("Erro interno do servidor"))
	}
}

// auditar logs a write on an ata together with the user from the JWT.
func auditar(c *gin.Context, acao, numero string) {
	usuario := ""
	if claims := middleware.GetClaims(c); claims != nil {
		usuario = claims.Usuario
	}
	log.Info().
		Str("request_id", c.GetString(middleware.RequestIDKey)).
		Str("usuario", usuario).
		Str("acao", acao).
		Str("numero_ata", numero).
		Msg("auditoria: escrita em atas")
}

// numeroParam rebuilds "0016/2024" from /:seq/:ano.
func numeroParam(c *gin.Context) (string, bool) {
	numero := c.Param("seq") + "/" + c.Param("ano")
	if !model.ValidNumeroAta(numero) {
		c.JSON(http.StatusBadRequest, apierror.New("Número da ata deve seguir o formato XXXX/AAAA"))
		return "", false
	}
	return numero, true
}

// intQuery reads an optional non-negative integer query parameter.
func intQuery(c *gin.Context, key string, def int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		c.JSON(http.StatusBadRequest, apierror.New("Parâmetro "+key+" inválido"))
		return 0, false
	}
	return n, true
}
