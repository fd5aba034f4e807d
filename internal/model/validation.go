package model

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	reNumeroAta    = regexp.MustCompile(`^\d{4}/\d{4}$`)
	reDocumentoSEI = regexp.MustCompile(`^\d{5}\.\d{6}/\d{4}-\d{2}$`)
	reTelefone     = regexp.MustCompile(`^\(\d{2}\)\s?\d{4,5}-\d{4}$`)
	reEmail        = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// valorMaximo bounds Item.Valor to what numeric(15,2) holds.
var valorMaximo = decimal.New(1, 13)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Register decimal.Decimal as a numeric type so gt=0 works on Item.Valor.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	// Report JSON names so a UI can map errors back to its form fields.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	// Item values are money: cents at most, and must fit the relational column.
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		it := sl.Current().Interface().(Item)
		if !it.Valor.Equal(it.Valor.Round(2)) {
			sl.ReportError(it.Valor, "valor", "Valor", "centavos", "")
		}
		if it.Valor.GreaterThanOrEqual(valorMaximo) {
			sl.ReportError(it.Valor, "valor", "Valor", "valor_maximo", "")
		}
	}, Item{})

	mustRegister(v, "numero_ata", matches(reNumeroAta))
	mustRegister(v, "documento_sei", matches(reDocumentoSEI))
	mustRegister(v, "telefone", matches(reTelefone))
	mustRegister(v, "email_fornecedor", matches(reEmail))
	mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("model: register validation %q: %v", tag, err))
	}
}

// ValidNumeroAta reports whether s has the XXXX/AAAA shape.
func ValidNumeroAta(s string) bool { return reNumeroAta.MatchString(s) }

// FieldError describes one broken rule on one field.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError is returned before any persistence attempt when a record
// or item breaks an invariant.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "validação falhou: " + strings.Join(msgs, "; ")
}

// FieldMap flattens the errors into field → message, first message wins.
func (e *ValidationError) FieldMap() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		if _, ok := out[f.Field]; !ok {
			out[f.Field] = f.Message
		}
	}
	return out
}

func (e *ValidationError) add(field, rule, msg string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Rule: rule, Message: msg})
}

func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	ves, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	verr := &ValidationError{}
	for _, fe := range ves {
		verr.add(fieldPath(fe.Namespace()), fe.Tag(), message(fe))
	}
	return verr
}

// fieldPath drops the root struct name: "Ata.itens[0].valor" → "itens[0].valor".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "numero_ata":
		return "Número da ata deve seguir o formato XXXX/AAAA"
	case "documento_sei":
		return "Documento SEI deve seguir o formato 00000.000000/0000-00"
	case "telefone":
		return fmt.Sprintf("Telefone %v deve seguir o formato (XX) XXXXX-XXXX", fe.Value())
	case "email_fornecedor":
		return fmt.Sprintf("Email %v não é válido", fe.Value())
	case "min":
		if fe.Field() == "itens" {
			return "Ata deve ter pelo menos um item"
		}
	case "gt":
		switch fe.Field() {
		case "quantidade":
			return "Quantidade deve ser maior que zero"
		case "valor":
			return "Valor deve ser maior que zero"
		}
	case "centavos":
		return "Valor deve ter no máximo duas casas decimais"
	case "valor_maximo":
		return "Valor deve ser menor que 10.000.000.000.000,00"
	case "notblank":
		switch fe.Field() {
		case "objeto":
			return "Objeto não pode estar vazio"
		case "fornecedor":
			return "Fornecedor não pode estar vazio"
		case "descricao":
			return "Descrição não pode estar vazia"
		}
	}
	return fmt.Sprintf("%s inválido (%s)", fe.Field(), fe.Tag())
}

// NewFieldError builds a single-field ValidationError for rules checked
// outside the struct tags (e.g. date parsing).
func NewFieldError(field, rule, msg string) *ValidationError {
	verr := &ValidationError{}
	verr.add(field, rule, msg)
	return verr
}
