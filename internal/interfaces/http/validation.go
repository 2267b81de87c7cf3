package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/retail-ledger/internal/domain"
)

var errInvalidBody = domain.Invalid("body", "cuerpo inválido")

// newValidator usa los nombres de los tags json/query en los errores.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	return v
}

// validateStruct convierte el primer error del validador en un ValidationError con el campo.
func validateStruct(v *validator.Validate, in any) error {
	err := v.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return domain.Invalid(verrs[0].Field(), validationMessage(verrs[0]))
	}
	return domain.Invalid("", err.Error())
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "requerido"
	case "oneof":
		return "debe ser uno de: " + e.Param()
	case "datetime":
		return "formato esperado " + e.Param()
	case "min":
		return "debe ser al menos " + e.Param()
	case "max":
		return "debe ser como máximo " + e.Param()
	}
	return "valor inválido"
}

// parseBody decodifica el JSON del cuerpo y valida los tags.
func parseBody(c *fiber.Ctx, v *validator.Validate, out any) error {
	if err := c.BodyParser(out); err != nil {
		return errInvalidBody
	}
	return validateStruct(v, out)
}

// parseQuery decodifica los parámetros de consulta y valida los tags.
func parseQuery(c *fiber.Ctx, v *validator.Validate, out any) error {
	if err := c.QueryParser(out); err != nil {
		return domain.Invalid("query", "parámetros inválidos")
	}
	return validateStruct(v, out)
}
