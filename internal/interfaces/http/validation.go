package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/flota-api/internal/domain"
)

var errInvalidBody = errors.New("cuerpo inválido")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Los errores reportan el nombre JSON del campo (lines[0].item_id).
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bindBody parsea el body y aplica las etiquetas validate del DTO.
// Solo se reporta el primer campo inválido.
func bindBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return errInvalidBody
	}
	if err := validate.Struct(out); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			fe := ve[0]
			return domain.NewValidationError(fieldPath(fe.Namespace()), validationMessage(fe.Tag()))
		}
		return err
	}
	return nil
}

// fieldPath quita el nombre del struct raíz: "ConsumeRequest.lines[0].item_id" -> "lines[0].item_id".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func validationMessage(tag string) string {
	switch tag {
	case "required":
		return "requerido"
	case "min":
		return "debe tener al menos un elemento"
	default:
		return "inválido (" + tag + ")"
	}
}
