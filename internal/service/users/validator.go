package users

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Domenick1991/officeseats/internal/domain"
	"github.com/go-playground/validator/v10"
)

const maxSquad = 10

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("batch", validateBatch)
	_ = v.RegisterValidation("squad", validateSquad)

	return v
}

func validateBatch(fl validator.FieldLevel) bool {
	return domain.Batch(fl.Field().String()).Valid()
}

// validateSquad accepts "Squad 1" through "Squad 10".
func validateSquad(fl validator.FieldLevel) bool {
	rest, ok := strings.CutPrefix(fl.Field().String(), "Squad ")
	if !ok {
		return false
	}
	n, err := strconv.Atoi(rest)
	return err == nil && n >= 1 && n <= maxSquad && strconv.Itoa(n) == rest
}

// ValidationMessages flattens validator errors into field -> message.
func ValidationMessages(err validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(err))
	for _, fe := range err {
		out[strings.ToLower(fe.Field())] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "batch":
		return fmt.Sprintf("must be %q or %q", domain.Batch1, domain.Batch2)
	case "squad":
		return fmt.Sprintf("must be one of Squad 1..Squad %d", maxSquad)
	default:
		return "is invalid"
	}
}
