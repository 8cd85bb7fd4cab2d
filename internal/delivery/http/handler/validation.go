package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/thalesfercaetano/Pets-API/internal/domain"
)

// RegisterValidators adds the "decision" and "match_status" tags to gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}
	if err := v.RegisterValidation("decision", validateDecision); err != nil {
		return err
	}
	return v.RegisterValidation("match_status", validateMatchStatus)
}

func validateDecision(fl validator.FieldLevel) bool {
	return domain.Decision(fl.Field().String()).Valid()
}

func validateMatchStatus(fl validator.FieldLevel) bool {
	return domain.MatchStatus(fl.Field().String()).Valid()
}

// failedTag reports whether validation of err failed on the given tag.
func failedTag(err error, tag string) bool {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}
	for _, fe := range verrs {
		if fe.Tag() == tag {
			return true
		}
	}
	return false
}

// isTypeError reports whether binding failed on a malformed value rather
// than on a validation rule or an empty body.
func isTypeError(err error) bool {
	if errors.Is(err, io.EOF) {
		return false
	}
	var verrs validator.ValidationErrors
	return !errors.As(err, &verrs)
}
