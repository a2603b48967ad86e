package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
)

// Validate checks cfg against its struct tags and logs one line per offending field.
func Validate(cfg Config) error {
	err := validator.New().Struct(cfg)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("config: validate: %w", err)
	}

	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msg := fmt.Sprintf("%s: %s", fe.Namespace(), fieldErrorMsg(fe))
		log.Error("invalid config", "field", fe.Namespace(), "reason", fieldErrorMsg(fe))
		msgs = append(msgs, msg)
	}
	return fmt.Errorf("config: invalid settings: %s", strings.Join(msgs, "; "))
}

func fieldErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must be set"
	case "min":
		return fmt.Sprintf("minimum value: %s", fe.Param())
	case "max":
		return fmt.Sprintf("maximum value: %s", fe.Param())
	}
	return fe.Error()
}
