package config

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// MinSessionSecretLength is the shortest accepted session signing secret
const MinSessionSecretLength = 32

// Validate checks field constraints and cross-field rules, reporting every
// violation in one error
func (c *Config) Validate() error {
	var problems []string

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !stderrors.As(err, &verrs) {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		for _, fe := range verrs {
			problems = append(problems, formatFieldError(fe))
		}
	}

	problems = append(problems, c.businessRules()...)
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
}

func (c *Config) businessRules() []string {
	var problems []string
	if c.Logging.Remote && c.Logging.RemoteEndpoint == "" {
		problems = append(problems, "LOG_REMOTE_ENDPOINT is required when LOG_REMOTE is enabled")
	}
	if c.API.MaxDelay < c.API.BaseDelay {
		problems = append(problems, fmt.Sprintf("API_MAX_DELAY_MS (%s) must not be below API_BASE_DELAY_MS (%s)", c.API.MaxDelay, c.API.BaseDelay))
	}
	if secret := c.Security.Session.Secret; secret != "" && len(secret) < MinSessionSecretLength {
		problems = append(problems, fmt.Sprintf("AUTH_SESSION_SECRET must be at least %d characters", MinSessionSecretLength))
	}
	return problems
}

func formatFieldError(e validator.FieldError) string {
	field := e.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %v", field, e.Param(), e.Value())
	case "url":
		return fmt.Sprintf("%s must be a valid URL, got %v", field, e.Value())
	case "ltefield":
		return fmt.Sprintf("%s must not exceed %s", field, e.Param())
	default:
		return fmt.Sprintf("%s failed %s=%s, got %v", field, e.Tag(), e.Param(), e.Value())
	}
}
