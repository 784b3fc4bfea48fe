package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"

	"trendboard/pkg/locale"
	"trendboard/pkg/logger"
)

// Violation describes one invalid request field.
type Violation struct {
	Field     string `json:"field,omitempty"`
	Violation string `json:"violation"`
	Message   string `json:"message"`
}

// ValidationError carries every violation found in a Request.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Message
	}
	return "invalid request: " + strings.Join(msgs, "; ")
}

type requestValidator struct {
	validate *validator.Validate
	trans    ut.Translator
}

func newRequestValidator(table *locale.Table) *requestValidator {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("query"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = validate.RegisterValidation("country", func(fl validator.FieldLevel) bool {
		return table.Contains(fl.Field().String())
	})

	english := en.New()
	trans, _ := ut.New(english, english).GetTranslator("en")
	log := logger.GetLogger().WithField("component", "validator")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		log.WithError(err).Warn("could not register default translations")
	}
	err := validate.RegisterTranslation("country", trans, func(ut ut.Translator) error {
		return ut.Add("country", "{0} must be one of the supported countries", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("country", fe.Field())
		return t
	})
	if err != nil {
		log.WithError(err).Warn("could not register translation for country")
	}

	return &requestValidator{validate: validate, trans: trans}
}

func (v *requestValidator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	out := &ValidationError{Violations: make([]Violation, 0, len(ve))}
	for _, fe := range ve {
		out.Violations = append(out.Violations, Violation{
			Field:     fe.Field(),
			Violation: fe.Tag(),
			Message:   fe.Translate(v.trans),
		})
	}
	return out
}
