package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/nextedu/portal/internal/domain/academic"
)

// maxBodyBytes limits request bodies.
const maxBodyBytes = 1 << 20

const notBlankTag = "notblank"
const semesterKeyTag = "semester_key"

// requestValidator validates request DTOs and renders English messages
// keyed by JSON field name.
type requestValidator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func newRequestValidator() *requestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation(semesterKeyTag, func(fl validator.FieldLevel) bool {
		_, err := academic.ParseSemesterKey(fl.Field().String())
		return err == nil
	})

	noop := func(ut.Translator) error { return nil }
	_ = v.RegisterTranslation(notBlankTag, trans, noop, func(_ ut.Translator, fe validator.FieldError) string {
		return fe.Field() + " cannot be blank"
	})
	_ = v.RegisterTranslation(semesterKeyTag, trans, noop, func(_ ut.Translator, fe validator.FieldError) string {
		return fe.Field() + " must look like sem1..sem8"
	})

	return &requestValidator{validate: v, translator: trans}
}

// ValidationError carries per-field messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for f, msg := range e.Fields {
		parts = append(parts, f+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Struct validates dst and converts validator errors into a ValidationError.
func (v *requestValidator) Struct(dst any) error {
	err := v.validate.Struct(dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = fe.Translate(v.translator)
	}
	return &ValidationError{Fields: fields}
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// decodeAndValidate reads a JSON body into dst and validates it.
// It writes the error response itself and returns false on failure.
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		msg := "request body must be valid JSON"
		if errors.Is(err, io.EOF) {
			msg = "request body is empty"
		} else if strings.HasPrefix(err.Error(), "json: unknown field") {
			msg = err.Error()[len("json: "):]
		}
		writeJSONError(w, r, http.StatusBadRequest, "invalid_json", msg)
		return false
	}

	if err := s.validator.Struct(dst); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			writeEnvelope(w, r, http.StatusBadRequest, JSONResponse{Error: &APIError{
				Code:    "validation_error",
				Message: fmt.Sprintf("%d field(s) failed validation", len(verr.Fields)),
				Fields:  verr.Fields,
			}})
			return false
		}
		s.writeError(w, r, err)
		return false
	}
	return true
}
