// Package bind fills query structs from the URL and validates them with
// go-playground/validator, translating failures to English messages that name
// the query parameter
package bind

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	perr "linkharvest/internal/platform/errors"
	"linkharvest/internal/platform/logger"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entrans "github.com/go-playground/validator/v10/translations/en"
)

type FieldLevel = validator.FieldLevel

type checker struct {
	v  *validator.Validate
	tr ut.Translator
}

var shared = sync.OnceValue(func() *checker {
	loc := en.New()
	tr, _ := ut.New(loc, loc).GetTranslator("en")

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(sf reflect.StructField) string {
		if name := queryName(sf); name != "" {
			return name
		}
		return sf.Name
	})
	_ = entrans.RegisterDefaultTranslations(v, tr)

	c := &checker{v: v, tr: tr}
	c.message("min", "{0} must be at least {1}")
	c.message("max", "{0} must be at most {1}")
	return c
})

// message overrides the translation for tag; {0} is the parameter, {1} the tag param
func (c *checker) message(tag, text string) {
	_ = c.v.RegisterTranslation(tag, c.tr,
		func(tr ut.Translator) error { return tr.Add(tag, text, true) },
		func(tr ut.Translator, fe validator.FieldError) string {
			s, _ := tr.T(tag, fe.Field(), fe.Param())
			return s
		},
	)
}

// RegisterValidation adds a custom tag; msg may use {0} for the parameter name
func RegisterValidation(tag, msg string, fn validator.Func) error {
	c := shared()
	if err := c.v.RegisterValidation(tag, fn); err != nil {
		return err
	}
	if msg != "" {
		c.message(tag, msg)
	}
	return nil
}

// Query fills T from r's query string. Fields opt in with `query:"name"`; an
// absent or empty parameter takes the `default` tag when there is one. String,
// bool and integer kinds are supported. Failures are Validation errors carrying
// the parameter as their field. Fields promoted from embedded structs bind too
func Query[T any](r *http.Request) (T, error) {
	var dst T
	rv := reflect.ValueOf(&dst).Elem()
	if rv.Kind() != reflect.Struct {
		return dst, perr.Internalf("bind: %T is not a struct", dst)
	}

	values := r.URL.Query()
	for _, sf := range reflect.VisibleFields(rv.Type()) {
		name := queryName(sf)
		if name == "" || !sf.IsExported() || sf.Anonymous {
			continue
		}
		fv, err := rv.FieldByIndexErr(sf.Index)
		if err != nil {
			continue
		}
		raw := values.Get(name)
		if raw == "" {
			def, ok := sf.Tag.Lookup("default")
			if !ok {
				continue
			}
			raw = def
		}
		if err := assign(fv, raw); err != nil {
			return dst, invalid(name, name+": "+err.Error())
		}
	}

	c := shared()
	err := c.v.Struct(dst)
	var inv *validator.InvalidValidationError
	var fails validator.ValidationErrors
	switch {
	case err == nil:
		return dst, nil
	case errors.As(err, &inv):
		logger.Get().Error().Err(inv).Msg("validator internal error")
		return dst, perr.Internalf("validation error")
	case errors.As(err, &fails) && len(fails) > 0:
		return dst, invalid(fails[0].Field(), fails[0].Translate(c.tr))
	}
	return dst, invalid("", err.Error())
}

func invalid(field, msg string) error {
	return perr.WithField(perr.New(perr.ErrorCodeValidation, msg), field)
}

func queryName(sf reflect.StructField) string {
	name, _, _ := strings.Cut(sf.Tag.Get("query"), ",")
	if name == "-" {
		return ""
	}
	return name
}

func assign(f reflect.Value, raw string) error {
	switch f.Kind() {
	case reflect.String:
		f.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return errors.New("must be a boolean")
		}
		f.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, f.Type().Bits())
		if err != nil {
			return errors.New("must be an integer")
		}
		f.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, f.Type().Bits())
		if err != nil {
			return errors.New("must be a non-negative integer")
		}
		f.SetUint(n)
	default:
		return fmt.Errorf("unsupported parameter type %s", f.Type())
	}
	return nil
}
