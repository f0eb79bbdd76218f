package tracker

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ayush/exercise-tracker/internal/errs"
)

// fields is a flattened request body. JSON numbers and bools are rendered
// as strings so form and JSON clients go through the same parsers.
type fields map[string]string

func (f fields) get(key string) string {
	return strings.TrimSpace(f[key])
}

// readFields accepts application/json, urlencoded and multipart bodies.
func readFields(r *http.Request) (fields, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		return readJSON(r)
	}

	var err error
	if ct == "multipart/form-data" {
		err = r.ParseMultipartForm(32 << 10)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return nil, bodyError(err)
	}
	out := make(fields, len(r.PostForm))
	for k, v := range r.PostForm {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out, nil
}

func readJSON(r *http.Request) (fields, error) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, bodyError(err)
	}
	out := make(fields, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
		case string:
			out[k] = val
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(val)
		default:
			return nil, errs.Validation(k, k+" must be a string or number")
		}
	}
	return out, nil
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return errs.TooLarge(err)
	}
	return errs.Validation("", "invalid request body")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateRequest runs struct tag validation and reports the first failing field.
func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errs.Validation("", "validation failed")
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return errs.Validation(fe.Field(), fe.Field()+" is required")
	default:
		return errs.Validation(fe.Field(), fe.Field()+" is invalid")
	}
}
