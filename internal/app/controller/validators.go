package controller

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/thriftmap/thriftmap-backend/internal/app/model"
)

var registerOnce sync.Once

// RegisterValidators configures gin's binding engine: unknown JSON fields are
// rejected, field errors are reported by their JSON name and the "weekday"
// tag checks operating hours keys.
func RegisterValidators() {
	registerOnce.Do(func() {
		binding.EnableDecoderDisallowUnknownFields = true

		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(requestFieldName)
		if err := v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
			return model.IsWeekday(fl.Field().String())
		}); err != nil {
			panic("register weekday validator: " + err.Error())
		}
	})
}

func requestFieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return ""
}

// bindingFields turns validator failures into the same field map the
// service layer reports, e.g. "address.city": "is required".
func bindingFields(errs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		path := fe.Namespace()
		if _, rest, found := strings.Cut(path, "."); found {
			path = rest
		}
		if _, exists := fields[path]; !exists {
			fields[path] = describeFieldError(fe)
		}
	}
	return fields
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "url":
		return "must be a valid URL"
	case "email":
		return "must be a valid email address"
	case "weekday":
		return "keys must be monday through sunday"
	}
	return "is invalid"
}
