package records

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/odyssey-admin/internal/rbac"
)

// NewValidator returns a validator that reports JSON field names and knows the
// custom tags used by entity structs: "date" (YYYY-MM-DD), "month" (YYYY-MM), "clock" (HH:mm)
// and "permission" (a catalog permission name).
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("date", layoutValidator(DateLayout))
	_ = v.RegisterValidation("month", layoutValidator("2006-01"))
	_ = v.RegisterValidation("clock", layoutValidator("15:04"))
	_ = v.RegisterValidation("permission", func(fl validator.FieldLevel) bool {
		return rbac.Permission(fl.Field().String()).Valid()
	})
	return v
}

func layoutValidator(layout string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}
		_, err := time.Parse(layout, value)
		return err == nil
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "date":
		return "must be a date (YYYY-MM-DD)"
	case "month":
		return "must be a month (YYYY-MM)"
	case "clock":
		return "must be a time (HH:mm)"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "gtefield":
		return "must not be before " + fe.Param()
	case "permission":
		return "contains an unknown permission"
	case "dive":
		return "contains an invalid entry"
	}
	return fmt.Sprintf("failed %q check", fe.Tag())
}
