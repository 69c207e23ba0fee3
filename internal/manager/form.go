package manager

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/odyssey-erp/odyssey-admin/internal/records"
	"github.com/odyssey-erp/odyssey-admin/internal/table"
)

// FieldView is a form input with its current value and error.
type FieldView struct {
	Field
	Value   string
	Values  []string
	Choices []Option
	Error   string
}

// Checked reports whether value is selected in a checklist.
func (v FieldView) Checked(value string) bool {
	for _, item := range v.Values {
		if item == value {
			return true
		}
	}
	return false
}

// Lines joins list values for a textarea.
func (v FieldView) Lines() string {
	return strings.Join(v.Values, "\n")
}

// FormPage feeds pages/record_form.html.
type FormPage struct {
	Heading     string
	Description string
	Action      string
	Cancel      string
	Submit      string
	Fields      []FieldView
	Error       string
}

// parseFields converts posted text into typed record fields. Every declared
// field is present in the result so a full form post replaces all values.
func parseFields(r *http.Request, fields []Field) (map[string]any, map[string]string) {
	out := make(map[string]any, len(fields))
	errs := make(map[string]string)
	for _, f := range fields {
		raw := strings.TrimSpace(r.PostFormValue(f.Name))
		switch f.Type {
		case FieldNumber:
			if raw == "" {
				out[f.Name] = 0.0
				continue
			}
			n, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				errs[f.Name] = "must be a number"
				continue
			}
			out[f.Name] = n
		case FieldChecklist:
			out[f.Name] = nonEmpty(r.PostForm[f.Name])
		case FieldLines:
			out[f.Name] = nonEmpty(strings.Split(r.PostFormValue(f.Name), "\n"))
		default:
			out[f.Name] = raw
		}
	}
	return out, errs
}

func nonEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// recordViews fills the form from a stored record, or leaves it blank when rec is nil.
func recordViews[T records.Record](ctx context.Context, fields []Field, rec *T) []FieldView {
	views := make([]FieldView, 0, len(fields))
	for _, f := range fields {
		v := FieldView{Field: f, Choices: f.Choices(ctx)}
		if rec != nil {
			value := (*rec).Field(f.Name)
			switch f.Type {
			case FieldChecklist, FieldLines:
				v.Values, _ = value.([]string)
			default:
				v.Value = table.Stringify(value)
			}
		}
		views = append(views, v)
	}
	return views
}

// postedViews echoes a rejected post back into the form with its errors.
func postedViews(r *http.Request, fields []Field, errs map[string]string) []FieldView {
	views := make([]FieldView, 0, len(fields))
	for _, f := range fields {
		v := FieldView{Field: f, Choices: f.Choices(r.Context()), Error: errs[f.Name]}
		switch f.Type {
		case FieldChecklist:
			v.Values = nonEmpty(r.PostForm[f.Name])
		case FieldLines:
			v.Values = nonEmpty(strings.Split(r.PostFormValue(f.Name), "\n"))
		default:
			v.Value = r.PostFormValue(f.Name)
		}
		views = append(views, v)
	}
	return views
}
