package manager

import (
	"fmt"
	"html/template"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/odyssey-erp/odyssey-admin/internal/records"
	"github.com/odyssey-erp/odyssey-admin/internal/table"
)

var titleCase = cases.Title(language.English)

// Humanize turns "on_process" into "On Process".
func Humanize(value string) string {
	return titleCase.String(strings.ReplaceAll(value, "_", " "))
}

// Badge renders the field as a status pill.
func Badge[T records.Record](key string) table.Renderer[T] {
	return table.RenderFunc[T](func(rec T) template.HTML {
		value := table.Stringify(rec.Field(key))
		if value == "" {
			return table.Placeholder
		}
		return template.HTML(fmt.Sprintf(`<span class="badge badge-%s">%s</span>`,
			template.HTMLEscapeString(strings.ReplaceAll(value, "_", "-")),
			template.HTMLEscapeString(Humanize(value))))
	})
}

// Percent renders a 0-100 number as a progress bar with its label.
func Percent[T records.Record](key string) table.Renderer[T] {
	return table.RenderFunc[T](func(rec T) template.HTML {
		value := table.Stringify(rec.Field(key))
		if value == "" {
			return table.Placeholder
		}
		return template.HTML(fmt.Sprintf(`<span class="progress"><span class="progress-bar" data-value="%[1]s"></span></span> %[1]s%%`,
			template.HTMLEscapeString(value)))
	})
}

// Money renders a number with two decimals.
func Money[T records.Record](key string) table.Renderer[T] {
	return table.RenderFunc[T](func(rec T) template.HTML {
		switch v := rec.Field(key).(type) {
		case float64:
			return template.HTML(fmt.Sprintf("%.2f", v))
		case nil:
			return table.Placeholder
		default:
			return template.HTML(template.HTMLEscapeString(table.Stringify(v)))
		}
	})
}

// Tags renders up to limit list entries as chips and counts the rest.
func Tags[T records.Record](key string, limit int) table.Renderer[T] {
	return table.RenderFunc[T](func(rec T) template.HTML {
		items, _ := rec.Field(key).([]string)
		if len(items) == 0 {
			return table.Placeholder
		}
		var b strings.Builder
		for i, item := range items {
			if limit > 0 && i == limit {
				fmt.Fprintf(&b, `<span class="chip chip-more">+%d more</span>`, len(items)-limit)
				break
			}
			fmt.Fprintf(&b, `<span class="chip">%s</span>`, template.HTMLEscapeString(item))
		}
		return template.HTML(b.String())
	})
}
