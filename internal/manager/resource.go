// Package manager serves the list, create, edit and delete screens shared by
// every record kind. A Resource describes one kind; Handler turns it into routes.
package manager

import (
	"context"

	"github.com/odyssey-erp/odyssey-admin/internal/rbac"
	"github.com/odyssey-erp/odyssey-admin/internal/records"
	"github.com/odyssey-erp/odyssey-admin/internal/table"
)

// FieldType selects the form control and how posted text is converted.
type FieldType string

// Form controls.
const (
	FieldText     FieldType = "text"
	FieldEmail    FieldType = "email"
	FieldNumber   FieldType = "number"
	FieldDate     FieldType = "date"
	FieldMonth    FieldType = "month"
	FieldTime     FieldType = "time"
	FieldSelect   FieldType = "select"
	FieldTextarea FieldType = "textarea"
	// FieldChecklist posts zero or more values of Options.
	FieldChecklist FieldType = "checklist"
	// FieldLines is a textarea holding one list entry per line.
	FieldLines FieldType = "lines"
)

// Option is one choice of a select or checklist.
type Option struct {
	Value string
	Label string
}

// Field is one form input. Name is the record's JSON field.
type Field struct {
	Name        string
	Label       string
	Type        FieldType
	Required    bool
	Placeholder string
	// Step is the number input increment, e.g. "0.01".
	Step    string
	Options []Option
	// OptionsFrom loads choices at render time, e.g. roles for the user form.
	OptionsFrom func(ctx context.Context) []Option
	// Half lays the field out beside its neighbour.
	Half bool
}

// Choices resolves the options of f.
func (f Field) Choices(ctx context.Context) []Option {
	if f.OptionsFrom != nil {
		return f.OptionsFrom(ctx)
	}
	return f.Options
}

// Link is an extra per-row action such as a download.
type Link struct {
	Label string
	Href  string
}

// Resource describes how one record kind is listed and edited.
type Resource[T records.Record] struct {
	// Slug is the URL segment under /dashboard, e.g. "change-requests".
	Slug string
	// Entity is the permission prefix, e.g. "changeRequests".
	Entity      string
	Title       string
	Singular    string
	Description string

	SearchKey         string
	SearchPlaceholder string
	Columns           []table.Column[T]
	Fields            []Field
	Store             *records.Store[T]

	// Deletable hides and refuses delete for rows it rejects.
	Deletable func(T) bool
	// Links adds per-row actions visible to readers.
	Links func(T) []Link
}

// Permission is the entity permission for action.
func (r Resource[T]) Permission(action rbac.Action) rbac.Permission {
	return rbac.For(r.Entity, action)
}

// Path is the list URL.
func (r Resource[T]) Path() string {
	return "/dashboard/" + r.Slug
}

func (r Resource[T]) deletable(rec T) bool {
	return r.Deletable == nil || r.Deletable(rec)
}
