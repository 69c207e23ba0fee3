// Package records keeps one typed collection per storage slot. The whole collection is
// loaded once, served from memory, and written back in full after every mutation.
package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-admin/internal/observability"
	"github.com/odyssey-erp/odyssey-admin/internal/storage"
)

// DateLayout is the calendar date format used for createdAt.
const DateLayout = "2006-01-02"

var (
	// ErrDuplicate is returned when a new record would reuse an existing id.
	ErrDuplicate = errors.New("records: duplicate id")
	// ErrProtected is returned when a record refuses deletion.
	ErrProtected = errors.New("records: record is protected")
	// ErrValidation wraps field level validation failures.
	ErrValidation = errors.New("records: validation failed")
)

// Record is an entity stored in a collection.
type Record interface {
	RecordID() string
	Field(key string) any
}

// ValidationError lists offending fields by their JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("records: %d invalid field(s)", len(e.Fields))
}

// Is matches ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Config describes one collection.
type Config[T Record] struct {
	// Kind labels logs and metrics, e.g. "tickets".
	Kind string
	// Key is the storage slot, e.g. "adminDashboardTickets".
	Key  string
	Seed []T
	// NewID assigns identifiers on create. Defaults to a random UUID.
	NewID func(T) string
	Now   func() time.Time
	// Derive recomputes dependent fields. changed holds the caller supplied fields.
	Derive func(rec T, changed map[string]any, creating bool) T
	// Protect vetoes deletion.
	Protect   func(T) error
	Validator *validator.Validate
	Logger    *slog.Logger
	Metrics   *observability.Metrics
}

// Store is a generic record collection.
type Store[T Record] struct {
	cfg     Config[T]
	storage storage.Storage
	mu      sync.RWMutex
	items   []T
}

// Open loads the collection from its slot, seeding it when the slot is absent or unreadable.
func Open[T Record](ctx context.Context, s storage.Storage, cfg Config[T]) (*Store[T], error) {
	if cfg.Key == "" {
		return nil, errors.New("records: storage key required")
	}
	if cfg.Kind == "" {
		cfg.Kind = cfg.Key
	}
	if cfg.NewID == nil {
		cfg.NewID = func(T) string { return uuid.NewString() }
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Validator == nil {
		cfg.Validator = NewValidator()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	st := &Store[T]{cfg: cfg, storage: s}
	if err := st.load(ctx); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Store[T]) load(ctx context.Context) error {
	raw, err := s.storage.Get(ctx, s.cfg.Key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return s.seed(ctx)
	case err != nil:
		return fmt.Errorf("records: load %s: %w", s.cfg.Kind, err)
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		s.cfg.Logger.Warn("records slot unreadable, reseeding",
			slog.String("kind", s.cfg.Kind),
			slog.String("key", s.cfg.Key),
			slog.Any("error", err))
		if err := s.storage.Set(ctx, s.cfg.Key+".corrupt", raw); err != nil {
			s.cfg.Logger.Warn("records keep corrupt slot", slog.String("kind", s.cfg.Kind), slog.Any("error", err))
		}
		return s.seed(ctx)
	}
	s.items = items
	return nil
}

func (s *Store[T]) seed(ctx context.Context) error {
	items := slices.Clone(s.cfg.Seed)
	if err := s.persist(ctx, items); err != nil {
		return fmt.Errorf("records: seed %s: %w", s.cfg.Kind, err)
	}
	s.items = items
	return nil
}

func (s *Store[T]) persist(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return s.storage.Set(ctx, s.cfg.Key, data)
}

// Kind returns the collection label.
func (s *Store[T]) Kind() string { return s.cfg.Kind }

// Key returns the storage slot name.
func (s *Store[T]) Key() string { return s.cfg.Key }

// List returns the collection in insertion order.
func (s *Store[T]) List(context.Context) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// Len reports the collection size.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// GetByID finds a record by id.
func (s *Store[T]) GetByID(_ context.Context, id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.items[i], true
	}
	var zero T
	return zero, false
}

// Create builds a record from caller fields, assigning a fresh id and today's date.
// Caller supplied id and createdAt are ignored.
func (s *Store[T]) Create(ctx context.Context, fields map[string]any) (T, error) {
	rec, err := s.create(ctx, fields)
	s.cfg.Metrics.RecordMutation(s.cfg.Kind, "create", err)
	return rec, err
}

func (s *Store[T]) create(ctx context.Context, fields map[string]any) (T, error) {
	var zero T
	body := withoutIdentity(fields)

	draft, err := decode[T](body)
	if err != nil {
		return zero, err
	}
	body["id"] = s.cfg.NewID(draft)
	body["createdAt"] = s.cfg.Now().UTC().Format(DateLayout)
	rec, err := decode[T](body)
	if err != nil {
		return zero, err
	}
	if s.cfg.Derive != nil {
		rec = s.cfg.Derive(rec, fields, true)
	}
	if err := s.validate(rec); err != nil {
		return zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(rec.RecordID()) >= 0 {
		return zero, fmt.Errorf("%w: %s", ErrDuplicate, rec.RecordID())
	}
	next := append(slices.Clone(s.items), rec)
	if err := s.persist(ctx, next); err != nil {
		return zero, fmt.Errorf("records: create %s: %w", s.cfg.Kind, err)
	}
	s.items = next
	return rec, nil
}

// Insert stores a typed record through Create.
func (s *Store[T]) Insert(ctx context.Context, rec T) (T, error) {
	fields, err := encode(rec)
	if err != nil {
		var zero T
		return zero, err
	}
	return s.Create(ctx, fields)
}

// Update merges fields into the record with id. Unknown ids report false with no error.
func (s *Store[T]) Update(ctx context.Context, id string, fields map[string]any) (T, bool, error) {
	rec, found, err := s.update(ctx, id, fields)
	if found {
		s.cfg.Metrics.RecordMutation(s.cfg.Kind, "update", err)
	}
	return rec, found, err
}

func (s *Store[T]) update(ctx context.Context, id string, fields map[string]any) (T, bool, error) {
	var zero T
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return zero, false, nil
	}
	merged, err := encode(s.items[i])
	if err != nil {
		return zero, true, err
	}
	for k, v := range withoutIdentity(fields) {
		merged[k] = v
	}
	rec, err := decode[T](merged)
	if err != nil {
		return zero, true, err
	}
	if s.cfg.Derive != nil {
		rec = s.cfg.Derive(rec, fields, false)
	}
	if err := s.validate(rec); err != nil {
		return zero, true, err
	}

	next := slices.Clone(s.items)
	next[i] = rec
	if err := s.persist(ctx, next); err != nil {
		return zero, true, fmt.Errorf("records: update %s: %w", s.cfg.Kind, err)
	}
	s.items = next
	return rec, true, nil
}

// Delete removes the record with id. Unknown ids are ignored.
func (s *Store[T]) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil
	}
	if s.cfg.Protect != nil {
		if err := s.cfg.Protect(s.items[i]); err != nil {
			err = fmt.Errorf("%w: %w", ErrProtected, err)
			s.cfg.Metrics.RecordMutation(s.cfg.Kind, "delete", err)
			return err
		}
	}
	next := slices.Delete(slices.Clone(s.items), i, i+1)
	err := s.persist(ctx, next)
	s.cfg.Metrics.RecordMutation(s.cfg.Kind, "delete", err)
	if err != nil {
		return fmt.Errorf("records: delete %s: %w", s.cfg.Kind, err)
	}
	s.items = next
	return nil
}

// Replace overwrites the whole collection.
func (s *Store[T]) Replace(ctx context.Context, items []T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := slices.Clone(items)
	err := s.persist(ctx, next)
	s.cfg.Metrics.RecordMutation(s.cfg.Kind, "replace", err)
	if err != nil {
		return fmt.Errorf("records: replace %s: %w", s.cfg.Kind, err)
	}
	s.items = next
	return nil
}

// Reload rereads the slot, picking up writes from other processes.
func (s *Store[T]) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Store[T]) indexOf(id string) int {
	return slices.IndexFunc(s.items, func(rec T) bool { return rec.RecordID() == id })
}

func (s *Store[T]) validate(rec T) error {
	err := s.cfg.Validator.Struct(rec)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("records: validate %s: %w", s.cfg.Kind, err)
	}
	out := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		// "tags[2]" reports against "tags".
		name, _, _ := strings.Cut(fe.Field(), "[")
		if _, seen := out.Fields[name]; !seen {
			out.Fields[name] = describe(fe)
		}
	}
	return out
}

func withoutIdentity(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		if k == "id" || k == "createdAt" {
			continue
		}
		out[k] = v
	}
	return out
}

func encode[T any](rec T) (map[string]any, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any)
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func decode[T any](fields map[string]any) (T, error) {
	var rec T
	data, err := json.Marshal(fields)
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return rec, &ValidationError{Fields: map[string]string{typeErr.Field: "has the wrong type"}}
		}
		return rec, err
	}
	return rec, nil
}
