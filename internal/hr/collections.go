package hr

import (
	"context"
	"log/slog"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/odyssey-admin/internal/observability"
	"github.com/odyssey-erp/odyssey-admin/internal/rbac"
	"github.com/odyssey-erp/odyssey-admin/internal/records"
	"github.com/odyssey-erp/odyssey-admin/internal/shared"
	"github.com/odyssey-erp/odyssey-admin/internal/storage"
)

// SystemRoleMessage is shown when deleting a built-in role.
const SystemRoleMessage = "Cannot delete system roles"

// Collections holds one store per kind.
type Collections struct {
	Users          *records.Store[User]
	Roles          *records.Store[Role]
	Contracts      *records.Store[Contract]
	EmailAccounts  *records.Store[EmailAccount]
	Payrolls       *records.Store[Payroll]
	Tickets        *records.Store[Ticket]
	ChangeRequests *records.Store[ChangeRequest]
	Attendance     *records.Store[Attendance]
	KPIs           *records.Store[KPI]
	OKRs           *records.Store[OKR]
	Assets         *records.Store[Asset]
}

// Options carries shared store dependencies.
type Options struct {
	Logger  *slog.Logger
	Metrics *observability.Metrics
	Policy  *rbac.Policy
	// Now overrides the clock used for createdAt.
	Now func() time.Time
}

// Open loads every collection, seeding empty slots.
func Open(ctx context.Context, s storage.Storage, opts Options) (*Collections, error) {
	if opts.Policy == nil {
		opts.Policy = rbac.DefaultPolicy()
	}
	validate := records.NewValidator()
	c := &Collections{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		c.Users, err = records.Open(ctx, s, config(opts, validate, "users", KeyUsers, SeedUsers()))
		return err
	})
	g.Go(func() (err error) {
		cfg := config(opts, validate, "roles", KeyRoles, SeedRoles(opts.Policy))
		cfg.NewID = func(r Role) string { return RoleSlug(r.Name) }
		cfg.Protect = protectSystemRole
		c.Roles, err = records.Open(ctx, s, cfg)
		return err
	})
	g.Go(func() (err error) {
		c.Contracts, err = records.Open(ctx, s, config(opts, validate, "contracts", KeyContracts, SeedContracts()))
		return err
	})
	g.Go(func() (err error) {
		c.EmailAccounts, err = records.Open(ctx, s, config(opts, validate, "emails", KeyEmailAccounts, SeedEmailAccounts()))
		return err
	})
	g.Go(func() (err error) {
		cfg := config(opts, validate, "payroll", KeyPayrolls, SeedPayrolls())
		cfg.Derive = deriveNetPay
		c.Payrolls, err = records.Open(ctx, s, cfg)
		return err
	})
	g.Go(func() (err error) {
		c.Tickets, err = records.Open(ctx, s, config(opts, validate, "tickets", KeyTickets, SeedTickets()))
		return err
	})
	g.Go(func() (err error) {
		c.ChangeRequests, err = records.Open(ctx, s, config(opts, validate, "changeRequests", KeyChangeRequests, SeedChangeRequests()))
		return err
	})
	g.Go(func() (err error) {
		c.Attendance, err = records.Open(ctx, s, config(opts, validate, "attendance", KeyAttendance, SeedAttendance()))
		return err
	})
	g.Go(func() (err error) {
		c.KPIs, err = records.Open(ctx, s, config(opts, validate, "kpi", KeyKPIs, SeedKPIs()))
		return err
	})
	g.Go(func() (err error) {
		c.OKRs, err = records.Open(ctx, s, config(opts, validate, "okr", KeyOKRs, SeedOKRs()))
		return err
	})
	g.Go(func() (err error) {
		c.Assets, err = records.Open(ctx, s, config(opts, validate, "assets", KeyAssets, SeedAssets()))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload rereads every collection from storage, e.g. after a restore.
func (c *Collections) Reload(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, r := range []interface{ Reload(context.Context) error }{
		c.Users, c.Roles, c.Contracts, c.EmailAccounts, c.Payrolls, c.Tickets,
		c.ChangeRequests, c.Attendance, c.KPIs, c.OKRs, c.Assets,
	} {
		g.Go(func() error { return r.Reload(ctx) })
	}
	return g.Wait()
}

func config[T records.Record](opts Options, v *validator.Validate, kind, key string, seed []T) records.Config[T] {
	return records.Config[T]{
		Kind:      kind,
		Key:       key,
		Seed:      seed,
		Now:       opts.Now,
		Validator: v,
		Logger:    opts.Logger,
		Metrics:   opts.Metrics,
	}
}

var whitespace = regexp.MustCompile(`\s+`)

// RoleSlug turns a role name into its id: lower case, whitespace runs become '-'.
func RoleSlug(name string) string {
	return whitespace.ReplaceAllString(strings.ToLower(name), "-")
}

func protectSystemRole(r Role) error {
	if rbac.IsSystemRole(r.ID) {
		return shared.Safe(SystemRoleMessage, nil)
	}
	return nil
}

// deriveNetPay keeps netPay = gross - deductions, rounded to cents. On update it
// only recomputes when gross pay or deductions were supplied.
func deriveNetPay(p Payroll, changed map[string]any, creating bool) Payroll {
	_, gross := changed["grossPay"]
	_, deductions := changed["deductions"]
	if creating || gross || deductions {
		p.NetPay = NetPay(p.GrossPay, p.Deductions)
	}
	return p
}

// NetPay rounds gross - deductions to two decimals.
func NetPay(gross, deductions float64) float64 {
	return math.Round((gross-deductions)*100) / 100
}
