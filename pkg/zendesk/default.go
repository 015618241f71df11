package zendesk

import (
	"context"

	"go.uber.org/zap"

	"github.com/jmerrifield20/zendesk/pkg/api"
	"github.com/jmerrifield20/zendesk/pkg/client"
	"github.com/jmerrifield20/zendesk/pkg/config"
)

var std = New(config.Global())

// Default returns the process-wide namespace used by the package-level functions.
func Default() *Namespace[*client.Client] { return std }

// NewClient builds an independent client from opts layered over the
// process-wide options.
func NewClient(opts config.Options) (*client.Client, error) { return std.Client(opts) }

// Invoke forwards name to the process-wide default client.
func Invoke(ctx context.Context, name string, args ...any) (any, error) {
	return std.Invoke(ctx, name, args...)
}

// Supports reports whether Invoke would accept name.
func Supports(name string, includeNonPublic bool) (bool, error) {
	return std.Supports(name, includeNonPublic)
}

// Configure merges opts into the process-wide options.
func Configure(opts config.Options) { std.Configure(opts) }

// Options returns a snapshot of the process-wide options.
func Options() config.Options { return std.Options() }

// Reset drops the process-wide default client.
func Reset() { std.Reset() }

// SetLogger replaces the process-wide namespace logger.
func SetLogger(l *zap.Logger) { std.SetLogger(l) }

func Tickets() (*api.Collection, error)       { return std.Tickets() }
func Users() (*api.Collection, error)         { return std.Users() }
func Organizations() (*api.Collection, error) { return std.Organizations() }
func Groups() (*api.Collection, error)        { return std.Groups() }
func TicketFields() (*api.Collection, error)  { return std.TicketFields() }
func Views() (*api.Collection, error)         { return std.Views() }
func Macros() (*api.Collection, error)        { return std.Macros() }
func Brands() (*api.Collection, error)        { return std.Brands() }
func Requests() (*api.Collection, error)      { return std.Requests() }

func CurrentUser(ctx context.Context) (api.Record, error) { return std.CurrentUser(ctx) }

func Search(ctx context.Context, query string) ([]api.Record, error) {
	return std.Search(ctx, query)
}

func SearchEach(ctx context.Context, query string, fn func(api.Record) error) error {
	return std.SearchEach(ctx, query, fn)
}
