package client

import (
	"context"
	"errors"
	"net/http"

	"github.com/jmerrifield20/zendesk/pkg/api"
	"github.com/jmerrifield20/zendesk/pkg/config"
	"github.com/jmerrifield20/zendesk/pkg/dispatch"
)

// Receiver names the client in undefined-operation errors.
const Receiver = "zendesk client"

// operations builds the dynamic operation table. Every resource collection
// is a public operation. connection and config are non-public: they show up in
// Supports(name, true) and Operations(true) but Call refuses them, so code
// holding a *Client uses Connection() and Config() instead.
func (c *Client) operations() *dispatch.Table {
	t := dispatch.NewTable(Receiver)

	for _, name := range api.ResourceNames() {
		res := api.Resources[name]
		t.Register(name, dispatch.Public, func(ctx context.Context, args ...any) (any, error) {
			return c.collectionCall(ctx, api.NewCollection(c, res), args)
		})
	}

	t.Register("current_user", dispatch.Public, func(ctx context.Context, _ ...any) (any, error) {
		return c.CurrentUser(ctx)
	})

	t.Register("search", dispatch.Public, func(ctx context.Context, args ...any) (any, error) {
		fn, rest, hasFn := dispatch.Trailing[func(api.Record) error](args)
		query, ok, err := dispatch.Arg[string](rest, 0)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.New("search: query argument is required")
		}
		coll := c.Search(query)
		if hasFn {
			return nil, coll.Each(ctx, fn)
		}
		return coll.All(ctx)
	})

	t.Register("connection", dispatch.NonPublic, func(context.Context, ...any) (any, error) {
		return c.Connection(), nil
	})
	t.Register("config", dispatch.NonPublic, func(context.Context, ...any) (any, error) {
		return c.Config(), nil
	})

	return t
}

// collectionCall applies optional query parameters (a map[string]string first
// argument) and, when a trailing func(api.Record) error is given, iterates
// every page through it instead of returning the collection.
func (c *Client) collectionCall(ctx context.Context, coll *api.Collection, args []any) (any, error) {
	fn, rest, hasFn := dispatch.Trailing[func(api.Record) error](args)
	params, _, err := dispatch.Arg[map[string]string](rest, 0)
	if err != nil {
		return nil, err
	}
	for k, v := range params {
		coll = coll.Where(k, v)
	}
	if hasFn {
		return nil, coll.Each(ctx, fn)
	}
	return coll, nil
}

// Call invokes a public operation by name, e.g. Call(ctx, "tickets") or
// Call(ctx, "search", "status:open", func(r api.Record) error { ... }).
// Unknown names fail with *dispatch.UndefinedOperationError.
func (c *Client) Call(ctx context.Context, name string, args ...any) (any, error) {
	return c.ops.Call(ctx, name, args...)
}

// Supports reports whether Call would accept name. Non-public operations
// (connection, config) count only when includeNonPublic is set.
func (c *Client) Supports(name string, includeNonPublic bool) bool {
	return c.ops.Supports(name, includeNonPublic)
}

// Operations lists the operation names in sorted order.
func (c *Client) Operations(includeNonPublic bool) []string {
	return c.ops.Names(includeNonPublic)
}

// Collection returns the named resource collection.
func (c *Client) Collection(name string) (*api.Collection, error) {
	res, ok := api.Resources[dispatch.Normalize(name)]
	if !ok {
		return nil, c.ops.Undefined(name)
	}
	return api.NewCollection(c, res), nil
}

func (c *Client) collection(name string) *api.Collection {
	return api.NewCollection(c, api.Resources[name])
}

func (c *Client) Tickets() *api.Collection             { return c.collection("tickets") }
func (c *Client) Users() *api.Collection               { return c.collection("users") }
func (c *Client) Organizations() *api.Collection       { return c.collection("organizations") }
func (c *Client) Groups() *api.Collection              { return c.collection("groups") }
func (c *Client) TicketFields() *api.Collection        { return c.collection("ticket_fields") }
func (c *Client) UserFields() *api.Collection          { return c.collection("user_fields") }
func (c *Client) Views() *api.Collection               { return c.collection("views") }
func (c *Client) Macros() *api.Collection              { return c.collection("macros") }
func (c *Client) Triggers() *api.Collection            { return c.collection("triggers") }
func (c *Client) Automations() *api.Collection         { return c.collection("automations") }
func (c *Client) Brands() *api.Collection              { return c.collection("brands") }
func (c *Client) Requests() *api.Collection            { return c.collection("requests") }
func (c *Client) SatisfactionRatings() *api.Collection { return c.collection("satisfaction_ratings") }
func (c *Client) TicketMetrics() *api.Collection       { return c.collection("ticket_metrics") }

// CurrentUser fetches the authenticated user (GET /users/me.json).
func (c *Client) CurrentUser(ctx context.Context) (api.Record, error) {
	return c.Users().Show(ctx, "me")
}

// Search returns a collection over the results of a search query.
func (c *Client) Search(query string) *api.Collection {
	return api.Search(c, query)
}

// Connection returns the underlying HTTP client.
func (c *Client) Connection() *http.Client { return c.httpClient }

// Config returns the client configuration with secrets redacted.
func (c *Client) Config() config.Config { return c.cfg.Redacted() }
