// Package zendesk is the entry point of the Zendesk Go SDK.
//
// There are two ways to use it.
//
// # Explicit clients
//
// NewClient builds a fresh client every time. Options passed here are layered
// over whatever was set with Configure:
//
//	c, err := zendesk.NewClient(config.Options{"subdomain": "acme"})
//	tickets, err := c.Tickets().Fetch(ctx)
//
// # Calling the namespace directly
//
// Configure once at startup, then call API operations on the package itself.
// The first call builds a default client from the configured options and
// every later call reuses it:
//
//	zendesk.Configure(config.Options{
//	    "subdomain": "acme",
//	    "username":  "agent@acme.com",
//	    "token":     os.Getenv("ZENDESK_TOKEN"),
//	})
//
//	me, err := zendesk.CurrentUser(ctx)
//	views, err := zendesk.Views()
//
// Operations can also be reached by name. Supports answers exactly when
// Invoke would succeed:
//
//	ok, err := zendesk.Supports("ticket_fields", false)
//	v, err := zendesk.Invoke(ctx, "ticket_fields")
//
// Names that neither the namespace nor the client define fail with a
// *dispatch.UndefinedOperationError whose receiver is "zendesk".
//
// # Tests
//
// Reset drops the cached default client. NewWithFactory builds a private
// namespace over any Backend, which keeps tests away from process-wide state.
package zendesk
