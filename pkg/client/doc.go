// Package client is the Zendesk REST API client used behind the zendesk
// namespace.
//
// A Client is built from an options map (see config.Config for the keys) and
// talks to one Zendesk account:
//
//	c, err := client.New(config.Options{
//	    "subdomain": "acme",
//	    "username":  "agent@acme.com",
//	    "token":     os.Getenv("ZENDESK_TOKEN"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Resources
//
// Every resource collection has a typed accessor returning a lazily fetched
// *api.Collection:
//
//	open, err := c.Tickets().Where("status", "open").PerPage(50).Fetch(ctx)
//	me, err := c.CurrentUser(ctx)
//
// # Dynamic operations
//
// The same surface is reachable by name. Call and Supports always agree:
//
//	if c.Supports("ticket_fields", false) {
//	    v, err := c.Call(ctx, "ticket_fields")
//	}
//
// A trailing func(api.Record) error argument iterates every page instead of
// returning the collection:
//
//	_, err := c.Call(ctx, "search", "type:ticket status:open", func(r api.Record) error {
//	    fmt.Println(r.ID())
//	    return nil
//	})
//
// # Authentication
//
// "username" with "token" uses API-token basic auth ("<username>/token"),
// "username" with "password" uses plain basic auth, and "access_token" sends an
// OAuth Bearer token.
//
// # Retries and rate limiting
//
// With "retry" set, 429 and 503 responses and transport errors are retried with
// exponential backoff up to "max_retries" times, honoring Retry-After.
// "rate_limit" caps outgoing requests per second.
package client
