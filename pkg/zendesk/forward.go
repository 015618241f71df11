package zendesk

import (
	"context"
	"fmt"

	"github.com/jmerrifield20/zendesk/pkg/api"
)

// Typed forwarders. Each goes through Invoke, so it fails exactly when
// Supports reports the operation as missing.

func (n *Namespace[C]) collection(name string) (*api.Collection, error) {
	v, err := n.Invoke(context.Background(), name)
	if err != nil {
		return nil, err
	}
	coll, ok := v.(*api.Collection)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected result type %T", name, v)
	}
	return coll, nil
}

func (n *Namespace[C]) Tickets() (*api.Collection, error)       { return n.collection("tickets") }
func (n *Namespace[C]) Users() (*api.Collection, error)         { return n.collection("users") }
func (n *Namespace[C]) Organizations() (*api.Collection, error) { return n.collection("organizations") }
func (n *Namespace[C]) Groups() (*api.Collection, error)        { return n.collection("groups") }
func (n *Namespace[C]) TicketFields() (*api.Collection, error)  { return n.collection("ticket_fields") }
func (n *Namespace[C]) Views() (*api.Collection, error)         { return n.collection("views") }
func (n *Namespace[C]) Macros() (*api.Collection, error)        { return n.collection("macros") }
func (n *Namespace[C]) Brands() (*api.Collection, error)        { return n.collection("brands") }
func (n *Namespace[C]) Requests() (*api.Collection, error)      { return n.collection("requests") }

// CurrentUser forwards to the default client's current_user operation.
func (n *Namespace[C]) CurrentUser(ctx context.Context) (api.Record, error) {
	v, err := n.Invoke(ctx, "current_user")
	if err != nil {
		return nil, err
	}
	rec, ok := v.(api.Record)
	if !ok {
		return nil, fmt.Errorf("current_user: unexpected result type %T", v)
	}
	return rec, nil
}

// Search returns every result for query.
func (n *Namespace[C]) Search(ctx context.Context, query string) ([]api.Record, error) {
	v, err := n.Invoke(ctx, "search", query)
	if err != nil {
		return nil, err
	}
	records, ok := v.([]api.Record)
	if !ok {
		return nil, fmt.Errorf("search: unexpected result type %T", v)
	}
	return records, nil
}

// SearchEach streams every result for query through fn.
func (n *Namespace[C]) SearchEach(ctx context.Context, query string, fn func(api.Record) error) error {
	_, err := n.Invoke(ctx, "search", query, fn)
	return err
}
