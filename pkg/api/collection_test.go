package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmerrifield20/zendesk/pkg/api"
)

type call struct {
	method string
	path   string
	query  url.Values
	body   any
}

// fakeDoer replays canned bodies keyed by "METHOD path".
type fakeDoer struct {
	responses map[string]string
	calls     []call
}

func (f *fakeDoer) Do(_ context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	f.calls = append(f.calls, call{method: method, path: path, query: query, body: body})
	resp, ok := f.responses[method+" "+path]
	if !ok {
		return nil, errors.New("unexpected request " + method + " " + path)
	}
	return []byte(resp), nil
}

func TestCollection_EachFollowsNextPage(t *testing.T) {
	doer := &fakeDoer{responses: map[string]string{
		"GET tickets.json": `{"tickets":[{"id":1},{"id":2}],"next_page":"https://acme.zendesk.com/api/v2/tickets.json?page=2","count":3}`,
		"GET https://acme.zendesk.com/api/v2/tickets.json?page=2": `{"tickets":[{"id":3}],"next_page":null,"count":3}`,
	}}

	c := api.NewCollection(doer, api.Resources["tickets"]).PerPage(2)

	var ids []int64
	err := c.Each(context.Background(), func(r api.Record) error {
		ids = append(ids, r.ID())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids)
	assert.Equal(t, int64(3), c.Count())

	require.Len(t, doer.calls, 2)
	assert.Equal(t, "2", doer.calls[0].query.Get("per_page"))
	assert.Nil(t, doer.calls[1].query, "pagination URLs carry their own query")
}

func TestCollection_EachStopsOnCallbackError(t *testing.T) {
	doer := &fakeDoer{responses: map[string]string{
		"GET users.json": `{"users":[{"id":1},{"id":2}],"next_page":"https://x/users.json?page=2"}`,
	}}
	stop := errors.New("stop")

	seen := 0
	err := api.NewCollection(doer, api.Resources["users"]).Each(context.Background(), func(api.Record) error {
		seen++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, seen)
	assert.Len(t, doer.calls, 1)
}

func TestCollection_NextAfterLastPage(t *testing.T) {
	doer := &fakeDoer{responses: map[string]string{
		"GET groups.json": `{"groups":[{"id":7,"name":"Support"}],"next_page":null}`,
	}}
	c := api.NewCollection(doer, api.Resources["groups"])

	records, err := c.Next(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Support", records[0].String("name"))

	_, err = c.Next(context.Background())
	assert.ErrorIs(t, err, api.ErrNoMorePages)
}

func TestCollection_BuildersDoNotMutate(t *testing.T) {
	base := api.NewCollection(&fakeDoer{}, api.Resources["tickets"])
	sorted := base.Where("sort_by", "created_at").Page(3)

	assert.Empty(t, base.Params())
	assert.Equal(t, "created_at", sorted.Params().Get("sort_by"))
	assert.Equal(t, "3", sorted.Params().Get("page"))
}

func TestCollection_CRUD(t *testing.T) {
	doer := &fakeDoer{responses: map[string]string{
		"GET tickets/42.json":    `{"ticket":{"id":42,"subject":"Printer on fire"}}`,
		"POST tickets.json":      `{"ticket":{"id":43,"subject":"New"}}`,
		"PUT tickets/43.json":    `{"ticket":{"id":43,"subject":"Renamed"}}`,
		"DELETE tickets/43.json": ``,
	}}
	ctx := context.Background()
	c := api.NewCollection(doer, api.Resources["tickets"])

	found, err := c.Find(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), found.ID())
	assert.Equal(t, "Printer on fire", found.String("subject"))

	created, err := c.Create(ctx, api.Record{"subject": "New"})
	require.NoError(t, err)
	assert.Equal(t, int64(43), created.ID())
	assert.Equal(t, map[string]any{"ticket": api.Record{"subject": "New"}}, doer.calls[1].body)

	updated, err := c.Update(ctx, 43, api.Record{"subject": "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.String("subject"))
	assert.Equal(t, http.MethodPut, doer.calls[2].method)

	require.NoError(t, c.Destroy(ctx, 43))
	assert.Equal(t, http.MethodDelete, doer.calls[3].method)
}

func TestCollection_MissingEnvelope(t *testing.T) {
	doer := &fakeDoer{responses: map[string]string{
		"GET users/1.json": `{"error":"RecordNotFound"}`,
	}}
	_, err := api.NewCollection(doer, api.Resources["users"]).Find(context.Background(), 1)
	assert.Error(t, err)
}

func TestSearch(t *testing.T) {
	doer := &fakeDoer{responses: map[string]string{
		"GET search.json": `{"results":[{"id":5,"result_type":"ticket"}],"count":1}`,
	}}

	records, err := api.Search(doer, "type:ticket status:open").All(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ticket", records[0].String("result_type"))
	assert.Equal(t, "type:ticket status:open", doer.calls[0].query.Get("query"))
}

func TestRecord_ID(t *testing.T) {
	assert.Equal(t, int64(9), api.Record{"id": json.Number("9")}.ID())
	assert.Equal(t, int64(9), api.Record{"id": float64(9)}.ID())
	assert.Equal(t, int64(0), api.Record{}.ID())
	assert.Equal(t, "", api.Record{"name": nil}.String("name"))
	assert.Equal(t, "12", api.Record{"n": json.Number("12")}.String("n"))
}

func TestResourceNames(t *testing.T) {
	names := api.ResourceNames()
	assert.Contains(t, names, "tickets")
	assert.Contains(t, names, "ticket_fields")
	assert.Equal(t, "ticket_field", api.Resources["ticket_fields"].Singular)
	assert.IsIncreasing(t, names)
}
