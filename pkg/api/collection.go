package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"
)

// ErrNoMorePages is returned by Next once the last page has been read.
var ErrNoMorePages = errors.New("no more pages")

// Collection is a lazily fetched, paginated listing of one resource.
// Query builders return copies; the fetch cursor is not safe for concurrent use.
type Collection struct {
	doer     Doer
	resource Resource
	params   url.Values

	fetched  bool
	nextPage string
	count    int64
}

// NewCollection returns an unfetched collection.
func NewCollection(doer Doer, resource Resource) *Collection {
	return &Collection{doer: doer, resource: resource, params: url.Values{}}
}

// Resource returns the routed resource.
func (c *Collection) Resource() Resource { return c.resource }

func (c *Collection) with(key, value string) *Collection {
	params := url.Values{}
	for k, v := range c.params {
		params[k] = append([]string(nil), v...)
	}
	params.Set(key, value)
	return &Collection{doer: c.doer, resource: c.resource, params: params}
}

// Where adds a query parameter, e.g. Where("sort_by", "created_at").
func (c *Collection) Where(key, value string) *Collection { return c.with(key, value) }

// PerPage sets the page size.
func (c *Collection) PerPage(n int) *Collection { return c.with("per_page", strconv.Itoa(n)) }

// Page selects a page number.
func (c *Collection) Page(n int) *Collection { return c.with("page", strconv.Itoa(n)) }

// Params returns a copy of the query parameters.
func (c *Collection) Params() url.Values {
	out := url.Values{}
	for k, v := range c.params {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Count returns the total reported by the last fetched page.
func (c *Collection) Count() int64 { return c.count }

// Fetch reads the first page.
func (c *Collection) Fetch(ctx context.Context) ([]Record, error) {
	return c.fetch(ctx, c.resource.Path+".json", c.params)
}

// Next reads the page after the last one fetched, fetching the first page
// if nothing has been read yet.
func (c *Collection) Next(ctx context.Context) ([]Record, error) {
	if !c.fetched {
		return c.Fetch(ctx)
	}
	if c.nextPage == "" {
		return nil, ErrNoMorePages
	}
	return c.fetch(ctx, c.nextPage, nil)
}

// Each calls fn for every record across all pages. It stops at the first error
// from fn or from the API and returns it.
func (c *Collection) Each(ctx context.Context, fn func(Record) error) error {
	records, err := c.Fetch(ctx)
	for {
		if err != nil {
			if errors.Is(err, ErrNoMorePages) {
				return nil
			}
			return err
		}
		for _, r := range records {
			if err := fn(r); err != nil {
				return err
			}
		}
		records, err = c.Next(ctx)
	}
}

// All collects every record across all pages.
func (c *Collection) All(ctx context.Context) ([]Record, error) {
	var out []Record
	err := c.Each(ctx, func(r Record) error {
		out = append(out, r)
		return nil
	})
	return out, err
}

func (c *Collection) fetch(ctx context.Context, path string, query url.Values) ([]Record, error) {
	body, err := c.doer.Do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	records, err := decodeRecords(gjson.GetBytes(body, c.resource.Name).Raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s page: %w", c.resource.Name, err)
	}
	c.fetched = true
	c.nextPage = gjson.GetBytes(body, "next_page").String()
	c.count = gjson.GetBytes(body, "count").Int()
	return records, nil
}

// Find fetches one record by id.
func (c *Collection) Find(ctx context.Context, id int64) (Record, error) {
	return c.Show(ctx, strconv.FormatInt(id, 10))
}

// Show fetches one record by path key, which may be an id or an alias such as
// "me" for users.
func (c *Collection) Show(ctx context.Context, key string) (Record, error) {
	body, err := c.doer.Do(ctx, http.MethodGet, c.resource.Path+"/"+key+".json", nil, nil)
	if err != nil {
		return nil, err
	}
	return c.unwrap(body)
}

// Create posts attrs wrapped in the resource envelope and returns the created record.
func (c *Collection) Create(ctx context.Context, attrs Record) (Record, error) {
	body, err := c.doer.Do(ctx, http.MethodPost, c.resource.Path+".json", nil, map[string]any{c.resource.Singular: attrs})
	if err != nil {
		return nil, err
	}
	return c.unwrap(body)
}

// Update puts attrs to the record with the given id.
func (c *Collection) Update(ctx context.Context, id int64, attrs Record) (Record, error) {
	body, err := c.doer.Do(ctx, http.MethodPut, c.memberPath(id), nil, map[string]any{c.resource.Singular: attrs})
	if err != nil {
		return nil, err
	}
	return c.unwrap(body)
}

// Destroy deletes the record with the given id.
func (c *Collection) Destroy(ctx context.Context, id int64) error {
	_, err := c.doer.Do(ctx, http.MethodDelete, c.memberPath(id), nil, nil)
	return err
}

func (c *Collection) memberPath(id int64) string {
	return fmt.Sprintf("%s/%d.json", c.resource.Path, id)
}

func (c *Collection) unwrap(body []byte) (Record, error) {
	res := gjson.GetBytes(body, c.resource.Singular)
	if !res.Exists() {
		return nil, fmt.Errorf("response has no %q envelope", c.resource.Singular)
	}
	rec, err := decodeRecord([]byte(res.Raw))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.resource.Singular, err)
	}
	return rec, nil
}
