// Package api routes Zendesk REST resources: it knows the collection paths,
// the JSON envelope each endpoint uses, and how to walk paginated listings.
// Transport is supplied by the caller through Doer.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Doer executes one API request. path is relative to the API root
// (e.g. "tickets.json") or an absolute pagination URL. body, when non-nil,
// is JSON-encoded. The raw response body is returned for status < 300.
type Doer interface {
	Do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error)
}

// Record is a single JSON object returned by the API.
type Record map[string]any

// ID returns the numeric "id" field, or 0 when absent.
func (r Record) ID() int64 {
	switch v := r["id"].(type) {
	case json.Number:
		n, _ := v.Int64()
		return n
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return 0
	}
}

// String returns a field formatted as a string; missing or null fields yield "".
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Resource describes one collection endpoint.
type Resource struct {
	Name     string // plural envelope key and operation name, e.g. "tickets"
	Singular string // envelope key for a single record, e.g. "ticket"
	Path     string // collection path relative to the API root, e.g. "tickets"
}

func newResource(name string) Resource {
	return Resource{Name: name, Singular: strings.TrimSuffix(name, "s"), Path: name}
}

// Resources lists the collections a client exposes as operations.
var Resources = map[string]Resource{}

func init() {
	for _, name := range []string{
		"tickets",
		"users",
		"organizations",
		"groups",
		"ticket_fields",
		"user_fields",
		"views",
		"macros",
		"triggers",
		"automations",
		"brands",
		"requests",
		"satisfaction_ratings",
		"ticket_metrics",
	} {
		Resources[name] = newResource(name)
	}
}

// ResourceNames returns the known collection names in sorted order.
func ResourceNames() []string {
	names := make([]string, 0, len(Resources))
	for name := range Resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func decodeRecords(raw string) ([]Record, error) {
	if raw == "" {
		return nil, nil
	}
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var out []Record
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeRecord(raw []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out Record
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
