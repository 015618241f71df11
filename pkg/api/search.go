package api

import "net/url"

// SearchResource routes /search.json, whose listing envelope is "results".
var SearchResource = Resource{Name: "results", Singular: "result", Path: "search"}

// Search returns a collection over the results of a Zendesk search query,
// e.g. "type:ticket status:open".
func Search(doer Doer, query string) *Collection {
	c := NewCollection(doer, SearchResource)
	c.params = url.Values{"query": []string{query}}
	return c
}
