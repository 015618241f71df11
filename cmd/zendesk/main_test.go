package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmerrifield20/zendesk/pkg/api"
	"github.com/jmerrifield20/zendesk/pkg/config"
	"github.com/jmerrifield20/zendesk/pkg/dispatch"
	"github.com/jmerrifield20/zendesk/pkg/zendesk"
)

// ── Stub server ─────────────────────────────────────────────────────────

func stubServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok || user != "agent@acme.com/token" || pass != "secret" {
				http.Error(w, `{"error":"Couldn't authenticate you"}`, http.StatusUnauthorized)
				return
			}
			next(w, r)
		}
	}

	mux.HandleFunc("/api/v2/tickets.json", authed(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"tickets": []map[string]any{
				{"id": 1, "subject": "Printer on fire", "status": "open", "per_page": r.URL.Query().Get("per_page")},
			},
			"next_page": nil,
			"count":     1,
		})
	}))
	mux.HandleFunc("/api/v2/search.json", authed(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"id": 9, "result_type": "ticket", "query": r.URL.Query().Get("query")},
			},
			"next_page": nil,
		})
	}))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// run executes the root command against srv and returns stdout.
func run(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cfgFile, outputFormat, verbose = "", "text", false
	callAll, supportsPrivate, operationsPrivate, listAll, listPerPage = false, false, false, false, 0

	config.Global().Reset()
	zendesk.Reset()
	t.Cleanup(func() {
		config.Global().Reset()
		zendesk.Reset()
	})

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append(args,
		"--url", srv.URL+"/api/v2",
		"--allow-http",
		"--username", "agent@acme.com",
		"--token", "secret",
	))
	err := rootCmd.Execute()
	return out.String(), err
}

// ── Commands ────────────────────────────────────────────────────────────

func TestList_json(t *testing.T) {
	srv := stubServer(t)

	out, err := run(t, srv, "list", "tickets", "--per-page", "5", "--format", "json")
	require.NoError(t, err)

	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "Printer on fire", records[0]["subject"])
	assert.Equal(t, "5", records[0]["per_page"])
}

func TestList_table(t *testing.T) {
	srv := stubServer(t)

	out, err := run(t, srv, "list", "tickets", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Printer on fire")
	assert.Contains(t, out, "open")
}

func TestSupports_command(t *testing.T) {
	srv := stubServer(t)

	out, err := run(t, srv, "supports", "tickets", "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"operation":"tickets","supported":true}`, out)

	out, err = run(t, srv, "supports", "connection", "--format", "text")
	require.NoError(t, err)
	assert.Equal(t, "false\n", out)

	out, err = run(t, srv, "supports", "connection", "--private", "--format", "text")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)
}

func TestCall_search(t *testing.T) {
	srv := stubServer(t)

	out, err := run(t, srv, "call", "search", "status:open", "--format", "json")
	require.NoError(t, err)

	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "status:open", records[0]["query"])
}

func TestCall_undefinedOperation(t *testing.T) {
	srv := stubServer(t)

	_, err := run(t, srv, "call", "launch_rockets")
	assert.ErrorIs(t, err, dispatch.ErrUndefinedOperation)
}

func TestSearch_command(t *testing.T) {
	srv := stubServer(t)

	out, err := run(t, srv, "search", "type:ticket", "status:open", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"query": "type:ticket status:open"`)
}

func TestOperations_command(t *testing.T) {
	srv := stubServer(t)

	out, err := run(t, srv, "operations", "--format", "text")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Contains(t, lines, "tickets")
	assert.NotContains(t, lines, "connection")
}

// ── Helpers ─────────────────────────────────────────────────────────────

func TestParseArgs(t *testing.T) {
	got := parseArgs([]string{`{"sort_by":"updated_at","per_page":5}`, "type:ticket", "42", "true"})

	assert.Equal(t, map[string]string{"sort_by": "updated_at", "per_page": "5"}, got[0])
	assert.Equal(t, "type:ticket", got[1])
	assert.Equal(t, float64(42), got[2])
	assert.Equal(t, true, got[3])
}

func TestFirstOf(t *testing.T) {
	r := api.Record{"name": "Support", "status": nil, "email": "help@acme.com"}

	assert.Equal(t, "Support", firstOf(r, titleKeys))
	assert.Equal(t, "help@acme.com", firstOf(r, detailKeys))
	assert.Equal(t, "", firstOf(api.Record{}, titleKeys))
}

func TestFirstOf_truncatesByRune(t *testing.T) {
	long := strings.Repeat("é", maxCellRunes+10)

	got := firstOf(api.Record{"subject": long}, titleKeys)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("é", maxCellRunes-3)+"...", got)
	assert.Equal(t, maxCellRunes, utf8.RuneCountInString(got))
}
