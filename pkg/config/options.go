package config

import (
	"maps"
	"sync"

	"github.com/iancoleman/strcase"
	"github.com/spf13/viper"
)

// Options is an unordered set of client options keyed by snake_case name.
// Values are passed through to Build verbatim.
type Options map[string]any

// Keys lists the options read from viper by LoadViper. Build accepts the same
// keys plus "logger" and "http_client", which only make sense in-process.
var Keys = []string{
	"url",
	"subdomain",
	"username",
	"password",
	"token",
	"access_token",
	"retry",
	"max_retries",
	"timeout",
	"rate_limit",
	"rate_burst",
	"allow_http",
	"user_agent",
}

// Normalize returns a copy of opts with every key in snake_case, so
// "AccessToken", "access-token" and "access_token" name the same option.
func Normalize(opts Options) Options {
	out := make(Options, len(opts))
	for k, v := range opts {
		out[strcase.ToSnake(k)] = v
	}
	return out
}

// Store holds process-wide default options. It is safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	opts Options
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{opts: make(Options)}
}

var global = NewStore()

// Global returns the process-wide store backing the default namespace.
func Global() *Store { return global }

// Set assigns a single option.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts[strcase.ToSnake(key)] = value
}

// Get returns a single option.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.opts[strcase.ToSnake(key)]
	return v, ok
}

// Configure merges opts into the store, replacing existing keys.
func (s *Store) Configure(opts Options) {
	s.mu.Lock()
	defer s.mu.Unlock()
	maps.Copy(s.opts, Normalize(opts))
}

// Options returns a snapshot of the stored options.
func (s *Store) Options() Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.opts)
}

// Merge layers explicit over the stored options. Explicit keys always win,
// including zero values such as retry=false.
func (s *Store) Merge(explicit Options) Options {
	merged := s.Options()
	maps.Copy(merged, Normalize(explicit))
	return merged
}

// Reset clears every stored option.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts = make(Options)
}

// LoadViper copies every "zendesk.<key>" that v has set into the store.
// With AutomaticEnv and a "." → "_" key replacer this picks up ZENDESK_URL,
// ZENDESK_TOKEN and friends.
func (s *Store) LoadViper(v *viper.Viper) {
	opts := make(Options)
	for _, key := range Keys {
		full := "zendesk." + key
		if v.IsSet(full) {
			opts[key] = v.Get(full)
		}
	}
	s.Configure(opts)
}
