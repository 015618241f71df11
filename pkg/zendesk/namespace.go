package zendesk

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/jmerrifield20/zendesk/pkg/client"
	"github.com/jmerrifield20/zendesk/pkg/config"
	"github.com/jmerrifield20/zendesk/pkg/dispatch"
)

// Receiver names the namespace in undefined-operation errors.
const Receiver = "zendesk"

// Backend is what the namespace needs from a client: named calls and a
// capability query that agrees with them. *client.Client implements it.
type Backend interface {
	Call(ctx context.Context, name string, args ...any) (any, error)
	Supports(name string, includeNonPublic bool) bool
}

// Factory builds a client from fully merged options.
type Factory[C Backend] func(opts config.Options) (C, error)

// Namespace lets callers use the API without holding a client: calls on the
// namespace are forwarded to a default client built on first use from the
// store's options. Explicitly built clients never become the default.
type Namespace[C Backend] struct {
	store     *config.Store
	build     Factory[C]
	intrinsic *dispatch.Table

	mu     sync.Mutex
	def    C
	ready  bool
	logger *zap.Logger
}

type settings struct {
	logger     *zap.Logger
	clientOpts []client.Option
}

// Option configures a Namespace.
type Option func(*settings)

// WithLogger sets the namespace logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithClientOptions passes functional options to every client built by New's
// factory.
func WithClientOptions(opts ...client.Option) Option {
	return func(s *settings) { s.clientOpts = append(s.clientOpts, opts...) }
}

func newSettings(opts []Option) settings {
	s := settings{logger: zap.NewNop()}
	for _, o := range opts {
		o(&s)
	}
	return s
}

// New returns a namespace over *client.Client backed by store.
func New(store *config.Store, opts ...Option) *Namespace[*client.Client] {
	s := newSettings(opts)
	return NewWithFactory[*client.Client](store, func(o config.Options) (*client.Client, error) {
		return client.New(o, s.clientOpts...)
	}, opts...)
}

// NewWithFactory returns a namespace that builds its clients with factory.
func NewWithFactory[C Backend](store *config.Store, factory Factory[C], opts ...Option) *Namespace[C] {
	s := newSettings(opts)
	n := &Namespace[C]{
		store:  store,
		build:  factory,
		logger: s.logger,
	}
	n.intrinsic = n.intrinsicOperations()
	return n
}

// SetLogger replaces the namespace logger.
func (n *Namespace[C]) SetLogger(l *zap.Logger) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.logger = l
}

// Client builds a new client from opts layered over the store's options.
// The result is independent of the default client and is never cached.
// Construction errors are returned unchanged.
func (n *Namespace[C]) Client(opts config.Options) (C, error) {
	return n.build(n.store.Merge(opts))
}

// DefaultClient returns the cached default client, building it from the
// store's options on first use. A failed build is not cached.
func (n *Namespace[C]) DefaultClient() (C, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.ready {
		return n.def, nil
	}

	c, err := n.Client(nil)
	if err != nil {
		defaultClientBuilds.WithLabelValues("error").Inc()
		n.logger.Warn("default zendesk client construction failed", zap.Error(err))
		var zero C
		return zero, err
	}
	n.def = c
	n.ready = true
	defaultClientBuilds.WithLabelValues("ok").Inc()
	n.logger.Info("default zendesk client initialized")
	return c, nil
}

// Reset drops the cached default client; the next forwarded call or
// capability query builds a fresh one. Configuration is left untouched.
func (n *Namespace[C]) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	var zero C
	n.def = zero
	n.ready = false
}

// Invoke calls the operation name. The namespace's own operations run
// directly; anything else is forwarded to the default client with args
// untouched, including a trailing callback. When the default client does not
// support name, the error is an *dispatch.UndefinedOperationError for the
// namespace itself. Errors from the forwarded operation are returned as-is.
func (n *Namespace[C]) Invoke(ctx context.Context, name string, args ...any) (any, error) {
	if n.intrinsic.Supports(name, false) {
		return n.intrinsic.Call(ctx, name, args...)
	}
	c, err := n.DefaultClient()
	if err != nil {
		return nil, err
	}
	if !c.Supports(name, false) {
		return nil, n.intrinsic.Undefined(name)
	}
	return c.Call(ctx, name, args...)
}

// Supports reports whether name is callable on the namespace: either one of
// its own operations or one the default client supports. Asking about a
// name the namespace does not define builds the default client.
func (n *Namespace[C]) Supports(name string, includeNonPublic bool) (bool, error) {
	if n.intrinsic.Supports(name, includeNonPublic) {
		return true, nil
	}
	c, err := n.DefaultClient()
	if err != nil {
		return false, err
	}
	return c.Supports(name, includeNonPublic), nil
}

// Configure merges opts into the process-wide options used by later clients.
// An already cached default client keeps its configuration until Reset.
func (n *Namespace[C]) Configure(opts config.Options) {
	n.store.Configure(opts)
}

// Options returns a snapshot of the process-wide options.
func (n *Namespace[C]) Options() config.Options {
	return n.store.Options()
}

// Store returns the configuration store.
func (n *Namespace[C]) Store() *config.Store { return n.store }

func (n *Namespace[C]) intrinsicOperations() *dispatch.Table {
	t := dispatch.NewTable(Receiver)

	t.Register("client", dispatch.Public, func(_ context.Context, args ...any) (any, error) {
		opts, err := optionsArg(args, 0)
		if err != nil {
			return nil, err
		}
		return n.Client(opts)
	})
	t.Register("supports", dispatch.Public, func(_ context.Context, args ...any) (any, error) {
		name, ok, err := dispatch.Arg[string](args, 0)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("supports: operation name is required")
		}
		includeNonPublic, _, err := dispatch.Arg[bool](args, 1)
		if err != nil {
			return nil, err
		}
		return n.Supports(name, includeNonPublic)
	})
	t.Register("configure", dispatch.Public, func(_ context.Context, args ...any) (any, error) {
		opts, err := optionsArg(args, 0)
		if err != nil {
			return nil, err
		}
		n.Configure(opts)
		return nil, nil
	})
	t.Register("options", dispatch.Public, func(context.Context, ...any) (any, error) {
		return n.Options(), nil
	})

	// Non-public: visible to Supports(name, true), never run by Invoke.
	// Callers use Reset and DefaultClient directly.
	t.Register("reset", dispatch.NonPublic, func(context.Context, ...any) (any, error) {
		n.Reset()
		return nil, nil
	})
	t.Register("default_client", dispatch.NonPublic, func(context.Context, ...any) (any, error) {
		return n.DefaultClient()
	})

	return t
}

func optionsArg(args []any, i int) (config.Options, error) {
	if i >= len(args) || args[i] == nil {
		return nil, nil
	}
	switch v := args[i].(type) {
	case config.Options:
		return v, nil
	case map[string]any:
		return config.Options(v), nil
	default:
		return nil, fmt.Errorf("argument %d: expected options map, got %T", i, args[i])
	}
}
