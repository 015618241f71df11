// Package dispatch provides named operation tables with a capability query.
//
// A Table is the Go rendition of an object that answers arbitrary method-shaped
// calls: operations are registered by name, looked up at call time, and a miss
// is reported as an *UndefinedOperationError naming the receiver.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/iancoleman/strcase"
)

// ErrUndefinedOperation is matched by every *UndefinedOperationError.
var ErrUndefinedOperation = errors.New("undefined operation")

// UndefinedOperationError is returned when a receiver has no operation with the requested name.
type UndefinedOperationError struct {
	Receiver  string
	Operation string
}

func (e *UndefinedOperationError) Error() string {
	return fmt.Sprintf("undefined operation %q for %s", e.Operation, e.Receiver)
}

// Is reports whether target is ErrUndefinedOperation.
func (e *UndefinedOperationError) Is(target error) bool {
	return target == ErrUndefinedOperation
}

// Operation is a named, dynamically invoked call.
type Operation func(ctx context.Context, args ...any) (any, error)

// Visibility controls whether an operation answers public capability queries.
//
// NonPublic operations behave like private methods: Supports(name, true)
// reports them, Call refuses them, and only the owner of the table runs them
// through CallNonPublic.
type Visibility int

const (
	Public Visibility = iota
	NonPublic
)

type entry struct {
	op  Operation
	vis Visibility
}

// Table maps operation names to implementations. It is safe for concurrent use.
type Table struct {
	receiver string

	mu  sync.RWMutex
	ops map[string]entry
}

// NewTable returns an empty table whose misses name receiver.
func NewTable(receiver string) *Table {
	return &Table{receiver: receiver, ops: make(map[string]entry)}
}

// Normalize maps Go-style or kebab-case names onto the snake_case operation namespace.
//
//	Normalize("CurrentUser")  // "current_user"
//	Normalize("ticket-fields") // "ticket_fields"
func Normalize(name string) string {
	return strcase.ToSnake(name)
}

// Register adds or replaces an operation.
func (t *Table) Register(name string, vis Visibility, op Operation) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ops[Normalize(name)] = entry{op: op, vis: vis}
}

// Receiver returns the name used in undefined-operation errors.
func (t *Table) Receiver() string { return t.receiver }

// Supports reports whether name is defined. Non-public operations count only
// when includeNonPublic is set.
func (t *Table) Supports(name string, includeNonPublic bool) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.ops[Normalize(name)]
	if !ok {
		return false
	}
	return e.vis == Public || includeNonPublic
}

// Call invokes a public operation. Args are passed through untouched.
func (t *Table) Call(ctx context.Context, name string, args ...any) (any, error) {
	t.mu.RLock()
	e, ok := t.ops[Normalize(name)]
	t.mu.RUnlock()
	if !ok || e.vis != Public {
		return nil, t.Undefined(name)
	}
	return e.op(ctx, args...)
}

// CallNonPublic invokes an operation regardless of its visibility. It is for
// the table's owner; forwarding layers must use Call.
func (t *Table) CallNonPublic(ctx context.Context, name string, args ...any) (any, error) {
	t.mu.RLock()
	e, ok := t.ops[Normalize(name)]
	t.mu.RUnlock()
	if !ok {
		return nil, t.Undefined(name)
	}
	return e.op(ctx, args...)
}

// Undefined builds the miss error for name on this table's receiver.
func (t *Table) Undefined(name string) error {
	return &UndefinedOperationError{Receiver: t.receiver, Operation: name}
}

// Names lists the registered operations in sorted order.
func (t *Table) Names(includeNonPublic bool) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.ops))
	for name, e := range t.ops {
		if e.vis == Public || includeNonPublic {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
