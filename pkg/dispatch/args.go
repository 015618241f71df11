package dispatch

import "fmt"

// Arg returns args[i] as T. A missing argument yields the zero value and ok=false;
// a present argument of the wrong type is an error.
func Arg[T any](args []any, i int) (v T, ok bool, err error) {
	if i >= len(args) || args[i] == nil {
		return v, false, nil
	}
	v, ok = args[i].(T)
	if !ok {
		return v, false, fmt.Errorf("argument %d: expected %T, got %T", i, v, args[i])
	}
	return v, true, nil
}

// Trailing returns the last argument when it is a T, along with the remaining
// arguments. It is how callers hand a callback to an operation.
func Trailing[T any](args []any) (T, []any, bool) {
	var zero T
	if len(args) == 0 {
		return zero, args, false
	}
	fn, ok := args[len(args)-1].(T)
	if !ok {
		return zero, args, false
	}
	return fn, args[:len(args)-1], true
}
