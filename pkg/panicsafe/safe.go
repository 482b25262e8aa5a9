// Package panicsafe keeps panics in dispatch and timer goroutines from
// taking the process down: a recovered panic comes back as an ordinary
// error carrying the recovered value and stack.
package panicsafe

import (
	"context"

	"github.com/sourcegraph/conc/panics"
)

// Safe wraps fn so a panic inside it is recovered and returned as an
// error. An error fn returns itself takes precedence over a recovered
// panic.
func Safe(fn func() error) func() error {
	return func() error {
		var (
			catcher panics.Catcher
			err     error
		)
		catcher.Try(func() {
			err = fn()
		})
		if err != nil {
			return err
		}
		return catcher.Recovered().AsError()
	}
}

// SafeContext is Safe for context-taking functions.
func SafeContext(fn func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		return Safe(func() error {
			return fn(ctx)
		})()
	}
}
