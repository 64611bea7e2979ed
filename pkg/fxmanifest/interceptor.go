package fxmanifest

import (
	"context"

	"github.com/Vertex-Scripts/vx-cli/pkg/vxlog"
)

// Handler receives one intercepted key/value pair
type Handler func(key, value string)

// Interceptor turns the declarative statements of a script into calls of a single host handler.
type Interceptor struct {
	handler Handler
}

// NewInterceptor returns an Interceptor forwarding to handler
func NewInterceptor(handler Handler) *Interceptor {
	return &Interceptor{handler: handler}
}

// Exec parses src and forwards every statement value to the handler in source order. Table values forward
// each item separately; the extra arguments of chained calls are not forwarded.
// The whole script is parsed first so a syntax error means the handler was never called.
func (i *Interceptor) Exec(ctx context.Context, file string, src []byte) error {
	stmts, err := Parse(file, string(src))
	if err != nil {
		return err
	}

	for _, stmt := range stmts {
		for _, value := range stmt.Value.Strings() {
			vxlog.Log(ctx).Debug().
				Str("key", stmt.Key).
				Int("line", stmt.Line).
				Msgf("Intercepted: %s -> %s", stmt.Key, value)

			i.handler(stmt.Key, value)
		}
	}

	return nil
}
