// Package requestctx carries request-scoped identity through context.
package requestctx

import "context"

// actorContextKey is the context key for the authenticated acting identity.
type actorContextKey struct{}

// Actor identifies who performs an engine operation. Authentication and
// permission checks happen upstream; the engine trusts this identity.
type Actor struct {
	ID    string
	Name  string
	Email string
}

// WithActor stores an acting identity in context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext returns the acting identity stored in context.
func ActorFromContext(ctx context.Context) Actor {
	if ctx == nil {
		return Actor{}
	}
	value, _ := ctx.Value(actorContextKey{}).(Actor)
	return value
}
