package core

import "context"

// Variables provides named values for template substitution.
type Variables interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// MapVariables is a simple map-based Variables implementation.
type MapVariables struct {
	data map[string]any
}

func NewVariables() *MapVariables {
	return &MapVariables{data: make(map[string]any)}
}

func (v *MapVariables) Get(key string) (any, bool) {
	val, ok := v.data[key]
	return val, ok
}

func (v *MapVariables) Set(key string, value any) {
	v.data[key] = value
}

type contextKey string

const actorIDContextKey contextKey = "actorID"

func ContextWithActorID(ctx context.Context, actorID int) context.Context {
	return context.WithValue(ctx, actorIDContextKey, actorID)
}

func ActorIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(actorIDContextKey).(int); ok {
		return id
	}
	return 0
}
