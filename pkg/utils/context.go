package utils

import (
	"context"

	"yamdb/internal/policy"
)

type contextKey string

const (
	ActorKey contextKey = "actor"
	TokenKey contextKey = "token"
)

// GetActorFromContext returns the caller set by the auth middleware.
// Requests without credentials resolve to policy.Anonymous.
func GetActorFromContext(ctx context.Context) policy.Actor {
	actor, ok := ctx.Value(ActorKey).(policy.Actor)
	if !ok {
		return policy.Anonymous
	}
	return actor
}

func SetActorContext(ctx context.Context, actor policy.Actor) context.Context {
	return context.WithValue(ctx, ActorKey, actor)
}

func GetTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	return token, ok
}

func SetTokenContext(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, TokenKey, token)
}
