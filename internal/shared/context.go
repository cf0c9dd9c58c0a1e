package shared

import (
	"context"
	"net/http"
	"strconv"
	"strings"
)

// Actor identifies the person performing a request. Authentication happens
// upstream; the gateway forwards identity in headers.
type Actor struct {
	Name     string
	BranchID int64
	Manager  bool
}

// Header names the gateway uses to forward identity.
const (
	ActorNameHeader   = "X-Actor-Name"
	ActorBranchHeader = "X-Actor-Branch"
	ActorRoleHeader   = "X-Actor-Role"
)

type actorContextKey struct{}

// ContextWithActor stores the actor in the context.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext returns the actor stored in context, zero value when absent.
func ActorFromContext(ctx context.Context) Actor {
	if actor, ok := ctx.Value(actorContextKey{}).(Actor); ok {
		return actor
	}
	return Actor{}
}

// ActorFromRequest parses the forwarded identity headers.
func ActorFromRequest(r *http.Request) Actor {
	actor := Actor{
		Name:    strings.TrimSpace(r.Header.Get(ActorNameHeader)),
		Manager: strings.EqualFold(r.Header.Get(ActorRoleHeader), "manager"),
	}
	if raw := r.Header.Get(ActorBranchHeader); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			actor.BranchID = id
		}
	}
	return actor
}
