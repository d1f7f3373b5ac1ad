package testutil

import (
	"context"
	"net/http"
	"time"

	id "kinship/pkg/domain"
	"kinship/pkg/requestcontext"
)

// Context returns a request context carrying a member identity and a fixed
// request time, the two values every authenticated handler reads.
func Context(memberID id.MemberID, at time.Time) context.Context {
	ctx := requestcontext.WithMemberID(context.Background(), memberID)
	return requestcontext.WithTime(ctx, at)
}

// AsMember stamps a request with a member identity and request time the way
// the auth and request-time middlewares would.
func AsMember(req *http.Request, memberID id.MemberID, at time.Time) *http.Request {
	ctx := requestcontext.WithMemberID(req.Context(), memberID)
	ctx = requestcontext.WithTime(ctx, at)
	return req.WithContext(ctx)
}
