package testutil

import (
	"context"

	"github.com/flexprice/partnerbilling/internal/types"
)

func SetupContext() context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, types.CtxUserID, types.DefaultUserID)
	ctx = context.WithValue(ctx, types.CtxUserEmail, "billing@example.com")
	ctx = context.WithValue(ctx, types.CtxRole, types.RoleAdmin)
	ctx = context.WithValue(ctx, types.CtxRequestID, types.GenerateUUID())
	return ctx
}
