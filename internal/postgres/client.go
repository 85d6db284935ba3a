package postgres

import (
	"context"

	sentryService "github.com/flexprice/partnerbilling/internal/sentry"
	"go.uber.org/fx"
)

// IClient defines the interface for postgres client operations
type IClient interface {
	// WithTx wraps the given function in a transaction. Nested calls run
	// inside a savepoint of the outer transaction.
	WithTx(ctx context.Context, fn func(context.Context) error) error

	// Querier returns the current transaction if in one, or the pooled connection
	Querier(ctx context.Context) Querier
}

var _ IClient = (*DB)(nil)

// Module provides the database and the instrumented client to the application
func Module() fx.Option {
	return fx.Options(
		fx.Provide(
			NewDB,
			func(db *DB, sentry *sentryService.Service) IClient {
				return NewSentryClient(db, sentry, db.logger)
			},
		),
		fx.Invoke(func(lc fx.Lifecycle, db *DB) {
			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					db.Close()
					return nil
				},
			})
		}),
	)
}
