// Package service implements the application's business logic on top of the
// repository layer.
package service

import "context"

// TxRunner executes fn atomically when the deployment supports transactions.
// A nil TxRunner runs fn directly, leaving multi-step effects as a sequence
// of individually atomic writes.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

func runAtomic(ctx context.Context, tx TxRunner, fn func(ctx context.Context) error) error {
	if tx == nil {
		return fn(ctx)
	}
	return tx(ctx, fn)
}
