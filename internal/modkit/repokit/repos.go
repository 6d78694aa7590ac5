// Package repokit provides the seams repositories are written against
package repokit

import (
	"context"

	"rowkeeper/internal/platform/store"
)

type (
	// Queryer is the read and write surface repos use
	Queryer = store.RowQuerier

	// TxRunner can run a function inside a transaction
	TxRunner = store.TxRunner

	// Rows is a result set
	Rows = store.Rows

	// Row is a single row result
	Row = store.Row

	// CommandTag reports affected rows
	CommandTag = store.CommandTag
)

// WithTx runs fn inside a transaction on tx
func WithTx(ctx context.Context, tx TxRunner, fn func(q Queryer) error) error {
	return tx.Tx(ctx, fn)
}
