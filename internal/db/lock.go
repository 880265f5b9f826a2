package db

import (
	"context"
	"fmt"
)

// clusteringLockKey serializes cluster assignment and cluster merge. Both
// jobs rewrite membership rows and counters, so they never run concurrently.
const clusteringLockKey int64 = 7420011

// AcquireClusteringLock blocks until the shared clustering advisory lock is
// held by the given transaction. The lock releases on commit or rollback.
func AcquireClusteringLock(ctx context.Context, tx Tx) error {
	if tx == nil {
		return fmt.Errorf("transaction is nil")
	}
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, clusteringLockKey); err != nil {
		return fmt.Errorf("acquire clustering advisory lock: %w", err)
	}
	return nil
}
