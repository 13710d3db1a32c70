package cases

import (
	"context"
	"sync"
	"time"

	dErrors "github.com/rodzerz/customs-crm/pkg/domain-errors"
)

// CaseTx serializes mutations per case. Implementations may wrap a database
// row lock or, in-memory, a sharded mutex. Two concurrent transition attempts
// on the same case must never both observe the same source status.
type CaseTx interface {
	RunInTx(ctx context.Context, caseID string, fn func(ctx context.Context) error) error
}

// shardedCaseTx distributes per-case locks across N shards keyed by a hash of
// the case id, so unrelated cases proceed concurrently while mutations of one
// case are mutually exclusive.
const numCaseShards = 64

// defaultCaseTxTimeout bounds how long one case mutation may run.
const defaultCaseTxTimeout = 5 * time.Second

type shardedCaseTx struct {
	shards  [numCaseShards]sync.Mutex
	timeout time.Duration
}

// NewShardedTx returns the in-memory CaseTx used outside of row-locking
// persistence backends.
func NewShardedTx() CaseTx {
	return &shardedCaseTx{timeout: defaultCaseTxTimeout}
}

func (t *shardedCaseTx) RunInTx(ctx context.Context, caseID string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "case mutation aborted: context cancelled")
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	shard := hashCaseID(caseID) % numCaseShards
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	// Check again after acquiring the lock.
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "case mutation aborted: context cancelled")
	}

	return fn(ctx)
}

// hashCaseID uses FNV-1a for even shard distribution.
func hashCaseID(s string) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}
