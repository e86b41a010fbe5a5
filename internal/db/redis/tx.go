package redis

import (
	"context"
	"errors"

	"github.com/redis/rueidis"

	"github.com/rahelarnold98/xreco-nmr/internal/db"
)

var errTxFinished = errors.New("transaction already committed or rolled back")

// tx buffers commands client-side and sends them as one MULTI ... EXEC
// pipeline on Commit. rueidis keeps a DoMulti batch on a single connection,
// so no other command can interleave with the transaction.
type tx struct {
	s        *Store
	cmds     []rueidis.Completed
	finished bool
}

// Begin opens a write transaction.
func (s *Store) Begin() db.Tx {
	return &tx{s: s}
}

func (t *tx) HDel(key string, fields ...string) {
	t.cmds = append(t.cmds, t.s.b().Hdel().Key(key).Field(fields...).Build())
}

func (t *tx) Del(keys ...string) {
	t.cmds = append(t.cmds, t.s.b().Del().Key(keys...).Build())
}

func (t *tx) SRem(key string, members ...string) {
	t.cmds = append(t.cmds, t.s.b().Srem().Key(key).Member(members...).Build())
}

// Commit applies the queued commands atomically. A command rejected while
// queueing makes Redis discard the whole transaction (EXECABORT).
func (t *tx) Commit(ctx context.Context) error {
	if t.finished {
		return errTxFinished
	}
	t.finished = true
	if len(t.cmds) == 0 {
		return nil
	}

	batch := make([]rueidis.Completed, 0, len(t.cmds)+2)
	batch = append(batch, t.s.b().Multi().Build())
	batch = append(batch, t.cmds...)
	batch = append(batch, t.s.b().Exec().Build())
	t.cmds = nil

	results := t.s.client.DoMulti(ctx, batch...)
	if len(results) != len(batch) {
		return &db.Error{Op: db.OpExec, Err: errors.New("short reply to transaction")}
	}

	// Queue-time failures surface on EXEC as EXECABORT, report the root cause.
	for _, res := range results[:len(results)-1] {
		if err := res.Error(); err != nil {
			return opErr(db.OpExec, err)
		}
	}

	replies, err := results[len(results)-1].ToArray()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return &db.Error{Op: db.OpExec, Err: db.ErrTxAborted}
		}
		return opErr(db.OpExec, err)
	}
	for i := range replies {
		if err := replies[i].Error(); err != nil {
			return opErr(db.OpExec, err)
		}
	}
	return nil
}

// Rollback drops the queued commands. Nothing was sent to the server.
func (t *tx) Rollback() {
	t.finished = true
	t.cmds = nil
}
