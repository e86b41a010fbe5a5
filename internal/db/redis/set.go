package redis

import (
	"context"

	"github.com/redis/rueidis"

	"github.com/rahelarnold98/xreco-nmr/internal/db"
)

// saddIfExists adds ARGV to KEYS[2] when KEYS[1] exists and returns -1 otherwise.
var saddIfExists = rueidis.NewLuaScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return -1
end
return redis.call('SADD', KEYS[2], unpack(ARGV))
`)

// SAddIfExists runs EXISTS and SADD as one script so a concurrent delete of
// guardKey cannot leave an orphan set behind.
func (s *Store) SAddIfExists(ctx context.Context, guardKey, setKey string, members ...string) (bool, error) {
	if len(members) == 0 {
		return s.Exists(ctx, guardKey)
	}
	n, err := saddIfExists.Exec(ctx, s.client, []string{guardKey, setKey}, members).AsInt64()
	if err != nil {
		return false, opErr(db.OpEval, err)
	}
	return n >= 0, nil
}

// SRem removes members from a set. Absent members are not an error.
func (s *Store) SRem(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	cmd := s.b().Srem().Key(key).Member(members...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return opErr(db.OpSRem, err)
	}
	return nil
}

// SMembers returns all members of a set in server order.
func (s *Store) SMembers(ctx context.Context, key string) ([]string, error) {
	cmd := s.b().Smembers().Key(key).Build()
	members, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, opErr(db.OpSMembers, err)
	}
	return members, nil
}

// SCard returns the set cardinality.
func (s *Store) SCard(ctx context.Context, key string) (int64, error) {
	cmd := s.b().Scard().Key(key).Build()
	n, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return 0, opErr(db.OpSCard, err)
	}
	return n, nil
}
