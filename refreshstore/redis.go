package refreshstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces all keys written by [Redis].
const DefaultRedisPrefix = "authcore:rt"

// Redis is a [Store] backed by a Redis instance. Records live in one hash per
// token, keyed by SHA-256 of the token string, with a secondary id lookup and
// a per-user id set. Key TTLs shadow record expiry, so expired records vanish
// on their own; DeleteExpired reconciles the indexes afterwards.
//
// Revocation flips a single hash field and never un-flips it, so a concurrent
// FindByToken either observes the record before the revoke or sees it
// revoked — never a revoked record reported as valid.
//
// Records returned from Redis carry the token hash, not the token string.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis returns a store on the given client. An empty prefix selects
// [DefaultRedisPrefix].
func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

var _ Store = (*Redis)(nil)

func hashToken(tokenStr string) string {
	sum := sha256.Sum256([]byte(tokenStr))
	return hex.EncodeToString(sum[:])
}

func (r *Redis) recKey(id string) string     { return r.prefix + ":rec:" + id }
func (r *Redis) tokKey(hash string) string   { return r.prefix + ":tok:" + hash }
func (r *Redis) usrKey(userID string) string { return r.prefix + ":usr:" + userID }
func (r *Redis) idsKey() string              { return r.prefix + ":ids" }

// revokeRecordScript marks a record revoked. Returns 0 when the record is
// missing, 1 when this call transitioned it active -> revoked, and 2 when it
// was already revoked. Running as a script keeps the check-and-set atomic.
const revokeRecordScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
if redis.call("HGET", KEYS[1], "revoked") == "1" then
  return 2
end
redis.call("HSET", KEYS[1], "revoked", "1")
return 1
`

var revokeRecordLua = redis.NewScript(revokeRecordScript)

// revokeAllScript walks the user's id set and revokes every still-active
// record, pruning dangling ids along the way. Returns the number of records
// transitioned active -> revoked.
const revokeAllScript = `
local count = 0
for _, id in ipairs(redis.call("SMEMBERS", KEYS[1])) do
  local rec = ARGV[1] .. ":rec:" .. id
  if redis.call("EXISTS", rec) == 1 then
    if redis.call("HGET", rec, "revoked") ~= "1" then
      redis.call("HSET", rec, "revoked", "1")
      count = count + 1
    end
  else
    redis.call("SREM", KEYS[1], id)
  end
end
return count
`

var revokeAllLua = redis.NewScript(revokeAllScript)

// sweepScript deletes records past expiry and reconciles both indexes.
// Records already reaped by key TTL count as removed too.
const sweepScript = `
local count = 0
for _, id in ipairs(redis.call("SMEMBERS", KEYS[1])) do
  local rec = ARGV[1] .. ":rec:" .. id
  if redis.call("EXISTS", rec) == 1 then
    local exp = tonumber(redis.call("HGET", rec, "expires_at") or "0")
    if exp < tonumber(ARGV[2]) then
      local hash = redis.call("HGET", rec, "token_sha")
      local uid = redis.call("HGET", rec, "user_id")
      redis.call("DEL", rec)
      if hash then
        redis.call("DEL", ARGV[1] .. ":tok:" .. hash)
      end
      if uid then
        redis.call("SREM", ARGV[1] .. ":usr:" .. uid, id)
      end
      redis.call("SREM", KEYS[1], id)
      count = count + 1
    end
  else
    redis.call("SREM", KEYS[1], id)
    count = count + 1
  end
end
return count
`

var sweepLua = redis.NewScript(sweepScript)

// Create persists rec, assigning ID and CreatedAt. The raw token string is
// never written to Redis, only its SHA-256.
func (r *Redis) Create(ctx context.Context, rec Record) (*Record, error) {
	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now()
	hash := hashToken(rec.Token)

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, r.recKey(rec.ID), map[string]interface{}{
		"id":         rec.ID,
		"user_id":    rec.UserID,
		"token_sha":  hash,
		"expires_at": rec.ExpiresAt.Unix(),
		"created_at": rec.CreatedAt.Unix(),
		"revoked":    "0",
		"device":     rec.DeviceInfo,
		"ip":         rec.IPAddress,
	})
	pipe.ExpireAt(ctx, r.recKey(rec.ID), rec.ExpiresAt)
	pipe.Set(ctx, r.tokKey(hash), rec.ID, time.Until(rec.ExpiresAt))
	pipe.SAdd(ctx, r.usrKey(rec.UserID), rec.ID)
	pipe.SAdd(ctx, r.idsKey(), rec.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	return &rec, nil
}

// FindByToken returns the active record for tokenStr, or ErrNotFound.
func (r *Redis) FindByToken(ctx context.Context, tokenStr string) (*Record, error) {
	id, err := r.client.Get(ctx, r.tokKey(hashToken(tokenStr))).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rec, err := r.loadRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.Revoked || rec.Expired(time.Now()) {
		return nil, ErrNotFound
	}
	return rec, nil
}

// FindByUserID returns all active records owned by userID.
func (r *Redis) FindByUserID(ctx context.Context, userID string) ([]Record, error) {
	ids, err := r.client.SMembers(ctx, r.usrKey(userID)).Result()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var out []Record
	for _, id := range ids {
		rec, err := r.loadRecord(ctx, id)
		if err != nil {
			return nil, err
		}
		if rec == nil || rec.Revoked || rec.Expired(now) {
			continue
		}
		out = append(out, *rec)
	}
	return out, nil
}

// Revoke marks the record with the given ID as revoked. True only when this
// call performed the active -> revoked transition.
func (r *Redis) Revoke(ctx context.Context, id string) (bool, error) {
	n, err := revokeRecordLua.Run(ctx, r.client, []string{r.recKey(id)}).Int64()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// RevokeByToken marks the record holding tokenStr as revoked. Unlike Revoke,
// an already-revoked record still reports true; logout stays idempotent.
func (r *Redis) RevokeByToken(ctx context.Context, tokenStr string) (bool, error) {
	id, err := r.client.Get(ctx, r.tokKey(hashToken(tokenStr))).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	n, err := revokeRecordLua.Run(ctx, r.client, []string{r.recKey(id)}).Int64()
	if err != nil {
		return false, err
	}
	return n >= 1, nil
}

// RevokeAllForUser revokes every active record owned by userID.
func (r *Redis) RevokeAllForUser(ctx context.Context, userID string) (int, error) {
	n, err := revokeAllLua.Run(ctx, r.client, []string{r.usrKey(userID)}, r.prefix).Int64()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// DeleteExpired removes records past expiry and reconciles the indexes,
// counting records already reaped by key TTL.
func (r *Redis) DeleteExpired(ctx context.Context) (int, error) {
	now := time.Now().Unix()
	n, err := sweepLua.Run(ctx, r.client, []string{r.idsKey()}, r.prefix, strconv.FormatInt(now, 10)).Int64()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (r *Redis) loadRecord(ctx context.Context, id string) (*Record, error) {
	fields, err := r.client.HGetAll(ctx, r.recKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}

	expiresAt, _ := strconv.ParseInt(fields["expires_at"], 10, 64)
	createdAt, _ := strconv.ParseInt(fields["created_at"], 10, 64)

	return &Record{
		ID:         fields["id"],
		UserID:     fields["user_id"],
		Token:      fields["token_sha"],
		ExpiresAt:  time.Unix(expiresAt, 0),
		CreatedAt:  time.Unix(createdAt, 0),
		Revoked:    fields["revoked"] == "1",
		DeviceInfo: fields["device"],
		IPAddress:  fields["ip"],
	}, nil
}
