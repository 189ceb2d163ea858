package repository

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	repo "catalogadmin/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	deletingKeyPrefix = "catalog:deleting:"
	deletingIndexKey  = "catalog:deleting"

	//プロセスが落ちてもキーが残り続けないための上限
	DefaultPendingTTL = 10 * time.Minute
)

// 自分が取ったキーだけ消す
var releaseDeletingScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	redis.call("DEL", KEYS[1])
	redis.call("SREM", KEYS[2], ARGV[2])
	return 1
end
return 0
`)

// 自分が持っているキーだけ寿命を延ばす
var renewDeletingScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// 複数インスタンスで共有する削除中セット（SET NX + TTL）
type redisDeletionTracker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDeletionTracker(client *redis.Client, ttl time.Duration) repo.DeletionTracker {
	if ttl <= 0 {
		ttl = DefaultPendingTTL
	}
	return &redisDeletionTracker{client: client, ttl: ttl}
}

func deletingKey(productID int64) string {
	return deletingKeyPrefix + strconv.FormatInt(productID, 10)
}

func (t *redisDeletionTracker) TryAcquire(ctx context.Context, productID int64) (func(), bool, error) {
	key := deletingKey(productID)
	token := uuid.NewString()

	ok, err := t.client.SetNX(ctx, key, token, t.ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	member := strconv.FormatInt(productID, 10)
	if err := t.client.SAdd(ctx, deletingIndexKey, member).Err(); err != nil {
		_ = t.client.Del(context.WithoutCancel(ctx), key).Err()
		return nil, false, err
	}

	//削除が終わるまでTTLを延ばし続ける
	stop := make(chan struct{})
	done := make(chan struct{})
	go t.keepAlive(context.WithoutCancel(ctx), key, token, stop, done)

	var once sync.Once
	release := func() {
		once.Do(func() {
			close(stop)
			<-done

			//リクエストのctxがキャンセルされていても解放する
			rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			_ = releaseDeletingScript.Run(rctx, t.client, []string{key, deletingIndexKey}, token, member).Err()
		})
	}
	return release, true, nil
}

// TTLの1/3ごとに延長する。キーを失ったら止まる。
func (t *redisDeletionTracker) keepAlive(ctx context.Context, key, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	interval := t.ttl / 3
	if interval <= 0 {
		interval = t.ttl
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			rctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			n, err := renewDeletingScript.Run(rctx, t.client, []string{key}, token, t.ttl.Milliseconds()).Int()
			cancel()
			if err == nil && n == 0 {
				return
			}
		}
	}
}

func (t *redisDeletionTracker) IsPending(ctx context.Context, productID int64) (bool, error) {
	n, err := t.client.Exists(ctx, deletingKey(productID)).Result()
	return n > 0, err
}

func (t *redisDeletionTracker) Pending(ctx context.Context) ([]int64, error) {
	members, err := t.client.SMembers(ctx, deletingIndexKey).Result()
	if err != nil {
		return nil, err
	}

	out := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}

		//TTL切れで残ったメンバーは掃除する
		pending, err := t.IsPending(ctx, id)
		if err != nil {
			return nil, err
		}
		if !pending {
			_ = t.client.SRem(ctx, deletingIndexKey, m).Err()
			continue
		}
		out = append(out, id)
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}
