package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"clinic-frontdesk/internal/domain/entity"
	"clinic-frontdesk/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	// ErrTokensExhausted is returned when the session has no tokens left
	ErrTokensExhausted = errors.New("no tokens left for this session")
	// ErrGateCold means the counters are not in Redis and the database must decide
	ErrGateCold = errors.New("token gate not primed")
)

// reserveTokenScript takes one token in a single atomic step and returns how
// many are left. Token numbers come from the doctor row, not from Redis.
// Returns -2 when the counter is missing, -1 when no token is left.
var reserveTokenScript = redis.NewScript(`
	if redis.call('EXISTS', KEYS[1]) == 0 then
		return -2
	end
	local remaining = redis.call('DECR', KEYS[1])
	if remaining < 0 then
		redis.call('INCR', KEYS[1])
		return -1
	end
	return remaining
`)

const (
	RedisTokensKeyPrefix = "doctor:tokens:"

	syncBatchSize        = 500
	mutexCleanupInterval = 10 * time.Minute
	mutexStaleThreshold  = 10 * time.Minute
)

// TokenGate is a Redis fast path in front of the doctor row's token counter.
// The database stays authoritative; a nil Redis client turns every call into
// a no-op or ErrGateCold.
type TokenGate interface {
	Reserve(ctx context.Context, doctorID uuid.UUID) error
	Restore(ctx context.Context, doctorID uuid.UUID) error
	AddDelta(ctx context.Context, doctorID uuid.UUID, delta int) error
	Prime(ctx context.Context, doctor *entity.Doctor) error
	Clear(ctx context.Context, doctorID uuid.UUID) error
	SyncOnStartup(ctx context.Context) error
	Stop()
}

type tokenGate struct {
	db          *gorm.DB
	redisClient *redis.Client
	doctorRepo  repository.DoctorRepository
	log         *logrus.Logger

	doctorMu sync.Map // map[uuid.UUID]*mutexWithTimestamp

	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

type mutexWithTimestamp struct {
	mu       sync.Mutex
	lastUsed atomic.Int64
}

// NewTokenGate starts a background goroutine that drops idle per-doctor
// mutexes. Call Stop during shutdown.
func NewTokenGate(db *gorm.DB, redisClient *redis.Client, doctorRepo repository.DoctorRepository, log *logrus.Logger) TokenGate {
	g := &tokenGate{
		db:          db,
		redisClient: redisClient,
		doctorRepo:  doctorRepo,
		log:         log,
		stopChan:    make(chan struct{}),
	}

	g.wg.Add(1)
	go g.cleanupMutexMapLoop()

	return g
}

func (g *tokenGate) Stop() {
	if g.stopped.CompareAndSwap(false, true) {
		close(g.stopChan)
		g.wg.Wait()
		g.log.Info("TokenGate stopped")
	}
}

// SyncOnStartup copies the counters of every doctor in an active session from
// PostgreSQL into Redis. One pipeline per batch.
func (g *tokenGate) SyncOnStartup(ctx context.Context) error {
	if g.redisClient == nil {
		return nil
	}

	g.log.Info("Starting token gate sync from database...")
	startTime := time.Now()

	if err := g.redisClient.Ping(ctx).Err(); err != nil {
		g.log.Warnf("Redis is not available, skipping sync: %+v", err)
		return fmt.Errorf("redis ping failed: %w", err)
	}

	doctors, err := g.doctorRepo.FindWithActiveSession(ctx, g.db)
	if err != nil {
		return fmt.Errorf("query doctors with active session: %w", err)
	}

	ttl := tokenKeyTTL(time.Now())
	for i, batch := range lo.Chunk(doctors, syncBatchSize) {
		pipe := g.redisClient.TxPipeline()
		for _, d := range batch {
			pipe.Set(ctx, tokensKey(d.ID), d.RemainingTokens(), ttl)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			g.log.Errorf("Failed to execute pipeline for batch %d: %+v", i, err)
			return fmt.Errorf("pipeline exec for batch %d: %w", i, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	g.log.Infof("Token gate sync completed: %d doctors synced in %v", len(doctors), time.Since(startTime))
	return nil
}

// Reserve takes one token off the counter. Safe without the mutex since the
// script runs atomically inside Redis.
func (g *tokenGate) Reserve(ctx context.Context, doctorID uuid.UUID) error {
	if g.redisClient == nil {
		return ErrGateCold
	}

	remaining, err := reserveTokenScript.Run(ctx, g.redisClient, []string{tokensKey(doctorID)}).Int()
	if err != nil {
		g.log.Warnf("Failed Lua script reserve token for doctor %s: %+v", doctorID, err)
		return fmt.Errorf("lua reserve token for doctor %s: %w", doctorID, err)
	}

	switch remaining {
	case -2:
		return ErrGateCold
	case -1:
		return ErrTokensExhausted
	}

	g.log.Debugf("Reserved token for doctor %s, %d left", doctorID, remaining)
	return nil
}

// Restore gives a reserved token back after the database rejected the
// check-in.
func (g *tokenGate) Restore(ctx context.Context, doctorID uuid.UUID) error {
	if g.redisClient == nil {
		return nil
	}

	mt := g.getDoctorMutex(doctorID)
	mt.mu.Lock()
	defer mt.mu.Unlock()

	if err := g.redisClient.Incr(ctx, tokensKey(doctorID)).Err(); err != nil {
		g.log.Warnf("Failed to restore token for doctor %s: %+v", doctorID, err)
		return fmt.Errorf("restore token for doctor %s: %w", doctorID, err)
	}
	return nil
}

// AddDelta mirrors a daily limit change. A negative delta never drives the
// counter below zero.
func (g *tokenGate) AddDelta(ctx context.Context, doctorID uuid.UUID, delta int) error {
	if g.redisClient == nil {
		return nil
	}

	mt := g.getDoctorMutex(doctorID)
	mt.mu.Lock()
	defer mt.mu.Unlock()

	key := tokensKey(doctorID)
	exists, err := g.redisClient.Exists(ctx, key).Result()
	if err != nil {
		g.log.Warnf("Failed to check token key for doctor %s: %+v", doctorID, err)
		return fmt.Errorf("check token key for doctor %s: %w", doctorID, err)
	}
	// nothing primed means no active session; the next Prime reads the new limit
	if exists == 0 {
		return nil
	}

	if delta < 0 {
		current, err := g.redisClient.Get(ctx, key).Int()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("get tokens for doctor %s: %w", doctorID, err)
		}
		if current+delta < 0 {
			delta = -current
		}
	}

	pipe := g.redisClient.TxPipeline()
	pipe.IncrBy(ctx, key, int64(delta))
	pipe.Expire(ctx, key, tokenKeyTTL(time.Now()))
	if _, err := pipe.Exec(ctx); err != nil {
		g.log.Warnf("Failed to update tokens delta for doctor %s: %+v", doctorID, err)
		return fmt.Errorf("update tokens delta for doctor %s: %w", doctorID, err)
	}

	g.log.Debugf("Updated doctor %s tokens by delta=%d", doctorID, delta)
	return nil
}

// Prime overwrites the counter from the doctor row, typically right after a
// session starts.
func (g *tokenGate) Prime(ctx context.Context, doctor *entity.Doctor) error {
	if g.redisClient == nil {
		return nil
	}

	mt := g.getDoctorMutex(doctor.ID)
	mt.mu.Lock()
	defer mt.mu.Unlock()

	err := g.redisClient.Set(ctx, tokensKey(doctor.ID), doctor.RemainingTokens(), tokenKeyTTL(time.Now())).Err()
	if err != nil {
		g.log.Warnf("Failed to prime token gate for doctor %s: %+v", doctor.ID, err)
		return fmt.Errorf("prime token gate for doctor %s: %w", doctor.ID, err)
	}
	return nil
}

// Clear removes the counter and the doctor's mutex
func (g *tokenGate) Clear(ctx context.Context, doctorID uuid.UUID) error {
	if g.redisClient == nil {
		return nil
	}

	mt := g.getDoctorMutex(doctorID)
	mt.mu.Lock()
	defer func() {
		mt.mu.Unlock()
		g.doctorMu.Delete(doctorID)
	}()

	if err := g.redisClient.Del(ctx, tokensKey(doctorID)).Err(); err != nil {
		g.log.Warnf("Failed to delete token key for doctor %s: %+v", doctorID, err)
		return fmt.Errorf("delete token key for doctor %s: %w", doctorID, err)
	}
	return nil
}

func (g *tokenGate) getDoctorMutex(doctorID uuid.UUID) *mutexWithTimestamp {
	mt, _ := g.doctorMu.LoadOrStore(doctorID, &mutexWithTimestamp{})
	result := mt.(*mutexWithTimestamp)
	result.lastUsed.Store(time.Now().Unix())
	return result
}

func (g *tokenGate) cleanupMutexMapLoop() {
	defer g.wg.Done()

	ticker := time.NewTicker(mutexCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-g.stopChan:
			return
		case <-ticker.C:
			g.cleanupStaleMutexes(time.Now())
		}
	}
}

// cleanupStaleMutexes checks lastUsed under the lock so a concurrent user
// cannot be dropped between the check and the delete.
func (g *tokenGate) cleanupStaleMutexes(now time.Time) int {
	cutoff := now.Add(-mutexStaleThreshold).Unix()
	var cleaned int

	g.doctorMu.Range(func(key, value any) bool {
		mt, ok := value.(*mutexWithTimestamp)
		if !ok {
			return true
		}
		if mt.mu.TryLock() {
			if mt.lastUsed.Load() < cutoff {
				g.doctorMu.Delete(key)
				cleaned++
			}
			mt.mu.Unlock()
		}
		return true
	})

	if cleaned > 0 {
		g.log.Debugf("Cleaned up %d stale mutexes", cleaned)
	}
	return cleaned
}

func tokensKey(doctorID uuid.UUID) string {
	return RedisTokensKeyPrefix + doctorID.String()
}

// tokenKeyTTL keeps counters until the end of the following day
func tokenKeyTTL(now time.Time) time.Duration {
	y, m, d := now.UTC().Date()
	expireAt := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 2)
	return expireAt.Sub(now)
}
