package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"clinic-frontdesk/config"
	"clinic-frontdesk/internal/domain/entity"
	"clinic-frontdesk/internal/infrastructure/llm"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	RedisAdviceKeyPrefix = "advice:priority:"

	priorityPrompt  = "You help a clinic front desk. Given the waiting list, suggest in one or two short sentences whether any patient should be seen earlier and why. Answer \"No change\" when the order is fine."
	summaryPrompt   = "Summarize this clinic session for the doctor in two short sentences."
	extensionPrompt = "Suggest a short, neutral reason (max 8 words) for extending this consultation."
)

// AdvisoryService returns suggestions that never change queue state. Every
// method returns "" when the model is disabled, fails or is too slow.
type AdvisoryService interface {
	SuggestPriority(ctx context.Context, clinicID uuid.UUID, entries []entity.QueueEntry) string
	SummarizeSession(ctx context.Context, stats entity.SessionStats) string
	SuggestExtensionReason(ctx context.Context, entry *entity.QueueEntry, minutes int) string
}

type advisoryService struct {
	client   llm.Client
	cache    *redis.Client
	timeout  time.Duration
	cacheTTL time.Duration
	log      *logrus.Logger
}

func NewAdvisoryService(client llm.Client, cache *redis.Client, cfg config.AdvisoryConfig, log *logrus.Logger) AdvisoryService {
	if client == nil || !cfg.Enabled {
		return noopAdvisory{}
	}
	return &advisoryService{
		client:   client,
		cache:    cache,
		timeout:  cfg.Timeout,
		cacheTTL: cfg.CacheTTL,
		log:      log,
	}
}

func (s *advisoryService) SuggestPriority(ctx context.Context, clinicID uuid.UUID, entries []entity.QueueEntry) string {
	var lines []string
	now := time.Now()
	for _, e := range entries {
		if !e.IsWaiting() {
			continue
		}
		name := "patient"
		if e.Visit != nil && e.Visit.Patient != nil {
			name = e.Visit.Patient.Name
		}
		lines = append(lines, fmt.Sprintf("token %d, %s, waiting %d min", e.TokenNumber, name, int(now.Sub(e.CheckInAt).Minutes())))
	}
	if len(lines) < 2 {
		return ""
	}

	key := priorityCacheKey(clinicID, entries)
	if cached := s.cached(ctx, key); cached != "" {
		return cached
	}

	advice := s.ask(ctx, priorityPrompt, strings.Join(lines, "\n"))
	if advice != "" && s.cache != nil {
		if err := s.cache.Set(ctx, key, advice, s.cacheTTL).Err(); err != nil {
			s.log.Debugf("Failed to cache priority advice: %+v", err)
		}
	}
	return advice
}

func (s *advisoryService) SummarizeSession(ctx context.Context, stats entity.SessionStats) string {
	input := fmt.Sprintf(
		"session %s: %d patients, %d completed, %d skipped, %d no-show, %d still waiting, average wait %.1f min, average consultation %.1f min, revenue %s",
		stats.SessionName, stats.TotalPatients, stats.Completed, stats.Skipped, stats.NoShow, stats.WaitingAtClose,
		stats.AverageWait.Minutes(), stats.AverageConsultation.Minutes(), stats.TotalRevenue.StringFixed(2),
	)
	return s.ask(ctx, summaryPrompt, input)
}

func (s *advisoryService) SuggestExtensionReason(ctx context.Context, entry *entity.QueueEntry, minutes int) string {
	input := fmt.Sprintf("consultation for token %d extended by %d minutes", entry.TokenNumber, minutes)
	if entry.Visit != nil && entry.Visit.CalledAt != nil {
		input += fmt.Sprintf(", already %d minutes in", int(time.Since(*entry.Visit.CalledAt).Minutes()))
	}
	return s.ask(ctx, extensionPrompt, input)
}

// ask waits at most s.timeout even if the client ignores ctx
func (s *advisoryService) ask(ctx context.Context, system, user string) string {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := s.client.Complete(ctx, []llm.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		})
		done <- result{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		s.log.Warnf("Advisory request timed out: %+v", ctx.Err())
		return ""
	case r := <-done:
		if r.err != nil {
			s.log.Warnf("Advisory request failed: %+v", r.err)
			return ""
		}
		return strings.TrimSpace(r.text)
	}
}

func (s *advisoryService) cached(ctx context.Context, key string) string {
	if s.cache == nil {
		return ""
	}
	val, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		return ""
	}
	return val
}

// priorityCacheKey changes whenever an entry joins, leaves or changes status
func priorityCacheKey(clinicID uuid.UUID, entries []entity.QueueEntry) string {
	h := sha256.New()
	for _, e := range entries {
		h.Write([]byte(e.ID.String()))
		h.Write([]byte(e.Status))
	}
	return RedisAdviceKeyPrefix + clinicID.String() + ":" + hex.EncodeToString(h.Sum(nil))[:16]
}

type noopAdvisory struct{}

func (noopAdvisory) SuggestPriority(context.Context, uuid.UUID, []entity.QueueEntry) string {
	return ""
}

func (noopAdvisory) SummarizeSession(context.Context, entity.SessionStats) string {
	return ""
}

func (noopAdvisory) SuggestExtensionReason(context.Context, *entity.QueueEntry, int) string {
	return ""
}
