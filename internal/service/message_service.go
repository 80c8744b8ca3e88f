package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"activity-board/internal/domain"
	"activity-board/pkg/logger"
	"activity-board/pkg/metrics"
	"activity-board/pkg/redis"
)

// DefaultMessageTTL is how long a status message stays visible.
const DefaultMessageTTL = 5 * time.Second

func newMessage(text string, kind domain.MessageKind, now time.Time, ttl time.Duration) (domain.StatusMessage, error) {
	if !kind.Valid() {
		return domain.StatusMessage{}, fmt.Errorf("unknown message kind %q", kind)
	}
	return domain.StatusMessage{
		ID:        uuid.NewString(),
		Text:      text,
		Kind:      kind,
		ExpiresAt: now.Add(ttl),
	}, nil
}

type memoryEntry struct {
	msg   domain.StatusMessage
	timer *time.Timer
}

// MemoryMessageService holds messages in process. Each message schedules
// its own hide; the hide only removes the message it was scheduled for.
type MemoryMessageService struct {
	ttl     time.Duration
	now     func() time.Time
	logger  *logger.Logger
	metrics *metrics.Collector

	mu      sync.Mutex
	entries map[string]*memoryEntry
	stopped bool
}

// NewMemoryMessageService creates an in-process message store
func NewMemoryMessageService(ttl time.Duration, logger *logger.Logger, collector *metrics.Collector) *MemoryMessageService {
	if ttl <= 0 {
		ttl = DefaultMessageTTL
	}
	return &MemoryMessageService{
		ttl:     ttl,
		now:     time.Now,
		logger:  logger,
		metrics: collector,
		entries: make(map[string]*memoryEntry),
	}
}

// Show replaces the session's message and schedules its hide
func (s *MemoryMessageService) Show(ctx context.Context, sessionID, text string, kind domain.MessageKind) (domain.StatusMessage, error) {
	msg, err := newMessage(text, kind, s.now(), s.ttl)
	if err != nil {
		return domain.StatusMessage{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return domain.StatusMessage{}, fmt.Errorf("message service stopped")
	}

	// The superseded message's timer is left running; its hide is keyed to
	// the old ID and becomes a no-op.
	s.entries[sessionID] = &memoryEntry{
		msg:   msg,
		timer: time.AfterFunc(s.ttl, func() { s.hide(sessionID, msg.ID) }),
	}
	s.metrics.IncMessage(string(kind))

	s.logger.WithFields(map[string]interface{}{
		"message_id": msg.ID,
		"kind":       kind,
	}).Debug("Status message shown")

	return msg, nil
}

// Current returns the session's visible message
func (s *MemoryMessageService) Current(ctx context.Context, sessionID string) (*domain.StatusMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[sessionID]
	if !ok || entry.msg.Expired(s.now()) {
		return nil, nil
	}
	msg := entry.msg
	return &msg, nil
}

func (s *MemoryMessageService) hide(sessionID, messageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.entries[sessionID]; ok && entry.msg.ID == messageID {
		delete(s.entries, sessionID)
	}
}

// Stop cancels every pending hide and rejects further messages
func (s *MemoryMessageService) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, entry := range s.entries {
		entry.timer.Stop()
		delete(s.entries, id)
	}
	s.stopped = true
	return nil
}

// RedisMessageService stores messages in Redis. The key's TTL is the hide
// timer, and a newer SET resets it.
type RedisMessageService struct {
	redis   *redis.Client
	ttl     time.Duration
	now     func() time.Time
	logger  *logger.Logger
	metrics *metrics.Collector
}

// NewRedisMessageService creates a Redis-backed message store
func NewRedisMessageService(client *redis.Client, ttl time.Duration, logger *logger.Logger, collector *metrics.Collector) *RedisMessageService {
	if ttl <= 0 {
		ttl = DefaultMessageTTL
	}
	return &RedisMessageService{
		redis:   client,
		ttl:     ttl,
		now:     time.Now,
		logger:  logger,
		metrics: collector,
	}
}

// Show replaces the session's message
func (s *RedisMessageService) Show(ctx context.Context, sessionID, text string, kind domain.MessageKind) (domain.StatusMessage, error) {
	msg, err := newMessage(text, kind, s.now(), s.ttl)
	if err != nil {
		return domain.StatusMessage{}, err
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return domain.StatusMessage{}, fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := s.redis.Set(ctx, s.redis.KeyBuilder.KeyBoardMessage(sessionID), payload, s.ttl); err != nil {
		s.logger.WithError(err).Error("Failed to store status message")
		return domain.StatusMessage{}, fmt.Errorf("failed to store message: %w", err)
	}
	s.metrics.IncMessage(string(kind))

	return msg, nil
}

// Current returns the session's visible message
func (s *RedisMessageService) Current(ctx context.Context, sessionID string) (*domain.StatusMessage, error) {
	raw, err := s.redis.Get(ctx, s.redis.KeyBuilder.KeyBoardMessage(sessionID))
	if redis.IsNil(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load message: %w", err)
	}

	var msg domain.StatusMessage
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		s.logger.WithError(err).Warn("Status message corrupted, ignoring")
		return nil, nil
	}
	return &msg, nil
}
