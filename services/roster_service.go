package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"flight-booking/internal/status"
	"flight-booking/models"
	"flight-booking/utils"
)

// RosterService owns checkout sessions and their passenger rosters.
// Sessions live in Redis under a TTL; losing one on expiry drops the
// roster and any pending authorization, which is accepted behavior.
type RosterService struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRosterService(redisClient *redis.Client, ttl time.Duration) *RosterService {
	return &RosterService{
		redis: redisClient,
		ttl:   ttl,
	}
}

func sessionKey(id string) string {
	return fmt.Sprintf("checkout:session:%s", id)
}

// CreateSession opens a session for one user and itinerary with a single
// blank passenger already on the roster.
func (s *RosterService) CreateSession(ctx context.Context, userID, userEmail, userName string, it models.Itinerary) (*models.CheckoutSession, error) {
	id, err := utils.GenerateReference("CKOUT")
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}

	sess := &models.CheckoutSession{
		ID:        id,
		UserID:    userID,
		UserEmail: userEmail,
		UserName:  userName,
		Itinerary: it,
		CreatedAt: time.Now(),
	}
	sess.Passengers.Add()

	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *RosterService) GetSession(ctx context.Context, sessionID string) (*models.CheckoutSession, error) {
	data, err := s.redis.Get(ctx, sessionKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, status.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", sessionID, err)
	}

	var sess models.CheckoutSession
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return &sess, nil
}

// AddPassenger appends a blank passenger and returns its roster index.
// Rejected while a payment attempt is in flight.
func (s *RosterService) AddPassenger(ctx context.Context, sessionID string) (*models.CheckoutSession, int, error) {
	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, 0, err
	}
	if sess.Locked() {
		return nil, 0, status.ErrRosterLocked
	}

	idx := sess.Passengers.Add()
	if err := s.save(ctx, sess); err != nil {
		return nil, 0, err
	}
	return sess, idx, nil
}

// UpdatePassenger writes one field of one passenger. Age writes re-derive
// the passenger type inside the same save, so a reader never observes an
// age that disagrees with its type.
func (s *RosterService) UpdatePassenger(ctx context.Context, sessionID string, index int, field, value string) (*models.CheckoutSession, error) {
	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Locked() {
		return nil, status.ErrRosterLocked
	}
	if index < 0 || index >= len(sess.Passengers) {
		return nil, fmt.Errorf("update passenger: index %d out of range", index)
	}

	sess.Passengers.Update(index, field, value)
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// LockRoster pins the roster to an attempt; while set, every edit is
// rejected with ErrRosterLocked.
func (s *RosterService) LockRoster(ctx context.Context, sessionID, attemptID string) error {
	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	sess.ActiveAttemptID = attemptID
	return s.save(ctx, sess)
}

// UnlockRoster releases the roster after the attempt reaches a terminal state.
func (s *RosterService) UnlockRoster(ctx context.Context, sessionID string) error {
	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	sess.ActiveAttemptID = ""
	return s.save(ctx, sess)
}

func (s *RosterService) save(ctx context.Context, sess *models.CheckoutSession) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sess.ID, err)
	}
	if err := s.redis.Set(ctx, sessionKey(sess.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", sess.ID, err)
	}
	return nil
}
