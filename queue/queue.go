package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

// Item is one entry in a user's play queue.
type Item struct {
	TrackID  int64  `json:"trackId"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album"`
	Position int    `json:"position"`
}

// queueTTL is how long an untouched queue survives in Redis.
const queueTTL = 24 * time.Hour

// Store keeps per-user play queues in Redis sorted sets, scored by
// position.
type Store struct {
	client *redis.Client
}

// NewStore creates a queue store on the given Redis client.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func queueKey(userID int64) string {
	return fmt.Sprintf("queue:%d", userID)
}

// Add appends a track to the end of the user's queue.
func (s *Store) Add(ctx context.Context, userID int64, item Item) error {
	items, err := s.List(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get current queue: %w", err)
	}

	item.Position = 0
	for _, existing := range items {
		if existing.Position >= item.Position {
			item.Position = existing.Position + 1
		}
	}

	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal queue item: %w", err)
	}

	key := queueKey(userID)
	if err := s.client.ZAdd(ctx, key, redis.Z{
		Score:  float64(item.Position),
		Member: payload,
	}).Err(); err != nil {
		return fmt.Errorf("failed to add track to queue: %w", err)
	}

	if err := s.client.Expire(ctx, key, queueTTL).Err(); err != nil {
		return fmt.Errorf("failed to set queue expiration: %w", err)
	}
	return nil
}

// List returns the user's queue in play order.
func (s *Store) List(ctx context.Context, userID int64) ([]Item, error) {
	result, err := s.client.ZRangeByScore(ctx, queueKey(userID), &redis.ZRangeBy{
		Min: "-inf",
		Max: "+inf",
	}).Result()
	if err != nil {
		if err == redis.Nil {
			return []Item{}, nil
		}
		return nil, fmt.Errorf("failed to get queue: %w", err)
	}

	items := make([]Item, 0, len(result))
	for _, raw := range result {
		var item Item
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal queue item: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}

// Remove deletes a track from the queue and compacts positions.
func (s *Store) Remove(ctx context.Context, userID, trackID int64) error {
	items, err := s.List(ctx, userID)
	if err != nil {
		return err
	}

	found := false
	remaining := make([]Item, 0, len(items))
	for _, item := range items {
		if item.TrackID == trackID {
			found = true
			continue
		}
		remaining = append(remaining, item)
	}
	if !found {
		return fmt.Errorf("track not found in queue")
	}

	return s.rewrite(ctx, userID, remaining)
}

// Clear empties the user's queue.
func (s *Store) Clear(ctx context.Context, userID int64) error {
	if err := s.client.Del(ctx, queueKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear queue: %w", err)
	}
	return nil
}

// Reorder rewrites the queue in the order of the given track ids. Unknown
// ids are ignored; omitted tracks are dropped.
func (s *Store) Reorder(ctx context.Context, userID int64, trackIDs []int64) error {
	items, err := s.List(ctx, userID)
	if err != nil {
		return err
	}

	byID := make(map[int64]Item, len(items))
	for _, item := range items {
		byID[item.TrackID] = item
	}

	reordered := make([]Item, 0, len(trackIDs))
	for _, id := range trackIDs {
		if item, ok := byID[id]; ok {
			reordered = append(reordered, item)
		}
	}

	return s.rewrite(ctx, userID, reordered)
}

// Shuffle randomizes the queue order.
func (s *Store) Shuffle(ctx context.Context, userID int64) error {
	items, err := s.List(ctx, userID)
	if err != nil {
		return err
	}
	if len(items) <= 1 {
		return nil
	}

	trackIDs := make([]int64, len(items))
	for i, item := range items {
		trackIDs[i] = item.TrackID
	}
	rand.Shuffle(len(trackIDs), func(i, j int) {
		trackIDs[i], trackIDs[j] = trackIDs[j], trackIDs[i]
	})

	return s.Reorder(ctx, userID, trackIDs)
}

// rewrite replaces the stored queue with the given items, renumbering
// positions from zero.
func (s *Store) rewrite(ctx context.Context, userID int64, items []Item) error {
	key := queueKey(userID)
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to reset queue: %w", err)
	}
	if len(items) == 0 {
		return nil
	}

	members := make([]redis.Z, 0, len(items))
	for i, item := range items {
		item.Position = i
		payload, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to marshal queue item: %w", err)
		}
		members = append(members, redis.Z{Score: float64(i), Member: payload})
	}

	if err := s.client.ZAdd(ctx, key, members...).Err(); err != nil {
		return fmt.Errorf("failed to rewrite queue: %w", err)
	}
	if err := s.client.Expire(ctx, key, queueTTL).Err(); err != nil {
		return fmt.Errorf("failed to set queue expiration: %w", err)
	}
	return nil
}
