package redis_repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/bunge-labs/billbot/models"
)

const conversationKeyPrefix = "conversation:"

// redisConversationRepository keeps one list per sender, newest first.
type redisConversationRepository struct {
	client *redis.Client
}

// NewRedisConversationRepository wraps an established redis client.
func NewRedisConversationRepository(client *redis.Client) *redisConversationRepository {
	return &redisConversationRepository{client: client}
}

func (r *redisConversationRepository) Append(ctx context.Context, msg models.ConversationMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return r.client.LPush(ctx, conversationKeyPrefix+msg.From, data).Err()
}

func (r *redisConversationRepository) Recent(ctx context.Context, from string, n int64) ([]models.ConversationMessage, error) {
	if n <= 0 {
		n = 10
	}
	vals, err := r.client.LRange(ctx, conversationKeyPrefix+from, 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	msgs := make([]models.ConversationMessage, 0, len(vals))
	for _, v := range vals {
		var m models.ConversationMessage
		if err := json.Unmarshal([]byte(v), &m); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}
