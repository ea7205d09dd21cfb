package repository

import (
	"context"
	"fmt"

	"github.com/bunge-labs/billbot/config"
	"github.com/bunge-labs/billbot/models"
	"github.com/bunge-labs/billbot/repository/redis_repository"
)

// ConversationRepository records question/answer exchanges per sender.
// Logging is best-effort: callers must not fail a reply on a log error.
type ConversationRepository interface {
	Append(ctx context.Context, msg models.ConversationMessage) error
	Recent(ctx context.Context, from string, n int64) ([]models.ConversationMessage, error)
}

type RepoType string

const (
	RepoTypeRedis RepoType = "redis"
)

// NewConversationRepository builds a conversation log of the given type.
func NewConversationRepository(ctx context.Context, t RepoType, cfg config.RedisConfig) (ConversationRepository, error) {
	switch t {
	case RepoTypeRedis:
		c, err := redis_repository.Conn(ctx, cfg.Host, cfg.Port, cfg.Password, cfg.DB, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		return redis_repository.NewRedisConversationRepository(c), nil
	}
	return nil, fmt.Errorf("invalid repository type: %s", t)
}
