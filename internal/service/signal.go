package service

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/giftgrove/giftgrove/internal/domain"
)

// SignalService broadcasts manager registry changes over redis pub/sub
// so the manage dashboard can refresh without polling.
type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func (s *SignalService) Publish(ctx context.Context, event domain.ManagerEvent) error {

	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, domain.ManagerChannel, jsonstr).Err()
	if err != nil {
		return err

	}

	return nil
}
