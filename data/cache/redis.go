package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/avolkov/wealth_tracker_bot/config"
	"github.com/avolkov/wealth_tracker_bot/internal/model"
	"github.com/avolkov/wealth_tracker_bot/utils"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("error not found in cache")

type RedisCache struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisCache(redisClient *redis.Client, cfg *config.Config) *RedisCache {
	return &RedisCache{redis: redisClient, cfg: cfg}
}

// SetBalances caches a flattened wallet snapshot under the given key so a
// manual sync shortly after a scheduled one skips the provider call.
func (r *RedisCache) SetBalances(ctx context.Context, key string, items []model.BalanceItem) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("SetBalances start", slog.String("rqID", rqID), slog.String("key", key))

	payload, err := json.Marshal(items)
	if err != nil {
		slog.Error("can't marshall balances in SetBalances", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return errors.New("can't marshall balances")
	}

	err = r.redis.Set(ctx, key, payload, r.cfg.Cache.BalancesExpiration).Err()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("key", key))
		return err
	}

	slog.Debug("SetBalances completed", slog.String("rqID", rqID))

	return nil
}

func (r *RedisCache) GetBalances(ctx context.Context, key string) ([]model.BalanceItem, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("GetBalances start", slog.String("rqID", rqID), slog.String("key", key))

	res, err := r.redis.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("key", key))
		return nil, err
	}

	items := []model.BalanceItem{}
	err = json.Unmarshal([]byte(res), &items)
	if err != nil {
		slog.Error(
			"can't unmarshall balances in GetBalances",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
			slog.String("resultFromRedis", res),
		)
		return nil, errors.New("can't unmarshall balances")
	}

	slog.Debug("GetBalances finished", slog.String("rqID", rqID))

	return items, nil
}

func (r *RedisCache) SetQuote(ctx context.Context, ticker string, price decimal.Decimal) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("SetQuote start", slog.String("rqID", rqID), slog.String("ticker", ticker))

	err := r.redis.Set(ctx, quoteKey(ticker), price.String(), r.cfg.Cache.QuotesExpiration).Err()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("ticker", ticker))
		return err
	}

	slog.Debug("SetQuote completed", slog.String("rqID", rqID))

	return nil
}

func (r *RedisCache) GetQuote(ctx context.Context, ticker string) (decimal.Decimal, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("GetQuote start", slog.String("rqID", rqID), slog.String("ticker", ticker))

	res, err := r.redis.Get(ctx, quoteKey(ticker)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return decimal.Decimal{}, ErrNotFound
		}
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("ticker", ticker))
		return decimal.Decimal{}, err
	}

	price, err := decimal.NewFromString(res)
	if err != nil {
		slog.Error("can't parse cached quote", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("resultFromRedis", res))
		return decimal.Decimal{}, errors.New("can't parse cached quote")
	}

	slog.Debug("GetQuote finished", slog.String("rqID", rqID))

	return price, nil
}

func quoteKey(ticker string) string {
	return "quote:" + ticker
}
