package middleware

import (
	"net/http"

	"learnx/pkg/utils"

	libredis "github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	mhttp "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"
)

// RateLimit throttles payment-affecting routes. Uses the Redis store when a
// client is available so the limit holds across instances; falls back to an
// in-memory store otherwise.
func RateLimit(config utils.RateLimitConfig, rdb *libredis.Client, logger *zap.Logger) func(http.Handler) http.Handler {
	if !config.Enabled {
		return func(next http.Handler) http.Handler { return next }
	}

	rate, err := limiter.NewRateFromFormatted(config.Rate)
	if err != nil {
		logger.Warn("Invalid rate limit format, rate limiting disabled",
			zap.String("rate", config.Rate),
			zap.Error(err))
		return func(next http.Handler) http.Handler { return next }
	}

	var store limiter.Store
	if rdb != nil {
		store, err = sredis.NewStoreWithOptions(rdb, limiter.StoreOptions{
			Prefix: "learnx:ratelimit",
		})
		if err != nil {
			logger.Warn("Failed to create redis rate limit store, using memory store",
				zap.Error(err))
			store = memory.NewStore()
		}
	} else {
		store = memory.NewStore()
	}

	middleware := mhttp.NewMiddleware(limiter.New(store, rate))
	return middleware.Handler
}
