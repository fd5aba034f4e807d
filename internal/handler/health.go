package handler

import (
	"context"
	"net/http"
	"time"

	"atasrp/internal/infra"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Health returns a JSON health check response.
// Checks the ata store and, when configured, Redis; breaker states are
// reported but an open breaker does not fail the check.
func Health(store pinger, rdb *redis.Client, breakers map[string]*infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		storeStatus := "connected"
		if store.Ping(ctx) != nil {
			storeStatus = "error"
		}

		redisStatus := "disabled"
		if rdb != nil {
			redisStatus = "connected"
			if rdb.Ping(ctx).Err() != nil {
				redisStatus = "error"
			}
		}

		cb := make(map[string]string, len(breakers))
		for name, b := range breakers {
			cb[name] = b.State().String()
		}

		status := http.StatusOK
		if storeStatus != "connected" || redisStatus == "error" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":               status == http.StatusOK,
			"store":            storeStatus,
			"redis":            redisStatus,
			"circuit_breakers": cb,
		})
	}
}
