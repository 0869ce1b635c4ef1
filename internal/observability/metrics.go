package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PostsCreated counts posts written to the store.
	PostsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "board_posts_created_total",
		Help: "Total number of posts created",
	})

	// CommentsCreated counts comments appended to the store.
	CommentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "board_comments_created_total",
		Help: "Total number of comments created",
	})

	// RedisErrors counts failed Redis commands by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "board_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})
)
