package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/senyabanana/common-elements/internal/models"
	"github.com/senyabanana/common-elements/internal/utils"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter ограничивает частоту запросов каждого пользователя.
type RateLimiter struct {
	visitors map[string]*visitor
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
}

// NewRateLimiter создает ограничитель: perSecond запросов в секунду с запасом burst.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(perSecond),
		burst:    burst,
		idleTTL:  10 * time.Minute,
	}
}

// Allow сообщает, можно ли обработать очередной запрос пользователя.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	rl.cleanup(now)
	return v.limiter.Allow()
}

// cleanup удаляет давно неактивных пользователей. Вызывается под мьютексом.
func (rl *RateLimiter) cleanup(now time.Time) {
	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > rl.idleTTL {
			delete(rl.visitors, key)
		}
	}
}

// Limit оборачивает обработчик. Ключ - пользователь из контекста, иначе адрес клиента.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := ActorFromContext(r.Context()).UserID
		if key == "" {
			key = r.RemoteAddr
		}
		if !rl.Allow(key) {
			utils.SendErrorResponse(w, models.NewErrorResponse(http.StatusTooManyRequests, models.ValidationError,
				"Too many requests. Please slow down."))
			return
		}
		next.ServeHTTP(w, r)
	})
}
