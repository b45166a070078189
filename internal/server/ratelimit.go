package server

import (
	"fmt"
	"sync"
	"time"
)

// RateLimiter tracks per-client request rates and daily quotas.
type RateLimiter struct {
	mu     sync.Mutex
	limits RateLimitConfig
	now    func() time.Time
	usage  map[string]*clientUsage
}

type clientUsage struct {
	minute, hour, day int
	dataToday         int64
	minuteStart       time.Time
	hourStart         time.Time
	dayStart          time.Time
}

// Usage is a snapshot of one client's counters.
type Usage struct {
	RequestsLastMinute int
	RequestsLastHour   int
	RequestsToday      int
	DataToday          int64
}

// NewRateLimiter creates a limiter for the non-zero limits in cfg.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	return &RateLimiter{limits: cfg, now: time.Now, usage: make(map[string]*clientUsage)}
}

// CheckRateLimit admits a request of dataSize bytes from client or returns
// a *RateLimitError or *QuotaExceededError. Rejected requests are not counted.
func (rl *RateLimiter) CheckRateLimit(client string, dataSize int64) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	u := rl.usage[client]
	if u == nil {
		u = &clientUsage{minuteStart: now, hourStart: now, dayStart: startOfDay(now)}
		rl.usage[client] = u
	}
	u.roll(now)

	if l := rl.limits.RequestsPerMinute; l > 0 && u.minute >= l {
		return &RateLimitError{Type: "minute", Limit: l, RetryAfter: u.minuteStart.Add(time.Minute).Sub(now)}
	}
	if l := rl.limits.RequestsPerHour; l > 0 && u.hour >= l {
		return &RateLimitError{Type: "hour", Limit: l, RetryAfter: u.hourStart.Add(time.Hour).Sub(now)}
	}
	resets := u.dayStart.AddDate(0, 0, 1)
	if l := rl.limits.MaxRequestsPerDay; l > 0 && u.day >= l {
		return &QuotaExceededError{Type: "requests", Limit: int64(l), Used: int64(u.day), Resets: resets}
	}
	if l := rl.limits.MaxDataPerDay; l > 0 && u.dataToday+dataSize > l {
		return &QuotaExceededError{Type: "data", Limit: l, Used: u.dataToday, Resets: resets}
	}

	u.minute++
	u.hour++
	u.day++
	u.dataToday += dataSize
	return nil
}

// roll starts new windows once the current ones have elapsed.
func (u *clientUsage) roll(now time.Time) {
	if now.Sub(u.minuteStart) >= time.Minute {
		u.minute, u.minuteStart = 0, now
	}
	if now.Sub(u.hourStart) >= time.Hour {
		u.hour, u.hourStart = 0, now
	}
	if day := startOfDay(now); !day.Equal(u.dayStart) {
		u.day, u.dataToday, u.dayStart = 0, 0, day
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// GetUsage returns the current counters for client.
func (rl *RateLimiter) GetUsage(client string) Usage {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	u, ok := rl.usage[client]
	if !ok {
		return Usage{}
	}
	return Usage{RequestsLastMinute: u.minute, RequestsLastHour: u.hour, RequestsToday: u.day, DataToday: u.dataToday}
}

// RateLimitError represents a rate limit violation.
type RateLimitError struct {
	Type       string // "minute" or "hour"
	Limit      int
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s (limit: %d, retry after: %v)", e.Type, e.Limit, e.RetryAfter.Round(time.Second))
}

// QuotaExceededError represents a daily quota violation.
type QuotaExceededError struct {
	Type   string // "requests" or "data"
	Limit  int64
	Used   int64
	Resets time.Time
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded for %s (used: %d, limit: %d, resets: %s)",
		e.Type, e.Used, e.Limit, e.Resets.Format(time.RFC3339))
}
