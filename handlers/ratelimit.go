package handlers

import (
	"sync"
	"time"
)

type rateLimitState struct {
	count       int
	windowStart time.Time
	language    string
}

// RateLimiter is a per-chat fixed-window counter. State lives only in this
// process and is lost on restart, which also resets every chat's language
// preference to the default.
type RateLimiter struct {
	mu          sync.Mutex
	maxRequests int
	window      time.Duration
	defaultLang string
	states      map[int64]*rateLimitState

	now func() time.Time
}

func NewRateLimiter(maxRequests int, window time.Duration, defaultLang string) *RateLimiter {
	return &RateLimiter{
		maxRequests: maxRequests,
		window:      window,
		defaultLang: defaultLang,
		states:      make(map[int64]*rateLimitState),
		now:         time.Now,
	}
}

// Allow counts one request against the chat's current window and reports
// whether it is within the limit.
func (l *RateLimiter) Allow(chatID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	state := l.state(chatID)
	if now.Sub(state.windowStart) > l.window {
		state.count = 1
		state.windowStart = now
		return true
	}
	state.count++
	return state.count <= l.maxRequests
}

// Language returns the chat's preferred reply language.
func (l *RateLimiter) Language(chatID int64) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state(chatID).language
}

func (l *RateLimiter) SetLanguage(chatID int64, lang string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state(chatID).language = lang
}

// state returns the chat's entry, creating it lazily. Caller holds the lock.
func (l *RateLimiter) state(chatID int64) *rateLimitState {
	s, ok := l.states[chatID]
	if !ok {
		s = &rateLimitState{windowStart: l.now(), language: l.defaultLang}
		l.states[chatID] = s
	}
	return s
}
