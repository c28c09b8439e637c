package handlers

import "sync"

// pendingConvert is a conversion awaiting the user's confirm tap.
type pendingConvert struct {
	FromAsset string
	ToAsset   string
	Amount    float64
}

// pendingConfirms holds at most one pending conversion per chat. Entries are
// single-use: take removes the entry before any exchange call is made, so a
// double-tapped confirm button runs the conversion at most once.
type pendingConfirms struct {
	mu sync.Mutex
	m  map[int64]pendingConvert
}

func newPendingConfirms() *pendingConfirms {
	return &pendingConfirms{m: make(map[int64]pendingConvert)}
}

// put replaces the chat's pending conversion. A new /convert supersedes an
// unanswered prompt.
func (p *pendingConfirms) put(chatID int64, pc pendingConvert) {
	p.mu.Lock()
	p.m[chatID] = pc
	p.mu.Unlock()
}

// take consumes the chat's pending conversion, if any.
func (p *pendingConfirms) take(chatID int64) (pendingConvert, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pc, ok := p.m[chatID]
	if ok {
		delete(p.m, chatID)
	}
	return pc, ok
}

// drop discards the chat's pending conversion.
func (p *pendingConfirms) drop(chatID int64) {
	p.mu.Lock()
	delete(p.m, chatID)
	p.mu.Unlock()
}
