package app

import "sync"

// NoticeBoard queues user notices until the page collects them.
type NoticeBoard struct {
	mu      sync.Mutex
	notices []string
}

// Notify implements mapview.Notifier.
func (b *NoticeBoard) Notify(message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notices = append(b.notices, message)
}

// Drain returns and forgets the queued notices.
func (b *NoticeBoard) Drain() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.notices
	b.notices = nil
	return out
}
