package session

import (
	"context"
	"sync"
)

// Preference keys
const (
	KeyLoggedIn  = "is_logged_in"
	KeyUserEmail = "user_email"
	KeyUserName  = "user_name"
)

// Preferences is a small persistent key/value store. The SQL stores
// implement it on their preferences table.
type Preferences interface {
	GetPreference(ctx context.Context, key string) (string, bool, error)
	SetPreference(ctx context.Context, key, value string) error
	ClearPreferences(ctx context.Context) error
}

// MemoryPreferences keeps preferences for the life of the process.
type MemoryPreferences struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryPreferences() *MemoryPreferences {
	return &MemoryPreferences{values: make(map[string]string)}
}

func (p *MemoryPreferences) GetPreference(_ context.Context, key string) (string, bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.values[key]
	return v, ok, nil
}

func (p *MemoryPreferences) SetPreference(_ context.Context, key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[key] = value
	return nil
}

func (p *MemoryPreferences) ClearPreferences(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values = make(map[string]string)
	return nil
}
