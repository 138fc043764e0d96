package chat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hrygo/shopsense/server/handoff"
)

const (
	// DefaultIdleTTL is how long a conversation may stay silent before the
	// janitor closes it.
	DefaultIdleTTL = 30 * time.Minute
	// DefaultSweepInterval is the default interval between janitor sweeps.
	DefaultSweepInterval = 5 * time.Minute
)

// JanitorConfig holds configuration for the janitor job.
type JanitorConfig struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

// DefaultJanitorConfig returns the default janitor configuration.
func DefaultJanitorConfig() JanitorConfig {
	return JanitorConfig{
		IdleTTL:       DefaultIdleTTL,
		SweepInterval: DefaultSweepInterval,
	}
}

// Janitor periodically closes idle conversations. Waiting queue entries of
// idle conversations are abandoned first, so they stop counting toward
// queue depth and average wait time.
type Janitor struct {
	service *ChatService
	config  JanitorConfig
	logger  *slog.Logger

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
}

// NewJanitor creates a janitor for the chat service.
func NewJanitor(service *ChatService, config JanitorConfig) *Janitor {
	if config.IdleTTL <= 0 {
		config.IdleTTL = DefaultIdleTTL
	}
	if config.SweepInterval <= 0 {
		config.SweepInterval = DefaultSweepInterval
	}
	return &Janitor{
		service: service,
		config:  config,
		logger:  service.logger,
	}
}

// Start begins the periodic sweep. Non-blocking; the sweep runs in a
// goroutine until Stop or context cancellation.
func (j *Janitor) Start(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.running {
		return nil
	}
	j.running = true
	j.stopChan = make(chan struct{})

	go j.run(ctx)

	j.logger.Info("conversation janitor started",
		"idle_ttl", j.config.IdleTTL,
		"interval", j.config.SweepInterval)
	return nil
}

// Stop stops the janitor.
func (j *Janitor) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.running {
		return
	}
	close(j.stopChan)
	j.running = false
	j.logger.Info("conversation janitor stopped")
}

// IsRunning returns whether the janitor is currently running.
func (j *Janitor) IsRunning() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.running
}

// RunOnce executes a single sweep immediately. Useful for tests.
func (j *Janitor) RunOnce(ctx context.Context) int {
	return j.sweep(ctx)
}

func (j *Janitor) run(ctx context.Context) {
	ticker := time.NewTicker(j.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-j.stopChan:
			return
		case <-ticker.C:
			if closed := j.sweep(ctx); closed > 0 {
				j.logger.Info("janitor sweep completed", "closed", closed)
			}
		}
	}
}

// sweep closes conversations idle past the TTL. Conversations already
// assigned to a staff member are left alone; closing those is the staff
// member's call.
func (j *Janitor) sweep(ctx context.Context) int {
	engine := j.service.Engine()
	cutoff := time.Now().Add(-j.config.IdleTTL)

	closed := 0
	for _, conv := range engine.IdleConversations(cutoff) {
		if conv.Status == handoff.ConversationAssigned {
			continue
		}
		// Abandon resolves a waiting entry and closes the conversation in
		// one step; conversations with no entry are closed directly.
		err := engine.Abandon(ctx, conv.ID)
		if err == handoff.ErrNotWaiting {
			err = engine.CloseConversation(ctx, conv.ID)
		}
		if err != nil {
			j.logger.Warn("janitor failed to close idle conversation",
				"conversation_id", conv.ID, "error", err)
			continue
		}
		closed++
	}
	return closed
}
