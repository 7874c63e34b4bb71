package task

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/Sniplyy/VibeWall/internal/generation"
	"github.com/google/uuid"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// fakeTask implements Task with a pluggable Execute.
type fakeTask struct {
	id     uuid.UUID
	mu     sync.Mutex
	status TaskStatus
	execFn func(ctx context.Context) error
}

func newFakeTask(execFn func(ctx context.Context) error) *fakeTask {
	return &fakeTask{id: uuid.New(), status: TaskStatusPending, execFn: execFn}
}

func (f *fakeTask) ID() uuid.UUID { return f.id }
func (f *fakeTask) Type() string  { return "fake" }

func (f *fakeTask) Status() TaskStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *fakeTask) Execute(ctx context.Context) error {
	var err error
	if f.execFn != nil {
		err = f.execFn(ctx)
	}
	f.mu.Lock()
	f.status = TaskStatusCompleted
	if err != nil {
		f.status = TaskStatusFailed
	}
	f.mu.Unlock()
	return err
}

// stubGenerator returns canned media or an error and records calls.
type stubGenerator struct {
	mu     sync.Mutex
	media  []generation.Media
	err    error
	block  chan struct{}
	counts []int
}

func (g *stubGenerator) GenerateN(ctx context.Context, req generation.Request, count int) ([]generation.Media, error) {
	g.mu.Lock()
	g.counts = append(g.counts, count)
	block := g.block
	g.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return g.media, g.err
}

func (g *stubGenerator) Counts() []int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]int(nil), g.counts...)
}

func imageRequest() generation.Request {
	return generation.Request{
		Prompt:      "aurora over a frozen lake",
		Mode:        generation.ModeImage,
		AspectRatio: generation.AspectRatioPortrait,
	}
}
