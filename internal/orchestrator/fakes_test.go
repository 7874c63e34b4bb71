package orchestrator_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Sniplyy/VibeWall/internal/generation"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingSleeper records requested delays and returns immediately.
type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.delays = append(s.delays, d)
	s.mu.Unlock()
	return ctx.Err()
}

func (s *recordingSleeper) Delays() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}

// fakeClock is a manual clock. Sleep advances it by the requested delay.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// sleeperOn records delays and advances clock by each one.
func sleeperOn(clock *fakeClock, rec *recordingSleeper) func(context.Context, time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		clock.Advance(d)
		return rec.Sleep(ctx, d)
	}
}

// slowRunner advances clock by cost on every call before delegating.
type slowRunner struct {
	clock *fakeClock
	cost  time.Duration
	next  *scriptedRunner
}

func (r *slowRunner) Run(ctx context.Context, req generation.Request) (*generation.Media, error) {
	r.clock.Advance(r.cost)
	return r.next.Run(ctx, req)
}

// scriptedImages returns scripted results in call order, repeating the last
// entry once the script runs out.
type scriptedImages struct {
	mu      sync.Mutex
	calls   int
	results []imageResult
}

type imageResult struct {
	resp *generation.ImageResponse
	err  error
}

func okImage(data string) imageResult {
	return imageResult{resp: &generation.ImageResponse{
		Parts:        []generation.InlineImage{{MIMEType: "image/png", Data: []byte(data)}},
		FinishReason: "STOP",
	}}
}

func failImage(err error) imageResult {
	return imageResult{err: err}
}

func (s *scriptedImages) GenerateImage(_ context.Context, _ generation.Request) (*generation.ImageResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	if i >= len(s.results) {
		i = len(s.results) - 1
	}
	s.calls++
	return s.results[i].resp, s.results[i].err
}

func (s *scriptedImages) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// fakeVideo implements the submitter, both pollers and the downloader.
type fakeVideo struct {
	mu sync.Mutex

	submitHandle *generation.OperationHandle
	submitErr    error
	submittedJob generation.VideoJob

	primaryErr   error
	primaryCalls int

	fallback      []string
	fallbackErr   error
	fallbackCalls int

	downloadErr error
	downloaded  []string
}

func (f *fakeVideo) SubmitVideo(_ context.Context, job generation.VideoJob) (*generation.OperationHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submittedJob = job
	return f.submitHandle, f.submitErr
}

func (f *fakeVideo) primary() generation.OperationPoller {
	return pollerFunc(func(ctx context.Context, name string) (*generation.OperationHandle, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.primaryCalls++
		if f.primaryErr != nil {
			return nil, f.primaryErr
		}
		return nil, errors.New("primary channel not scripted")
	})
}

func (f *fakeVideo) rest() generation.OperationPoller {
	return pollerFunc(func(ctx context.Context, name string) (*generation.OperationHandle, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.fallbackCalls++
		if f.fallbackErr != nil {
			return nil, f.fallbackErr
		}
		i := f.fallbackCalls - 1
		if i >= len(f.fallback) {
			i = len(f.fallback) - 1
		}
		return generation.DecodeOperation([]byte(f.fallback[i]))
	})
}

func (f *fakeVideo) Download(_ context.Context, uri string) ([]byte, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloaded = append(f.downloaded, uri)
	if f.downloadErr != nil {
		return nil, "", f.downloadErr
	}
	return []byte("mp4-bytes"), "video/mp4", nil
}

type pollerFunc func(ctx context.Context, name string) (*generation.OperationHandle, error)

func (p pollerFunc) PollOperation(ctx context.Context, name string) (*generation.OperationHandle, error) {
	return p(ctx, name)
}

func mustHandle(body string) *generation.OperationHandle {
	h, err := generation.DecodeOperation([]byte(body))
	if err != nil {
		panic(err)
	}
	return h
}

// scriptedRunner plays the role of an image or video runner.
type scriptedRunner struct {
	mu      sync.Mutex
	calls   int
	results []runResult
}

type runResult struct {
	media *generation.Media
	err   error
}

func (r *scriptedRunner) Run(_ context.Context, _ generation.Request) (*generation.Media, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.calls
	if i >= len(r.results) {
		i = len(r.results) - 1
	}
	r.calls++
	return r.results[i].media, r.results[i].err
}

func (r *scriptedRunner) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func mediaResult(data string) runResult {
	return runResult{media: &generation.Media{Kind: generation.MediaKindImage, MIMEType: "image/png", Data: []byte(data)}}
}

func errResult(raw any) runResult {
	return runResult{err: generation.Classify(raw)}
}
