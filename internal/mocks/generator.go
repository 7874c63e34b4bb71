package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/Sniplyy/VibeWall/internal/generation"
)

// MockGenerator implements task.Generator for testing.
type MockGenerator struct {
	// GenerateNFn allows test cases to mock the GenerateN behavior
	GenerateNFn func(ctx context.Context, req generation.Request, count int) ([]generation.Media, error)

	// Default response values. With neither set, GenerateN returns
	// SampleMedia(count).
	Media []generation.Media
	Err   error

	mu       sync.Mutex
	requests []generation.Request
	counts   []int
}

// GenerateN implements the task.Generator interface
func (m *MockGenerator) GenerateN(ctx context.Context, req generation.Request, count int) ([]generation.Media, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.counts = append(m.counts, count)
	m.mu.Unlock()

	if m.GenerateNFn != nil {
		return m.GenerateNFn(ctx, req, count)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Media != nil {
		return m.Media, nil
	}
	return SampleMedia(count), nil
}

// Calls returns how many times GenerateN was called.
func (m *MockGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns the requests passed to GenerateN, in call order.
func (m *MockGenerator) Requests() []generation.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]generation.Request(nil), m.requests...)
}

// Counts returns the variation counts passed to GenerateN, in call order.
func (m *MockGenerator) Counts() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.counts...)
}

// NewMockGeneratorWithMedia creates a MockGenerator that returns media.
func NewMockGeneratorWithMedia(media []generation.Media) *MockGenerator {
	return &MockGenerator{Media: media}
}

// NewMockGeneratorWithError creates a MockGenerator that returns err.
func NewMockGeneratorWithError(err error) *MockGenerator {
	return &MockGenerator{Err: err}
}

// SampleMedia returns count PNG images whose bytes are "image-<index>".
// A count below one yields a single image.
func SampleMedia(count int) []generation.Media {
	if count < 1 {
		count = 1
	}
	media := make([]generation.Media, 0, count)
	for i := 0; i < count; i++ {
		media = append(media, generation.Media{
			Index:    i,
			Kind:     generation.MediaKindImage,
			MIMEType: "image/png",
			Data:     []byte(fmt.Sprintf("image-%d", i)),
		})
	}
	return media
}
