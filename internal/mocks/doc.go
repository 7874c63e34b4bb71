// Package mocks provides shared test doubles for the generation pipeline.
//
// Each mock records its calls and lets a test override behavior through a
// function field, falling back to canned values:
//
//	gen := &mocks.MockGenerator{
//	    GenerateNFn: func(ctx context.Context, req generation.Request, count int) ([]generation.Media, error) {
//	        return nil, generation.Classify("429 RESOURCE_EXHAUSTED")
//	    },
//	}
//
// When adding a mock, name the file after the interface and give it a Fn
// field per method plus call tracking guarded by a mutex.
package mocks
