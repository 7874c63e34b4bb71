package generation

import "context"

// ImageResponse is the part of an image generation response the runner
// needs: any inline media parts plus the signals used to tell a silent
// empty result from an explicit safety block.
type ImageResponse struct {
	Parts []InlineImage
	// FinishReason of the first candidate, e.g. "STOP" or "IMAGE_SAFETY".
	FinishReason string
	// BlockReason from prompt feedback when the prompt itself was rejected.
	BlockReason string
}

// SafetyReason returns the upstream reason the response was blocked, if any.
func (r *ImageResponse) SafetyReason() (string, bool) {
	if r == nil {
		return "", false
	}
	if r.BlockReason != "" && r.BlockReason != "BLOCKED_REASON_UNSPECIFIED" {
		return r.BlockReason, true
	}
	switch r.FinishReason {
	case "SAFETY", "IMAGE_SAFETY", "PROHIBITED_CONTENT", "IMAGE_PROHIBITED_CONTENT", "BLOCKLIST", "SPII":
		return r.FinishReason, true
	}
	return "", false
}

// VideoJob is a fully planned video submission.
type VideoJob struct {
	Model       string
	Prompt      string
	AspectRatio string
	Resolution  string
	// StartFrame seeds the first frame when exactly one reference image
	// was supplied.
	StartFrame *InlineImage
	// References are asset references used when several images were supplied.
	References []InlineImage
}

// ImageSubmitter sends one image generation request upstream.
type ImageSubmitter interface {
	GenerateImage(ctx context.Context, req Request) (*ImageResponse, error)
}

// VideoSubmitter starts a long-running video generation.
type VideoSubmitter interface {
	SubmitVideo(ctx context.Context, job VideoJob) (*OperationHandle, error)
}

// OperationPoller fetches the current state of a long-running operation.
type OperationPoller interface {
	PollOperation(ctx context.Context, name string) (*OperationHandle, error)
}

// Downloader fetches finished media by URI, returning its bytes and MIME type.
type Downloader interface {
	Download(ctx context.Context, uri string) ([]byte, string, error)
}
