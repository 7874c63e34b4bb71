package gemini

import (
	"encoding/json"
	"fmt"

	"github.com/Sniplyy/VibeWall/internal/generation"
	"google.golang.org/genai"
)

// imageContents puts reference images first and the prompt last, the order
// the image model expects for "edit this" style prompts.
func imageContents(req generation.Request) []*genai.Content {
	parts := make([]*genai.Part, 0, len(req.ReferenceImages)+1)
	for _, img := range req.ReferenceImages {
		parts = append(parts, genai.NewPartFromBytes(img.Data, img.MIMEType))
	}
	parts = append(parts, genai.NewPartFromText(req.Prompt))
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}

func imageConfig(req generation.Request) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		ImageConfig: &genai.ImageConfig{
			AspectRatio: string(req.AspectRatio),
			ImageSize:   string(req.ImageSize),
		},
	}
}

func imageResponse(resp *genai.GenerateContentResponse) *generation.ImageResponse {
	out := &generation.ImageResponse{}
	if resp == nil {
		return out
	}
	if resp.PromptFeedback != nil {
		out.BlockReason = string(resp.PromptFeedback.BlockReason)
	}
	for _, cand := range resp.Candidates {
		if cand == nil {
			continue
		}
		if out.FinishReason == "" {
			out.FinishReason = string(cand.FinishReason)
		}
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			out.Parts = append(out.Parts, generation.InlineImage{
				MIMEType: part.InlineData.MIMEType,
				Data:     part.InlineData.Data,
			})
		}
	}
	return out
}

// videoSource splits a job into the SDK's start image and config.
func videoSource(job generation.VideoJob) (*genai.Image, *genai.GenerateVideosConfig) {
	cfg := &genai.GenerateVideosConfig{
		NumberOfVideos: 1,
		AspectRatio:    job.AspectRatio,
		Resolution:     job.Resolution,
	}
	for _, ref := range job.References {
		cfg.ReferenceImages = append(cfg.ReferenceImages, &genai.VideoGenerationReferenceImage{
			Image:         &genai.Image{ImageBytes: ref.Data, MIMEType: ref.MIMEType},
			ReferenceType: genai.VideoGenerationReferenceTypeAsset,
		})
	}

	var start *genai.Image
	if job.StartFrame != nil {
		start = &genai.Image{ImageBytes: job.StartFrame.Data, MIMEType: job.StartFrame.MIMEType}
	}
	return start, cfg
}

// operationHandle re-encodes an SDK operation so both poll channels share
// one decoder and one set of result extraction rules.
func operationHandle(op *genai.GenerateVideosOperation) (*generation.OperationHandle, error) {
	if op == nil {
		return nil, ErrNilResponse
	}
	data, err := json.Marshal(op)
	if err != nil {
		return nil, fmt.Errorf("encode operation %s: %w", op.Name, err)
	}
	return generation.DecodeOperation(data)
}
