package api

import (
	"fmt"
	"time"

	"github.com/Sniplyy/VibeWall/internal/generation"
	"github.com/Sniplyy/VibeWall/internal/task"
)

// CreateGenerationRequest is the body of POST /v1/generations.
type CreateGenerationRequest struct {
	Prompt      string `json:"prompt"       validate:"required,max=4000"`
	Mode        string `json:"mode"         validate:"required,oneof=image video"`
	AspectRatio string `json:"aspect_ratio" validate:"required,oneof=1:1 2:3 3:2 3:4 4:3 9:16 16:9 21:9"`
	ImageSize   string `json:"image_size,omitempty" validate:"omitempty,oneof=1K 2K 4K"`

	// ReferenceImages are data URLs, "prefix,base64" pairs, or bare base64.
	ReferenceImages []string `json:"reference_images,omitempty" validate:"max=3,dive,required"`

	DurationSeconds int `json:"duration_seconds,omitempty" validate:"gte=0,lte=60"`
	FPS             int `json:"fps,omitempty"              validate:"gte=0,lte=60"`

	// Variations overrides the configured image variation count.
	Variations int `json:"variations,omitempty" validate:"gte=0,lte=8"`
}

// ToGeneration converts the DTO, decoding reference images.
func (req CreateGenerationRequest) ToGeneration() (generation.Request, error) {
	out := generation.Request{
		Prompt:          req.Prompt,
		Mode:            generation.Mode(req.Mode),
		AspectRatio:     generation.AspectRatio(req.AspectRatio),
		ImageSize:       generation.ImageSize(req.ImageSize),
		DurationSeconds: req.DurationSeconds,
		FPS:             req.FPS,
	}
	for i, raw := range req.ReferenceImages {
		img, err := generation.ParseDataURL(raw)
		if err != nil {
			return generation.Request{}, fmt.Errorf("reference_images[%d]: %w", i, err)
		}
		out.ReferenceImages = append(out.ReferenceImages, img)
	}
	if err := out.Validate(); err != nil {
		return generation.Request{}, err
	}
	return out, nil
}

// GenerationAccepted is returned by POST /v1/generations.
type GenerationAccepted struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	StatusURL string `json:"status_url"`
}

// MediaResponse describes one generated artifact.
type MediaResponse struct {
	Index    int    `json:"index"`
	Kind     string `json:"kind"`
	MIMEType string `json:"mime_type"`
	Size     int    `json:"size_bytes"`
	URL      string `json:"url"`
	DataURL  string `json:"data_url,omitempty"`
}

// FailureResponse is the user-facing view of a classified failure.
type FailureResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// GenerationResponse is returned by GET /v1/generations/{id}.
type GenerationResponse struct {
	ID        string           `json:"id"`
	Status    string           `json:"status"`
	Mode      string           `json:"mode"`
	Media     []MediaResponse  `json:"media,omitempty"`
	Error     *FailureResponse `json:"error,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// generationToResponse builds the response body. inline adds data URLs.
func generationToResponse(result task.GenerationResult, inline bool) GenerationResponse {
	resp := GenerationResponse{
		ID:        result.ID.String(),
		Status:    string(result.Status),
		Mode:      string(result.Mode),
		CreatedAt: result.CreatedAt,
		UpdatedAt: result.UpdatedAt,
	}
	for _, m := range result.Media {
		mr := MediaResponse{
			Index:    m.Index,
			Kind:     string(m.Kind),
			MIMEType: m.MIMEType,
			Size:     len(m.Data),
			URL:      mediaPath(result.ID.String(), m.Index),
		}
		if inline {
			mr.DataURL = m.DataURL()
		}
		resp.Media = append(resp.Media, mr)
	}
	if result.Failure != nil {
		resp.Error = &FailureResponse{
			Kind:    result.Failure.Kind.String(),
			Message: result.Failure.UserMessage(),
		}
	}
	return resp
}

func statusPath(id string) string {
	return "/v1/generations/" + id
}

func mediaPath(id string, index int) string {
	return fmt.Sprintf("/v1/generations/%s/media/%d", id, index)
}
