package gemini

import (
	"testing"

	"github.com/Sniplyy/VibeWall/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestImageContents(t *testing.T) {
	req := generation.Request{
		Prompt: "a lighthouse at dusk",
		ReferenceImages: []generation.InlineImage{
			{MIMEType: "image/jpeg", Data: []byte("a")},
			{MIMEType: "image/png", Data: []byte("b")},
		},
	}

	contents := imageContents(req)

	require.Len(t, contents, 1)
	assert.Equal(t, genai.RoleUser, contents[0].Role)
	parts := contents[0].Parts
	require.Len(t, parts, 3)
	assert.Equal(t, "image/jpeg", parts[0].InlineData.MIMEType)
	assert.Equal(t, []byte("b"), parts[1].InlineData.Data)
	assert.Equal(t, "a lighthouse at dusk", parts[2].Text)
}

func TestImageConfig(t *testing.T) {
	cfg := imageConfig(generation.Request{AspectRatio: generation.AspectRatioPortrait, ImageSize: generation.ImageSize2K})

	require.NotNil(t, cfg.ImageConfig)
	assert.Equal(t, "9:16", cfg.ImageConfig.AspectRatio)
	assert.Equal(t, "2K", cfg.ImageConfig.ImageSize)
}

func TestImageResponse(t *testing.T) {
	tests := []struct {
		name      string
		resp      *genai.GenerateContentResponse
		wantParts int
		wantBlock string
		wantEnd   string
	}{
		{
			name:      "nil response",
			resp:      nil,
			wantParts: 0,
		},
		{
			name: "text and image parts",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{
					FinishReason: genai.FinishReasonStop,
					Content: &genai.Content{Parts: []*genai.Part{
						{Text: "here you go"},
						{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte("png")}},
					}},
				}},
			},
			wantParts: 1,
			wantEnd:   "STOP",
		},
		{
			name: "empty inline data skipped",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{
					Content: &genai.Content{Parts: []*genai.Part{{InlineData: &genai.Blob{MIMEType: "image/png"}}}},
				}},
			},
			wantParts: 0,
		},
		{
			name: "blocked prompt",
			resp: &genai.GenerateContentResponse{
				PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: genai.BlockedReasonSafety},
			},
			wantBlock: "SAFETY",
		},
		{
			name: "image safety finish",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonImageSafety}},
			},
			wantEnd: "IMAGE_SAFETY",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := imageResponse(tc.resp)

			require.NotNil(t, out)
			assert.Len(t, out.Parts, tc.wantParts)
			assert.Equal(t, tc.wantBlock, out.BlockReason)
			assert.Equal(t, tc.wantEnd, out.FinishReason)
		})
	}
}

func TestVideoSource(t *testing.T) {
	frame := generation.InlineImage{MIMEType: "image/png", Data: []byte("frame")}

	t.Run("start frame", func(t *testing.T) {
		start, cfg := videoSource(generation.VideoJob{
			AspectRatio: "9:16",
			Resolution:  "720p",
			StartFrame:  &frame,
		})

		require.NotNil(t, start)
		assert.Equal(t, []byte("frame"), start.ImageBytes)
		assert.Equal(t, int32(1), cfg.NumberOfVideos)
		assert.Equal(t, "9:16", cfg.AspectRatio)
		assert.Equal(t, "720p", cfg.Resolution)
		assert.Empty(t, cfg.ReferenceImages)
	})

	t.Run("asset references", func(t *testing.T) {
		start, cfg := videoSource(generation.VideoJob{
			AspectRatio: "16:9",
			References:  []generation.InlineImage{frame, frame},
		})

		assert.Nil(t, start)
		require.Len(t, cfg.ReferenceImages, 2)
		assert.Equal(t, genai.VideoGenerationReferenceTypeAsset, cfg.ReferenceImages[0].ReferenceType)
		assert.Equal(t, "image/png", cfg.ReferenceImages[1].Image.MIMEType)
	})
}

func TestOperationHandle(t *testing.T) {
	_, err := operationHandle(nil)
	assert.ErrorIs(t, err, ErrNilResponse)

	handle, err := operationHandle(&genai.GenerateVideosOperation{
		Name: "operations/vid-1",
		Done: true,
		Response: &genai.GenerateVideosResponse{
			GeneratedVideos: []*genai.GeneratedVideo{{Video: &genai.Video{URI: "https://files/vid.mp4"}}},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "operations/vid-1", handle.Name)
	assert.True(t, handle.Terminal())
	uri, ok := handle.ResultURI()
	assert.True(t, ok)
	assert.Equal(t, "https://files/vid.mp4", uri)
}
