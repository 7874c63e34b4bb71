package generation

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Mode selects between still image and video generation.
type Mode string

const (
	ModeImage Mode = "image"
	ModeVideo Mode = "video"
)

// AspectRatio is one of the aspect ratios offered by the wallpaper picker.
type AspectRatio string

const (
	AspectRatioSquare    AspectRatio = "1:1"
	AspectRatio2x3       AspectRatio = "2:3"
	AspectRatio3x2       AspectRatio = "3:2"
	AspectRatio3x4       AspectRatio = "3:4"
	AspectRatio4x3       AspectRatio = "4:3"
	AspectRatioPortrait  AspectRatio = "9:16"
	AspectRatioLandscape AspectRatio = "16:9"
	AspectRatioUltrawide AspectRatio = "21:9"
)

// AspectRatios lists every supported ratio in picker order.
var AspectRatios = []AspectRatio{
	AspectRatioSquare,
	AspectRatio2x3,
	AspectRatio3x2,
	AspectRatio3x4,
	AspectRatio4x3,
	AspectRatioPortrait,
	AspectRatioLandscape,
	AspectRatioUltrawide,
}

// ImageSize is the requested output resolution tier for still images.
type ImageSize string

const (
	ImageSize1K ImageSize = "1K"
	ImageSize2K ImageSize = "2K"
	ImageSize4K ImageSize = "4K"
)

// Defaults applied by Request.WithDefaults.
const (
	DefaultImageSize       = ImageSize1K
	DefaultDurationSeconds = 5
	DefaultFPS             = 30
	MaxReferenceImages     = 3
)

// InlineImage is raw image bytes with their MIME type.
type InlineImage struct {
	MIMEType string `json:"mime_type" validate:"required"`
	Data     []byte `json:"data" validate:"required"`
}

// Request describes one user-initiated generation.
type Request struct {
	Prompt          string        `json:"prompt" validate:"required"`
	ReferenceImages []InlineImage `json:"reference_images,omitempty" validate:"max=3,dive"`
	Mode            Mode          `json:"mode" validate:"required,oneof=image video"`
	AspectRatio     AspectRatio   `json:"aspect_ratio" validate:"required,oneof=1:1 2:3 3:2 3:4 4:3 9:16 16:9 21:9"`
	ImageSize       ImageSize     `json:"image_size,omitempty" validate:"omitempty,oneof=1K 2K 4K"`
	DurationSeconds int           `json:"duration_seconds,omitempty" validate:"gte=0,lte=60"`
	FPS             int           `json:"fps,omitempty" validate:"gte=0,lte=60"`
}

var validate = validator.New()

// Validate checks the request against its field constraints.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return fmt.Errorf("%w: prompt must not be blank", ErrInvalidRequest)
	}
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

// WithDefaults returns a copy with zero-valued optional fields filled in.
func (r Request) WithDefaults() Request {
	if r.Mode == ModeImage && r.ImageSize == "" {
		r.ImageSize = DefaultImageSize
	}
	if r.Mode == ModeVideo {
		if r.DurationSeconds == 0 {
			r.DurationSeconds = DefaultDurationSeconds
		}
		if r.FPS == 0 {
			r.FPS = DefaultFPS
		}
	}
	return r
}

var dataURLPattern = regexp.MustCompile(`^data:([a-zA-Z0-9]+/[a-zA-Z0-9\-.+]+);base64,(.+)$`)

var mimeHintPattern = regexp.MustCompile(`:(.*?);`)

// ParseDataURL decodes a base64 data URL into an InlineImage.
//
// Well-formed "data:<mime>;base64,<payload>" strings are parsed strictly.
// Loosely formed strings fall back to splitting on the first comma, and a
// bare base64 payload is accepted as image/png.
func ParseDataURL(s string) (InlineImage, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return InlineImage{}, fmt.Errorf("%w: empty image data", ErrInvalidRequest)
	}

	mimeType, payload := "image/png", s
	if m := dataURLPattern.FindStringSubmatch(s); m != nil {
		mimeType, payload = m[1], m[2]
	} else if head, tail, ok := strings.Cut(s, ","); ok {
		payload = tail
		if hint := mimeHintPattern.FindStringSubmatch(head); hint != nil && hint[1] != "" {
			mimeType = hint[1]
		}
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return InlineImage{}, fmt.Errorf("%w: image data is not valid base64: %v", ErrInvalidRequest, err)
	}
	return InlineImage{MIMEType: mimeType, Data: data}, nil
}

// DataURL renders the image as a base64 data URL.
func (i InlineImage) DataURL() string {
	return encodeDataURL(i.MIMEType, i.Data)
}

func encodeDataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
