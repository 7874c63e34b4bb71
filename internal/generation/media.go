package generation

// MediaKind distinguishes still images from videos.
type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
)

// Media is one successfully generated artifact.
type Media struct {
	// Index is the variation slot the media was produced for.
	Index    int
	Kind     MediaKind
	MIMEType string
	Data     []byte
	// URI is the upstream location the bytes were downloaded from. Empty for
	// images, which arrive inline.
	URI string
}

// DataURL renders the media bytes as a base64 data URL.
func (m Media) DataURL() string {
	return encodeDataURL(m.MIMEType, m.Data)
}
