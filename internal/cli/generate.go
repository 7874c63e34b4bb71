package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/Sniplyy/VibeWall/internal/generation"
	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"
)

type generateOptions struct {
	prompt      string
	mode        string
	aspectRatio string
	imageSize   string
	refs        []string
	count       int
	duration    int
	fps         int
	outDir      string
	prefix      string
}

func newGenerateCommand(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate wallpapers and write them to a directory",
		Example: `  vibewall generate --prompt "misty pine forest" --aspect-ratio 9:16 --count 4
  vibewall generate --mode video --prompt "slow waves" --ref beach.jpg --out ./walls`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runGenerate(ctx, cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.prompt, "prompt", "p", "", "text prompt (required)")
	f.StringVar(&opts.mode, "mode", string(generation.ModeImage), "image or video")
	f.StringVar(&opts.aspectRatio, "aspect-ratio", string(generation.AspectRatioPortrait), "wallpaper aspect ratio, e.g. 9:16")
	f.StringVar(&opts.imageSize, "image-size", "", "image resolution tier: 1K, 2K or 4K")
	f.StringArrayVar(&opts.refs, "ref", nil, "reference image file (repeatable, up to 3)")
	f.IntVarP(&opts.count, "count", "n", 0, "number of image variations (default from config)")
	f.IntVar(&opts.duration, "duration", 0, "video duration hint in seconds")
	f.IntVar(&opts.fps, "fps", 0, "video frame rate hint")
	f.StringVarP(&opts.outDir, "out", "o", ".", "output directory")
	f.StringVar(&opts.prefix, "prefix", "", "output file name prefix (default vibewall-<timestamp>)")
	_ = cmd.MarkFlagRequired("prompt")

	return cmd
}

func runGenerate(ctx context.Context, cmd *cobra.Command, root *rootOptions, opts *generateOptions) error {
	refs, err := loadReferences(opts.refs)
	if err != nil {
		return err
	}

	req := generation.Request{
		Prompt:          opts.prompt,
		Mode:            generation.Mode(opts.mode),
		AspectRatio:     generation.AspectRatio(opts.aspectRatio),
		ImageSize:       generation.ImageSize(opts.imageSize),
		ReferenceImages: refs,
		DurationSeconds: opts.duration,
		FPS:             opts.fps,
	}
	if err := req.Validate(); err != nil {
		return err
	}

	a, _, l, err := root.bootstrap(ctx)
	if err != nil {
		return err
	}

	start := time.Now()
	media, err := a.Generator().GenerateN(ctx, req, opts.count)
	if err != nil {
		var classified *generation.ClassifiedError
		if errors.As(err, &classified) {
			l.Debug("generation failed", "kind", classified.Kind.String(), "error", classified)
			return errors.New(classified.UserMessage())
		}
		return err
	}

	prefix := opts.prefix
	if prefix == "" {
		prefix = "vibewall-" + start.Format("20060102-150405")
	}
	paths, err := writeMedia(opts.outDir, prefix, media)
	if err != nil {
		return err
	}

	for _, p := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	l.Info("generation finished",
		"files", len(paths),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// loadReferences reads reference images from disk, sniffing their type.
func loadReferences(paths []string) ([]generation.InlineImage, error) {
	if len(paths) > generation.MaxReferenceImages {
		return nil, fmt.Errorf("at most %d reference images are allowed, got %d", generation.MaxReferenceImages, len(paths))
	}
	refs := make([]generation.InlineImage, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read reference image: %w", err)
		}
		mime := mimetype.Detect(data)
		if !strings.HasPrefix(mime.String(), "image/") {
			return nil, fmt.Errorf("reference %s is %s, not an image", filepath.Base(p), mime.String())
		}
		refs = append(refs, generation.InlineImage{MIMEType: mime.String(), Data: data})
	}
	return refs, nil
}

// writeMedia writes each item as <prefix>-<index><ext> under dir.
func writeMedia(dir, prefix string, media []generation.Media) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	paths := make([]string, 0, len(media))
	for _, m := range media {
		path := filepath.Join(dir, fmt.Sprintf("%s-%d%s", prefix, m.Index, extensionFor(m)))
		if err := os.WriteFile(path, m.Data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func extensionFor(m generation.Media) string {
	if mt := mimetype.Lookup(m.MIMEType); mt != nil && mt.Extension() != "" {
		return mt.Extension()
	}
	if m.Kind == generation.MediaKindVideo {
		return ".mp4"
	}
	return ".png"
}
