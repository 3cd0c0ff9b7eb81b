package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	watermark "github.com/yyyoichi/aigc_watermark"
	"github.com/yyyoichi/aigc_watermark/internal/imagecodec"
	"github.com/yyyoichi/aigc_watermark/mark"
)

// go run ./cmd/aigcmark embed -in photo.png -out photo_marked.png -text "generated by model x"
// go run ./cmd/aigcmark embed -in photo.jpg -out photo_marked.webp -bitmap logo.png
// go run ./cmd/aigcmark extract -in photo_marked.png
// go run ./cmd/aigcmark capacity -in photo.png

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch os.Args[1] {
	case "embed":
		err = runEmbed(ctx, os.Args[2:])
	case "extract":
		err = runExtract(ctx, os.Args[2:])
	case "capacity":
		err = runCapacity(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: aigcmark embed|extract|capacity [flags]")
}

func runEmbed(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("embed", flag.ExitOnError)
	input := fs.String("in", "", "Path to the image to mark (png/jpg/webp)")
	output := fs.String("out", "", "Output path; the extension selects png, webp or jpg (defaults to <name>_marked.png)")
	text := fs.String("text", "", "Text to embed")
	bitmap := fs.String("bitmap", "", "Logo image to embed as a monochrome bitmap")
	size := fs.Int("size", 0, "Side length of the bitmap mark")
	strength := fs.Float64("strength", watermark.DefaultStrength, "Embedding strength (0.01..0.5)")
	levels := fs.String("levels", "3,2,1", "Decomposition levels to try, in order")
	channel := fs.String("channel", "luma", "Channel to embed into (luma/red/green/blue/alpha)")
	golay := fs.Int64("golay", 0, "Protect the frame with Golay coding shuffled by this seed (0 disables)")
	_ = fs.Parse(args)

	if *input == "" || (*text == "") == (*bitmap == "") {
		fs.Usage()
		return fmt.Errorf("-in and exactly one of -text or -bitmap are required")
	}

	outPath := *output
	if outPath == "" {
		base := strings.TrimSuffix(filepath.Base(*input), filepath.Ext(*input))
		outPath = filepath.Join(filepath.Dir(*input), base+"_marked.png")
	}

	opts, err := options(*levels, *channel, *golay)
	if err != nil {
		return err
	}
	opts = append(opts, watermark.WithOutputFormat(formatOf(outPath)))
	w, err := watermark.New(opts...)
	if err != nil {
		return err
	}

	payload := watermark.TextPayload(*text)
	if *bitmap != "" {
		logo, err := imaging.Open(*bitmap)
		if err != nil {
			return fmt.Errorf("open bitmap: %w", err)
		}
		if payload, err = watermark.ImagePayload(logo, *size); err != nil {
			return err
		}
	}

	data, err := os.ReadFile(*input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	res, err := w.EmbedInvisible(ctx, data, payload, *strength, watermark.AlgorithmDWT)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, res.Image, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Printf("Processed %s -> %s [%s]\n", *input, outPath, res.Message)
	return nil
}

func runExtract(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	input := fs.String("in", "", "Path to the image to inspect")
	bitmapOut := fs.String("bitmap-out", "", "Write a recovered bitmap mark to this PNG path")
	golay := fs.Int64("golay", 0, "Shuffle seed of Golay protected frames (0 uses the default)")
	asJSON := fs.Bool("json", false, "Print the result as JSON")
	_ = fs.Parse(args)

	if *input == "" {
		fs.Usage()
		return fmt.Errorf("-in is required")
	}
	var opts []watermark.Option
	if *golay != 0 {
		opts = append(opts, watermark.WithGolay(*golay))
	}
	w, err := watermark.New(opts...)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(*input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	res, err := w.ExtractInvisible(ctx, data, watermark.AlgorithmDWT)
	if err != nil {
		return err
	}

	if *bitmapOut != "" && res.Kind == watermark.PayloadImage {
		if err := os.WriteFile(*bitmapOut, res.ImageBytes, 0o644); err != nil {
			return fmt.Errorf("write bitmap: %w", err)
		}
	}
	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Detected   bool    `json:"detected"`
			Kind       string  `json:"kind"`
			Text       string  `json:"text,omitempty"`
			Confidence float64 `json:"confidence"`
			Channel    string  `json:"channel,omitempty"`
			Levels     int     `json:"levels,omitempty"`
		}{
			Detected:   res.Detected,
			Kind:       string(res.Kind),
			Text:       res.Text,
			Confidence: res.Confidence,
			Channel:    channelName(res),
			Levels:     res.Levels,
		})
	}
	if !res.Detected {
		fmt.Printf("No watermark detected in %s (confidence %.2f).\n", *input, res.Confidence)
		return nil
	}
	switch res.Kind {
	case watermark.PayloadText:
		fmt.Printf("Detected text watermark (confidence %.2f, %v level %d): %s\n", res.Confidence, res.Channel, res.Levels, res.Text)
	case watermark.PayloadImage:
		fmt.Printf("Detected %dx%d bitmap watermark (confidence %.2f, %v level %d).\n",
			res.Bitmap.Width, res.Bitmap.Height, res.Confidence, res.Channel, res.Levels)
	}
	return nil
}

func runCapacity(args []string) error {
	fs := flag.NewFlagSet("capacity", flag.ExitOnError)
	input := fs.String("in", "", "Path to the image")
	_ = fs.Parse(args)
	if *input == "" {
		fs.Usage()
		return fmt.Errorf("-in is required")
	}
	data, err := os.ReadFile(*input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	cfg, format, err := imagecodec.DecodeConfig(data)
	if err != nil {
		return err
	}
	fmt.Printf("%s %dx%d\n", format, cfg.Width, cfg.Height)
	for levels := 1; levels <= 4; levels++ {
		bits, err := watermark.MaxPayloadBits(cfg.Width, cfg.Height, levels)
		if err != nil {
			fmt.Printf("level %d: %v\n", levels, err)
			continue
		}
		fmt.Printf("level %d: %d bits, %d text bytes\n", levels, bits, mark.MaxTextBytes(bits))
	}
	return nil
}

func options(levels, channel string, golay int64) ([]watermark.Option, error) {
	var ls []int
	for _, s := range strings.Split(levels, ",") {
		var l int
		if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d", &l); err != nil {
			return nil, fmt.Errorf("invalid level %q", s)
		}
		ls = append(ls, l)
	}
	ch, err := watermark.ParseChannel(channel)
	if err != nil {
		return nil, err
	}
	opts := []watermark.Option{watermark.WithEmbedLevels(ls...), watermark.WithChannel(ch)}
	if golay != 0 {
		opts = append(opts, watermark.WithGolay(golay))
	}
	return opts, nil
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".webp":
		return imagecodec.WEBP
	case ".jpg", ".jpeg":
		return imagecodec.JPEG
	default:
		return imagecodec.PNG
	}
}

func channelName(res *watermark.ExtractResult) string {
	if !res.Detected {
		return ""
	}
	return res.Channel.String()
}
