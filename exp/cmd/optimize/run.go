package main

import (
	"bytes"
	"context"
	"exp/internal/db"
	"exp/internal/images"
	"fmt"
	"image"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	watermark "github.com/yyyoichi/aigc_watermark"
	"github.com/yyyoichi/aigc_watermark/mark"
)

// TestParams is one embedding of one mark into one fitted image.
type TestParams struct {
	ImageID     int64
	ImageSizeID int64

	Mark      *db.Mark
	MarkParam *db.MarkParam

	ImageWidth, ImageHeight int
	FrameBits               int
	Capacity                int
	EmbedCount              float64
}

func (p TestParams) String() string {
	return fmt.Sprintf("%dx%d %s L%d s=%.2f ecc=%s x%.1f",
		p.ImageWidth, p.ImageHeight, p.MarkParam.Channel, p.MarkParam.Levels, p.MarkParam.Strength, p.Mark.ECC, p.EmbedCount)
}

func markOptions(mk *db.Mark) []mark.Option {
	if mk.ECC == EccGolay {
		return []mark.Option{mark.WithGolay(mark.DefaultShuffleSeed)}
	}
	return []mark.Option{mark.WithoutECC()}
}

// sweep is the fixed part of a run: what to embed and how.
type sweep struct {
	marks  []*db.Mark
	params []*db.MarkParam
}

func runMain(urls []string, numImages, offset int) {
	ctx := context.Background()

	if offset >= len(urls) {
		log.Fatalf("offset %d is beyond the %d listed images", offset, len(urls))
	}
	urls = urls[offset:]
	if numImages > 0 && numImages < len(urls) {
		urls = urls[:numImages]
	}

	var sw sweep
	var err error
	if sw.marks, err = database.ListMarks(); err != nil || len(sw.marks) == 0 {
		log.Fatalf("no marks in database: %v", err)
	}
	if sw.params, err = database.ListMarkParams(); err != nil {
		log.Fatalf("list mark params: %v", err)
	}
	sizes, err := database.ListImageSizes()
	if err != nil {
		log.Fatalf("list image sizes: %v", err)
	}
	log.Printf("sweeping %d images from offset %d", len(urls), offset)

	for i, url := range urls {
		log.Printf("[%d/%d] %s", i+1, len(urls), url)
		imageID, err := database.InsertImage(url)
		if err != nil {
			log.Printf("  insert image: %v", err)
			continue
		}
		for _, size := range sizes {
			tests := sw.plan(imageID, size)
			if len(tests) == 0 {
				log.Printf("  %dx%d: nothing left to run", size.Width, size.Height)
				continue
			}
			img, err := images.FetchImageWithSize(url, size.Width, size.Height)
			if err != nil {
				log.Printf("  %dx%d: %v", size.Width, size.Height, err)
				continue
			}
			for _, r := range runAll(ctx, img, tests) {
				if _, err := database.InsertResult(r); err != nil {
					log.Printf("  insert result: %v", err)
				}
			}
		}
	}
}

// plan lists the embeddings that fit an image of size and have no stored
// lossless result yet.
func (sw sweep) plan(imageID int64, size *db.ImageSize) []TestParams {
	var tests []TestParams
	for _, mp := range sw.params {
		capacity, err := watermark.MaxPayloadBits(size.Width, size.Height, mp.Levels)
		if err != nil {
			continue
		}
		for _, mk := range sw.marks {
			bits := mark.FrameBits(mark.KindText, len(mk.Text), markOptions(mk)...)
			if bits > capacity {
				continue
			}
			if id, err := database.ResultExists(imageID, size.ID, mk.ID, mp.ID, 0); err == nil && id != 0 {
				continue
			}
			tests = append(tests, TestParams{
				ImageID:     imageID,
				ImageSizeID: size.ID,
				Mark:        mk,
				MarkParam:   mp,
				ImageWidth:  size.Width,
				ImageHeight: size.Height,
				FrameBits:   bits,
				Capacity:    capacity,
				EmbedCount:  float64(capacity) / float64(bits),
			})
		}
	}
	return tests
}

// runAll runs tests on one worker per CPU and gathers the results.
func runAll(ctx context.Context, img image.Image, tests []TestParams) []*db.Result {
	var (
		mu  sync.Mutex
		out []*db.Result
		wg  sync.WaitGroup
	)
	next := make(chan TestParams)
	for range runtime.GOMAXPROCS(0) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range next {
				rs := testWatermark(ctx, img, p)
				mu.Lock()
				out = append(out, rs...)
				mu.Unlock()
			}
		}()
	}
	for _, p := range tests {
		next <- p
	}
	close(next)
	wg.Wait()
	return out
}

// jpegRoundTrip re-encodes img as a JPEG of quality q. Quality 0 returns img.
func jpegRoundTrip(img image.Image, q int) (image.Image, error) {
	if q == 0 {
		return img, nil
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(q)); err != nil {
		return nil, err
	}
	return imaging.Decode(&buf)
}

// testWatermark embeds once, then extracts after every JPEG quality.
func testWatermark(ctx context.Context, img image.Image, params TestParams) []*db.Result {
	ch, err := watermark.ParseChannel(params.MarkParam.Channel)
	if err != nil {
		log.Printf("  [FAIL] %v: %v", params, err)
		return nil
	}
	opts := []watermark.Option{
		watermark.WithEmbedLevels(params.MarkParam.Levels),
		watermark.WithChannel(ch),
	}
	if params.Mark.ECC == EccGolay {
		opts = append(opts, watermark.WithGolay(mark.DefaultShuffleSeed))
	}
	w, err := watermark.New(opts...)
	if err != nil {
		log.Printf("  [FAIL] %v: %v", params, err)
		return nil
	}

	start := time.Now()
	marked, err := w.Embed(ctx, img, watermark.TextPayload(params.Mark.Text), params.MarkParam.Strength)
	if err != nil {
		log.Printf("  [FAIL] %v: embed: %v", params, err)
		return nil
	}
	p, s := min(psnr(img, marked), 100), ssim(img, marked)

	results := make([]*db.Result, 0, len(defaultQualities))
	for _, q := range defaultQualities {
		attacked, err := jpegRoundTrip(marked, q)
		if err != nil {
			log.Printf("  [FAIL] %v q%d: %v", params, q, err)
			continue
		}
		res, err := w.Extract(ctx, attacked)
		if err != nil {
			log.Printf("  [FAIL] %v q%d: extract: %v", params, q, err)
			continue
		}
		success := res.Detected && res.Text == params.Mark.Text
		status := "FAIL"
		if success {
			status = "OK"
		}
		log.Printf("  [%s] %v q%d: c=%.3f psnr=%.2f ssim=%.4f %v",
			status, params, q, res.Confidence, p, s, time.Since(start))

		results = append(results, &db.Result{
			ImageID:     params.ImageID,
			ImageSizeID: params.ImageSizeID,
			MarkID:      params.Mark.ID,
			MarkParamID: params.MarkParam.ID,
			Quality:     q,
			FrameBits:   params.FrameBits,
			Capacity:    params.Capacity,
			EmbedCount:  params.EmbedCount,
			Detected:    res.Detected,
			Success:     success,
			Confidence:  res.Confidence,
			PSNR:        p,
			SSIM:        s,
		})
	}
	return results
}
