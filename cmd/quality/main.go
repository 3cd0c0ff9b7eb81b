// Command quality measures how often a text mark survives JPEG re-encoding
// across image sizes, embed levels and strengths.
package main

import (
	"bufio"
	"bytes"
	"context"
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/yyyoichi/httpcache-go"
	watermark "github.com/yyyoichi/aigc_watermark"
	"golang.org/x/image/draw"
)

const cacheDir = "/tmp/aigc_quality_http_cache/"

// throttle spaces requests to the origin at least gap apart.
type throttle struct {
	mu   sync.Mutex
	gap  time.Duration
	next time.Time
}

func (t *throttle) Do(req *http.Request) (*http.Response, error) {
	t.mu.Lock()
	if wait := time.Until(t.next); wait > 0 {
		time.Sleep(wait)
	}
	t.next = time.Now().Add(t.gap)
	t.mu.Unlock()

	log.Printf("fetch %s", req.URL)
	return http.DefaultClient.Do(req)
}

// resizer answers a request carrying w and h query parameters with the
// original image, fetched once through origin, fitted to w x h and stored as
// a quality 100 JPEG.
type resizer struct {
	origin httpcache.Client
}

func (r *resizer) Do(req *http.Request) (*http.Response, error) {
	q := req.URL.Query()
	w, errW := strconv.Atoi(q.Get("w"))
	h, errH := strconv.Atoi(q.Get("h"))
	if errW != nil || errH != nil {
		return nil, fmt.Errorf("bad size in %s", req.URL)
	}
	u := *req.URL
	u.RawQuery = ""
	req.URL = &u

	resp, err := r.origin.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	src, err := imaging.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", u.String(), err)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fit(src, w, h), imaging.JPEG, imaging.JPEGQuality(100)); err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(&buf)
	return resp, nil
}

var sized = httpcache.Client{
	Client: &resizer{origin: httpcache.Client{
		Client:  &throttle{gap: 250 * time.Millisecond},
		Cache:   httpcache.NewStorageCache(cacheDir),
		Handler: httpcache.NewDefaultHandler(),
	}},
	Cache:   httpcache.NewStorageCache(cacheDir),
	Handler: httpcache.NewDefaultHandler(),
}

// fit crops the centre of src to the aspect ratio of w x h and scales it.
func fit(src image.Image, w, h int) image.Image {
	b := src.Bounds()
	crop := b
	if cw := b.Dy() * w / h; cw < b.Dx() {
		crop.Min.X += (b.Dx() - cw) / 2
		crop.Max.X = crop.Min.X + cw
	} else if ch := b.Dx() * h / w; ch < b.Dy() {
		crop.Min.Y += (b.Dy() - ch) / 2
		crop.Max.Y = crop.Min.Y + ch
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Src, nil)
	return dst
}

func fetch(ctx context.Context, uri string, w, h int) (image.Image, error) {
	sep := "?"
	if strings.Contains(uri, "?") {
		sep = "&"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s%sw=%d&h=%d", uri, sep, w, h), nil)
	if err != nil {
		return nil, err
	}
	resp, err := sized.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %s", uri, resp.Status)
	}
	return imaging.Decode(resp.Body)
}

type TestParams struct {
	ImageWidth  int
	ImageHeight int
	Levels      int
	Strength    float64
	// Quality is the JPEG quality applied before extraction. 0 keeps the
	// marked image lossless.
	Quality int
}

func (p TestParams) String() string {
	q := "lossless"
	if p.Quality > 0 {
		q = fmt.Sprintf("jpeg%d", p.Quality)
	}
	return fmt.Sprintf("%dx%d L%d s=%.2f %s", p.ImageWidth, p.ImageHeight, p.Levels, p.Strength, q)
}

// tally counts detections per value of one parameter.
type tally map[string]*[2]int

func (t tally) add(key string, ok bool) {
	c, found := t[key]
	if !found {
		c = new([2]int)
		t[key] = c
	}
	c[1]++
	if ok {
		c[0]++
	}
}

func (t tally) print(title string) {
	log.Printf("by %s:", title)
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		c := t[k]
		log.Printf("  %-10s %4d/%-4d %6.2f%%", k, c[0], c[1], float64(c[0])/float64(c[1])*100)
	}
}

func main() {
	urlFile := flag.String("urls", "image_urls.txt", "file listing one image URL per line")
	numImages := flag.Int("n", 10, "number of images to test")
	text := flag.String("text", "AIGC:model-x", "text mark to embed")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sizes := []image.Point{{1920, 1080}, {1280, 720}, {854, 480}, {640, 360}, {426, 240}}
	levels := []int{1, 2, 3}
	strengths := []float64{0.05, 0.1, 0.2}
	qualities := []int{0, 95, 85, 75}

	f, err := os.Open(*urlFile)
	if err != nil {
		log.Fatalf("open url list: %v", err)
	}
	urls := readURLs(f)
	f.Close()
	if len(urls) == 0 {
		log.Fatal("no image URLs found")
	}
	if *numImages > 0 && *numImages < len(urls) {
		urls = urls[:*numImages]
	}
	log.Printf("%d images, %d cases each", len(urls), len(sizes)*len(levels)*len(strengths)*len(qualities))

	payload := watermark.TextPayload(*text)
	total, byQuality, byLevel, bySize := tally{}, tally{}, tally{}, tally{}
	for i, uri := range urls {
		log.Printf("[%d/%d] %s", i+1, len(urls), uri)
		for _, size := range sizes {
			img, err := fetch(ctx, uri, size.X, size.Y)
			if err != nil {
				log.Printf("  skip %dx%d: %v", size.X, size.Y, err)
				continue
			}
			for _, l := range levels {
				for _, s := range strengths {
					for _, q := range qualities {
						if ctx.Err() != nil {
							log.Fatal("interrupted")
						}
						p := TestParams{ImageWidth: size.X, ImageHeight: size.Y, Levels: l, Strength: s, Quality: q}
						ok := testWatermark(ctx, img, payload, *text, p)
						total.add("all", ok)
						byQuality.add(fmt.Sprintf("q%03d", q), ok)
						byLevel.add(fmt.Sprintf("L%d", l), ok)
						bySize.add(fmt.Sprintf("%dx%d", size.X, size.Y), ok)
					}
				}
			}
		}
	}
	if len(total) == 0 {
		log.Fatal("no tests ran")
	}
	total.print("total")
	byQuality.print("jpeg quality (q000 is lossless)")
	byLevel.print("level")
	bySize.print("size")
}

func readURLs(r io.Reader) []string {
	var urls []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); strings.HasPrefix(line, "http") {
			urls = append(urls, line)
		}
	}
	return urls
}

// testWatermark embeds, optionally round trips through JPEG, and reports
// whether the text came back.
func testWatermark(ctx context.Context, img image.Image, payload watermark.Payload, want string, p TestParams) bool {
	w, err := watermark.New(watermark.WithEmbedLevels(p.Levels))
	if err != nil {
		log.Printf("  [FAIL] %v: %v", p, err)
		return false
	}
	start := time.Now()
	marked, err := w.Embed(ctx, img, payload, p.Strength)
	if err != nil {
		log.Printf("  [FAIL] %v: embed: %v", p, err)
		return false
	}
	if p.Quality > 0 {
		var buf bytes.Buffer
		if err = imaging.Encode(&buf, marked, imaging.JPEG, imaging.JPEGQuality(p.Quality)); err == nil {
			marked, err = imaging.Decode(&buf)
		}
		if err != nil {
			log.Printf("  [FAIL] %v: jpeg: %v", p, err)
			return false
		}
	}
	res, err := w.Extract(ctx, marked)
	if err != nil {
		log.Printf("  [FAIL] %v: extract: %v", p, err)
		return false
	}
	ok := res.Detected && res.Text == want
	status := "OK"
	if !ok {
		status = "FAIL"
	}
	log.Printf("  [%s] %v: detected=%t confidence=%.3f %v", status, p, res.Detected, res.Confidence, time.Since(start))
	return ok
}
