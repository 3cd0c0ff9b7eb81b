// Package images fetches benchmark images and fits them to test sizes. Both
// the original download and every fitted size are cached on disk.
package images

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/yyyoichi/httpcache-go"
	"golang.org/x/image/draw"
)

// CacheDir holds fetched and resized images.
const CacheDir = "/tmp/aigc_exp_http_cache/"

// ParseURLs reads one image URL per line from path.
func ParseURLs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseURLs(f)
}

func parseURLs(r io.Reader) ([]string, error) {
	var urls []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); strings.HasPrefix(line, "http") {
			urls = append(urls, line)
		}
	}
	return urls, sc.Err()
}

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
	return http.DefaultClient.Do(req)
}

// resizer serves sizedURL requests: it fetches the original through origin
// and answers with it fitted to the requested size as a quality 100 JPEG.
type resizer struct {
	origin httpcache.Client
}

func (r *resizer) Do(req *http.Request) (*http.Response, error) {
	q := req.URL.Query()
	w, errW := strconv.Atoi(q.Get("w"))
	h, errH := strconv.Atoi(q.Get("h"))
	if errW != nil || errH != nil {
		return nil, fmt.Errorf("images: bad size in %s", req.URL)
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
		return nil, fmt.Errorf("images: decode %s: %w", u.String(), err)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, Fit(src, w, h), imaging.JPEG, imaging.JPEGQuality(100)); err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(&buf)
	return resp, nil
}

var client = httpcache.Client{
	Client: &resizer{origin: httpcache.Client{
		Client:  &throttle{gap: 250 * time.Millisecond},
		Cache:   httpcache.NewStorageCache(CacheDir),
		Handler: httpcache.NewDefaultHandler(),
	}},
	Cache:   httpcache.NewStorageCache(CacheDir),
	Handler: httpcache.NewDefaultHandler(),
}

// centerCrop returns the largest rectangle centred in b with the aspect
// ratio of w x h.
func centerCrop(b image.Rectangle, w, h int) image.Rectangle {
	if cw := b.Dy() * w / h; cw < b.Dx() {
		b.Min.X += (b.Dx() - cw) / 2
		b.Max.X = b.Min.X + cw
	} else if ch := b.Dx() * h / w; ch < b.Dy() {
		b.Min.Y += (b.Dy() - ch) / 2
		b.Max.Y = b.Min.Y + ch
	}
	return b
}

// Fit crops the centre of src to the aspect ratio of width x height and
// scales it to that size.
func Fit(src image.Image, width, height int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, centerCrop(src.Bounds(), width, height), draw.Src, nil)
	return dst
}

// FetchImageWithSize returns the image at uri fitted to width x height.
func FetchImageWithSize(uri string, width, height int) (image.Image, error) {
	resp, err := client.Get(sizedURL(uri, width, height))
	if err != nil {
		return nil, fmt.Errorf("images: fetch %s: %w", uri, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("images: %s: %s", uri, resp.Status)
	}
	return imaging.Decode(resp.Body)
}

func sizedURL(uri string, width, height int) string {
	sep := "?"
	if strings.Contains(uri, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%sw=%d&h=%d", uri, sep, width, height)
}
