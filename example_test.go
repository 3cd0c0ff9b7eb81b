package watermark_test

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"

	watermark "github.com/yyyoichi/aigc_watermark"
)

func Example_watermark() {
	// Create a smooth synthetic image (128x128 pixels)
	img := image.NewNRGBA(image.Rect(0, 0, 128, 128))
	for y := range 128 {
		for x := range 128 {
			v := uint8(128 + 50*math.Sin(float64(x)/9)*math.Cos(float64(y)/13))
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}

	// Initialize watermark processor with default settings
	w, err := watermark.New()
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	marked, err := w.Embed(ctx, img, watermark.TextPayload("AIGC"), 0)
	if err != nil {
		panic(err)
	}

	res, err := w.Extract(ctx, marked)
	if err != nil {
		panic(err)
	}
	fmt.Println(res.Detected, res.Kind, res.Text, res.Levels)

	res, err = w.Extract(ctx, img)
	if err != nil {
		panic(err)
	}
	fmt.Println(res.Detected, res.Kind)
	// Output:
	// true text AIGC 3
	// false none
}

func ExampleMaxPayloadBits() {
	for _, levels := range []int{1, 2, 3} {
		bits, err := watermark.MaxPayloadBits(1920, 1080, levels)
		if err != nil {
			panic(err)
		}
		fmt.Println(levels, bits)
	}
	// Output:
	// 1 518400
	// 2 129600
	// 3 32400
}
