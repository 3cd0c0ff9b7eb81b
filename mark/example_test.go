package mark_test

import (
	"fmt"

	"github.com/yyyoichi/aigc_watermark/mark"
)

// ExampleEncodeText shows a frame repeated the way an embedder tiles it and
// recovered from the repeated stream.
func ExampleEncodeText() {
	frame, err := mark.EncodeText("AIGC", 0)
	if err != nil {
		panic(err)
	}
	fmt.Println(len(frame))

	stream := append(append([]bool{}, frame...), frame...)
	stream = append(stream, frame[:20]...)

	res := mark.Decode(stream)
	fmt.Println(res.Found, res.Text, res.Copies, res.Confidence)
	// Output:
	// 72
	// true AIGC 2 1
}

// ExampleMaxTextBytes shows how many bytes of text fit 296 bits.
func ExampleMaxTextBytes() {
	fmt.Println(mark.MaxTextBytes(296))
	fmt.Println(mark.FrameBits(mark.KindText, 32))
	// Output:
	// 32
	// 296
}
