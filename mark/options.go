package mark

var (
	DefaultShuffleSeed int64 = 1234567890
	// DefaultSyncTolerance is the number of sync bits that may differ.
	DefaultSyncTolerance = 2
)

type (
	// Option selects how the frame body is protected.
	Option      func(*frameConfig)
	frameConfig struct {
		coder bodyCoder
	}
)

// WithoutECC stores the frame body as-is. This is the default.
func WithoutECC() Option {
	return func(fc *frameConfig) {
		fc.coder = plainCoder{}
	}
}

// WithGolay protects the frame body with a Golay code and shuffles the coded
// bits with seed so that burst damage from one image region spreads over
// several codewords. The length field records that the body is coded.
func WithGolay(seed int64) Option {
	return func(fc *frameConfig) {
		fc.coder = golayCoder{seed: seed}
	}
}

func newFrameConfig(opts []Option) frameConfig {
	fc := frameConfig{coder: plainCoder{}}
	for _, opt := range opts {
		opt(&fc)
	}
	return fc
}

func (fc frameConfig) golay() bool {
	_, ok := fc.coder.(golayCoder)
	return ok
}

type (
	DecodeOption func(*decodeConfig)
	decodeConfig struct {
		tolerance int
		seed      int64
	}
)

// WithSyncTolerance sets how many sync bits may differ for a candidate frame.
func WithSyncTolerance(n int) DecodeOption {
	return func(c *decodeConfig) {
		c.tolerance = n
	}
}

// WithGolaySeed sets the shuffle seed used by frames carrying a Golay body.
func WithGolaySeed(seed int64) DecodeOption {
	return func(c *decodeConfig) {
		c.seed = seed
	}
}

func newDecodeConfig(opts []DecodeOption) decodeConfig {
	c := decodeConfig{tolerance: DefaultSyncTolerance, seed: DefaultShuffleSeed}
	for _, opt := range opts {
		opt(&c)
	}
	if c.tolerance < 0 {
		c.tolerance = 0
	}
	return c
}
