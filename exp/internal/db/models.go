package db

type (
	// Image represents source image URL
	Image struct {
		ID  int64
		URI string // Unique constraint
	}

	// ImageSize represents resized dimensions
	ImageSize struct {
		ID     int64
		Width  int
		Height int
		// Unique constraint on (Width, Height)
	}

	// Mark represents a text payload and how its frame is protected
	Mark struct {
		ID   int64
		Text string
		ECC  string
		// Unique constraint on (Text, ECC)
	}

	// MarkParam represents embedding parameters
	MarkParam struct {
		ID       int64
		Channel  string
		Levels   int
		Strength float64
		// Unique constraint on (Channel, Levels, Strength)
	}

	// Result represents test outcome
	Result struct {
		ID          int64
		ImageID     int64
		ImageSizeID int64
		MarkID      int64
		MarkParamID int64
		// Quality is the JPEG quality applied before extraction, 0 for lossless.
		Quality int

		// Computed fields
		FrameBits  int
		Capacity   int
		EmbedCount float64 // Capacity / FrameBits

		// Evaluation metrics
		Detected   bool
		Success    bool // Detected and the text matches
		Confidence float64
		PSNR       float64
		SSIM       float64

		// Unique constraint on (ImageID, ImageSizeID, MarkID, MarkParamID, Quality)
	}
)
