package watermark

import (
	"errors"

	"github.com/yyyoichi/aigc_watermark/internal/dwt"
	"github.com/yyyoichi/aigc_watermark/internal/imagecodec"
	"github.com/yyyoichi/aigc_watermark/internal/watermark"
	"github.com/yyyoichi/aigc_watermark/internal/yuv"
	"github.com/yyyoichi/aigc_watermark/mark"
)

var (
	// ErrInvalidDimension is returned for images smaller than 2^levels on a side.
	ErrInvalidDimension = dwt.ErrInvalidDimension
	// ErrInsufficientCapacity is returned when a bitstream is longer than the
	// image can hold. It is carried by a *CapacityError.
	ErrInsufficientCapacity = watermark.ErrInsufficientCapacity
	// ErrPayloadTooLarge is returned when no embed level can hold the payload
	// frame. It is carried by a *CapacityError.
	ErrPayloadTooLarge    = mark.ErrPayloadTooLarge
	ErrUnsupportedChannel = yuv.ErrUnsupportedChannel
	ErrUnsupportedFormat  = imagecodec.ErrUnsupportedFormat

	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")
	ErrInvalidStrength      = errors.New("invalid strength")
	ErrImageTooLarge        = errors.New("image too large")
	ErrEmptyPayload         = errors.New("empty payload")
	ErrInvalidOption        = errors.New("invalid option")
)

// CapacityError reports the bits a payload needs and the bits available.
type CapacityError = mark.CapacityError
