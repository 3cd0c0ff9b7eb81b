package watermark

import "errors"

var (
	ErrInsufficientCapacity = errors.New("insufficient capacity")
	ErrEmptyMark            = errors.New("empty mark")
)

// embedMark repeats its bits over every usable coefficient.
type embedMark []bool

func (m embedMark) getBit(at int) bool {
	return m[at%len(m)]
}
