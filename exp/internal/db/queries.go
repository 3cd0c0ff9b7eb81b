package db

import (
	"database/sql"
	"fmt"
)

// DetailedResult is one row of the results_detailed view.
type DetailedResult struct {
	ID int64

	// Image info
	ImageURI string
	Width    int
	Height   int

	// Parameters
	Channel  string
	Levels   int
	Strength float64

	// Mark info
	MarkText string
	ECC      string

	// Attack
	Quality int

	// Metrics
	FrameBits  int
	Capacity   int
	EmbedCount float64
	Detected   bool
	Success    bool
	Confidence float64
	PSNR       float64
	SSIM       float64
}

// queryAll runs query and reads every row into a new T with scan.
func queryAll[T any](d *DB, scan func(rows *sql.Rows, v *T) error, query string, args ...any) ([]*T, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var out []*T
	for rows.Next() {
		v := new(T)
		if err := scan(rows, v); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func scanDetailed(rows *sql.Rows, r *DetailedResult) error {
	return rows.Scan(
		&r.ID, &r.ImageURI, &r.Width, &r.Height,
		&r.Channel, &r.Levels, &r.Strength,
		&r.MarkText, &r.ECC, &r.Quality,
		&r.FrameBits, &r.Capacity, &r.EmbedCount,
		&r.Detected, &r.Success, &r.Confidence, &r.PSNR, &r.SSIM,
	)
}

// QueryDetailed runs a query whose columns match the results_detailed view.
func (d *DB) QueryDetailed(query string, args ...any) ([]*DetailedResult, error) {
	return queryAll(d, scanDetailed, query, args...)
}

// ListDetailed returns every result.
func (d *DB) ListDetailed() ([]*DetailedResult, error) {
	return d.QueryDetailed(`SELECT * FROM results_detailed ORDER BY id`)
}

// GetSuccessfulResults returns successful runs at or above minPSNR, best
// first.
func (d *DB) GetSuccessfulResults(minPSNR float64) ([]*DetailedResult, error) {
	return d.QueryDetailed(`SELECT * FROM results_detailed WHERE success = 1 AND psnr >= ? ORDER BY psnr DESC`, minPSNR)
}

// rateColumns aggregates a group of runs.
const rateColumns = `COUNT(*),
	SUM(CASE WHEN success THEN 1 ELSE 0 END),
	AVG(CASE WHEN success THEN 1.0 ELSE 0.0 END) AS success_rate,
	AVG(psnr) AS avg_psnr`

// ParameterStats aggregates the runs of one embed setting.
type ParameterStats struct {
	Channel        string
	Levels         int
	Strength       float64
	TotalTests     int
	Successes      int
	SuccessRate    float64
	AvgPSNR        float64
	AvgSSIM        float64
	AvgConfidence  float64
	FalseNegatives int
}

// GetBestParameters returns the embed settings whose success rate is at
// least minSuccessRate.
func (d *DB) GetBestParameters(minSuccessRate float64) ([]*ParameterStats, error) {
	return queryAll(d, func(rows *sql.Rows, s *ParameterStats) error {
		return rows.Scan(&s.Channel, &s.Levels, &s.Strength,
			&s.TotalTests, &s.Successes, &s.SuccessRate, &s.AvgPSNR,
			&s.AvgSSIM, &s.AvgConfidence, &s.FalseNegatives)
	}, `SELECT channel, levels, strength, `+rateColumns+`,
			AVG(ssim), AVG(confidence), SUM(CASE WHEN detected THEN 0 ELSE 1 END)
		FROM results_detailed
		GROUP BY channel, levels, strength
		HAVING success_rate >= ?
		ORDER BY success_rate DESC, avg_psnr DESC`, minSuccessRate)
}

// GroupStats aggregates the runs sharing one grouping value.
type GroupStats struct {
	Group       string
	TotalTests  int
	Successes   int
	SuccessRate float64
	AvgPSNR     float64
}

// groupStats aggregates runs by the SQL expression group.
func (d *DB) groupStats(group, order string) ([]*GroupStats, error) {
	return queryAll(d, func(rows *sql.Rows, s *GroupStats) error {
		return rows.Scan(&s.Group, &s.TotalTests, &s.Successes, &s.SuccessRate, &s.AvgPSNR)
	}, `SELECT `+group+` AS grp, `+rateColumns+` FROM results_detailed GROUP BY grp ORDER BY `+order)
}

// GetImageSizeStats groups runs by image size, smallest first.
func (d *DB) GetImageSizeStats() ([]*GroupStats, error) {
	return d.groupStats(`width || 'x' || height`, `MIN(width * height)`)
}

// GetQualityStats groups runs by JPEG quality, lossless first.
func (d *DB) GetQualityStats() ([]*GroupStats, error) {
	return d.groupStats(`CASE WHEN quality = 0 THEN 'lossless' ELSE 'q' || quality END`,
		`MIN(CASE WHEN quality = 0 THEN 101 ELSE quality END) DESC`)
}

// GetEmbedCountStats groups runs by how many times the frame fits.
func (d *DB) GetEmbedCountStats() ([]*GroupStats, error) {
	return d.groupStats(`CASE
			WHEN embed_count < 2 THEN '1-2'
			WHEN embed_count < 4 THEN '2-4'
			WHEN embed_count < 8 THEN '4-8'
			WHEN embed_count < 16 THEN '8-16'
			ELSE '16+'
		END`, `MIN(embed_count)`)
}

// ExecuteRawQuery runs an arbitrary query.
func (d *DB) ExecuteRawQuery(query string, args ...any) (*sql.Rows, error) {
	return d.db.Query(query, args...)
}
