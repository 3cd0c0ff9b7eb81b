package db

import (
	"database/sql"
	"errors"
	"fmt"
)

// insertOrGet returns the id of the row matched by selectQuery, inserting it
// with insertQuery first when it does not exist.
func (d *DB) insertOrGet(what, selectQuery, insertQuery string, args ...any) (int64, error) {
	var id int64
	err := d.db.QueryRow(selectQuery, args...).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to query %s: %w", what, err)
	}

	result, err := d.db.Exec(insertQuery, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert %s: %w", what, err)
	}
	return result.LastInsertId()
}

// InsertImage inserts or gets an existing image by URI
func (d *DB) InsertImage(uri string) (int64, error) {
	return d.insertOrGet("image",
		"SELECT id FROM images WHERE uri = ?",
		"INSERT INTO images (uri) VALUES (?)",
		uri)
}

// InsertImageSize inserts or gets an existing image size
func (d *DB) InsertImageSize(width, height int) (int64, error) {
	return d.insertOrGet("image size",
		"SELECT id FROM image_sizes WHERE width = ? AND height = ?",
		"INSERT INTO image_sizes (width, height) VALUES (?, ?)",
		width, height)
}

// InsertMark inserts or gets an existing mark
func (d *DB) InsertMark(text, ecc string) (int64, error) {
	return d.insertOrGet("mark",
		"SELECT id FROM marks WHERE text = ? AND ecc = ?",
		"INSERT INTO marks (text, ecc) VALUES (?, ?)",
		text, ecc)
}

// InsertMarkParam inserts or gets existing mark parameters
func (d *DB) InsertMarkParam(channel string, levels int, strength float64) (int64, error) {
	return d.insertOrGet("mark param",
		"SELECT id FROM mark_params WHERE channel = ? AND levels = ? AND strength = ?",
		"INSERT INTO mark_params (channel, levels, strength) VALUES (?, ?, ?)",
		channel, levels, strength)
}

// ListImageSizes returns every image size ordered by area.
func (d *DB) ListImageSizes() ([]*ImageSize, error) {
	return queryAll(d, func(rows *sql.Rows, s *ImageSize) error {
		return rows.Scan(&s.ID, &s.Width, &s.Height)
	}, "SELECT id, width, height FROM image_sizes ORDER BY width * height")
}

// ListMarks returns every mark.
func (d *DB) ListMarks() ([]*Mark, error) {
	return queryAll(d, func(rows *sql.Rows, m *Mark) error {
		return rows.Scan(&m.ID, &m.Text, &m.ECC)
	}, "SELECT id, text, ecc FROM marks ORDER BY id")
}

// ListMarkParams returns every parameter combination.
func (d *DB) ListMarkParams() ([]*MarkParam, error) {
	return queryAll(d, func(rows *sql.Rows, p *MarkParam) error {
		return rows.Scan(&p.ID, &p.Channel, &p.Levels, &p.Strength)
	}, "SELECT id, channel, levels, strength FROM mark_params ORDER BY channel, levels, strength")
}

// ResultExists returns the id of a stored result, or 0.
func (d *DB) ResultExists(imageID, imageSizeID, markID, markParamID int64, quality int) (int64, error) {
	var id int64
	err := d.db.QueryRow(
		"SELECT id FROM results WHERE image_id = ? AND image_size_id = ? AND mark_id = ? AND mark_param_id = ? AND quality = ?",
		imageID, imageSizeID, markID, markParamID, quality,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query result: %w", err)
	}
	return id, nil
}

// InsertResult inserts a result (or updates if already exists)
func (d *DB) InsertResult(r *Result) (int64, error) {
	res, err := d.db.Exec(`
		INSERT INTO results (
			image_id, image_size_id, mark_id, mark_param_id, quality,
			frame_bits, capacity, embed_count,
			detected, success, confidence, psnr, ssim
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(image_id, image_size_id, mark_id, mark_param_id, quality) DO UPDATE SET
			frame_bits = excluded.frame_bits,
			capacity = excluded.capacity,
			embed_count = excluded.embed_count,
			detected = excluded.detected,
			success = excluded.success,
			confidence = excluded.confidence,
			psnr = excluded.psnr,
			ssim = excluded.ssim`,
		r.ImageID, r.ImageSizeID, r.MarkID, r.MarkParamID, r.Quality,
		r.FrameBits, r.Capacity, r.EmbedCount,
		r.Detected, r.Success, r.Confidence, r.PSNR, r.SSIM,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert result: %w", err)
	}
	if r.ID, err = res.LastInsertId(); err != nil {
		return 0, err
	}
	return r.ID, nil
}

// CountResults counts total results
func (d *DB) CountResults() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM results").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count results: %w", err)
	}
	return count, nil
}
