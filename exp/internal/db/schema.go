package db

const schema = `
-- Images table
CREATE TABLE IF NOT EXISTS images (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    uri TEXT NOT NULL UNIQUE
);

-- Image sizes table
CREATE TABLE IF NOT EXISTS image_sizes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    UNIQUE(width, height)
);

-- Marks table (text payload and frame protection)
CREATE TABLE IF NOT EXISTS marks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    text TEXT NOT NULL,
    ecc TEXT NOT NULL,
    UNIQUE(text, ecc)
);

-- Mark parameters table (embedding parameters)
CREATE TABLE IF NOT EXISTS mark_params (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    channel TEXT NOT NULL,
    levels INTEGER NOT NULL,
    strength REAL NOT NULL,
    UNIQUE(channel, levels, strength)
);

-- Results table
CREATE TABLE IF NOT EXISTS results (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    image_id INTEGER NOT NULL,
    image_size_id INTEGER NOT NULL,
    mark_id INTEGER NOT NULL,
    mark_param_id INTEGER NOT NULL,
    quality INTEGER NOT NULL,

    frame_bits INTEGER NOT NULL,
    capacity INTEGER NOT NULL,
    embed_count REAL NOT NULL,

    detected BOOLEAN NOT NULL,
    success BOOLEAN NOT NULL,
    confidence REAL NOT NULL,
    psnr REAL,
    ssim REAL,

    FOREIGN KEY (image_id) REFERENCES images(id) ON DELETE CASCADE,
    FOREIGN KEY (image_size_id) REFERENCES image_sizes(id) ON DELETE CASCADE,
    FOREIGN KEY (mark_id) REFERENCES marks(id) ON DELETE CASCADE,
    FOREIGN KEY (mark_param_id) REFERENCES mark_params(id) ON DELETE CASCADE,
    UNIQUE(image_id, image_size_id, mark_id, mark_param_id, quality)
);

-- Indexes for performance
CREATE INDEX IF NOT EXISTS idx_results_success ON results(success);
CREATE INDEX IF NOT EXISTS idx_results_embed_count ON results(embed_count);
CREATE INDEX IF NOT EXISTS idx_results_quality ON results(quality);
CREATE INDEX IF NOT EXISTS idx_image_sizes_dims ON image_sizes(width, height);
CREATE INDEX IF NOT EXISTS idx_mark_params_levels ON mark_params(levels, strength);

-- View for easy querying with all details
CREATE VIEW IF NOT EXISTS results_detailed AS
SELECT
    r.id,

    i.uri as image_uri,
    isz.width,
    isz.height,

    mp.channel,
    mp.levels,
    mp.strength,

    m.text as mark_text,
    m.ecc,

    r.quality,
    r.frame_bits,
    r.capacity,
    r.embed_count,
    r.detected,
    r.success,
    r.confidence,
    r.psnr,
    r.ssim
FROM results r
JOIN images i ON r.image_id = i.id
JOIN image_sizes isz ON r.image_size_id = isz.id
JOIN marks m ON r.mark_id = m.id
JOIN mark_params mp ON r.mark_param_id = mp.id;
`
