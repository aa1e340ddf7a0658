package persistence

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"

	"voxelcore/internal/world"
)

// Store is a SQLite-backed chunk archive. Edited chunks are saved as
// zstd-compressed block arrays keyed by chunk coordinate; rows written under
// a different world seed are ignored on load.
type Store struct {
	db   *sql.DB
	seed int64
	enc  *zstd.Encoder
	dec  *zstd.Decoder
}

// Open creates or opens the archive at path for the given world seed.
func Open(path string, seed int64) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, seed: seed, enc: enc, dec: dec}, nil
}

func initSchema(db *sql.DB) error {
	// WAL suits the write-on-unload pattern; NORMAL is a fine durability
	// tradeoff for an archive that can be regenerated from the seed.
	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		`CREATE TABLE IF NOT EXISTS chunks (
			cx INTEGER NOT NULL,
			cy INTEGER NOT NULL,
			cz INTEGER NOT NULL,
			seed INTEGER NOT NULL,
			blocks BLOB NOT NULL,
			updated_at TEXT NOT NULL DEFAULT (datetime('now')),
			PRIMARY KEY (cx, cy, cz)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// Save upserts the block array for a chunk coordinate.
func (s *Store) Save(coord world.ChunkCoord, blocks []world.BlockType) error {
	payload := s.enc.EncodeAll(encodeBlocks(blocks), nil)
	_, err := s.db.Exec(`
		INSERT INTO chunks (cx, cy, cz, seed, blocks, updated_at)
		VALUES (?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT (cx, cy, cz) DO UPDATE SET
			seed = excluded.seed,
			blocks = excluded.blocks,
			updated_at = excluded.updated_at`,
		coord.X, coord.Y, coord.Z, s.seed, payload)
	if err != nil {
		return fmt.Errorf("save chunk %v: %w", coord, err)
	}
	return nil
}

// Load returns the archived block array for a coordinate, or ok=false when
// the archive has no row for it under the current seed.
func (s *Store) Load(coord world.ChunkCoord) ([]world.BlockType, bool, error) {
	var payload []byte
	err := s.db.QueryRow(`
		SELECT blocks FROM chunks
		WHERE cx = ? AND cy = ? AND cz = ? AND seed = ?`,
		coord.X, coord.Y, coord.Z, s.seed).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load chunk %v: %w", coord, err)
	}
	raw, err := s.dec.DecodeAll(payload, nil)
	if err != nil {
		return nil, false, fmt.Errorf("decompress chunk %v: %w", coord, err)
	}
	blocks, err := decodeBlocks(raw)
	if err != nil {
		return nil, false, fmt.Errorf("decode chunk %v: %w", coord, err)
	}
	return blocks, true, nil
}

// Count returns the number of archived chunks for the current seed.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM chunks WHERE seed = ?`, s.seed).Scan(&n)
	return n, err
}

// Close releases the database and codec resources.
func (s *Store) Close() error {
	s.enc.Close()
	s.dec.Close()
	return s.db.Close()
}

func encodeBlocks(blocks []world.BlockType) []byte {
	raw := make([]byte, 2*len(blocks))
	for i, b := range blocks {
		binary.LittleEndian.PutUint16(raw[2*i:], uint16(b))
	}
	return raw
}

func decodeBlocks(raw []byte) ([]world.BlockType, error) {
	if len(raw)%2 != 0 {
		return nil, fmt.Errorf("odd payload length %d", len(raw))
	}
	blocks := make([]world.BlockType, len(raw)/2)
	for i := range blocks {
		blocks[i] = world.BlockType(binary.LittleEndian.Uint16(raw[2*i:]))
	}
	return blocks, nil
}
