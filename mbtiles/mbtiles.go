// Package mbtiles writes PNG tiles to an mbtiles SQLite database
package mbtiles

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"crawshaw.io/sqlite"
	"crawshaw.io/sqlite/sqlitex"
	"github.com/brendan-ward/rastertransform/tiles"
	"github.com/paulmach/orb"
)

type MBtilesWriter struct {
	pool *sqlitex.Pool
}

// Create a tiles table structure that allows us to de-duplicate tile images
// shared by multiple tileIDs (e.g., blank tiles, ocean tiles)
const init_sql = `
CREATE TABLE IF NOT EXISTS metadata (name text, value text);
CREATE UNIQUE INDEX IF NOT EXISTS name ON metadata (name);

CREATE TABLE IF NOT EXISTS map (
	zoom_level INTEGER,
	tile_column INTEGER,
	tile_row INTEGER,
	tile_id TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS map_index ON map (zoom_level, tile_column, tile_row);

CREATE TABLE IF NOT EXISTS images (tile_data blob, tile_id text);
CREATE UNIQUE INDEX IF NOT EXISTS images_id ON images (tile_id);
CREATE VIEW IF NOT EXISTS tiles AS
	SELECT zoom_level, tile_column, tile_row, tile_data
	FROM map JOIN images ON images.tile_id = map.tile_id;
`

// Metadata describes the tileset
type Metadata struct {
	Name        string
	Description string
	Attribution string
	MinZoom     uint8
	MaxZoom     uint8

	// Bounds in longitude / latitude
	Bounds orb.Bound
}

func NewMBtilesWriter(path string, poolsize int) (*MBtilesWriter, error) {
	ext := filepath.Ext(path)
	if ext != ".mbtiles" {
		return nil, fmt.Errorf("path must end in .mbtiles")
	}
	if poolsize < 1 {
		poolsize = 1
	}

	// always overwrite
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("could not remove existing %q: %w", path, err)
	}

	// each connection is used by one goroutine at a time
	pool, err := sqlitex.Open(path, sqlite.SQLITE_OPEN_CREATE|sqlite.SQLITE_OPEN_READWRITE|sqlite.SQLITE_OPEN_NOMUTEX|sqlite.SQLITE_OPEN_WAL, poolsize)
	if err != nil {
		return nil, err
	}

	db := &MBtilesWriter{
		pool: pool,
	}

	con, err := db.GetConnection(context.Background())
	if err != nil {
		pool.Close()
		return nil, err
	}
	defer db.CloseConnection(con)

	// create tables
	err = sqlitex.ExecScript(con, init_sql)
	if err != nil {
		return nil, fmt.Errorf("could not initialize database: %w", err)
	}

	return db, nil
}

// Close flushes pending writes and closes all connections
func (db *MBtilesWriter) Close() error {
	if db.pool == nil {
		return nil
	}

	con, err := db.GetConnection(context.Background())
	if err != nil {
		return err
	}
	// flush the WAL
	err = sqlitex.Exec(con, "PRAGMA wal_checkpoint;", nil)
	db.CloseConnection(con)

	closeErr := db.pool.Close()
	db.pool = nil
	if err != nil {
		return err
	}
	return closeErr
}

// GetConnection gets a sqlite.Conn from an open connection pool, waiting
// until one is free or ctx is done.
// CloseConnection(con) must be called to release the connection.
func (db *MBtilesWriter) GetConnection(ctx context.Context) (*sqlite.Conn, error) {
	if db == nil || db.pool == nil {
		return nil, fmt.Errorf("cannot use closed mbtiles database")
	}
	con := db.pool.Get(ctx)
	if con == nil {
		return nil, fmt.Errorf("connection could not be opened")
	}
	return con, nil
}

// CloseConnection closes an open sqlite.Conn and returns it to the pool.
func (db *MBtilesWriter) CloseConnection(con *sqlite.Conn) {
	if con != nil {
		db.pool.Put(con)
	}
}

func writeMetadataItem(con *sqlite.Conn, key string, value interface{}) error {
	return sqlitex.Exec(con, "INSERT OR REPLACE INTO metadata (name,value) VALUES (?, ?)", nil, key, value)
}

func (db *MBtilesWriter) WriteMetadata(m Metadata) (err error) {
	con, e := db.GetConnection(context.Background())
	if e != nil {
		return e
	}
	defer db.CloseConnection(con)

	// create savepoint
	defer sqlitex.Save(con)(&err)

	center := m.Bounds.Center()
	items := []struct {
		key   string
		value interface{}
	}{
		{"name", m.Name},
		{"description", m.Description},
		{"attribution", m.Attribution},
		{"minzoom", int64(m.MinZoom)},
		{"maxzoom", int64(m.MaxZoom)},
		{"center", fmt.Sprintf("%.5f,%.5f,%v", center[0], center[1], m.MinZoom)},
		{"bounds", fmt.Sprintf("%.5f,%.5f,%.5f,%.5f", m.Bounds.Min[0], m.Bounds.Min[1], m.Bounds.Max[0], m.Bounds.Max[1])},
		{"type", "overlay"},
		{"format", "png"},
		{"version", "1.0.0"},
	}
	for _, item := range items {
		if s, ok := item.value.(string); ok && s == "" {
			continue
		}
		if err = writeMetadataItem(con, item.key, item.value); err != nil {
			return err
		}
	}

	return nil
}

func (db *MBtilesWriter) WriteTile(ctx context.Context, tile *tiles.TileID, data []byte) error {
	con, err := db.GetConnection(ctx)
	if err != nil {
		return err
	}
	defer db.CloseConnection(con)

	return WriteTile(con, tile, data)
}

// Write the tile to the open connection
func WriteTile(con *sqlite.Conn, tile *tiles.TileID, png []byte) (err error) {
	// flip tile Y to match mbtiles spec
	y := (1 << tile.Zoom) - 1 - tile.Y

	defer sqlitex.Save(con)(&err)

	h := sha1.New()
	h.Write(png)
	id := hex.EncodeToString(h.Sum(nil))

	err = sqlitex.Exec(con, "INSERT OR REPLACE INTO images (tile_id, tile_data) values (?, ?)",
		nil, id, png)
	if err != nil {
		return fmt.Errorf("could not write tile %v to mbtiles: %w", tile, err)
	}

	err = sqlitex.Exec(con, "INSERT OR REPLACE INTO map (zoom_level, tile_column, tile_row, tile_id) values(?, ?, ?, ?)",
		nil, int64(tile.Zoom), int64(tile.X), int64(y), id)
	if err != nil {
		return fmt.Errorf("could not write tile %v to mbtiles: %w", tile, err)
	}

	return nil
}

// ReadTile returns the image data of tile, or nil if it was not written
func (db *MBtilesWriter) ReadTile(tile *tiles.TileID) ([]byte, error) {
	con, err := db.GetConnection(context.Background())
	if err != nil {
		return nil, err
	}
	defer db.CloseConnection(con)

	y := (1 << tile.Zoom) - 1 - tile.Y

	var data []byte
	err = sqlitex.Exec(con, "SELECT tile_data FROM tiles WHERE zoom_level = ? AND tile_column = ? AND tile_row = ?",
		func(stmt *sqlite.Stmt) error {
			data = make([]byte, stmt.ColumnLen(0))
			stmt.ColumnBytes(0, data)
			return nil
		}, int64(tile.Zoom), int64(tile.X), int64(y))
	if err != nil {
		return nil, fmt.Errorf("could not read tile %v from mbtiles: %w", tile, err)
	}
	return data, nil
}

// ReadMetadata returns all metadata entries
func (db *MBtilesWriter) ReadMetadata() (map[string]string, error) {
	con, err := db.GetConnection(context.Background())
	if err != nil {
		return nil, err
	}
	defer db.CloseConnection(con)

	metadata := make(map[string]string)
	err = sqlitex.Exec(con, "SELECT name, value FROM metadata", func(stmt *sqlite.Stmt) error {
		metadata[stmt.ColumnText(0)] = stmt.ColumnText(1)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return metadata, nil
}
