package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileRecord is an immutable snapshot of one regular file taken at scan time.
// Identity is the absolute path; records from different scans are never
// compared directly. The content digest is computed lazily on first demand
// and cached for the lifetime of the record (one scan pass).
type FileRecord struct {
	// Path is the absolute path of the file at scan time
	Path string
	// Size is the file size in bytes
	Size int64
	// ModTime is the last modification timestamp
	ModTime time.Time
	// Ext is the lowercase extension without the leading dot ("" if none)
	Ext string
	// ScanIndex is the position in which the scanner encountered the file.
	// It carries no semantic meaning beyond documented tie-breaking.
	ScanIndex int

	digestOnce sync.Once
	digest     string
	digestErr  error
}

// NewFileRecord builds a FileRecord from path and stat information.
func NewFileRecord(path string, size int64, modTime time.Time, scanIndex int) *FileRecord {
	return &FileRecord{
		Path:      path,
		Size:      size,
		ModTime:   modTime,
		Ext:       strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")),
		ScanIndex: scanIndex,
	}
}

// Name returns the base filename.
func (r *FileRecord) Name() string {
	return filepath.Base(r.Path)
}

// Digest returns the SHA-256 digest of the full file contents, hex encoded.
// The digest is computed at most once per record; concurrent callers block
// until the first computation completes, so no file is hashed twice.
func (r *FileRecord) Digest() (string, error) {
	r.digestOnce.Do(func() {
		r.digest, r.digestErr = hashFile(r.Path)
	})
	return r.digest, r.digestErr
}

// AgeDays returns the file age in whole days relative to now.
func (r *FileRecord) AgeDays(now time.Time) int {
	return int(now.Sub(r.ModTime).Hours() / 24)
}

// hashFile computes the SHA-256 digest over the entire byte stream.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s for hashing: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
