// Package fs provides file-based storage for downloaded books.
package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// PartSuffix is appended to the destination path while a download is in progress.
const PartSuffix = ".part"

// unsafeChars are replaced in file names derived from titles.
var unsafeChars = strings.NewReplacer(
	"<", "_", ">", "_", ":", "_", `"`, "_", "/", "_",
	`\`, "_", "|", "_", "?", "_", "*", "_",
)

// SanitizeFilename makes a book title safe to use as a file name.
// Reserved characters become underscores; leading and trailing dots and
// spaces are trimmed.
func SanitizeFilename(name string) string {
	return strings.Trim(unsafeChars.Replace(name), ". ")
}

// BookFilename returns the file name for a book title in the given format,
// e.g. "Treasure Island.epub".
func BookFilename(title, format string) string {
	name := SanitizeFilename(title)
	if name == "" {
		name = "book"
	}
	return name + "." + format
}

// File is a download destination. Bytes are written to a temporary
// "<path>.part" file and moved to the final path atomically on Commit, so
// an interrupted download never leaves a truncated book behind.
type File struct {
	path string
	f    *os.File
	hash *xxhash.Digest
	size int64
}

// Create opens a new download destination for name inside dir, creating
// dir if needed.
func Create(dir, name string) (*File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path + PartSuffix)
	if err != nil {
		return nil, err
	}
	return &File{path: path, f: f, hash: xxhash.New()}, nil
}

// Path returns the final destination path.
func (f *File) Path() string {
	return f.path
}

// Write writes p to the partial file and updates the checksum.
func (f *File) Write(p []byte) (int, error) {
	n, err := f.f.Write(p)
	f.hash.Write(p[:n])
	f.size += int64(n)
	return n, err
}

// Size returns the number of bytes written.
func (f *File) Size() int64 {
	return f.size
}

// Checksum returns the xxhash of the bytes written, in hex.
func (f *File) Checksum() string {
	return fmt.Sprintf("%016x", f.hash.Sum64())
}

// Commit closes the partial file and renames it to the final path,
// replacing any existing file.
func (f *File) Commit() error {
	if err := f.f.Close(); err != nil {
		os.Remove(f.f.Name())
		return err
	}
	return os.Rename(f.f.Name(), f.path)
}

// Abort closes and removes the partial file.
func (f *File) Abort() error {
	f.f.Close()
	if err := os.Remove(f.f.Name()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
