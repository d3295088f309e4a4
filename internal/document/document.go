// Package document handles reading, hashing, and line-splitting design documents.
package document

import (
	"crypto/sha256"
	"fmt"
	"os"
	"strings"
)

// Document holds a loaded design document with its content and metadata.
type Document struct {
	FilePath string
	Raw      string
	Lines    []string
	Hash     string
}

// Load reads a document file and computes its SHA-256 hash.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("document.Load: %w", err)
	}
	return New(path, string(data)), nil
}

// New builds a Document from in-memory content.
func New(path, raw string) *Document {
	h := sha256.Sum256([]byte(raw))
	return &Document{
		FilePath: path,
		Raw:      raw,
		Lines:    strings.Split(raw, "\n"),
		Hash:     fmt.Sprintf("sha256:%x", h),
	}
}
