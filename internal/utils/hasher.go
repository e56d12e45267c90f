package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Hash generates a SHA-256 hash of the input string
func Hash(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// ShortHash returns the first n hex characters of Hash(input).
func ShortHash(input string, n int) string {
	h := Hash(input)
	if n <= 0 || n >= len(h) {
		return h
	}
	return h[:n]
}

// ObjectKey builds "<folder>/<unix>_<hash16><ext>" for a stored media object.
func ObjectKey(folder, seed, ext string, at time.Time) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	name := fmt.Sprintf("%d_%s%s", at.Unix(), ShortHash(seed, 16), ext)
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return name
	}
	return folder + "/" + name
}
