package scanner

import (
	"context"
	"crypto/sha256"
	"io"
	"os"
)

// hashChunkSize is the fixed read size for content hashing. Peak memory
// per hash worker is one chunk regardless of file size.
const hashChunkSize = 1 << 20 // 1 MiB

// hashFile streams a file through SHA-256 in fixed-size chunks. The
// context is checked between chunks, so a cancelled hash returns within
// one chunk's read latency. buf must be at least one byte long and is
// reused across calls by the owning worker.
func hashFile(ctx context.Context, path string, buf []byte) (Digest, error) {
	var digest Digest

	file, err := os.Open(path)
	if err != nil {
		return digest, err
	}
	defer file.Close()

	hash := sha256.New()
	for {
		if err := ctx.Err(); err != nil {
			return digest, err
		}

		n, err := file.Read(buf)
		if n > 0 {
			hash.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			// File shrank or became unreadable mid-stream
			return digest, err
		}
	}

	copy(digest[:], hash.Sum(nil))
	return digest, nil
}
