// SPDX-License-Identifier: Apache-2.0

package hostinfo

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"time"
)

const hashChunkSize = 256

// HashFile returns the SHA-256 digest of the file at path as "0x" followed by
// lowercase hex. Identical driver binaries hash to the same value on every
// machine.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, hashChunkSize)
	for {
		n, err := f.Read(buf)
		h.Write(buf[:n])
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
	}

	return "0x" + hex.EncodeToString(h.Sum(nil)), nil
}

// ModTime returns the file's modification time in UTC, truncated to seconds.
func ModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime().UTC().Truncate(time.Second), nil
}
