package sdl2

import (
	"fmt"
	"io"
)

// readAudio fills buf from r and returns the bytes to queue. On a failed
// read nothing is queued, so the device never plays a half written chunk.
func readAudio(r io.Reader, buf []byte) ([]byte, error) {
	n, err := r.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("reading audio stream: %w", err)
	}
	return buf[:n], nil
}
