package application

import (
	"fmt"
	"io"
)

// randomString draws n independent characters from the ASCII alphabet with
// uniform probability. Bytes that would bias the modulo are rejected and
// redrawn.
func randomString(source io.Reader, alphabet string, n int) (string, error) {
	size := len(alphabet)
	limit := 256 - 256%size

	out := make([]byte, 0, n)
	buf := make([]byte, n+n/4+16)
	defer clear(buf)

	for len(out) < n {
		if _, err := io.ReadFull(source, buf); err != nil {
			return "", fmt.Errorf("read random source: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, alphabet[int(b)%size])
			if len(out) == n {
				break
			}
		}
	}

	return string(out), nil
}
