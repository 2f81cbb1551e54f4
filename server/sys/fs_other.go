//go:build !unix

package sys

import "errors"

func FreeSpace(path string) (uint64, error) {
	return 0, errors.New("free space is not supported on this platform")
}
