package algorithm

import (
	"bytes"
)

// IndexOf returns the index of the first occurrence of target in buf[start:max],
// or -1 if target is not present. max is clamped to len(buf). An empty target
// or a negative start never matches.
func IndexOf(buf []byte, target []byte, start int, max int) int {

	if len(target) == 0 || start < 0 {
		return -1
	}

	if max > len(buf) {
		max = len(buf)
	}

	if start >= max || max-start < len(target) {
		return -1
	}

	if i := bytes.Index(buf[start:max], target); i >= 0 {
		return start + i
	}

	return -1
}
