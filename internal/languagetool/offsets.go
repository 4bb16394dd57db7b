package languagetool

import "unicode/utf8"

// byteRange converts a UTF-16 offset/length pair into a byte range of text.
// It fails when either end falls inside a surrogate pair or past the text.
func byteRange(text string, offset, length int) (int, int, bool) {
	if offset < 0 || length <= 0 {
		return 0, 0, false
	}
	if !utf8.ValidString(text) {
		return 0, 0, false
	}
	start, end := -1, -1
	units := 0
	for i, r := range text {
		if units == offset {
			start = i
		}
		if units == offset+length {
			end = i
			break
		}
		if r >= 0x10000 {
			units += 2
		} else {
			units++
		}
	}
	if end < 0 && units == offset+length {
		end = len(text)
	}
	if start < 0 || end < 0 || start >= end {
		return 0, 0, false
	}
	return start, end, true
}
