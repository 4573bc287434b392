// Package text splits file content into overlapping, bounded chunks for
// embedding.
package text

import "strings"

// Split cuts content into chunks of at most size characters, each consecutive
// pair sharing overlap characters. overlap must be smaller than size.
// Whitespace-only chunks are dropped. A clean split over content of length L
// produces ceil((L - overlap) / (size - overlap)) chunks.
func Split(content string, size, overlap int) []string {
	if size <= 0 || overlap < 0 || overlap >= size {
		return nil
	}
	if strings.TrimSpace(content) == "" {
		return nil
	}

	runes := []rune(content)
	if len(runes) <= size {
		return []string{content}
	}

	step := size - overlap
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunk := string(runes[start:end])
		if strings.TrimSpace(chunk) != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// ExpectedChunks returns the chunk count Split produces for content of the
// given length, ignoring whitespace-only drops.
func ExpectedChunks(length, size, overlap int) int {
	if length <= 0 || size <= 0 || overlap < 0 || overlap >= size {
		return 0
	}
	if length <= size {
		return 1
	}
	step := size - overlap
	return (length - overlap + step - 1) / step
}
