package parser

import (
	"bufio"
	"io"
	"strings"
)

// TextExtractor handles plain text files. Article and clause markers occupy
// whole lines in text exports, so every non-blank line is one paragraph.
type TextExtractor struct{}

func (e *TextExtractor) Paragraphs(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			paragraphs = append(paragraphs, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return paragraphs, nil
}
