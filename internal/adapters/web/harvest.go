package web

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/corey/rube/internal/domain/alphabet"
	"go.uber.org/zap"
)

var ErrPunctuation = errors.New("no single punctuation mark found")

// Harvester implements ports.AlphabetSource by reading letters and
// whitespace from a source page, plus one punctuation mark taken from the
// first table header of a second page. A non-zero Mark skips the second
// fetch.
type Harvester struct {
	Fetcher        *Fetcher
	SourceURL      string
	PunctuationURL string
	Mark           rune
	Logger         *zap.Logger
}

// Alphabet fetches both documents and returns the harvested alphabet.
func (h *Harvester) Alphabet(ctx context.Context) (string, error) {
	log := h.Logger
	if log == nil {
		log = zap.NewNop()
	}

	mark := h.Mark
	if mark == 0 {
		var err error
		if mark, err = h.Punctuation(ctx); err != nil {
			return "", err
		}
	}

	doc, err := h.Fetcher.Fetch(ctx, h.SourceURL)
	if err != nil {
		return "", err
	}
	a := alphabet.FromText(TextContent(doc), mark)
	log.Debug("alphabet harvested",
		zap.String("url", h.SourceURL),
		zap.String("mark", string(mark)),
		zap.Int("runes", a.Len()))
	return a.String(), nil
}

// Punctuation returns the designated mark: the trimmed first table header
// of PunctuationURL, which must be exactly one rune.
func (h *Harvester) Punctuation(ctx context.Context) (rune, error) {
	doc, err := h.Fetcher.Fetch(ctx, h.PunctuationURL)
	if err != nil {
		return 0, err
	}
	text, ok := FirstTableHeader(doc)
	if !ok {
		return 0, fmt.Errorf("%w: %s has no table header", ErrPunctuation, h.PunctuationURL)
	}
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) != 1 {
		return 0, fmt.Errorf("%w: header text %q", ErrPunctuation, text)
	}
	r, _ := utf8.DecodeRuneInString(text)
	return r, nil
}
