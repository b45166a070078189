package ocrtext

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// CleanOptions controls post-processing of recognized text.
type CleanOptions struct {
	NormalizeForm      string // "NFC" (default), "NFKC", "NFD", "NFKD", "none"
	CollapseWhitespace bool   // collapse runs of spaces and tabs inside a line
	RemoveControlChars bool
	RemoveZeroWidth    bool
}

// DefaultCleanOptions returns the options used when cleaning is enabled.
func DefaultCleanOptions() CleanOptions {
	return CleanOptions{
		NormalizeForm:      "NFC",
		CollapseWhitespace: true,
		RemoveControlChars: true,
		RemoveZeroWidth:    true,
	}
}

// CleanText normalizes s. Line breaks are kept so that multi-line text keeps
// its layout; every line is trimmed and empty lines are dropped.
func CleanText(s string, opts CleanOptions) string {
	if s == "" {
		return s
	}

	switch strings.ToUpper(opts.NormalizeForm) {
	case "NFC", "":
		s = norm.NFC.String(s)
	case "NFKC":
		s = norm.NFKC.String(s)
	case "NFD":
		s = norm.NFD.String(s)
	case "NFKD":
		s = norm.NFKD.String(s)
	}

	s = strings.Map(func(r rune) rune {
		switch {
		case opts.RemoveZeroWidth && isZeroWidth(r):
			return -1
		case opts.RemoveControlChars && r != '\n' && r != '\t' && unicode.IsControl(r):
			return -1
		}
		return r
	}, s)

	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if opts.CollapseWhitespace {
			line = strings.Join(strings.Fields(line), " ")
		} else {
			line = strings.TrimSpace(line)
		}
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// Clean applies CleanText to every text field of r in place.
func (r *Result) Clean(opts CleanOptions) {
	if r == nil {
		return
	}
	r.Text = CleanText(r.Text, opts)
	for i := range r.Blocks {
		b := &r.Blocks[i]
		b.Text = CleanText(b.Text, opts)
		for j := range b.Lines {
			l := &b.Lines[j]
			l.Text = CleanText(l.Text, opts)
			for k := range l.Words {
				l.Words[k].Text = CleanText(l.Words[k].Text, opts)
			}
		}
	}
}

func isZeroWidth(r rune) bool {
	switch r {
	case '\u200b', '\u200c', '\u200d', '\u2060', '\ufeff':
		return true
	}
	return false
}
