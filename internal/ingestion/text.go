package ingestion

import (
	"encoding/json"
	"os"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
	"golang.org/x/text/unicode/norm"

	"github.com/jonathan/job-verifier/internal/schemas"
	"github.com/jonathan/job-verifier/internal/types"
)

// invisible runes that scraped postings carry and keyword matching trips over.
var invisible = strings.NewReplacer(
	"\u200b", "",
	"\u200c", "",
	"\u200d", "",
	"\ufeff", "",
	"\u00a0", " ",
)

// CleanText normalizes posting text for the analysis stages.
//
// Line endings become LF, text is NFC-composed, interior whitespace runs collapse to one space,
// and at most one blank line separates paragraphs. Leading indentation survives so nested
// bullet lists keep their shape. The result is stable: CleanText(CleanText(s)) == CleanText(s).
func CleanText(content string) string {
	content = strings.NewReplacer("\r\n", "\n", "\r", "\n").Replace(content)
	content = invisible.Replace(norm.NFC.String(content))

	var b strings.Builder
	blank := 0
	for _, line := range strings.Split(content, "\n") {
		line = cleanLine(line)
		if line == "" {
			blank++
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
			if blank > 0 {
				b.WriteByte('\n')
			}
		}
		blank = 0
		b.WriteString(line)
	}
	return b.String()
}

// cleanLine keeps the line's indentation and squeezes every other whitespace run.
func cleanLine(line string) string {
	body := strings.TrimLeftFunc(line, unicode.IsSpace)
	if body == "" {
		return ""
	}
	indent := strings.Map(func(r rune) rune {
		if r == '\t' {
			return ' '
		}
		return r
	}, line[:len(line)-len(body)])
	if strings.HasPrefix(body, "#") {
		indent = ""
	}
	return indent + strings.Join(strings.Fields(body), " ")
}

// LoadPosting reads a pre-scraped posting from a JSON file and validates it.
func LoadPosting(path string) (*types.Posting, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, eris.Wrap(err, "file not found")
		}
		return nil, eris.Wrap(err, "failed to read file")
	}

	if err := schemas.ValidateBytes(schemas.Posting, content); err != nil {
		return nil, eris.Wrapf(err, "invalid posting in %s", path)
	}

	var posting types.Posting
	if err := json.Unmarshal(content, &posting); err != nil {
		return nil, eris.Wrap(err, "failed to parse posting")
	}
	return &posting, nil
}
