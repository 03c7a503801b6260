package parsing

import "github.com/rotisserie/eris"

// Reasons extract gives up on the model. Run falls back to scraped fields for both.
var (
	ErrNoModel        = eris.New("no usable model reply")
	ErrMalformedReply = eris.New("model reply does not match the structured profile schema")
)

// fallbackNote describes why the profile holds scraped fields only.
func fallbackNote(err error) string {
	if eris.Is(err, ErrMalformedReply) {
		return "LLM reply malformed; profile built from scraped fields"
	}
	return "LLM unavailable; profile built from scraped fields"
}
