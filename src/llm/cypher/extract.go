package cypher

import (
	"regexp"
	"strings"
)

var fencePattern = regexp.MustCompile("(?s)```(.*?)```")

// ExtractQuery pulls the query out of a model completion. The first fenced block
// wins, an unterminated opening fence is dropped, and so is a leading "cypher"
// language tag. The query is not validated.
func ExtractQuery(completion string) string {
	text := strings.TrimSpace(completion)
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		text = m[1]
	} else if after, ok := strings.CutPrefix(text, "```"); ok {
		// completion cut off before the closing fence
		text = after
	}
	text = strings.TrimSpace(text)

	if len(text) >= len("cypher") && strings.EqualFold(text[:len("cypher")], "cypher") {
		rest := text[len("cypher"):]
		// only a language tag when followed by whitespace
		if rest == "" || rest[0] == '\n' || rest[0] == ' ' || rest[0] == '\r' || rest[0] == '\t' {
			text = strings.TrimSpace(rest)
		}
	}

	return text
}
