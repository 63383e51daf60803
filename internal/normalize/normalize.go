// Package normalize cleans question text for display and builds the
// stable hash keys the ledger and history store are keyed on.
package normalize

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// The question bank serves text with a fixed repertoire of HTML-encoded
// characters. Decoding is a single pass over this table; entities that
// only appear once decoded (e.g. "&quot;" produced from "&amp;quot;")
// are intentionally left alone.
var entities = strings.NewReplacer(
	"&quot;", `"`,
	"&ldquo;", `"`,
	"&rdquo;", `"`,
	"&#8220;", `"`,
	"&#8221;", `"`,
	"&#039;", "'",
	"&apos;", "'",
	"&rsquo;", "'",
	"&lsquo;", "'",
	"&#8216;", "'",
	"&#8217;", "'",
	"&ndash;", "-",
	"&mdash;", "-",
	"&#8211;", "-",
	"&#8212;", "-",
	"&hellip;", "...",
	"&eacute;", "é",
	"&egrave;", "è",
	"&aacute;", "á",
	"&iacute;", "í",
	"&oacute;", "ó",
	"&uacute;", "ú",
	"&auml;", "ä",
	"&ouml;", "ö",
	"&uuml;", "ü",
	"&ntilde;", "ñ",
	"&ccedil;", "ç",
	"&deg;", "°",
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
)

// Text decodes encoded entities, collapses runs of whitespace and trims.
func Text(s string) string {
	return strings.Join(strings.Fields(entities.Replace(s)), " ")
}

// Key returns the stable dedup key for a question/answer pair. Both
// sides are normalized and case-folded first, so formatting drift in
// the upstream bank cannot defeat deduplication.
func Key(question, answer string) string {
	folded := strings.ToLower(Text(question)) + "|" + strings.ToLower(Text(answer))
	return fmt.Sprintf("%08x", Hash32(folded))
}

// Hash32 is FNV-1a over the raw bytes of s.
func Hash32(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}
