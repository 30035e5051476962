// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"fmt"
	"strings"

	"github.com/pdiddy/paperforge/pkg/types"
)

// bibtexEscaper protects characters that BibTeX would otherwise interpret
// inside a braced field.
var bibtexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`{`, `\{`,
	`}`, `\}`,
	`&`, `\&`,
	`%`, `\%`,
	`$`, `\$`,
	`#`, `\#`,
	`_`, `\_`,
)

// BibTeX produces one @misc entry per reference, keyed ref1..refN in the
// order given.
func BibTeX(refs []types.Citation) string {
	var b strings.Builder
	for i, r := range refs {
		fmt.Fprintf(&b, "@misc{ref%d,\n", i+1)
		fmt.Fprintf(&b, "  title = {%s},\n", bibtexEscaper.Replace(r.Title))
		fmt.Fprintf(&b, "  howpublished = {\\url{%s}},\n", urlEscape(r.URI))
		fmt.Fprintf(&b, "}\n\n")
	}
	return b.String()
}

// urlEscape keeps the URI intact for \url{} and only escapes what would
// break the enclosing group.
func urlEscape(uri string) string {
	return strings.NewReplacer(`{`, `\{`, `}`, `\}`, `%`, `\%`, `#`, `\#`).Replace(uri)
}
