package generator

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titler = cases.Title(language.English, cases.NoLower)

// SymbolName converts a feature id (kebab-case or snake-case) to PascalCase
// and appends the Module suffix, producing the name used both as the
// generated import binding and as the composed container field. Uniqueness is
// guaranteed by construction because ids are validated unique beforehand.
func SymbolName(id string) string {
	var b strings.Builder
	for _, segment := range splitID(id) {
		b.WriteString(titler.String(segment))
	}
	b.WriteString("Module")
	return b.String()
}

// importAlias derives the import alias for a feature package, e.g.
// "user-profile" -> "feat_user_profile". Ids are validated unique, so aliases
// cannot collide.
func importAlias(id string) string {
	var b strings.Builder
	b.WriteString("feat")
	for _, segment := range splitID(id) {
		b.WriteByte('_')
		b.WriteString(strings.ToLower(segment))
	}
	return b.String()
}

// splitID splits an id on '-' and '_', dropping empty segments so that
// consecutive separators collapse. Any character that is not a letter or
// digit is stripped from the segments.
func splitID(id string) []string {
	raw := strings.FieldsFunc(id, func(r rune) bool {
		return r == '-' || r == '_'
	})
	segments := make([]string, 0, len(raw))
	for _, segment := range raw {
		var b strings.Builder
		for _, r := range segment {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(r)
			}
		}
		if b.Len() > 0 {
			segments = append(segments, b.String())
		}
	}
	return segments
}

// packageName derives a valid Go package name from the output directory base,
// e.g. "featforge" from "./featforge" or "gen" from ".gen".
func packageName(dir string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(dir) {
		if unicode.IsLetter(r) || (b.Len() > 0 && unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "featforge"
	}
	return b.String()
}
