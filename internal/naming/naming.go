// Package naming derives identifiers from Swagger operation ids, URLs and
// tag names.
package naming

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var usingSuffix = regexp.MustCompile(`^(.+)(Using.+)$`)

// OperationIdentifier trims the "Using<METHOD>" suffix springfox appends to
// overloaded handler names: "listPetsUsingGET" -> "listPets".
func OperationIdentifier(operationID string) string {
	return usingSuffix.ReplaceAllString(operationID, "$1")
}

// URLIdentifier builds an identifier from an HTTP method and URL, after
// removing samePath (a common prefix without its leading slash).
//
//	URLIdentifier("/user/{id}/pet-list", "get", "user") == "getByIdPetList"
func URLIdentifier(path, method, samePath string) string {
	rest := path
	if prefix := "/" + samePath; samePath != "" && (rest == prefix || strings.HasPrefix(rest, prefix+"/")) {
		rest = rest[len(prefix):]
	}
	if i := strings.IndexByte(rest, '.'); i >= 0 {
		rest = rest[:i]
	}

	var b strings.Builder
	b.WriteString(method)
	for _, seg := range strings.Split(rest, "/") {
		if seg == "" {
			continue
		}
		seg = dashToCamel(seg)
		if len(seg) > 2 && strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			b.WriteString("By")
			b.WriteString(UpperFirst(seg[1 : len(seg)-1]))
			continue
		}
		b.WriteString(UpperFirst(seg))
	}
	return b.String()
}

func dashToCamel(s string) string {
	if !strings.Contains(s, "-") {
		return s
	}
	parts := strings.Split(s, "-")
	var b strings.Builder
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		b.WriteString(UpperFirst(p))
	}
	return b.String()
}

// CommonPathPrefix returns the longest run of leading segments shared by
// every path. Paths are expected without a leading slash. A path's final
// segment never takes part in the prefix.
func CommonPathPrefix(paths []string) string {
	var prefix []string
	for len(paths) > 0 {
		heads := make([]string, len(paths))
		rests := make([]string, len(paths))
		for i, p := range paths {
			head, rest, ok := strings.Cut(p, "/")
			if !ok {
				return strings.Join(prefix, "/")
			}
			heads[i], rests[i] = head, rest
		}
		for _, h := range heads[1:] {
			if h != heads[0] {
				return strings.Join(prefix, "/")
			}
		}
		prefix = append(prefix, heads[0])
		paths = rests
	}
	return strings.Join(prefix, "/")
}

// CamelCase turns a tag name into a module identifier:
// "pet-controller" -> "pet", "Store Admin" -> "storeAdmin", "User" -> "user".
func CamelCase(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == ' ' || r == '_'
	})
	var b strings.Builder
	for _, w := range words {
		b.WriteString(UpperFirst(w))
	}
	out := LowerFirst(b.String())
	if trimmed := strings.TrimSuffix(out, "Controller"); trimmed != "" {
		out = trimmed
	}
	return out
}

// DashCase lower-cases a name, placing a dash before every upper-case
// letter and dropping spaces: "Pet Store" -> "pet-store".
func DashCase(name string) string {
	name = strings.ReplaceAll(name, " ", "")
	var b strings.Builder
	for _, r := range name {
		if unicode.IsUpper(r) {
			b.WriteByte('-')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimPrefix(b.String(), "-")
}

// DashDefaultCase is DashCase with a trailing "-controller" removed, the
// form springfox uses for generated default tags.
func DashDefaultCase(name string) string {
	return strings.TrimSuffix(DashCase(name), "-controller")
}

// HasNonLatin reports whether s contains a letter outside the Latin
// script (CJK, Cyrillic, ...).
func HasNonLatin(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) && !unicode.Is(unicode.Latin, r) {
			return true
		}
	}
	return false
}

func UpperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func LowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
