package slug

import (
	"regexp"
	"strconv"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

var transliterator = strings.NewReplacer(
	"ä", "a", "á", "a", "à", "a", "â", "a", "ã", "a", "å", "a",
	"ç", "c", "č", "c", "ć", "c",
	"é", "e", "è", "e", "ê", "e", "ë", "e", "ę", "e",
	"ğ", "g",
	"ı", "i", "í", "i", "ì", "i", "î", "i", "ï", "i",
	"ł", "l",
	"ñ", "n", "ń", "n",
	"ö", "o", "ó", "o", "ò", "o", "ô", "o", "õ", "o", "ø", "o",
	"ś", "s", "š", "s", "ş", "s", "ß", "ss",
	"ü", "u", "ú", "u", "ù", "u", "û", "u",
	"ý", "y", "ÿ", "y",
	"ź", "z", "ż", "z", "ž", "z",
	"%", "-percent-", "&", "-and-",
)

// Generate creates a URL-friendly slug from the given name.
//
//   - `T-Shirt "orbit"` → "t-shirt-orbit"
//   - "Centipede 10% / Wool 90%" → "centipede-10-percent-wool-90-percent"
//   - "Çocuk Ürünleri" → "cocuk-urunleri"
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = transliterator.Replace(s)
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Unique returns Generate(name), suffixed with -2, -3, ... until taken
// reports false. An empty slug falls back to "item".
func Unique(name string, taken func(string) bool) string {
	base := Generate(name)
	if base == "" {
		base = "item"
	}
	candidate := base
	for n := 2; taken(candidate); n++ {
		candidate = base + "-" + strconv.Itoa(n)
	}
	return candidate
}
