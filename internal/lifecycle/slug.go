package lifecycle

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"clubsite/internal/domain"
)

// MaxSlugLength caps generated slugs before disambiguation suffixes.
const MaxSlugLength = 80

const (
	maxNumericSuffix     = 50
	randomSuffixAttempts = 5
	randomSuffixLength   = 6
)

// Letters that do not decompose into an ASCII base under NFD.
var foldedLetters = map[rune]string{
	'ß': "ss",
	'æ': "ae",
	'ø': "o",
	'œ': "oe",
	'đ': "d",
	'ł': "l",
	'þ': "th",
}

var suffixAlphabet = []rune("abcdefghijklmnopqrstuvwxyz0123456789")

// GenerateSlug derives a URL-safe identifier from title. Runs of anything
// other than ASCII letters and digits become a single hyphen; the result has
// no leading, trailing, or doubled hyphens and may be empty.
func GenerateSlug(title string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	pendingHyphen := false
	write := func(s string) {
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteString(s)
	}
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			write(string(r))
		case foldedLetters[r] != "":
			write(foldedLetters[r])
		default:
			pendingHyphen = b.Len() > 0
		}
	}
	return truncateSlug(b.String())
}

func truncateSlug(slug string) string {
	if len(slug) <= MaxSlugLength {
		return slug
	}
	cut := slug[:MaxSlugLength]
	if i := strings.LastIndexByte(cut, '-'); i > MaxSlugLength/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, "-")
}

// ExistsFunc reports whether slug is already held in the store.
type ExistsFunc func(slug string) (bool, error)

// ResolveUniqueSlug returns candidate when it is free, otherwise the first
// free form among candidate-2 .. candidate-50 and then a few random
// suffixes. Every returned slug was checked against exists. When nothing
// free is found it returns domain.ErrConflict.
func ResolveUniqueSlug(candidate string, exists ExistsFunc) (string, error) {
	taken, err := exists(candidate)
	if err != nil {
		return "", err
	}
	if !taken {
		return candidate, nil
	}
	for n := 2; n <= maxNumericSuffix; n++ {
		slug := fmt.Sprintf("%s-%d", candidate, n)
		taken, err := exists(slug)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
	}
	for i := 0; i < randomSuffixAttempts; i++ {
		suffix, err := randomSuffix(randomSuffixLength)
		if err != nil {
			return "", fmt.Errorf("generate slug suffix: %w", err)
		}
		slug := candidate + "-" + suffix
		taken, err := exists(slug)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
	}
	return "", fmt.Errorf("no free slug for %q: %w", candidate, domain.ErrConflict)
}

func randomSuffix(n int) (string, error) {
	b := make([]rune, n)
	max := big.NewInt(int64(len(suffixAlphabet)))
	for i := range b {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = suffixAlphabet[v.Int64()]
	}
	return string(b), nil
}
