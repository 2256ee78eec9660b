package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

var languageNamer = display.Languages(language.English)

// LanguageName renders a stored language code with its English name,
// e.g. "Portuguese (pt)". Unknown codes are returned as-is.
func LanguageName(code string) string {
	if code == "" {
		return "unknown"
	}
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	name := languageNamer.Name(tag)
	if name == "" {
		return code
	}
	return fmt.Sprintf("%s (%s)", name, code)
}

// Downloads formats a download count with thousands separators.
func Downloads(n float64) string {
	if n == math.Trunc(n) {
		return humanize.Comma(int64(n))
	}
	return humanize.CommafWithDigits(n, 2)
}

func yearOrUnknown(y *int) string {
	if y == nil {
		return "?"
	}
	return strconv.Itoa(*y)
}

func titles(list []string) string {
	if len(list) == 0 {
		return "-"
	}
	return strings.Join(list, "; ")
}
