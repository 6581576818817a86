// Package timefmt renders instants with moment-style patterns such as
// "YYYY-MM-DD HH:mm".
//
// Patterns are translated token by token into a strftime layout and rendered
// with go-strftime. Tokens strftime has no directive for are computed here and
// spliced in as literals. Text in square brackets is copied verbatim, and any
// character that is not a token is echoed unchanged.
package timefmt

import (
	"strconv"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"
)

// DefaultPattern is the stamp pattern used when none is configured.
const DefaultPattern = "YYYY-MM-DD HH:mm"

// isoPattern is what an empty pattern renders as.
const isoPattern = "YYYY-MM-DDTHH:mm:ssZ"

// tokens ordered so that longer tokens win over their prefixes.
var tokens = []string{
	"YYYY", "MMMM", "DDDD", "dddd", "GGGG", "DDDo",
	"MMM", "DDD", "ddd", "SSS",
	"YY", "MM", "Mo", "DD", "Do", "dd", "do", "WW", "Wo", "GG",
	"HH", "hh", "kk", "mm", "ss", "SS", "ZZ",
	"Q", "M", "D", "d", "W", "H", "h", "k", "m", "s", "S", "A", "a", "Z", "X", "x",
}

// Format renders t with a moment-style pattern. It is pure: the same inputs
// always produce the same output.
func Format(t time.Time, pattern string) string {
	if pattern == "" {
		pattern = isoPattern
	}
	return strftime.Format(Layout(t, pattern), t)
}

// Layout translates pattern into a strftime layout for t. Tokens without a
// strftime directive are resolved against t and embedded as literals.
func Layout(t time.Time, pattern string) string {
	var b strings.Builder
	for i := 0; i < len(pattern); {
		if pattern[i] == '[' {
			if end := strings.IndexByte(pattern[i+1:], ']'); end >= 0 {
				b.WriteString(literal(pattern[i+1 : i+1+end]))
				i += end + 2
				continue
			}
		}
		tok := match(pattern[i:])
		if tok == "" {
			b.WriteString(literal(pattern[i : i+1]))
			i++
			continue
		}
		b.WriteString(directive(t, tok))
		i += len(tok)
	}
	return b.String()
}

func match(s string) string {
	for _, tok := range tokens {
		if strings.HasPrefix(s, tok) {
			return tok
		}
	}
	return ""
}

func literal(s string) string {
	return strings.ReplaceAll(s, "%", "%%")
}

func directive(t time.Time, tok string) string {
	switch tok {
	case "YYYY":
		return "%Y"
	case "YY":
		return "%y"
	case "MMMM":
		return "%B"
	case "MMM":
		return "%b"
	case "MM":
		return "%m"
	case "DD":
		return "%d"
	case "dddd":
		return "%A"
	case "ddd":
		return "%a"
	case "HH":
		return "%H"
	case "hh":
		return "%I"
	case "mm":
		return "%M"
	case "ss":
		return "%S"
	case "A":
		return "%p"
	case "ZZ":
		return "%z"
	}
	return literal(computed(t, tok))
}

func computed(t time.Time, tok string) string {
	isoYear, isoWeek := t.ISOWeek()
	switch tok {
	case "Q":
		return strconv.Itoa((int(t.Month())-1)/3 + 1)
	case "M":
		return strconv.Itoa(int(t.Month()))
	case "Mo":
		return ordinal(int(t.Month()))
	case "DDD":
		return strconv.Itoa(t.YearDay())
	case "DDDD":
		return pad(t.YearDay(), 3)
	case "DDDo":
		return ordinal(t.YearDay())
	case "D":
		return strconv.Itoa(t.Day())
	case "Do":
		return ordinal(t.Day())
	case "dd":
		return t.Weekday().String()[:2]
	case "d":
		return strconv.Itoa(int(t.Weekday()))
	case "do":
		return ordinal(int(t.Weekday()))
	case "W":
		return strconv.Itoa(isoWeek)
	case "WW":
		return pad(isoWeek, 2)
	case "Wo":
		return ordinal(isoWeek)
	case "GGGG":
		return pad(isoYear, 4)
	case "GG":
		return pad(isoYear%100, 2)
	case "H":
		return strconv.Itoa(t.Hour())
	case "h":
		return strconv.Itoa(hour12(t.Hour()))
	case "k":
		return strconv.Itoa(hour24(t.Hour()))
	case "kk":
		return pad(hour24(t.Hour()), 2)
	case "m":
		return strconv.Itoa(t.Minute())
	case "s":
		return strconv.Itoa(t.Second())
	case "S":
		return strconv.Itoa(t.Nanosecond() / 1e8)
	case "SS":
		return pad(t.Nanosecond()/1e7, 2)
	case "SSS":
		return pad(t.Nanosecond()/1e6, 3)
	case "a":
		if t.Hour() < 12 {
			return "am"
		}
		return "pm"
	case "Z":
		return t.Format("-07:00")
	case "X":
		return strconv.FormatInt(t.Unix(), 10)
	case "x":
		return strconv.FormatInt(t.UnixMilli(), 10)
	}
	return tok
}

func hour12(h int) int {
	if h%12 == 0 {
		return 12
	}
	return h % 12
}

func hour24(h int) int {
	if h == 0 {
		return 24
	}
	return h
}

func pad(n, width int) string {
	s := strconv.Itoa(n)
	for len(s) < width {
		s = "0" + s
	}
	return s
}

func ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}
