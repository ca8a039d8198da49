package features

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"priceflow/internal/frame"
)

var wordPattern = regexp.MustCompile(`[A-Za-z0-9]+`)

// Text derives signals from the free-text title:
//
//	title_len        character count (0 for null/empty)
//	title_wc         count of alphanumeric word tokens
//	title_has_digit  1 when any digit is present
//	title_has_brand  1 when the brand string occurs in the title as-is
//
// A null brand always yields title_has_brand = 0.
func Text(f *frame.Frame) *frame.Frame {
	n := f.Rows()
	title := f.Column("title")

	length := frame.NewColumn("title_len", frame.Int, n)
	wc := frame.NewColumn("title_wc", frame.Int, n)
	hasDigit := frame.NewColumn("title_has_digit", frame.Int, n)

	titles := make([]string, n)
	for i := 0; i < n; i++ {
		var s string
		if title != nil {
			s, _ = title.StringAt(i)
		}
		titles[i] = s
		length.SetInt(i, int64(utf8.RuneCountInString(s)))
		wc.SetInt(i, int64(len(wordPattern.FindAllString(s, -1))))
		if strings.ContainsAny(s, "0123456789") {
			hasDigit.SetInt(i, 1)
		} else {
			hasDigit.SetInt(i, 0)
		}
	}
	f.SetColumn(length)
	f.SetColumn(wc)
	f.SetColumn(hasDigit)

	if brand := f.Column("brand"); brand != nil {
		hasBrand := frame.NewColumn("title_has_brand", frame.Int, n)
		for i := 0; i < n; i++ {
			b, ok := brand.StringAt(i)
			if ok && b != "" && strings.Contains(titles[i], b) {
				hasBrand.SetInt(i, 1)
			} else {
				hasBrand.SetInt(i, 0)
			}
		}
		f.SetColumn(hasBrand)
	}
	return f
}
