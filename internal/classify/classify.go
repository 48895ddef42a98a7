// Package classify turns raw input text into an action category. This is
// a deterministic keyword policy, not a model: keyword sets can overlap,
// so the rules live in one ordered table and the first match wins.
package classify

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type Category string

const (
	CategoryDiarySearch Category = "diary-search"
	CategoryDiaryWrite  Category = "diary-write"
	CategorySports      Category = "sports"
	CategoryWeather     Category = "weather"
	CategoryChat        Category = "chat"
)

type rule struct {
	category Category
	keywords []string
	extracts bool
}

// rules is evaluated top to bottom; order is the priority policy.
// Once a rule matches, later rules are never consulted.
var rules = []rule{
	{
		category: CategoryDiarySearch,
		keywords: []string{"일기 검색", "일기 찾아", "일기 조회", "일기 보여", "diary search"},
		extracts: true,
	},
	{
		category: CategoryDiaryWrite,
		keywords: []string{"일기 작성", "일기 저장", "일기 써", "일기 쓰", "diary write"},
		extracts: true,
	},
	{
		category: CategorySports,
		keywords: []string{"축구", "경기 일정", "구단", "선수", "soccer"},
		extracts: true,
	},
	{
		category: CategoryWeather,
		keywords: []string{"날씨", "기온", "주간 예보", "weather"},
		extracts: true,
	},
}

type Result struct {
	Category Category
	// Argument is the input with the matched keyword phrase removed and
	// trimmed; empty means "no filter". For the chat fallback it is the
	// input unchanged.
	Argument string
}

// Classify scans text against the ordered rule table. Matching is
// case-insensitive substring containment; no tokenization, no stemming.
// No match falls through to the chat category by design.
func Classify(text string) Result {
	for _, r := range rules {
		for _, kw := range r.keywords {
			start, end, ok := keywordSpan(text, kw)
			if !ok {
				continue
			}
			res := Result{Category: r.category}
			if r.extracts {
				res.Argument = strings.TrimSpace(text[:start] + text[end:])
			}
			return res
		}
	}
	return Result{Category: CategoryChat, Argument: strings.TrimSpace(text)}
}

// keywordSpan locates kw in text ignoring case and returns the byte span
// within text itself. Matching rune by rune keeps the span aligned even
// when lowercasing changes a character's byte length, so the extracted
// argument always keeps its original form.
func keywordSpan(text, kw string) (start, end int, ok bool) {
	for i := range text {
		j, k := i, 0
		for k < len(kw) {
			r1, sz1 := utf8.DecodeRuneInString(text[j:])
			r2, sz2 := utf8.DecodeRuneInString(kw[k:])
			if sz1 == 0 || unicode.ToLower(r1) != unicode.ToLower(r2) {
				break
			}
			j += sz1
			k += sz2
		}
		if k == len(kw) {
			return i, j, true
		}
	}
	return 0, 0, false
}
