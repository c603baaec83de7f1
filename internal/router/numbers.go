package router

import (
	"strconv"
	"strings"
)

var units = map[string]int{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
	"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
}

var tens = map[string]int{
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

var scales = map[string]int{
	"thousand": 1_000,
	"million":  1_000_000,
}

// ParseNumber reads a count spoken as digits ("25") or as English words
// ("twenty-five", "one hundred and two").
func ParseNumber(s string) (int, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	return parseWords(s)
}

func parseWords(s string) (int, bool) {
	tokens := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '-' || r == '\t' || r == ','
	})

	var (
		total, current int
		seen           bool

		// scales must descend: "two million three thousand"
		lastScale int

		// lastUnit/lastTens reject "three four" and "twenty thirty"
		lastUnit, lastTens bool
	)
	for i, tok := range tokens {
		switch {
		case tok == "and":
			if !seen || i == len(tokens)-1 {
				return 0, false
			}
			continue
		case tok == "a" && i == 0:
			current, seen = 1, true
			lastUnit, lastTens = true, false
		case units[tok] > 0 || tok == "zero":
			v := units[tok]
			if lastUnit || (lastTens && v >= 10) {
				return 0, false
			}
			current += v
			lastUnit, lastTens = true, false
		case tens[tok] > 0:
			if lastUnit || lastTens {
				return 0, false
			}
			current += tens[tok]
			lastUnit, lastTens = false, true
		case tok == "hundred":
			if current == 0 {
				current = 1
			}
			current *= 100
			lastUnit, lastTens = false, false
		case scales[tok] > 0:
			if lastScale != 0 && (current == 0 || scales[tok] >= lastScale) {
				return 0, false
			}
			if current == 0 {
				current = 1
			}
			lastScale = scales[tok]
			total += current * scales[tok]
			current = 0
			lastUnit, lastTens = false, false
		default:
			return 0, false
		}
		seen = true
	}
	if !seen {
		return 0, false
	}
	return total + current, true
}
