package match

import (
	"log"
	"sort"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// DefaultThreshold is the minimum similarity (0-100) for an OCR string to
// be accepted as a canonical name.
const DefaultThreshold = 80

// Match links one distinct OCR string to its best-scoring canonical
// display name.
type Match struct {
	OCRText     string
	DisplayName string
	Score       float64
}

// Table holds the accepted matches for one role, keyed by OCR text. There
// is at most one match per distinct OCR text.
type Table map[string]Match

// Options control a matching run.
type Options struct {
	// Threshold is the minimum accepted similarity on the 0-100 scale.
	Threshold float64
	// Last4Agree zeroes any pairing whose rightmost-4-digit extractions
	// disagree, corroborating the rating suffix embedded in display names.
	Last4Agree bool
}

// BuildTable scores every distinct OCR string against every canonical
// display name and keeps, per OCR string, the best-scoring name when it
// reaches the threshold. Ties go to the earlier name in sorted order.
func BuildTable(ocrTexts, displayNames []string, opts Options) Table {
	texts := distinctSorted(ocrTexts)
	names := distinctSorted(displayNames)

	lev := metrics.NewLevenshtein()
	nameDigits := make([]int, len(names))
	for i, name := range names {
		nameDigits[i] = ExtractLast4Digits(name)
	}

	table := make(Table)
	for _, text := range texts {
		textDigits := ExtractLast4Digits(text)
		best := Match{OCRText: text, Score: -1}
		for i, name := range names {
			score := strutil.Similarity(text, name, lev) * 100
			if opts.Last4Agree && textDigits != nameDigits[i] {
				score = 0
			}
			if score > best.Score {
				best.Score = score
				best.DisplayName = name
			}
		}
		if best.Score >= opts.Threshold && best.DisplayName != "" {
			table[text] = best
		}
	}
	log.Printf("[MATCH] %d/%d ocr strings matched against %d names (threshold %.0f)",
		len(table), len(texts), len(names), opts.Threshold)
	return table
}

// ExtractLast4Digits strips non-digits and returns the rightmost four
// digits as an integer, or 0 when the string has no digits. Display names
// embed 4-digit ratings; sub-1000 ratings degrade to fewer digits on both
// sides of a comparison, so corroboration stays symmetric.
func ExtractLast4Digits(s string) int {
	digits := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			digits = append(digits, s[i])
		}
	}
	if len(digits) == 0 {
		return 0
	}
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}
	n := 0
	for _, d := range digits {
		n = n*10 + int(d-'0')
	}
	return n
}

func distinctSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
