package calc

import (
	"regexp"
	"strings"
)

var (
	// wordOperators are rewritten to symbols before scanning. Longer phrases
	// come first so "multiplied by" is not split.
	wordOperators = []struct {
		pattern *regexp.Regexp
		symbol  string
	}{
		{regexp.MustCompile(`(?i)\bmultiplied\s+by\b`), " * "},
		{regexp.MustCompile(`(?i)\bdivided\s+by\b`), " / "},
		{regexp.MustCompile(`(?i)\btimes\b`), " * "},
		{regexp.MustCompile(`(?i)\bplus\b`), " + "},
		{regexp.MustCompile(`(?i)\bminus\b`), " - "},
		{regexp.MustCompile(`(?i)\bover\b`), " / "},
	}

	symbolReplacer = strings.NewReplacer("×", "*", "÷", "/", "−", "-")

	// digitTimes matches "3x4" and "3 X 4".
	digitTimes = regexp.MustCompile(`(\d)\s*[xX]\s*(\d)`)

	// isoDate matches calendar dates so "2024-05-01" is not read as subtraction.
	isoDate = regexp.MustCompile(`\b\d{4}-\d{1,2}-\d{1,2}\b`)

	// numberRange matches hyphenated runs of long numbers, such as year
	// ranges ("2020-2021") and phone numbers ("555-1234"), which are not
	// subtraction. Shorter operands ("10-4") still are.
	numberRange = regexp.MustCompile(`\b\d{3,}(?:-\d{3,})+\b`)

	// candidateRun matches maximal stretches of arithmetic characters.
	candidateRun = regexp.MustCompile(`[0-9.+\-*/()\s]+`)
)

// Normalize rewrites word and unicode operators into + - * / so the result
// can be scanned for an expression.
func Normalize(query string) string {
	s := symbolReplacer.Replace(query)
	for _, w := range wordOperators {
		s = w.pattern.ReplaceAllString(s, w.symbol)
	}
	for {
		replaced := digitTimes.ReplaceAllString(s, "$1 * $2")
		if replaced == s {
			break
		}
		s = replaced
	}
	s = isoDate.ReplaceAllStringFunc(s, blank)
	return numberRange.ReplaceAllStringFunc(s, blank)
}

func blank(m string) string {
	return strings.Repeat(" ", len(m))
}

// Extract finds the first arithmetic expression embedded in free text, e.g.
// "42 * 7" in "What is 42 * 7?". A candidate must contain a digit and at
// least one binary operator, that is an operator following a number or a
// closing parenthesis. The returned expression has its whitespace collapsed.
func Extract(query string) (string, bool) {
	for _, run := range candidateRun.FindAllString(Normalize(query), -1) {
		expr := trimRun(run)
		if hasDigit(expr) && hasBinaryOperator(expr) {
			return expr, true
		}
	}
	return "", false
}

// trimRun strips sentence punctuation and unbalanced parentheses that the
// character class picks up at the edges of a run.
func trimRun(run string) string {
	s := strings.Join(strings.Fields(run), " ")
	for {
		before := s
		s = strings.TrimRight(s, ". (")
		s = strings.TrimLeft(s, " )")
		if strings.HasPrefix(s, ".") && (len(s) == 1 || !isDigit(s[1])) {
			s = s[1:]
		}
		for strings.HasSuffix(s, ")") && strings.Count(s, ")") > strings.Count(s, "(") {
			s = strings.TrimSpace(s[:len(s)-1])
		}
		for strings.HasPrefix(s, "(") && strings.Count(s, "(") > strings.Count(s, ")") {
			s = strings.TrimSpace(s[1:])
		}
		if s == before {
			return s
		}
	}
}

func hasDigit(s string) bool {
	for i := 0; i < len(s); i++ {
		if isDigit(s[i]) {
			return true
		}
	}
	return false
}

func hasBinaryOperator(s string) bool {
	var prev byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' {
			continue
		}
		if strings.IndexByte("+-*/", c) >= 0 && (isDigit(prev) || prev == ')' || prev == '.') {
			return true
		}
		prev = c
	}
	return false
}
