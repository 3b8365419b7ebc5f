// Package validate checks and formats Brazilian identifiers and contact
// fields entered in registration and user forms.
package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func repeated(d string) bool {
	return strings.Count(d, d[:1]) == len(d)
}

// CPF reports whether s holds a valid individual taxpayer number. Punctuation
// is ignored.
func CPF(s string) bool {
	d := digits(s)
	if len(d) != 11 || repeated(d) {
		return false
	}
	check := func(n int) int {
		sum := 0
		for i := 0; i < n; i++ {
			sum += int(d[i]-'0') * (n + 1 - i)
		}
		r := (sum * 10) % 11
		if r == 10 {
			r = 0
		}
		return r
	}
	return check(9) == int(d[9]-'0') && check(10) == int(d[10]-'0')
}

var (
	cnpjWeights1 = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeights2 = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// CNPJ reports whether s holds a valid company registration number.
func CNPJ(s string) bool {
	d := digits(s)
	if len(d) != 14 || repeated(d) {
		return false
	}
	check := func(weights []int) int {
		sum := 0
		for i, w := range weights {
			sum += int(d[i]-'0') * w
		}
		if r := sum % 11; r >= 2 {
			return 11 - r
		}
		return 0
	}
	return check(cnpjWeights1) == int(d[12]-'0') && check(cnpjWeights2) == int(d[13]-'0')
}

func Email(s string) bool { return emailRe.MatchString(s) }

// Phone accepts landlines (10 digits) and mobiles (11 digits) with area code.
func Phone(s string) bool {
	n := len(digits(s))
	return n == 10 || n == 11
}

func Required(s string) bool { return strings.TrimSpace(s) != "" }

func MinLength(s string, min int) bool { return utf8.RuneCountInString(s) >= min }

// FormatCPF renders 000.000.000-00, or returns s unchanged if it is not 11 digits.
func FormatCPF(s string) string {
	d := digits(s)
	if len(d) != 11 {
		return s
	}
	return d[:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:]
}

// FormatCNPJ renders 00.000.000/0000-00.
func FormatCNPJ(s string) string {
	d := digits(s)
	if len(d) != 14 {
		return s
	}
	return d[:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:12] + "-" + d[12:]
}

// FormatPhone renders (00) 00000-0000 or (00) 0000-0000.
func FormatPhone(s string) string {
	d := digits(s)
	switch len(d) {
	case 11:
		return "(" + d[:2] + ") " + d[2:7] + "-" + d[7:]
	case 10:
		return "(" + d[:2] + ") " + d[2:6] + "-" + d[6:]
	}
	return s
}
