package selector

import (
	"fmt"
	"strings"
	"unicode"
)

// Validate rejects anything beyond comparisons and boolean logic over bank
// attributes: no arithmetic, member access or function calls. Decimal points
// and negative literals are allowed.
func Validate(cond string) error {
	cond = strings.TrimSpace(cond)
	if cond == "" {
		return nil
	}

	illegalChars := []rune{'{', '}', '[', ']', ';', ':', '?', '@', '#', '$', '\\'}
	for _, ch := range illegalChars {
		if strings.ContainsRune(cond, ch) {
			return fmt.Errorf("illegal character %q", ch)
		}
	}

	for i := 0; i < len(cond); i++ {
		switch cond[i] {
		case '.':
			if !isDigitAt(cond, i-1) || !isDigitAt(cond, i+1) {
				return fmt.Errorf("dot access is not allowed")
			}
		case '-':
			if !isUnaryMinus(cond, i) {
				return fmt.Errorf("arithmetic operator %q is not allowed", "-")
			}
		case '+', '*', '/', '%':
			return fmt.Errorf("arithmetic operator %q is not allowed", string(cond[i]))
		}
	}

	for i := 0; i < len(cond)-1; i++ {
		if cond[i] == '(' {
			j := i - 1
			for j >= 0 && unicode.IsSpace(rune(cond[j])) {
				j--
			}
			if j >= 0 && (unicode.IsLetter(rune(cond[j])) || cond[j] == '_') {
				k := j
				for k >= 0 && (unicode.IsLetter(rune(cond[k])) || unicode.IsDigit(rune(cond[k])) || cond[k] == '_') {
					k--
				}
				ident := strings.TrimSpace(cond[k+1 : j+1])
				if ident != "" && !isKeyword(ident) {
					return fmt.Errorf("function calls are not allowed (found %q(...))", ident)
				}
			}
		}
	}

	return nil
}

func isDigitAt(s string, i int) bool {
	return i >= 0 && i < len(s) && s[i] >= '0' && s[i] <= '9'
}

// isUnaryMinus accepts a minus sign directly in front of a number when it
// follows an operator, an opening parenthesis or the start of the input.
func isUnaryMinus(s string, i int) bool {
	if !isDigitAt(s, i+1) {
		return false
	}
	j := i - 1
	for j >= 0 && unicode.IsSpace(rune(s[j])) {
		j--
	}
	if j < 0 {
		return true
	}
	return strings.ContainsRune("<>=!&|(", rune(s[j]))
}

func isKeyword(ident string) bool {
	switch ident {
	case "and", "or", "not", "in":
		return true
	}
	return false
}
