/*
flex.go - Tolerant numeric decoding for payroll source fields

PURPOSE:
  Salary and appointment fields arrive as JSON numbers, currency strings
  ("$110,556.00", "48,120"), or null. FlexValue captures the raw token the
  source used and defers normalization to the point of use, so a bad value
  degrades one field instead of failing the decode of the whole document.

NORMALIZATION RULE:
  Decimal() parses a native number token directly, so exponent notation
  (4.812e4) keeps its meaning. String tokens are stripped of every
  character except digits, '.', and '-' before parsing. An empty or
  unparsable remainder means "absent", never an error. This matches how
  the payroll exports actually misbehave: stray currency symbols,
  thousands separators, whitespace.

ROUND-TRIPPING:
  Output documents echo the source timeline verbatim, so MarshalJSON
  re-emits the original token: a value decoded from a JSON string stays a
  string, a number stays a number.

SEE ALSO:
  - types.go: Job uses FlexValue for rate and percent
  - engine/pay.go: applies the monthly-term data-quality guard on top
*/
package dataset

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// FlexValue holds the raw JSON token of a field that may arrive as a
// string, a number, or null. The zero value means absent. Values built in
// code may hold bare text ("48,120.00"); MarshalJSON quotes those.
type FlexValue string

func (v *FlexValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*v = ""
		return nil
	}
	*v = FlexValue(data)
	return nil
}

func (v FlexValue) MarshalJSON() ([]byte, error) {
	s := string(v)
	switch {
	case s == "":
		return []byte("null"), nil
	case s[0] == '"' && json.Valid([]byte(s)):
		// Token came off the wire as a string; echo it untouched.
		return []byte(s), nil
	case isNumericLiteral(s):
		return []byte(s), nil
	default:
		return json.Marshal(s)
	}
}

// isNumericLiteral reports whether s is a plain JSON number and can be
// emitted without quoting.
func isNumericLiteral(s string) bool {
	if s == "" {
		return false
	}
	if _, err := decimal.NewFromString(s); err != nil {
		return false
	}
	// decimal accepts some forms JSON does not (leading '+', ".5"); be strict.
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '-' && i == 0:
		case r == '.' || r == 'e' || r == 'E' || r == '+' || r == '-':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// IsZeroValue reports whether no token was present at all.
func (v FlexValue) IsZeroValue() bool { return v == "" }

// Decimal parses the raw token. A native number token parses directly,
// keeping exponent notation intact; string tokens and anything else go
// through strip-charset normalization. The boolean is false when the value
// is absent or unparsable; callers treat that as "field not provided",
// never as an error.
func (v FlexValue) Decimal() (decimal.Decimal, bool) {
	s := string(v)
	if s == "" {
		return decimal.Decimal{}, false
	}
	if s[0] != '"' {
		if d, err := decimal.NewFromString(s); err == nil {
			return d, true
		}
	}
	cleaned := normalizeNumeric(s)
	if cleaned == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// DecimalOrZero is Decimal with an absent value collapsing to zero.
func (v FlexValue) DecimalOrZero() decimal.Decimal {
	d, ok := v.Decimal()
	if !ok {
		return decimal.Zero
	}
	return d
}

// normalizeNumeric drops everything except digits, '.', and '-'. Quotes on
// a string token fall out here along with the currency noise.
func normalizeNumeric(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
