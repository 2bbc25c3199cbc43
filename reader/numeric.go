package reader

import (
	"strconv"
	"strings"
)

// parseNumeric attempts the host-literal interpretation of a Symbol token's
// text (spec.md §4.3: "a numeric ... token is parsed by a single pass that
// tries host-literal interpretation; on success the resulting host value
// becomes an atom, else it is treated as a symbol"). It accepts decimal,
// hex/octal/binary integers, floats, and a trailing j/J imaginary suffix,
// mirroring the host's own numeric literal grammar (example scenario 2's
// "2j").
func parseNumeric(s string) (interface{}, bool) {
	if s == "" {
		return nil, false
	}
	neg := false
	body := s
	if body[0] == '+' || body[0] == '-' {
		neg = body[0] == '-'
		body = body[1:]
	}
	if body == "" {
		return nil, false
	}
	if !(body[0] >= '0' && body[0] <= '9') {
		return nil, false
	}

	imaginary := false
	if last := body[len(body)-1]; last == 'j' || last == 'J' {
		imaginary = true
		body = body[:len(body)-1]
	}

	if v, ok := parseIntLiteral(body); ok {
		return signed(v, neg, imaginary), true
	}
	if f, err := strconv.ParseFloat(body, 64); err == nil {
		return signedFloat(f, neg, imaginary), true
	}
	return nil, false
}

func signed(v int64, neg, imaginary bool) interface{} {
	if neg {
		v = -v
	}
	if imaginary {
		return complex(0, float64(v))
	}
	return v
}

func signedFloat(f float64, neg, imaginary bool) interface{} {
	if neg {
		f = -f
	}
	if imaginary {
		return complex(0, f)
	}
	return f
}

func parseIntLiteral(body string) (int64, bool) {
	lower := strings.ToLower(body)
	switch {
	case strings.HasPrefix(lower, "0x"):
		v, err := strconv.ParseInt(body[2:], 16, 64)
		return v, err == nil
	case strings.HasPrefix(lower, "0o"):
		v, err := strconv.ParseInt(body[2:], 8, 64)
		return v, err == nil
	case strings.HasPrefix(lower, "0b"):
		v, err := strconv.ParseInt(body[2:], 2, 64)
		return v, err == nil
	case strings.ContainsAny(body, ".eE") && !strings.HasPrefix(lower, "0x"):
		return 0, false
	default:
		v, err := strconv.ParseInt(body, 10, 64)
		return v, err == nil
	}
}
