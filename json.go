package apiview

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Stringify parses body as JSON and serializes it back to compact text the
// way a browser's JSON.parse followed by JSON.stringify would:
//
//   - object keys keep their order, except array-index keys ("0", "17"),
//     which move to the front in ascending numeric order
//   - a duplicated key keeps its first position and its last value
//   - strings are decoded, so "\u00e9" becomes "é"; only quotes,
//     backslashes and control characters are escaped
//   - numbers use their shortest round-trip form, and values that overflow
//     a float64 become null
//
// A leading UTF-8 byte order mark is ignored. Unpaired surrogate escapes
// such as "\ud800" decode to U+FFFD. Invalid JSON returns EPARSE.
func Stringify(body []byte) (string, error) {
	body = bytes.TrimPrefix(body, utf8BOM)

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	out, err := stringifyValue(dec)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", Errorf(EPARSE, "invalid JSON: unexpected end of input")
		}
		return "", Errorf(EPARSE, "invalid JSON: %v", err)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return "", Errorf(EPARSE, "invalid JSON: unexpected data after top-level value")
	}

	return out, nil
}

var utf8BOM = []byte("\xef\xbb\xbf")

func stringifyValue(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '[':
			return stringifyArray(dec)
		case '{':
			return stringifyObject(dec)
		}
		return "", errors.New("unexpected delimiter " + v.String())
	case string:
		return quote(v), nil
	case json.Number:
		return formatNumber(v)
	case bool:
		return strconv.FormatBool(v), nil
	case nil:
		return "null", nil
	}
	return "", errors.New("unexpected token")
}

func stringifyArray(dec *json.Decoder) (string, error) {
	var b strings.Builder
	b.WriteByte('[')
	for i := 0; dec.More(); i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		elem, err := stringifyValue(dec)
		if err != nil {
			return "", err
		}
		b.WriteString(elem)
	}
	if _, err := dec.Token(); err != nil {
		return "", err
	}
	b.WriteByte(']')
	return b.String(), nil
}

func stringifyObject(dec *json.Decoder) (string, error) {
	var keys []string
	values := make(map[string]string)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		key, ok := tok.(string)
		if !ok {
			return "", errors.New("object key is not a string")
		}
		value, err := stringifyValue(dec)
		if err != nil {
			return "", err
		}
		if _, seen := values[key]; !seen {
			keys = append(keys, key)
		}
		values[key] = value
	}
	if _, err := dec.Token(); err != nil {
		return "", err
	}

	var indexKeys, nameKeys []string
	for _, k := range keys {
		if _, ok := arrayIndex(k); ok {
			indexKeys = append(indexKeys, k)
		} else {
			nameKeys = append(nameKeys, k)
		}
	}
	slices.SortFunc(indexKeys, func(a, b string) int {
		x, _ := arrayIndex(a)
		y, _ := arrayIndex(b)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	})

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range append(indexKeys, nameKeys...) {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(quote(k))
		b.WriteByte(':')
		b.WriteString(values[k])
	}
	b.WriteByte('}')
	return b.String(), nil
}

// arrayIndex reports whether key is a canonical array index (0 to 2^32-2).
func arrayIndex(key string) (uint64, bool) {
	if key == "" || (len(key) > 1 && key[0] == '0') {
		return 0, false
	}
	for i := 0; i < len(key); i++ {
		if key[i] < '0' || key[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseUint(key, 10, 64)
	if err != nil || n >= math.MaxUint32 {
		return 0, false
	}
	return n, true
}

func quote(s string) string {
	const hex = "0123456789abcdef"

	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				b.WriteString(`\u00`)
				b.WriteByte(hex[r>>4])
				b.WriteByte(hex[r&0xf])
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// formatNumber renders n the way ECMAScript's Number::toString does.
func formatNumber(n json.Number) (string, error) {
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			if math.IsInf(f, 0) {
				return "null", nil
			}
			return "0", nil
		}
		return "", err
	}
	if f == 0 {
		return "0", nil
	}

	sign := ""
	if f < 0 {
		sign = "-"
		f = -f
	}

	// Shortest digits d1.d2d3...e±x, so value = digits × 10^(exp+1-k).
	sci := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, expPart, _ := strings.Cut(sci, "e")
	digits := strings.Replace(mantissa, ".", "", 1)
	exp, err := strconv.Atoi(expPart)
	if err != nil {
		return "", err
	}
	k := len(digits)
	point := exp + 1

	var s string
	switch {
	case k <= point && point <= 21:
		s = digits + strings.Repeat("0", point-k)
	case 0 < point && point <= 21:
		s = digits[:point] + "." + digits[point:]
	case -6 < point && point <= 0:
		s = "0." + strings.Repeat("0", -point) + digits
	default:
		s = digits[:1]
		if k > 1 {
			s += "." + digits[1:]
		}
		e := point - 1
		if e >= 0 {
			s += "e+" + strconv.Itoa(e)
		} else {
			s += "e-" + strconv.Itoa(-e)
		}
	}
	return sign + s, nil
}
