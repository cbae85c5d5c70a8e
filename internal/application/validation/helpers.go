package validation

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// toFloat coerces rule field values into float64. Strings are parsed so
// that records arriving from JSON with stringified numbers still validate.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case decimal.Decimal:
		f, _ := n.Float64()
		return f, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// expectedTotal computes quantity x unit price in decimal arithmetic to
// keep the comparison free of binary float drift.
func expectedTotal(quantity, unitPrice float64) float64 {
	product := decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(unitPrice))
	f, _ := product.Float64()
	return f
}

// toDate coerces a rule field value into a time. Accepted inputs are
// time.Time and strings in RFC 3339 or plain date form.
func toDate(v interface{}) (time.Time, bool) {
	switch d := v.(type) {
	case time.Time:
		return d, !d.IsZero()
	case *time.Time:
		if d == nil {
			return time.Time{}, false
		}
		return *d, !d.IsZero()
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, strings.TrimSpace(d)); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// isEmptyValue reports whether a field value counts as missing for the
// required check and the IS_EMPTY operator.
func isEmptyValue(v interface{}) bool {
	if v == nil {
		return true
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s) == ""
	case time.Time:
		return s.IsZero()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() == 0
	case reflect.Ptr:
		return rv.IsNil()
	}
	return false
}

// looseEqual compares rule values the way records carry them: numbers of
// any width compare numerically, everything else by string form.
func looseEqual(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == b
	}
	fa, okA := toFloat(a)
	fb, okB := toFloat(b)
	if okA && okB {
		return fa == fb
	}
	return stringify(a) == stringify(b)
}

func stringify(v interface{}) string {
	switch n := v.(type) {
	case nil:
		return ""
	case string:
		return n
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 32)
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case bool:
		return strconv.FormatBool(n)
	case time.Time:
		return n.Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}
