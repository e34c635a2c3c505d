package executor

import (
	"fmt"
	"strconv"
	"time"
)

const (
	timeLayout     = "2006-01-02 15:04:05"
	timeLayoutNano = "2006-01-02 15:04:05.999999999"
)

// FormatValue renders a value scanned by database/sql as text.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int:
		return strconv.Itoa(val)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		if val.Nanosecond() == 0 {
			return val.Format(timeLayout)
		}
		return val.Format(timeLayoutNano)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
