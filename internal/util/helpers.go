package util

import (
	"strconv"
	"strings"
	"time"
)

func UnixMilliTimestamp() int64 {
	return time.Now().UnixMilli()
}

// ISOTimestamp formats t the way the JavaScript side did with toISOString.
func ISOTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// FormatThousands renders 12847 as "12,847".
func FormatThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// MaskKey keeps the first n characters of a secret and replaces the rest
// with "...", as the Loader page shows API keys and HWIDs.
func MaskKey(key string, n int) string {
	if len(key) <= n {
		return key
	}
	return key[:n] + "..."
}
