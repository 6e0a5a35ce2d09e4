package common

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// AnalysisCacheKey identifies one analysis request. The analyzer is
// deterministic, so the same moves at the same depth may be served from
// cache without a second engine pass.
func AnalysisCacheKey(moves []string, depth int) string {
	h := md5.New()
	h.Write([]byte(strings.Join(moves, " ")))
	return fmt.Sprintf("analysis:%d:%s", depth, hex.EncodeToString(h.Sum(nil)))
}

// WeekStart truncates t to the Monday of its week in UTC, the key format
// of the weekly progress log.
func WeekStart(t time.Time) string {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset).Format("2006-01-02")
}
