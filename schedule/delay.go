package schedule

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	cronlib "github.com/robfig/cron/v3"
	str2duration "github.com/xhit/go-str2duration/v2"

	"github.com/xraph/bossbat"
)

// cronParser supports 5-field cron, an optional seconds field, and
// descriptors like "@every 30s".
var cronParser = cronlib.NewParser(
	cronlib.SecondOptional | cronlib.Minute | cronlib.Hour | cronlib.Dom | cronlib.Month | cronlib.Dow | cronlib.Descriptor,
)

// ParseSchedule parses a cron expression.
func ParseSchedule(expr string) (cronlib.Schedule, error) {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", bossbat.ErrInvalidCron, expr, err)
	}
	return sched, nil
}

// maxMillis is the largest millisecond count a time.Duration holds.
const maxMillis = math.MaxInt64 / int64(time.Millisecond)

// unitWords maps spelled-out units to the symbols str2duration knows.
var unitWords = map[string]string{
	"nanosecond": "ns", "nanoseconds": "ns",
	"microsecond": "us", "microseconds": "us",
	"msec": "ms", "msecs": "ms", "millisecond": "ms", "milliseconds": "ms",
	"sec": "s", "secs": "s", "second": "s", "seconds": "s",
	"min": "m", "mins": "m", "minute": "m", "minutes": "m",
	"hr": "h", "hrs": "h", "hour": "h", "hours": "h",
	"day": "d", "days": "d",
	"wk": "w", "wks": "w", "week": "w", "weeks": "w",
}

var unitWord = regexp.MustCompile(`[a-z]+`)

// ParseInterval converts an interval trigger value into a duration.
// Integer and float kinds are milliseconds; strings go through the
// human-readable duration parser, so "200 ms", "1w 2h" and "0.5 seconds"
// all parse.
func ParseInterval(v any) (time.Duration, error) {
	var (
		d   time.Duration
		err error
	)
	switch x := v.(type) {
	case time.Duration:
		d = x
	case int:
		d, err = ms(int64(x))
	case int8:
		d, err = ms(int64(x))
	case int16:
		d, err = ms(int64(x))
	case int32:
		d, err = ms(int64(x))
	case int64:
		d, err = ms(x)
	case uint:
		d, err = msUnsigned(uint64(x))
	case uint8:
		d, err = msUnsigned(uint64(x))
	case uint16:
		d, err = msUnsigned(uint64(x))
	case uint32:
		d, err = msUnsigned(uint64(x))
	case uint64:
		d, err = msUnsigned(x)
	case float32:
		d, err = msFloat(float64(x))
	case float64:
		d, err = msFloat(x)
	case string:
		d, err = parseHuman(x)
	default:
		return 0, fmt.Errorf("%w: unknown interval of type %T", bossbat.ErrInvalidInterval, v)
	}
	if err != nil {
		return 0, err
	}

	if d <= 0 {
		return 0, fmt.Errorf("%w: %v is not positive", bossbat.ErrInvalidInterval, d)
	}
	return d, nil
}

func parseHuman(s string) (time.Duration, error) {
	norm := unitWord.ReplaceAllStringFunc(strings.ToLower(s), func(w string) string {
		if sym, ok := unitWords[w]; ok {
			return sym
		}
		return w
	})
	d, err := str2duration.ParseDuration(strings.Join(strings.Fields(norm), ""))
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", bossbat.ErrInvalidInterval, s, err)
	}
	return d, nil
}

func ms(n int64) (time.Duration, error) {
	if n > maxMillis || n < -maxMillis {
		return 0, fmt.Errorf("%w: %dms is out of range", bossbat.ErrInvalidInterval, n)
	}
	return time.Duration(n) * time.Millisecond, nil
}

func msUnsigned(n uint64) (time.Duration, error) {
	if n > uint64(maxMillis) {
		return 0, fmt.Errorf("%w: %dms is out of range", bossbat.ErrInvalidInterval, n)
	}
	return time.Duration(n) * time.Millisecond, nil //nolint:gosec // bounded above
}

func msFloat(f float64) (time.Duration, error) {
	if math.IsNaN(f) || math.Abs(f) > float64(maxMillis) {
		return 0, fmt.Errorf("%w: %vms is out of range", bossbat.ErrInvalidInterval, f)
	}
	return time.Duration(f * float64(time.Millisecond)), nil
}

// LoadLocation resolves an IANA timezone name.
func LoadLocation(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", bossbat.ErrInvalidTimezone, name, err)
	}
	return loc, nil
}
