package params

import "time"

// UnixTimestampToTime converts a Unix second timestamp to time.Time.
func UnixTimestampToTime(ts uint64) time.Time {
	return time.Unix(int64(ts), 0)
}
