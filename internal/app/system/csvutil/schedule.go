// internal/app/system/csvutil/schedule.go
package csvutil

import (
	"bufio"
	"io"
)

// ScheduleHeader is the first line of every schedule export.
const ScheduleHeader = "Name,Personal ID,Date"

// ScheduleFilename is the attachment name for schedule exports.
const ScheduleFilename = "guard_duty_schedule.csv"

// ScheduleRow is one exported reservation.
type ScheduleRow struct {
	Name    string
	UserID  string
	DateKey string
}

// WriteSchedule writes the header and one line per row. Fields are joined
// with commas and never quoted, and every line ends in "\n".
func WriteSchedule(w io.Writer, rows []ScheduleRow) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(ScheduleHeader + "\n"); err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := bw.WriteString(r.Name + "," + r.UserID + "," + r.DateKey + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
