package csvutil

import (
	"bytes"
	"errors"
	"testing"
)

func TestWriteSchedule(t *testing.T) {
	tests := []struct {
		name string
		rows []ScheduleRow
		want string
	}{
		{
			name: "header only",
			want: "Name,Personal ID,Date\n",
		},
		{
			name: "single row",
			rows: []ScheduleRow{{Name: "Dana", UserID: "u1", DateKey: "2024-06-02"}},
			want: "Name,Personal ID,Date\nDana,u1,2024-06-02\n",
		},
		{
			name: "fields are not quoted",
			rows: []ScheduleRow{
				{Name: `O"Neil, Sam`, UserID: "u2", DateKey: "2024-06-03"},
				{Name: "Omer", UserID: "u3", DateKey: "2024-06-04"},
			},
			want: "Name,Personal ID,Date\nO\"Neil, Sam,u2,2024-06-03\nOmer,u3,2024-06-04\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteSchedule(&buf, tt.rows); err != nil {
				t.Fatalf("WriteSchedule() error = %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("WriteSchedule() = %q, want %q", got, tt.want)
			}
		})
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestWriteSchedule_WriterError(t *testing.T) {
	err := WriteSchedule(failingWriter{}, []ScheduleRow{{Name: "Dana", UserID: "u1", DateKey: "2024-06-02"}})
	if err == nil {
		t.Error("expected error from failing writer")
	}
}
