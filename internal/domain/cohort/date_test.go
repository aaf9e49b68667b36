package cohort

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNewDate_TruncatesToDay(t *testing.T) {
	d := NewDate(time.Date(2022, 3, 4, 23, 59, 1, 0, time.UTC))
	if d.String() != "2022-03-04" {
		t.Errorf("String() = %q, want 2022-03-04", d.String())
	}
	if d.Hour() != 0 || d.Minute() != 0 {
		t.Errorf("time of day = %02d:%02d, want 00:00", d.Hour(), d.Minute())
	}
}

func TestDate_JSON(t *testing.T) {
	data, err := json.Marshal(NewDate(time.Date(2019, 12, 31, 0, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"2019-12-31"` {
		t.Errorf("json = %s, want \"2019-12-31\"", data)
	}

	var d Date
	if err := json.Unmarshal(data, &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.Year() != 2019 || d.Month() != time.December || d.Day() != 31 {
		t.Errorf("decoded = %v", d)
	}
}

func TestDate_UnmarshalRejectsBadInput(t *testing.T) {
	for _, in := range []string{`"31/12/2019"`, `20191231`, `""`} {
		var d Date
		if err := json.Unmarshal([]byte(in), &d); err == nil {
			t.Errorf("Unmarshal(%s) expected error", in)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2020-02-29")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.String() != "2020-02-29" {
		t.Errorf("String() = %q", d.String())
	}
	if _, err := ParseDate("2021-02-29"); err == nil {
		t.Error("expected error for invalid day")
	}
}

func TestNewDate_UsesUTCDay(t *testing.T) {
	est := time.FixedZone("EST", -5*60*60)
	d := NewDate(time.Date(2024, 1, 1, 23, 0, 0, 0, est))
	if d.String() != "2024-01-02" {
		t.Errorf("String() = %q, want 2024-01-02", d.String())
	}

	c := NewEventCriterion("t", "b").WithExpression("1", "")
	in := time.Date(2024, 1, 1, 23, 0, 0, 0, est)
	if got := c.ToAPIPayload(&in, nil).MinDate.String(); got != "2024-01-02" {
		t.Errorf("minDate = %q, want 2024-01-02", got)
	}
}
