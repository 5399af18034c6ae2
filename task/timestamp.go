package task

import (
	"encoding/json"
	"time"
)

// naiveLayout matches the timezone-less ISO timestamps emitted by the API.
const naiveLayout = "2006-01-02T15:04:05.999999999"

// Timestamp decodes both RFC 3339 and timezone-less ISO 8601 values.
// Values without a zone are taken as UTC.
type Timestamp struct {
	time.Time
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}

	return json.Marshal(ts.Format(time.RFC3339Nano))
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	if s == "" {
		return nil
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		ts.Time = t

		return nil
	}

	t, err := time.ParseInLocation(naiveLayout, s, time.UTC)
	if err != nil {
		return err
	}
	ts.Time = t

	return nil
}
