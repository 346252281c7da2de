package domain

import (
	"fmt"
	"strings"
	"time"
)

// APITimeLayout is the wire format of every timestamp exchanged with the API:
// UTC, second precision, literal Z suffix.
const APITimeLayout = "2006-01-02T15:04:05Z"

type APITime struct {
	time.Time
}

func NewAPITime(t time.Time) APITime {
	return APITime{Time: t.UTC().Truncate(time.Second)}
}

func (t APITime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.UTC().Format(APITimeLayout) + `"`), nil
}

func (t *APITime) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		t.Time = time.Time{}
		return nil
	}
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return fmt.Errorf("api time: expected string, got %s", raw)
	}
	value := raw[1 : len(raw)-1]
	parsed, err := time.ParseInLocation(APITimeLayout, value, time.UTC)
	if err != nil {
		return fmt.Errorf("api time: %w", err)
	}
	// time.Parse accepts fractional seconds the layout does not name.
	if parsed.Format(APITimeLayout) != value {
		return fmt.Errorf("api time: %q does not match %s", value, APITimeLayout)
	}
	t.Time = parsed
	return nil
}
