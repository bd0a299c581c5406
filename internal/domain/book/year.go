package book

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/geocoder89/bookshelf/internal/domain/validation"
)

// Year is a publish year as sent by clients: a JSON number or a numeric
// string ("1969"). An empty string or null leaves it zero so the required
// check reports it.
type Year int

func (y *Year) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if len(data) == 0 {
		return invalidYear()
	}

	if bytes.Equal(data, []byte("null")) {
		*y = 0
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return invalidYear()
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*y = 0
			return nil
		}
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return invalidYear()
	}

	*y = Year(n)
	return nil
}

func invalidYear() error {
	v := &validation.Error{}
	v.Add("publishYear", "type", "must be a whole number")
	return v
}
