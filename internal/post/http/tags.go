package http

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TagList accepts either a JSON array of strings or a single comma separated
// string.
type TagList []string

func (t *TagList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = nil
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = list
		return nil
	}

	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return fmt.Errorf("tags must be an array of strings or a comma separated string")
	}
	if strings.TrimSpace(joined) == "" {
		*t = []string{}
		return nil
	}
	*t = strings.Split(joined, ",")
	return nil
}
