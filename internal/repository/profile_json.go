package repository

import (
	"encoding/json"
	"strconv"
	"strings"

	"candidate-match/internal/domain/matching"
)

// decodeExperience reads the experience column one entry at a time. Entries
// that are not objects are dropped and fields of the wrong type come back
// blank, so a bad entry scores as zero years instead of failing the profile.
func decodeExperience(raw []byte) []matching.Experience {
	entries := jsonEntries(raw)
	out := make([]matching.Experience, 0, len(entries))
	for _, f := range entries {
		out = append(out, matching.Experience{
			Company:     looseString(f["company"]),
			Position:    looseString(f["position"]),
			Description: looseString(f["description"]),
			Start:       looseString(f["startDate"]),
			End:         looseString(f["endDate"]),
		})
	}
	return out
}

func decodeEducation(raw []byte) []matching.Education {
	entries := jsonEntries(raw)
	out := make([]matching.Education, 0, len(entries))
	for _, f := range entries {
		out = append(out, matching.Education{
			Degree:      looseString(f["degree"]),
			Institution: looseString(f["institution"]),
			Field:       looseString(f["field"]),
			StartYear:   looseInt(f["startYear"]),
			EndYear:     looseInt(f["endYear"]),
		})
	}
	return out
}

// jsonEntries returns the object entries of a JSON array. Anything that is
// not an array yields nothing.
func jsonEntries(raw []byte) []map[string]json.RawMessage {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]map[string]json.RawMessage, 0, len(items))
	for _, it := range items {
		var f map[string]json.RawMessage
		if err := json.Unmarshal(it, &f); err != nil || f == nil {
			continue
		}
		out = append(out, f)
	}
	return out
}

// looseString keeps strings, renders numbers as text and blanks the rest.
func looseString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func looseInt(raw json.RawMessage) int {
	s := looseString(raw)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}
