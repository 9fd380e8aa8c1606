package matching

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidJob     = errors.New("invalid job")
	ErrUnknownJobType = errors.New("unknown job type")
)

type JobType string

const (
	JobTypeFullTime   JobType = "FULL_TIME"
	JobTypePartTime   JobType = "PART_TIME"
	JobTypeContract   JobType = "CONTRACT"
	JobTypeInternship JobType = "INTERNSHIP"
)

// ParseJobType accepts the canonical names plus the common lowercase and
// hyphenated spellings found in job records ("full-time", "internship").
func ParseJobType(raw string) (JobType, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	switch JobType(s) {
	case JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship:
		return JobType(s), nil
	case "FULLTIME":
		return JobTypeFullTime, nil
	case "PARTTIME":
		return JobTypePartTime, nil
	case "INTERN":
		return JobTypeInternship, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownJobType, raw)
}

func (t JobType) Valid() bool {
	_, err := ParseJobType(string(t))
	return err == nil
}

// Experience dates use the "YYYY-MM" form. An empty End means the position is current.
type Experience struct {
	Company     string `json:"company"`
	Position    string `json:"position"`
	Description string `json:"description,omitempty"`
	Start       string `json:"startDate"`
	End         string `json:"endDate,omitempty"`
}

type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Field       string `json:"field,omitempty"`
	StartYear   int    `json:"startYear,omitempty"`
	EndYear     int    `json:"endYear,omitempty"`
}

type CandidateSnapshot struct {
	ID         uuid.UUID
	Name       string
	Email      string
	Skills     []string
	Experience []Experience
	Education  []Education
	Languages  []string
	Summary    string
	Location   string
}

type JobSnapshot struct {
	ID           uuid.UUID
	Title        string
	Description  string
	Skills       []string
	Requirements []string
	Location     string
	Type         JobType
	SalaryMin    *int64
	SalaryMax    *int64
	Active       bool
}

// Validate reports whether the job carries enough structure to be scored.
func (j JobSnapshot) Validate() error {
	if j.ID == uuid.Nil {
		return fmt.Errorf("%w: missing id", ErrInvalidJob)
	}
	if strings.TrimSpace(string(j.Type)) == "" {
		return fmt.Errorf("%w: missing job type", ErrInvalidJob)
	}
	if !j.Type.Valid() {
		return fmt.Errorf("%w: job type %q", ErrInvalidJob, j.Type)
	}
	return nil
}
