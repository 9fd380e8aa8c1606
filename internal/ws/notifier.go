package ws

import (
	"context"
	"encoding/json"
	"time"

	"candidate-match/internal/domain/matching"

	"github.com/google/uuid"
)

const EventJobMatched = "job_matched"

type JobMatchedEvent struct {
	Type        string           `json:"type"`
	JobID       uuid.UUID        `json:"job_id"`
	CandidateID uuid.UUID        `json:"candidate_id"`
	Score       float64          `json:"score"`
	Percentage  int              `json:"percentage"`
	Quality     matching.Quality `json:"quality"`
	Timestamp   string           `json:"timestamp"`
}

// Notifier pushes job_matched events to the candidate's open connections.
type Notifier struct {
	hub *Hub
	now func() time.Time
}

func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub, now: time.Now}
}

func (n *Notifier) NotifyJobMatched(ctx context.Context, candidateID, jobID uuid.UUID, score float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	evt := JobMatchedEvent{
		Type:        EventJobMatched,
		JobID:       jobID,
		CandidateID: candidateID,
		Score:       score,
		Percentage:  matching.Percentage(score),
		Quality:     matching.QualityFor(score),
		Timestamp:   n.now().UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return n.hub.SendToUser(candidateID, b)
}
