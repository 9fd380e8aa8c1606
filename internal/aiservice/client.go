package aiservice

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"candidate-match/internal/domain/matching"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"
)

const (
	FallbackMatchReason   = "AI service unavailable - using fallback matching"
	FallbackExplainReason = "AI service unavailable - manual review recommended"

	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"

	pathSingle  = "/api/match/single"
	pathBatch   = "/api/match/batch"
	pathExplain = "/api/match/explain"
	pathHealth  = "/health"

	defaultTimeout = 30 * time.Second
)

var errDisabled = errors.New("AI service disabled")

type Config struct {
	BaseURL string
	Enabled bool
	Timeout time.Duration
}

type RankedMatch struct {
	CandidateID   uuid.UUID
	CandidateName string
	Rank          int
	Result        matching.Result
}

type BatchMatch struct {
	JobID            uuid.UUID
	JobTitle         string
	TotalCandidates  int
	AverageScore     float64
	Matches          []RankedMatch
	TopSkillsMatched []string
	Degraded         bool
}

type Health struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Service string `json:"service,omitempty"`
	Version string `json:"version,omitempty"`
}

// Client talks to the external scoring service. None of its scoring methods
// return errors: transport failures, bad payloads and a disabled service all
// produce degraded fallback values. There are no retries.
type Client struct {
	cfg     Config
	http    *http.Client
	logger  *zap.Logger
	schemas schemas
	now     func() time.Time
}

func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")

	s, err := compileSchemas()
	if err != nil {
		return nil, err
	}

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger.Named("aiservice"),
		schemas: s,
		now:     time.Now,
	}, nil
}

func (c *Client) Enabled() bool {
	return c != nil && c.cfg.Enabled && c.cfg.BaseURL != ""
}

func (c *Client) MatchSingle(ctx context.Context, cand matching.CandidateSnapshot, job matching.JobSnapshot) matching.Result {
	req := batchRequest{
		Candidates: []candidatePayload{toCandidatePayload(cand, c.now())},
		Job:        toJobPayload(job),
	}
	var resp singleResponse
	if err := c.call(ctx, http.MethodPost, pathSingle, req, c.schemas.single, &resp); err != nil {
		c.logFallback("match_single", err, zap.String("candidate_id", cand.ID.String()), zap.String("job_id", job.ID.String()))
		return matching.NeutralResult(FallbackMatchReason)
	}
	return resp.toResult(job)
}

func (c *Client) MatchBatch(ctx context.Context, cands []matching.CandidateSnapshot, job matching.JobSnapshot) BatchMatch {
	now := c.now()
	req := batchRequest{Candidates: make([]candidatePayload, 0, len(cands)), Job: toJobPayload(job)}
	names := make(map[uuid.UUID]string, len(cands))
	for _, cand := range cands {
		req.Candidates = append(req.Candidates, toCandidatePayload(cand, now))
		names[cand.ID] = cand.Name
	}

	var resp batchResponse
	if err := c.call(ctx, http.MethodPost, pathBatch, req, c.schemas.batch, &resp); err != nil {
		c.logFallback("match_batch", err, zap.String("job_id", job.ID.String()), zap.Int("candidates", len(cands)))
		return BatchMatch{
			JobID:            job.ID,
			JobTitle:         job.Title,
			TotalCandidates:  len(cands),
			AverageScore:     0.5,
			Matches:          []RankedMatch{},
			TopSkillsMatched: []string{},
			Degraded:         true,
		}
	}

	matches := make([]RankedMatch, 0, len(resp.Matches))
	seen := make(map[uuid.UUID]struct{}, len(resp.Matches))
	for _, m := range resp.Matches {
		id, err := uuid.Parse(m.CandidateID)
		if err != nil {
			continue
		}
		name, requested := names[id]
		if !requested {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if strings.TrimSpace(m.CandidateName) != "" {
			name = m.CandidateName
		}
		matches = append(matches, RankedMatch{CandidateID: id, CandidateName: name, Result: m.toResult(job)})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Result.Score > matches[j].Result.Score })
	var sum float64
	for i := range matches {
		matches[i].Rank = i + 1
		sum += matches[i].Result.Score
	}
	avg := matching.Clamp01(resp.AverageScore)
	if len(matches) > 0 {
		avg = sum / float64(len(matches))
	}
	total := resp.TotalCandidates
	if total <= 0 {
		total = len(cands)
	}
	top, _ := matching.ReconcileSkills(job.Skills, resp.TopSkillsMatched, nil)

	return BatchMatch{
		JobID:            job.ID,
		JobTitle:         job.Title,
		TotalCandidates:  total,
		AverageScore:     avg,
		Matches:          matches,
		TopSkillsMatched: top,
	}
}

func (c *Client) Explain(ctx context.Context, cand matching.CandidateSnapshot, job matching.JobSnapshot, includeSuggestions bool) matching.Explanation {
	req := explainRequest{
		Candidate:          toCandidatePayload(cand, c.now()),
		Job:                toJobPayload(job),
		IncludeSuggestions: includeSuggestions,
	}
	var resp explainResponse
	if err := c.call(ctx, http.MethodPost, pathExplain, req, c.schemas.explain, &resp); err != nil {
		c.logFallback("explain", err, zap.String("candidate_id", cand.ID.String()), zap.String("job_id", job.ID.String()))
		neutral := matching.NeutralResult(FallbackExplainReason)
		out := matching.ExplainResult(cand.ID, job.ID, neutral, false)
		out.DecisionRecommendation = FallbackExplainReason
		return out
	}

	score := matching.Clamp01(resp.CompatibilityScore)
	quality := matching.QualityFor(score)
	suggestions := []string{}
	if includeSuggestions {
		suggestions = nonNil([]string(resp.Suggestions))
	}
	decision := strings.TrimSpace(resp.DecisionRecommendation)
	if decision == "" {
		decision = matching.Decision(quality)
	}

	return matching.Explanation{
		CandidateID:            cand.ID,
		JobID:                  job.ID,
		Score:                  score,
		Percentage:             matching.Percentage(score),
		Quality:                quality,
		Breakdown:              resp.Breakdown.toBreakdown(),
		DetailedAnalysis:       flattenAnalysis(resp.DetailedAnalysis),
		Strengths:              nonNil([]string(resp.Strengths)),
		Weaknesses:             nonNil([]string(resp.Weaknesses)),
		Suggestions:            suggestions,
		DecisionRecommendation: decision,
	}
}

// Health never fails; problems are reported in the returned status.
func (c *Client) Health(ctx context.Context) Health {
	var resp healthResponse
	if err := c.call(ctx, http.MethodGet, pathHealth, nil, c.schemas.health, &resp); err != nil {
		return Health{Status: StatusUnhealthy, Message: "AI service unavailable: " + err.Error()}
	}
	status := strings.TrimSpace(resp.Status)
	if status == "" {
		status = StatusHealthy
	}
	return Health{Status: status, Message: resp.Message, Service: resp.Service, Version: resp.Version}
}

func (c *Client) call(ctx context.Context, method, path string, body any, s *jsonschema.Schema, out any) error {
	if !c.Enabled() {
		return errDisabled
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	raw, _, err := doJSON(ctx, c.http, method, c.cfg.BaseURL+path, body, c.logger)
	if err != nil {
		return err
	}
	if err := validate(s, raw); err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (c *Client) logFallback(op string, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("op", op), zap.Error(err))
	if errors.Is(err, errDisabled) {
		c.logger.Debug("ai.fallback", fields...)
		return
	}
	c.logger.Warn("ai.fallback", fields...)
}

func flattenAnalysis(in map[string]any) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		switch t := v.(type) {
		case string:
			out[k] = t
		case nil:
		default:
			b, err := json.Marshal(t)
			if err == nil {
				out[k] = string(b)
			}
		}
	}
	return out
}
