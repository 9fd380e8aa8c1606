package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"candidate-match/internal/delivery/http/dto"
	"candidate-match/internal/delivery/http/middleware"
	"candidate-match/internal/pkg/response"
	"candidate-match/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type MatchingRunner interface {
	TriggerMatchingForJob(ctx context.Context, jobID uuid.UUID) (*usecase.Run, error)
	Status(jobID uuid.UUID) (usecase.RunStatus, bool)
}

type MatchExporter interface {
	LatestMatchesXLSX(ctx context.Context, jobID uuid.UUID) ([]byte, error)
}

type MatchHandler struct {
	uc       usecase.MatchingUsecase
	runner   MatchingRunner
	exporter MatchExporter
}

func NewMatchHandler(uc usecase.MatchingUsecase, runner MatchingRunner, exporter MatchExporter) *MatchHandler {
	return &MatchHandler{uc: uc, runner: runner, exporter: exporter}
}

func (h *MatchHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	grp := r.Group("/jobs/:job_id")
	grp.Post("/matching", h.TriggerMatching)
	grp.Get("/matching/status", h.GetRunStatus)

	grp.Get("/matches", h.GetRankedMatches)
	grp.Delete("/matches", h.DeleteMatches)
	grp.Get("/matches/exists", h.HasResults)
	grp.Get("/matches/export", h.ExportMatches)
	grp.Post("/matches/preview", h.PreviewMatches)
	grp.Get("/matches/:candidate_id", h.GetMatch)

	grp.Post("/candidates/:candidate_id/match", h.MatchSingle)
	grp.Get("/candidates/:candidate_id/explain", h.ExplainMatch)

	r.Get("/ai/health", h.AIHealth)
}

func (h *MatchHandler) TriggerMatching(c fiber.Ctx) error {
	jobID, err := parseUUIDParam(c, "job_id")
	if err != nil {
		return err
	}

	run, err := h.runner.TriggerMatchingForJob(c.Context(), jobID)
	if err != nil {
		return mapMatchingUsecaseError(err)
	}

	state := string(usecase.RunQueued)
	if st, ok := h.runner.Status(jobID); ok && st.BatchID == run.BatchID {
		state = string(st.State)
	}
	return response.Success(c, fiber.StatusAccepted, "matching started", dto.TriggerMatchingResponse{
		JobID:   run.JobID,
		BatchID: run.BatchID,
		Status:  state,
	})
}

func (h *MatchHandler) GetRunStatus(c fiber.Ctx) error {
	jobID, err := parseUUIDParam(c, "job_id")
	if err != nil {
		return err
	}

	st, ok := h.runner.Status(jobID)
	if !ok {
		return middleware.NewAppError(fiber.StatusNotFound, "No matching run for job", nil, nil)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewRunStatusResponse(st))
}

func (h *MatchHandler) GetRankedMatches(c fiber.Ctx) error {
	jobID, err := parseUUIDParam(c, "job_id")
	if err != nil {
		return err
	}

	latest, err := h.uc.GetRankedMatches(c.Context(), jobID)
	if err != nil {
		return mapMatchingUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewRankedMatchesResponse(jobID, latest))
}

func (h *MatchHandler) GetMatch(c fiber.Ctx) error {
	jobID, err := parseUUIDParam(c, "job_id")
	if err != nil {
		return err
	}
	candidateID, err := parseUUIDParam(c, "candidate_id")
	if err != nil {
		return err
	}

	rec, err := h.uc.GetMatch(c.Context(), jobID, candidateID)
	if err != nil {
		return mapMatchingUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewMatchRecordResponse(rec))
}

func (h *MatchHandler) HasResults(c fiber.Ctx) error {
	jobID, err := parseUUIDParam(c, "job_id")
	if err != nil {
		return err
	}

	ok, err := h.uc.HasResults(c.Context(), jobID)
	if err != nil {
		return mapMatchingUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.HasResultsResponse{JobID: jobID, HasResults: ok})
}

func (h *MatchHandler) DeleteMatches(c fiber.Ctx) error {
	jobID, err := parseUUIDParam(c, "job_id")
	if err != nil {
		return err
	}

	n, err := h.uc.DeleteMatches(c.Context(), jobID)
	if err != nil {
		return mapMatchingUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.DeleteMatchesResponse{JobID: jobID, DeletedBatches: n})
}

func (h *MatchHandler) ExportMatches(c fiber.Ctx) error {
	jobID, err := parseUUIDParam(c, "job_id")
	if err != nil {
		return err
	}
	if h.exporter == nil {
		return middleware.NewAppError(fiber.StatusServiceUnavailable, "Export unavailable", nil, nil)
	}

	body, err := h.exporter.LatestMatchesXLSX(c.Context(), jobID)
	if err != nil {
		return mapMatchingUsecaseError(err)
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="matches-%s.xlsx"`, jobID))
	return c.Status(fiber.StatusOK).Send(body)
}

func (h *MatchHandler) PreviewMatches(c fiber.Ctx) error {
	jobID, err := parseUUIDParam(c, "job_id")
	if err != nil {
		return err
	}

	var req dto.PreviewMatchesRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request body", nil, err)
	}
	ids := make([]uuid.UUID, 0, len(req.CandidateIDs))
	for _, raw := range req.CandidateIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Invalid candidate id", fiber.Map{"candidate_id": raw}, err)
		}
		ids = append(ids, id)
	}

	out, err := h.uc.PreviewMatches(c.Context(), jobID, ids)
	if err != nil {
		return mapMatchingUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewPreviewMatchesResponse(out))
}

func (h *MatchHandler) MatchSingle(c fiber.Ctx) error {
	jobID, err := parseUUIDParam(c, "job_id")
	if err != nil {
		return err
	}
	candidateID, err := parseUUIDParam(c, "candidate_id")
	if err != nil {
		return err
	}

	res, err := h.uc.MatchSingle(c.Context(), candidateID, jobID)
	if err != nil {
		return mapMatchingUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewMatchResultResponse(candidateID, jobID, res))
}

func (h *MatchHandler) ExplainMatch(c fiber.Ctx) error {
	jobID, err := parseUUIDParam(c, "job_id")
	if err != nil {
		return err
	}
	candidateID, err := parseUUIDParam(c, "candidate_id")
	if err != nil {
		return err
	}

	include := true
	if raw := c.Query("include_suggestions"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Invalid include_suggestions", nil, err)
		}
		include = v
	}

	exp, err := h.uc.ExplainMatch(c.Context(), candidateID, jobID, include)
	if err != nil {
		return mapMatchingUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewExplanationResponse(exp))
}

func (h *MatchHandler) AIHealth(c fiber.Ctx) error {
	return response.Success(c, fiber.StatusOK, response.MessageOK, h.uc.AIHealth(c.Context()))
}

func parseUUIDParam(c fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, middleware.NewAppError(fiber.StatusBadRequest, "Invalid "+name, nil, err)
	}
	return id, nil
}

func mapMatchingUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, usecase.ErrJobNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Job not found", nil, err)
	case errors.Is(err, usecase.ErrCandidateNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Candidate not found", nil, err)
	case errors.Is(err, usecase.ErrMatchNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Match not found", nil, err)
	case errors.Is(err, usecase.ErrJobInactive):
		return middleware.NewAppError(fiber.StatusConflict, "Job is not active", nil, err)
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid input", nil, err)
	case errors.Is(err, usecase.ErrUnauthorized):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
	case errors.Is(err, usecase.ErrUpstreamUnavailable), errors.Is(err, usecase.ErrRunnerClosed):
		return middleware.NewAppError(fiber.StatusServiceUnavailable, response.MessageServiceUnavailable, nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
