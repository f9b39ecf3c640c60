package api

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/tastetrail/tastetrail/pkg/logging"
	"github.com/tastetrail/tastetrail/pkg/videos"
)

func (s *Server) handleAdminAddVideo(c fiber.Ctx) error {
	var req adminAddVideoRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	seconds := videos.ParseISODuration(req.Duration)
	if !videos.IsSuitable(seconds, req.Title) {
		return badRequest(c, "video is not suitable for processing (too short or denylisted title)")
	}

	v := &videos.Video{
		YouTubeID:       req.YouTubeID,
		Title:           req.Title,
		Description:     req.Description,
		PublishedAt:     req.PublishedAt,
		DurationRaw:     req.Duration,
		DurationSeconds: seconds,
	}
	if err := s.deps.Videos.Create(c.Context(), v); err != nil {
		return s.respondError(c, err)
	}

	s.log.Info("video added via admin",
		logging.F("video_id", v.ID.String()),
		logging.F("youtube_id", v.YouTubeID))

	return c.Status(fiber.StatusCreated).JSON(toVideoResponse(v))
}

func (s *Server) handleAdminProcessVideo(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid video id")
	}

	result, err := s.deps.Processor.ProcessVideo(c.Context(), id)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"video_id":          result.VideoID.String(),
		"transcript_source": result.TranscriptSource,
		"candidates":        result.Candidates,
		"edges_created":     result.EdgesCreated,
		"edges_skipped":     result.EdgesSkipped,
		"candidate_errors":  result.CandidateErrors,
	})
}

// handleAdminResetVideo clears both terminal flags so the video becomes
// eligible for processing again, enabling deliberate re-extraction.
func (s *Server) handleAdminResetVideo(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid video id")
	}

	if err := s.deps.Videos.ResetProcessing(c.Context(), id); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"video_id": id.String(), "status": "pending"})
}

func (s *Server) handleAdminDeleteVideo(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid video id")
	}

	if err := s.deps.Videos.Delete(c.Context(), id); err != nil {
		return s.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleAdminProcessBatch(c fiber.Ctx) error {
	var req processBatchRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().Body(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return badRequest(c, err.Error())
		}
	}

	report, err := s.deps.Processor.ProcessBatch(c.Context(), req.Limit)
	if err != nil {
		return s.respondError(c, err)
	}

	failures := make([]fiber.Map, 0, len(report.Failures))
	for _, f := range report.Failures {
		failures = append(failures, fiber.Map{
			"video_id": f.VideoID.String(),
			"error":    f.Error,
		})
	}

	return c.JSON(fiber.Map{
		"total":     report.Total,
		"processed": report.Processed,
		"failed":    report.Failed,
		"failures":  failures,
	})
}
