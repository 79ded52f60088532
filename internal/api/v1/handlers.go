package apiv1

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/mkravets/ArtPeak/app/models"
	"github.com/mkravets/ArtPeak/internal/pkg/database"
	"github.com/mkravets/ArtPeak/internal/pkg/jobqueue"
	"github.com/mkravets/ArtPeak/internal/pkg/lifecycle"
	"github.com/mkravets/ArtPeak/internal/pkg/reason"
	"github.com/mkravets/ArtPeak/internal/pkg/trust"
)

// APIServer exposes the operator queues as JSON for the admin dashboard.
type APIServer struct {
	lifecycle *lifecycle.Manager
	trust     *trust.Manager
}

// NewAPIServer creates a new API server instance
func NewAPIServer(lm *lifecycle.Manager, tm *trust.Manager) *APIServer {
	return &APIServer{lifecycle: lm, trust: tm}
}

// RegisterHandlers attaches the v1 routes to a router group.
func RegisterHandlers(r fiber.Router, s *APIServer) {
	r.Get("/review-queue", s.GetReviewQueue)
	r.Post("/review-queue/:id/approve", s.PostReviewApprove)
	r.Post("/review-queue/:id/reject", s.PostReviewReject)
	r.Get("/appeals", s.GetAppeals)
	r.Post("/appeals/:id/approve", s.PostAppealApprove)
	r.Post("/appeals/:id/reject", s.PostAppealReject)
	r.Get("/deleted", s.GetDeleted)
	r.Post("/deleted/:artworkID/restore", s.PostRestore)
	r.Delete("/artworks/:artworkID", s.DeleteArtwork)
	r.Get("/top", s.GetTop)
	r.Get("/jobs", s.GetJobStats)
	r.Post("/maintenance/run", s.PostRunMaintenance)
}

// statusFor maps stable reason codes to HTTP statuses.
func statusFor(err error) int {
	switch reason.Code(err) {
	case "not_found":
		return fiber.StatusNotFound
	case "quota_exceeded", "already_reacted", "user_blocked":
		return fiber.StatusConflict
	case "retention_expired":
		return fiber.StatusGone
	case "validation_failed":
		return fiber.StatusUnprocessableEntity
	case "classification_unavailable", "transport_transient":
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

func fail(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"error": reason.Code(err),
	})
}

func pathID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil {
		return 0, reason.ErrValidationFailed
	}
	return uint(id), nil
}

// moderatorID reads the acting moderator from the request body, zero when
// absent. The API sits behind operator auth; this is attribution, not
// authorization.
func moderatorID(c *fiber.Ctx) uint {
	var body struct {
		ModeratorID uint `json:"moderator_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return 0
	}
	return body.ModeratorID
}

// GetReviewQueue lists held submissions, oldest first.
func (s *APIServer) GetReviewQueue(c *fiber.Ctx) error {
	pending, err := models.ListPendingArtworks(database.GetDB(), 0, 100)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"pending": pending})
}

func (s *APIServer) PostReviewApprove(c *fiber.Ctx) error {
	return s.resolveHeld(c, true)
}

func (s *APIServer) PostReviewReject(c *fiber.Ctx) error {
	return s.resolveHeld(c, false)
}

func (s *APIServer) resolveHeld(c *fiber.Ctx, approve bool) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	artwork, _, err := s.lifecycle.ResolveHeld(c.Context(), id, approve)
	if err != nil {
		return fail(c, err)
	}
	resp := fiber.Map{"resolved": id, "approved": approve}
	if artwork != nil {
		resp["artwork_id"] = artwork.ID
	}
	return c.JSON(resp)
}

// GetAppeals lists pending appeals, oldest first.
func (s *APIServer) GetAppeals(c *fiber.Ctx) error {
	appeals, err := s.trust.AppealQueue()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"appeals": appeals})
}

func (s *APIServer) PostAppealApprove(c *fiber.Ctx) error {
	return s.decideAppeal(c, true)
}

func (s *APIServer) PostAppealReject(c *fiber.Ctx) error {
	return s.decideAppeal(c, false)
}

func (s *APIServer) decideAppeal(c *fiber.Ctx, approve bool) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	appeal, err := s.trust.DecideAppeal(c.Context(), id, approve, moderatorID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"appeal": appeal})
}

// GetDeleted lists restorable deletion snapshots, newest first.
func (s *APIServer) GetDeleted(c *fiber.Ctx) error {
	snapshots, err := models.ListRestorableArtworks(database.GetDB(), 0, 100)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"deleted": snapshots})
}

// DeleteArtwork soft-deletes one artwork on a moderation call. The snapshot
// stays restorable for the retention window.
func (s *APIServer) DeleteArtwork(c *fiber.Ctx) error {
	id, err := pathID(c, "artworkID")
	if err != nil {
		return fail(c, err)
	}
	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.BodyParser(&body)
	if body.Reason == "" {
		body.Reason = "moderator decision"
	}
	snapshot, err := s.lifecycle.SoftDelete(c.Context(), id, body.Reason)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"deleted": snapshot})
}

// GetJobStats reports queue depth and per-status job counts.
func (s *APIServer) GetJobStats(c *fiber.Ctx) error {
	queue := jobqueue.GetManager().GetQueue()
	stats, err := queue.GetJobStats(c.Context())
	if err != nil {
		return fail(c, err)
	}
	pending, err := queue.GetQueueSize(c.Context())
	if err != nil {
		return fail(c, err)
	}
	processing, err := queue.GetProcessingSize(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"stats":      stats,
		"pending":    pending,
		"processing": processing,
		"running":    jobqueue.GetManager().IsRunning(),
	})
}

// PostRunMaintenance triggers one maintenance sweep out of schedule.
func (s *APIServer) PostRunMaintenance(c *fiber.Ctx) error {
	jobqueue.GetManager().RunMaintenanceOnce()
	return c.JSON(fiber.Map{"status": "ok"})
}

// GetTop lists the most-liked artworks, optionally filtered to one hashtag.
func (s *APIServer) GetTop(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)
	if limit < 1 || limit > 100 {
		limit = 10
	}
	artworks, err := s.lifecycle.TopArtworks(limit, c.Query("hashtag"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"top": artworks})
}

// PostRestore brings a soft-deleted artwork back under its original id.
func (s *APIServer) PostRestore(c *fiber.Ctx) error {
	id, err := pathID(c, "artworkID")
	if err != nil {
		return fail(c, err)
	}
	artwork, err := s.lifecycle.Restore(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"artwork": artwork})
}
