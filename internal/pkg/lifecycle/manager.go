package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/mkravets/ArtPeak/app/models"
	"github.com/mkravets/ArtPeak/app/repository"
	"github.com/mkravets/ArtPeak/internal/pkg/classifier"
	"github.com/mkravets/ArtPeak/internal/pkg/moderation"
	"github.com/mkravets/ArtPeak/internal/pkg/reason"
)

// Manager owns the artwork lifecycle: submission through moderation,
// human-review resolution, soft delete, restore and purge.
type Manager struct {
	db         *gorm.DB
	classifier classifier.Service
	repos      *repository.Repositories
}

func NewManager(db *gorm.DB, svc classifier.Service) *Manager {
	return &Manager{
		db:         db,
		classifier: svc,
		repos:      repository.NewFactory(db).GetRepositories(),
	}
}

// Repos exposes the read-side repositories built on the same handle.
func (m *Manager) Repos() *repository.Repositories {
	return m.repos
}

var hashtagPattern = regexp.MustCompile(`#(\w+)`)

var validate = validator.New()

// ExtractHashtags pulls hashtags out of a caption: case-folded, deduplicated,
// stripped of the leading '#', capped at the per-artwork limit. Order of
// first occurrence is kept.
func ExtractHashtags(caption string) []string {
	matches := hashtagPattern.FindAllStringSubmatch(caption, -1)
	seen := make(map[string]bool, len(matches))
	var tags []string
	for _, match := range matches {
		name := strings.ToLower(match[1])
		if seen[name] {
			continue
		}
		seen[name] = true
		tags = append(tags, name)
		if len(tags) == models.MaxTagsPerArtwork {
			break
		}
	}
	return tags
}

// SubmitResult reports what happened to a submission. Exactly one of Artwork
// and Pending is set.
type SubmitResult struct {
	Artwork  *models.Artwork
	Pending  *models.PendingArtwork
	Decision moderation.Decision
	// PrecheckReason is set when the cheap pre-gates failed and the
	// classifiers were never consulted.
	PrecheckReason string
}

// Submit screens and publishes a new submission. The quota check runs before
// any write; a submission at the cap fails with ErrQuotaExceeded and leaves
// no trace. Rejected submissions are always retained as PendingArtwork so a
// human reviewer can resolve them.
func (m *Manager) Submit(ctx context.Context, owner *models.User, imageData []byte, fileID, caption string) (*SubmitResult, error) {
	count, err := models.CountArtworksByOwner(m.db, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("quota check: %w", err)
	}
	if count >= models.MaxArtworksPerUser {
		return nil, reason.ErrQuotaExceeded
	}

	hashtags := ExtractHashtags(caption)

	if pre := moderation.DecodePrecheck(imageData); !pre.OK {
		log.Infof("[Lifecycle] submission by user %d failed precheck: %s", owner.ID, pre.Reason)
		pending, err := m.hold(owner.ID, fileID, caption, hashtags)
		if err != nil {
			return nil, err
		}
		return &SubmitResult{Pending: pending, Decision: moderation.FailClosed(), PrecheckReason: pre.Reason}, nil
	}

	scores, err := m.classifier.Classify(ctx, imageData)
	if err != nil {
		// Fail closed: route to human review, never publish.
		log.Errorf("[Lifecycle] classifier unavailable for user %d: %v", owner.ID, err)
		pending, herr := m.hold(owner.ID, fileID, caption, hashtags)
		if herr != nil {
			return nil, herr
		}
		return &SubmitResult{Pending: pending, Decision: moderation.FailClosed()}, nil
	}
	adult := m.classifier.ClassifyAdult(ctx, imageData)

	decision := moderation.Decide(*scores, adult)
	log.Infof("[Lifecycle] moderation user=%d verdict=%s rule=%d safe=%.3f violence=%.3f nudity=%.3f gore=%.3f adult=%.3f",
		owner.ID, decision.Verdict, decision.Rule,
		scores.Safe, scores.Violence, scores.Nudity, scores.Gore, decision.AdultConfidence)

	if decision.Verdict != moderation.VerdictAccept {
		pending, err := m.hold(owner.ID, fileID, caption, hashtags)
		if err != nil {
			return nil, err
		}
		return &SubmitResult{Pending: pending, Decision: decision}, nil
	}

	artwork, err := m.createArtwork(owner.ID, fileID, caption, hashtags, 0)
	if err != nil {
		return nil, err
	}
	return &SubmitResult{Artwork: artwork, Decision: decision}, nil
}

// hold retains a rejected submission for human review.
func (m *Manager) hold(ownerID uint, fileID, caption string, hashtags []string) (*models.PendingArtwork, error) {
	pending := models.PendingArtwork{
		OwnerID:  ownerID,
		FileID:   fileID,
		Caption:  caption,
		Hashtags: strings.Join(hashtags, ","),
	}
	if err := m.db.Create(&pending).Error; err != nil {
		return nil, fmt.Errorf("retain pending submission: %w", err)
	}
	return &pending, nil
}

// createArtwork publishes an artwork and bumps the global hashtag counters in
// one transaction. A non-zero id recreates a row under its original id
// (restore path).
func (m *Manager) createArtwork(ownerID uint, fileID, caption string, hashtags []string, id uint) (*models.Artwork, error) {
	artwork := models.Artwork{
		ID:      id,
		OwnerID: ownerID,
		FileID:  fileID,
		Caption: caption,
	}
	err := m.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&artwork).Error; err != nil {
			return err
		}
		return attachHashtags(tx, artwork.ID, hashtags)
	})
	if err != nil {
		return nil, fmt.Errorf("publish artwork: %w", err)
	}
	return &artwork, nil
}

func attachHashtags(tx *gorm.DB, artworkID uint, hashtags []string) error {
	for _, name := range hashtags {
		tag, err := models.IncrementTagUsage(tx, name)
		if err != nil {
			return err
		}
		link := models.ArtworkTag{ArtworkID: artworkID, TagID: tag.ID}
		if err := tx.Create(&link).Error; err != nil {
			return err
		}
	}
	return nil
}

// ResolveHeld applies a human-review decision to a held submission. The
// pending row is destroyed either way, which makes double-resolution fail
// with ErrNotFound instead of acting twice.
func (m *Manager) ResolveHeld(ctx context.Context, pendingID uint, approve bool) (*models.Artwork, *models.PendingArtwork, error) {
	pending, err := models.FindPendingArtworkByID(m.db, pendingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, reason.ErrNotFound
		}
		return nil, nil, err
	}

	if !approve {
		if err := m.db.Delete(&models.PendingArtwork{}, pendingID).Error; err != nil {
			return nil, nil, err
		}
		return nil, pending, nil
	}

	// The owner may have been blocked while the submission sat in review.
	// Publishing now would put a live artwork next to a live block, so the
	// submission stays held until the block clears.
	blocked, err := models.IsUserBlocked(m.db, pending.OwnerID)
	if err != nil {
		return nil, nil, err
	}
	if blocked {
		return nil, pending, reason.ErrUserBlocked
	}

	// Approval re-runs the quota check: the owner may have filled the cap
	// while the submission sat in review.
	count, err := models.CountArtworksByOwner(m.db, pending.OwnerID)
	if err != nil {
		return nil, nil, err
	}
	if count >= models.MaxArtworksPerUser {
		return nil, pending, reason.ErrQuotaExceeded
	}

	var hashtags []string
	if pending.Hashtags != "" {
		hashtags = strings.Split(pending.Hashtags, ",")
	}

	var artwork *models.Artwork
	err = m.db.Transaction(func(tx *gorm.DB) error {
		created := models.Artwork{
			OwnerID: pending.OwnerID,
			FileID:  pending.FileID,
			Caption: pending.Caption,
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}
		if err := attachHashtags(tx, created.ID, hashtags); err != nil {
			return err
		}
		if err := tx.Delete(&models.PendingArtwork{}, pendingID).Error; err != nil {
			return err
		}
		artwork = &created
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("approve held submission %d: %w", pendingID, err)
	}
	return artwork, pending, nil
}
