// Package review keeps customer reviews and their per-product summaries, and
// enforces one-way moderation.
package review

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/validator"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/metrics"
	"github.com/utafrali/storefront/internal/repository"
)

// Field messages shown for an invalid review form.
var formMessages = map[string]string{
	"rating":      "Please select a rating",
	"rating.lte":  "Rating must be between 1 and 5",
	"title":       "Please enter a review title",
	"comment":     "Please enter your review",
	"comment.min": "Review must be at least 10 characters long",
	"comment.max": "Review must be at most 500 characters long",
	"images.max":  "You can attach at most 5 images",
}

// Publisher receives review domain events.
type Publisher interface {
	PublishReviewSubmitted(ctx context.Context, r domain.Review) error
	PublishReviewModerated(ctx context.Context, r domain.Review) error
}

// SubmitInput is a new review.
type SubmitInput struct {
	ProductID string   `json:"-"`
	UserID    string   `json:"user_id" validate:"required,max=64"`
	UserName  string   `json:"user_name" validate:"required,max=100"`
	UserEmail string   `json:"user_email" validate:"omitempty,email"`
	Rating    int      `json:"rating" validate:"gte=1,lte=5"`
	Title     string   `json:"title" validate:"required,max=100"`
	Comment   string   `json:"comment" validate:"required,min=10,max=500"`
	Images    []string `json:"images" validate:"max=5,dive,required"`
	Verified  bool     `json:"verified"`
}

// UpdateInput edits a review. Nil fields are left unchanged.
type UpdateInput struct {
	Rating  *int     `json:"rating"`
	Title   *string  `json:"title"`
	Comment *string  `json:"comment"`
	Images  []string `json:"images"`
}

// editableFields is validated after every submit or update.
type editableFields struct {
	Rating  int      `json:"rating" validate:"gte=1,lte=5"`
	Title   string   `json:"title" validate:"required,max=100"`
	Comment string   `json:"comment" validate:"required,min=10,max=500"`
	Images  []string `json:"images" validate:"max=5,dive,required"`
}

// Options configures a Store.
type Options struct {
	SeedDemo  bool
	Publisher Publisher
	Now       func() time.Time
	NewID     func() string
}

// Store holds the shared review collection. Summaries are recomputed from
// scratch after every mutation. Persistence is fire-and-forget: a failed save
// is logged and the in-memory collection stays authoritative.
type Store struct {
	persister *repository.Persister[[]domain.Review]
	repo      repository.ReviewRepository
	publisher Publisher
	logger    *slog.Logger
	seedDemo  bool
	now       func() time.Time
	newID     func() string

	mu        sync.RWMutex
	reviews   []domain.Review
	summaries map[string]domain.ReviewSummary
	version   uint64
}

// NewStore creates an empty store. Call Load to read the persisted collection.
func NewStore(repo repository.ReviewRepository, logger *slog.Logger, opts Options) *Store {
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}

	return &Store{
		persister: repository.NewPersister("reviews", repo.Save, logger),
		repo:      repo,
		publisher: opts.Publisher,
		logger:    logger,
		seedDemo:  opts.SeedDemo,
		now:       opts.Now,
		newID:     opts.NewID,
		reviews:   []domain.Review{},
		summaries: map[string]domain.ReviewSummary{},
	}
}

// Load replaces the in-memory collection with the persisted one. Unreadable
// data is logged and treated as an empty collection. An empty collection is
// seeded with demo reviews when enabled.
func (s *Store) Load(ctx context.Context) {
	reviews, err := s.repo.Load(ctx)
	if err != nil {
		level := slog.LevelError
		if errors.Is(err, repository.ErrCorruptData) {
			level = slog.LevelWarn
		}
		s.logger.Log(ctx, level, "failed to load reviews, starting empty",
			slog.String("error", err.Error()),
		)
		reviews = nil
	}

	valid := validStored(reviews)
	if dropped := len(reviews) - len(valid); dropped > 0 {
		s.logger.WarnContext(ctx, "dropped malformed stored reviews",
			slog.Int("dropped", dropped),
			slog.Int("kept", len(valid)),
		)
	}
	reviews = valid

	seeded := false
	if len(reviews) == 0 && s.seedDemo {
		reviews = DemoReviews()
		seeded = true
	}

	s.mu.Lock()
	s.reviews = slices.Clone(reviews)
	if s.reviews == nil {
		s.reviews = []domain.Review{}
	}
	s.recomputeLocked()
	version, snapshot := s.bumpLocked()
	s.mu.Unlock()

	if seeded {
		s.logger.InfoContext(ctx, "seeded demo reviews", slog.Int("count", len(snapshot)))
		_ = s.persister.Persist(ctx, version, snapshot)
	}
}

// validStored keeps the stored reviews that Add could have produced: an id and
// product, a 1..5 rating and a known status. Later duplicates of an id are
// dropped.
func validStored(reviews []domain.Review) []domain.Review {
	out := make([]domain.Review, 0, len(reviews))
	seen := make(map[string]struct{}, len(reviews))
	for _, r := range reviews {
		if r.ID == "" || r.ProductID == "" || !domain.ValidRating(r.Rating) || !r.Status.Valid() {
			continue
		}
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Add validates and stores a new pending review. Validation failures return a
// *validator.ValidationError with a message per field and store nothing.
func (s *Store) Add(ctx context.Context, in SubmitInput) (domain.Review, error) {
	in.ProductID = strings.TrimSpace(in.ProductID)
	in.UserID = strings.TrimSpace(in.UserID)
	in.UserName = strings.TrimSpace(in.UserName)
	in.UserEmail = strings.TrimSpace(in.UserEmail)
	in.Title = strings.TrimSpace(in.Title)
	in.Comment = strings.TrimSpace(in.Comment)

	if in.ProductID == "" {
		return domain.Review{}, apperrors.InvalidInput("product id is required")
	}
	if err := validate(in); err != nil {
		metrics.ReviewSubmissions.WithLabelValues("invalid").Inc()
		return domain.Review{}, err
	}

	now := s.now()
	r := domain.Review{
		ID:        s.newID(),
		ProductID: in.ProductID,
		UserID:    in.UserID,
		UserName:  in.UserName,
		UserEmail: in.UserEmail,
		Rating:    in.Rating,
		Title:     in.Title,
		Comment:   in.Comment,
		Images:    slices.Clone(in.Images),
		Verified:  in.Verified,
		Status:    domain.ReviewPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	if !s.canUserReviewLocked(r.UserID, r.ProductID) {
		s.mu.Unlock()
		metrics.ReviewSubmissions.WithLabelValues("duplicate").Inc()
		return domain.Review{}, apperrors.AlreadyExists("review", "product", r.ProductID)
	}
	s.reviews = append(s.reviews, r)
	version, snapshot := s.commitLocked()
	s.mu.Unlock()

	metrics.ReviewSubmissions.WithLabelValues("accepted").Inc()
	s.logger.InfoContext(ctx, "review submitted",
		slog.String("review_id", r.ID),
		slog.String("product_id", r.ProductID),
		slog.String("user_id", r.UserID),
		slog.Int("rating", r.Rating),
	)

	_ = s.persister.Persist(ctx, version, snapshot)
	s.publish(ctx, r, Publisher.PublishReviewSubmitted)
	return r, nil
}

// Update edits the rating, title, comment or images of a review and
// re-validates the result. The moderation status is never changed here.
func (s *Store) Update(ctx context.Context, id string, in UpdateInput) (domain.Review, error) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return domain.Review{}, apperrors.NotFound("review", id)
	}

	r := s.reviews[i]
	if in.Rating != nil {
		r.Rating = *in.Rating
	}
	if in.Title != nil {
		r.Title = strings.TrimSpace(*in.Title)
	}
	if in.Comment != nil {
		r.Comment = strings.TrimSpace(*in.Comment)
	}
	if in.Images != nil {
		r.Images = slices.Clone(in.Images)
	}

	if err := validate(editableFields{Rating: r.Rating, Title: r.Title, Comment: r.Comment, Images: r.Images}); err != nil {
		s.mu.Unlock()
		return domain.Review{}, err
	}

	r.UpdatedAt = s.now()
	s.reviews[i] = r
	version, snapshot := s.commitLocked()
	s.mu.Unlock()

	_ = s.persister.Persist(ctx, version, snapshot)
	return r, nil
}

// Delete removes a review and reports whether it existed.
func (s *Store) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.reviews = slices.Delete(s.reviews, i, i+1)
	version, snapshot := s.commitLocked()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "review deleted", slog.String("review_id", id))
	_ = s.persister.Persist(ctx, version, snapshot)
	return true
}

// Vote increments the helpful or not-helpful counter. Votes are not
// de-duplicated. An unknown id is a silent no-op reported by found == false.
func (s *Store) Vote(ctx context.Context, id string, helpful bool) (domain.Review, bool) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return domain.Review{}, false
	}
	if helpful {
		s.reviews[i].Helpful++
	} else {
		s.reviews[i].NotHelpful++
	}
	r := s.reviews[i]
	version, snapshot := s.commitLocked()
	s.mu.Unlock()

	_ = s.persister.Persist(ctx, version, snapshot)
	return r, true
}

// Moderate moves a pending review to approved or rejected. Any other target
// status is invalid input, and a review that was already moderated is a
// conflict. An unknown id is a silent no-op reported by found == false.
func (s *Store) Moderate(ctx context.Context, id string, status domain.ReviewStatus, notes string) (domain.Review, bool, error) {
	if !status.Terminal() {
		return domain.Review{}, false, apperrors.InvalidInput("moderation status must be approved or rejected")
	}

	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return domain.Review{}, false, nil
	}

	r := s.reviews[i]
	if !r.Status.CanTransitionTo(status) {
		s.mu.Unlock()
		return r, true, apperrors.Conflict("review " + id + " is already " + string(r.Status))
	}

	r.Status = status
	r.ModeratorNotes = strings.TrimSpace(notes)
	r.UpdatedAt = s.now()
	s.reviews[i] = r
	version, snapshot := s.commitLocked()
	s.mu.Unlock()

	metrics.ModerationDecisions.WithLabelValues(string(status)).Inc()
	s.logger.InfoContext(ctx, "review moderated",
		slog.String("review_id", id),
		slog.String("status", string(status)),
	)

	_ = s.persister.Persist(ctx, version, snapshot)
	s.publish(ctx, r, Publisher.PublishReviewModerated)
	return r, true, nil
}

// Get returns the review with the given id.
func (s *Store) Get(id string) (domain.Review, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexLocked(id)
	if i < 0 {
		return domain.Review{}, false
	}
	return cloneReview(s.reviews[i]), true
}

// Summary returns the summary of a product, zeroed when it has no approved
// reviews.
func (s *Store) Summary(productID string) domain.ReviewSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum, ok := s.summaries[productID]
	if !ok {
		return domain.EmptyReviewSummary(productID)
	}
	return cloneSummary(sum)
}

// Summaries returns every product's summary.
func (s *Store) Summaries() map[string]domain.ReviewSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]domain.ReviewSummary, len(s.summaries))
	for id, sum := range s.summaries {
		out[id] = cloneSummary(sum)
	}
	return out
}

// CanUserReview reports whether userID has not yet reviewed productID.
func (s *Store) CanUserReview(userID, productID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.canUserReviewLocked(userID, productID)
}

// Len returns the number of stored reviews of every status.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reviews)
}

func (s *Store) canUserReviewLocked(userID, productID string) bool {
	for _, r := range s.reviews {
		if r.UserID == userID && r.ProductID == productID {
			return false
		}
	}
	return true
}

func (s *Store) indexLocked(id string) int {
	return slices.IndexFunc(s.reviews, func(r domain.Review) bool { return r.ID == id })
}

// commitLocked recomputes the summaries and returns a versioned snapshot to
// persist once the lock is released.
func (s *Store) commitLocked() (uint64, []domain.Review) {
	s.recomputeLocked()
	return s.bumpLocked()
}

func (s *Store) bumpLocked() (uint64, []domain.Review) {
	s.version++
	snapshot := make([]domain.Review, len(s.reviews))
	for i, r := range s.reviews {
		snapshot[i] = cloneReview(r)
	}
	return s.version, snapshot
}

func (s *Store) recomputeLocked() {
	s.summaries = domain.BuildSummaries(s.reviews)
}

func (s *Store) publish(ctx context.Context, r domain.Review, fn func(Publisher, context.Context, domain.Review) error) {
	if s.publisher == nil {
		return
	}
	if err := fn(s.publisher, ctx, r); err != nil {
		s.logger.WarnContext(ctx, "failed to publish review event",
			slog.String("review_id", r.ID),
			slog.String("error", err.Error()),
		)
	}
}

func validate(v any) error {
	err := validator.Validate(v)
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		return valErr.WithMessages(formMessages)
	}
	return err
}

func cloneReview(r domain.Review) domain.Review {
	r.Images = slices.Clone(r.Images)
	return r
}

func cloneSummary(s domain.ReviewSummary) domain.ReviewSummary {
	dist := make(map[int]int, len(s.RatingDistribution))
	for k, v := range s.RatingDistribution {
		dist[k] = v
	}
	s.RatingDistribution = dist
	return s
}
