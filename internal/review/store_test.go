package review

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/validator"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/internal/repository/memory"
)

// --- Mocks ---

type mockReviewRepository struct {
	mock.Mock
}

func (m *mockReviewRepository) Load(ctx context.Context) ([]domain.Review, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

func (m *mockReviewRepository) Save(ctx context.Context, reviews []domain.Review) error {
	args := m.Called(ctx, reviews)
	return args.Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishReviewSubmitted(ctx context.Context, r domain.Review) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockPublisher) PublishReviewModerated(ctx context.Context, r domain.Review) error {
	return m.Called(ctx, r).Error(0)
}

// --- Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// steppingClock advances one minute per call so creation order is visible.
func steppingClock() func() time.Time {
	t := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("rev-%d", n)
	}
}

func newTestStore(t *testing.T, opts Options) (*Store, *memory.Store) {
	t.Helper()
	kv := memory.NewStore()
	opts.Now = steppingClock()
	opts.NewID = sequentialIDs()
	s := NewStore(memory.NewReviewRepository(kv), newTestLogger(), opts)
	s.Load(context.Background())
	return s, kv
}

func validInput(productID, userID string) SubmitInput {
	return SubmitInput{
		ProductID: productID,
		UserID:    userID,
		UserName:  "Ada",
		UserEmail: "ada@example.com",
		Rating:    4,
		Title:     "Lovely piece",
		Comment:   "Sparkles beautifully in daylight.",
	}
}

// ============================================================================
// Add
// ============================================================================

func TestAdd_PendingWithZeroVotes(t *testing.T) {
	s, kv := newTestStore(t, Options{})
	ctx := context.Background()

	r, err := s.Add(ctx, validInput("ruby-cocktail-ring", "u1"))
	require.NoError(t, err)

	assert.Equal(t, "rev-1", r.ID)
	assert.Equal(t, domain.ReviewPending, r.Status)
	assert.Zero(t, r.Helpful)
	assert.Zero(t, r.NotHelpful)
	assert.Equal(t, r.CreatedAt, r.UpdatedAt)

	_, ok := kv.Raw(repository.ReviewsKey)
	assert.True(t, ok, "collection persisted after add")
}

func TestAdd_PendingToApprovedExample(t *testing.T) {
	s, _ := newTestStore(t, Options{})
	ctx := context.Background()

	in := validInput("tennis-bracelet", "u1")
	in.Rating = 5
	in.Verified = true
	r, err := s.Add(ctx, in)
	require.NoError(t, err)

	before := s.Summary("tennis-bracelet")
	assert.Equal(t, 0, before.TotalReviews)
	assert.Empty(t, s.ProductReviews("tennis-bracelet", FilterAll, SortNewest))

	moderated, found, err := s.Moderate(ctx, r.ID, domain.ReviewApproved, "")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, domain.ReviewApproved, moderated.Status)

	after := s.Summary("tennis-bracelet")
	assert.Equal(t, 1, after.TotalReviews)
	assert.Equal(t, 5.0, after.AverageRating)
	assert.Equal(t, 1, after.RatingDistribution[5])
	assert.Equal(t, 1, after.VerifiedPurchases)
}

func TestAdd_ValidationMessages(t *testing.T) {
	s, _ := newTestStore(t, Options{})

	in := validInput("p1", "u1")
	in.Rating = 0
	in.Title = "   "
	in.Comment = "too short"
	in.Images = []string{"1", "2", "3", "4", "5", "6"}

	_, err := s.Add(context.Background(), in)
	require.Error(t, err)

	var valErr *validator.ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Equal(t, "Please select a rating", fields["rating"])
	assert.Equal(t, "Please enter a review title", fields["title"])
	assert.Equal(t, "Review must be at least 10 characters long", fields["comment"])
	assert.Equal(t, "You can attach at most 5 images", fields["images"])

	assert.Equal(t, 0, s.Len(), "nothing saved on failure")
}

func TestAdd_CommentBounds(t *testing.T) {
	s, _ := newTestStore(t, Options{})
	ctx := context.Background()

	in := validInput("p1", "u1")
	in.Comment = ""
	_, err := s.Add(ctx, in)
	var valErr *validator.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "Please enter your review", valErr.Fields()["comment"])

	in.Comment = strings.Repeat("a", 501)
	_, err = s.Add(ctx, in)
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "Review must be at most 500 characters long", valErr.Fields()["comment"])

	in.Comment = strings.Repeat("a", 500)
	_, err = s.Add(ctx, in)
	assert.NoError(t, err)
}

func TestAdd_RatingTooHigh(t *testing.T) {
	s, _ := newTestStore(t, Options{})
	in := validInput("p1", "u1")
	in.Rating = 6

	_, err := s.Add(context.Background(), in)
	var valErr *validator.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "Rating must be between 1 and 5", valErr.Fields()["rating"])
}

func TestAdd_OneReviewPerUserPerProduct(t *testing.T) {
	s, _ := newTestStore(t, Options{})
	ctx := context.Background()

	assert.True(t, s.CanUserReview("u1", "p1"))
	_, err := s.Add(ctx, validInput("p1", "u1"))
	require.NoError(t, err)
	assert.False(t, s.CanUserReview("u1", "p1"))

	_, err = s.Add(ctx, validInput("p1", "u1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)

	_, err = s.Add(ctx, validInput("p2", "u1"))
	assert.NoError(t, err)
}

func TestAdd_MissingProduct(t *testing.T) {
	s, _ := newTestStore(t, Options{})
	_, err := s.Add(context.Background(), validInput(" ", "u1"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestAdd_PersistFailureIsNotReturned(t *testing.T) {
	repo := new(mockReviewRepository)
	repo.On("Load", mock.Anything).Return([]domain.Review{}, nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(errors.New("redis down"))

	s := NewStore(repo, newTestLogger(), Options{})
	s.Load(context.Background())

	r, err := s.Add(context.Background(), validInput("p1", "u1"))
	require.NoError(t, err)

	got, ok := s.Get(r.ID)
	require.True(t, ok)
	assert.Equal(t, r.ID, got.ID)
	repo.AssertCalled(t, "Save", mock.Anything, mock.Anything)
}

// ============================================================================
// Update, delete and vote
// ============================================================================

func TestUpdate_KeepsStatus(t *testing.T) {
	s, _ := newTestStore(t, Options{})
	ctx := context.Background()

	r, err := s.Add(ctx, validInput("p1", "u1"))
	require.NoError(t, err)
	_, _, err = s.Moderate(ctx, r.ID, domain.ReviewApproved, "")
	require.NoError(t, err)

	rating := 2
	title := "Changed my mind"
	updated, err := s.Update(ctx, r.ID, UpdateInput{Rating: &rating, Title: &title})
	require.NoError(t, err)

	assert.Equal(t, 2, updated.Rating)
	assert.Equal(t, "Changed my mind", updated.Title)
	assert.Equal(t, r.Comment, updated.Comment)
	assert.Equal(t, domain.ReviewApproved, updated.Status)
	assert.True(t, updated.UpdatedAt.After(r.UpdatedAt))
	assert.Equal(t, 2.0, s.Summary("p1").AverageRating)
}

func TestUpdate_Invalid(t *testing.T) {
	s, _ := newTestStore(t, Options{})
	ctx := context.Background()

	r, err := s.Add(ctx, validInput("p1", "u1"))
	require.NoError(t, err)

	short := "meh"
	_, err = s.Update(ctx, r.ID, UpdateInput{Comment: &short})
	var valErr *validator.ValidationError
	require.ErrorAs(t, err, &valErr)

	got, _ := s.Get(r.ID)
	assert.Equal(t, r.Comment, got.Comment)
}

func TestUpdate_NotFound(t *testing.T) {
	s, _ := newTestStore(t, Options{})
	_, err := s.Update(context.Background(), "missing", UpdateInput{})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDelete(t *testing.T) {
	s, _ := newTestStore(t, Options{})
	ctx := context.Background()

	r, err := s.Add(ctx, validInput("p1", "u1"))
	require.NoError(t, err)
	_, _, err = s.Moderate(ctx, r.ID, domain.ReviewApproved, "")
	require.NoError(t, err)

	assert.True(t, s.Delete(ctx, r.ID))
	assert.False(t, s.Delete(ctx, r.ID))
	assert.Equal(t, 0, s.Summary("p1").TotalReviews)
	assert.True(t, s.CanUserReview("u1", "p1"))
}

func TestVote_Unconditional(t *testing.T) {
	s, _ := newTestStore(t, Options{})
	ctx := context.Background()

	r, err := s.Add(ctx, validInput("p1", "u1"))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, found := s.Vote(ctx, r.ID, true)
		require.True(t, found)
	}
	got, found := s.Vote(ctx, r.ID, false)
	require.True(t, found)

	assert.Equal(t, 3, got.Helpful)
	assert.Equal(t, 1, got.NotHelpful)
	assert.Equal(t, domain.ReviewPending, got.Status)
}

func TestVote_UnknownIsNoop(t *testing.T) {
	s, _ := newTestStore(t, Options{})
	_, found := s.Vote(context.Background(), "missing", true)
	assert.False(t, found)
}

// ============================================================================
// Moderation
// ============================================================================

func TestModerate_OneWay(t *testing.T) {
	s, _ := newTestStore(t, Options{})
	ctx := context.Background()

	r, err := s.Add(ctx, validInput("p1", "u1"))
	require.NoError(t, err)

	rejected, found, err := s.Moderate(ctx, r.ID, domain.ReviewRejected, "  off-topic ")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "off-topic", rejected.ModeratorNotes)

	for _, next := range []domain.ReviewStatus{domain.ReviewApproved, domain.ReviewRejected} {
		got, found, err := s.Moderate(ctx, r.ID, next, "")
		require.Error(t, err)
		assert.True(t, found)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
		assert.Equal(t, domain.ReviewRejected, got.Status)
	}

	assert.Equal(t, 0, s.Summary("p1").TotalReviews)
}

func TestModerate_InvalidTarget(t *testing.T) {
	s, _ := newTestStore(t, Options{})
	ctx := context.Background()

	r, err := s.Add(ctx, validInput("p1", "u1"))
	require.NoError(t, err)

	_, _, err = s.Moderate(ctx, r.ID, domain.ReviewPending, "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, _, err = s.Moderate(ctx, r.ID, "archived", "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestModerate_UnknownIsNoop(t *testing.T) {
	s, _ := newTestStore(t, Options{})
	_, found, err := s.Moderate(context.Background(), "missing", domain.ReviewApproved, "")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestPublisher_ReceivesEvents(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("PublishReviewSubmitted", mock.Anything, mock.AnythingOfType("domain.Review")).Return(nil).Once()
	pub.On("PublishReviewModerated", mock.Anything, mock.MatchedBy(func(r domain.Review) bool {
		return r.Status == domain.ReviewApproved
	})).Return(errors.New("broker down")).Once()

	s, _ := newTestStore(t, Options{Publisher: pub})
	ctx := context.Background()

	r, err := s.Add(ctx, validInput("p1", "u1"))
	require.NoError(t, err)
	_, _, err = s.Moderate(ctx, r.ID, domain.ReviewApproved, "")
	require.NoError(t, err, "publish failures do not fail the mutation")

	pub.AssertExpectations(t)
}

// ============================================================================
// Load
// ============================================================================

func TestLoad_CorruptDataStartsEmpty(t *testing.T) {
	kv := memory.NewStore()
	kv.Set(repository.ReviewsKey, []byte("{{{"))

	s := NewStore(memory.NewReviewRepository(kv), newTestLogger(), Options{})
	s.Load(context.Background())

	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Summaries())
}

func TestLoad_RepositoryErrorStartsEmpty(t *testing.T) {
	repo := new(mockReviewRepository)
	repo.On("Load", mock.Anything).Return(nil, errors.New("connection refused"))

	s := NewStore(repo, newTestLogger(), Options{})
	s.Load(context.Background())

	assert.Equal(t, 0, s.Len())
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestLoad_SeedsDemoReviews(t *testing.T) {
	s, kv := newTestStore(t, Options{SeedDemo: true})

	assert.Equal(t, 4, s.Len())
	sum := s.Summary("diamond-solitaire-ring")
	assert.Equal(t, 2, sum.TotalReviews)
	assert.Equal(t, 4.5, sum.AverageRating)
	assert.Equal(t, 2, sum.VerifiedPurchases)

	_, ok := kv.Raw(repository.ReviewsKey)
	assert.True(t, ok, "seed is persisted")
}

func TestLoad_ExistingDataSkipsSeed(t *testing.T) {
	kv := memory.NewStore()
	repo := memory.NewReviewRepository(kv)
	require.NoError(t, repo.Save(context.Background(), []domain.Review{
		{ID: "x", ProductID: "p1", UserID: "u1", Rating: 1, Status: domain.ReviewApproved},
	}))

	s := NewStore(repo, newTestLogger(), Options{SeedDemo: true})
	s.Load(context.Background())

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 1.0, s.Summary("p1").AverageRating)
}

func TestLoad_DropsMalformedReviews(t *testing.T) {
	kv := memory.NewStore()
	repo := memory.NewReviewRepository(kv)
	require.NoError(t, repo.Save(context.Background(), []domain.Review{
		{ID: "high", ProductID: "p", UserID: "u1", Rating: 7, Status: domain.ReviewApproved},
		{ID: "zero", ProductID: "p", UserID: "u2", Rating: 0, Status: domain.ReviewApproved},
		{ID: "odd", ProductID: "p", UserID: "u3", Rating: 3, Status: "archived"},
		{ID: "ok", ProductID: "p", UserID: "u4", Rating: 4, Status: domain.ReviewApproved},
		{ID: "ok", ProductID: "p", UserID: "u5", Rating: 2, Status: domain.ReviewApproved},
	}))

	s := NewStore(repo, newTestLogger(), Options{SeedDemo: true})
	s.Load(context.Background())

	assert.Equal(t, 1, s.Len())
	_, ok := s.Get("high")
	assert.False(t, ok)

	sum := s.Summary("p")
	stars := 0
	for rating := 1; rating <= 5; rating++ {
		stars += sum.RatingDistribution[rating]
	}
	assert.Equal(t, 1, sum.TotalReviews)
	assert.Equal(t, sum.TotalReviews, stars)
	assert.Equal(t, 4.0, sum.AverageRating)
	assert.Len(t, sum.RatingDistribution, 5)
}

func TestSummaries_DistributionSumsToTotal(t *testing.T) {
	s, _ := newTestStore(t, Options{SeedDemo: true})

	for id, sum := range s.Summaries() {
		total := 0
		for _, n := range sum.RatingDistribution {
			total += n
		}
		assert.Equal(t, sum.TotalReviews, total, id)
	}
}

func TestSummary_IsACopy(t *testing.T) {
	s, _ := newTestStore(t, Options{SeedDemo: true})

	sum := s.Summary("pearl-drop-earrings")
	sum.RatingDistribution[5] = 100

	assert.Equal(t, 1, s.Summary("pearl-drop-earrings").RatingDistribution[5])
}
