package service

import (
	"context"
	"log/slog"

	"blogchef/internal/middleware"
	"blogchef/internal/models"
	"blogchef/internal/moderation"
	"blogchef/internal/repository"
	"blogchef/internal/validation"
)

// PostService wraps the post store with the moderation gate and the
// admin approve/reject flow.
type PostService struct {
	postRepo repository.PostRepository
}

type CreatePostInput struct {
	UserID  uint
	Title   string
	Content string
}

func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{postRepo: postRepo}
}

// CreatePost validates the input and runs it through the profanity gate.
// A flagged post is stored with IsApproved=false and stays off the public
// listing until an admin approves it. The approval flag is decided here,
// never taken from the caller.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := validation.ValidatePostInput(in.Title, in.Content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	flagged := moderation.IsProfane(in.Title) || moderation.IsProfane(in.Content)
	if flagged {
		middleware.ModerationFlags.Inc()
		slog.WarnContext(ctx, "post flagged for moderation", "user_id", in.UserID)
	}

	post := &models.Post{
		Title:      in.Title,
		Content:    in.Content,
		UserID:     in.UserID,
		IsApproved: !flagged,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	// Re-read so the response carries the preloaded author.
	return s.postRepo.GetByID(ctx, post.ID)
}

// ListPosts returns the approved posts for the public listing.
func (s *PostService) ListPosts(ctx context.Context) ([]models.Post, error) {
	return s.postRepo.ListApproved(ctx)
}

// ListFlagged returns posts held back by the moderation gate, for the
// admin dashboard. Never cached.
func (s *PostService) ListFlagged(ctx context.Context) ([]models.Post, error) {
	return s.postRepo.ListFlagged(ctx)
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

// ApprovePost lifts the moderation hold. Approval is one-way; there is no
// operation that flips a post back to unapproved.
func (s *PostService) ApprovePost(ctx context.Context, id uint) error {
	return s.postRepo.Approve(ctx, id)
}

// RejectPost removes a flagged post entirely. Rejection and deletion are
// the same operation against the store.
func (s *PostService) RejectPost(ctx context.Context, id uint) error {
	return s.postRepo.Delete(ctx, id)
}

// DeletePost removes a post. Callers are responsible for the admin check.
func (s *PostService) DeletePost(ctx context.Context, id uint) error {
	return s.postRepo.Delete(ctx, id)
}
