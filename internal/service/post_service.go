package service

import (
	"context"
	"errors"

	"relay-service/internal/models"
	"relay-service/internal/repository"
)

var (
	ErrPostNotFound  = errors.New("post not found")
	ErrNotPostAuthor = errors.New("only the author may modify a post")
)

type PostService struct {
	posts repository.PostRepository
}

func NewPostService(posts repository.PostRepository) *PostService {
	return &PostService{posts: posts}
}

func (s *PostService) Create(ctx context.Context, authorID uint, req models.CreatePostRequest) (*models.PostResponse, error) {
	post := &models.Post{
		UserID:  authorID,
		Content: req.Content,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	created, err := s.posts.FindByID(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	resp := created.ToResponse()
	return &resp, nil
}

func (s *PostService) Feed(ctx context.Context) ([]models.PostResponse, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, err
	}
	return toResponses(posts), nil
}

func (s *PostService) UserPosts(ctx context.Context, userID uint) ([]models.PostResponse, error) {
	posts, err := s.posts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toResponses(posts), nil
}

func (s *PostService) Update(ctx context.Context, authorID, postID uint, req models.UpdatePostRequest) (*models.PostResponse, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if post.UserID != authorID {
		return nil, ErrNotPostAuthor
	}

	post.Content = req.Content
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}

	resp := post.ToResponse()
	return &resp, nil
}

func (s *PostService) Delete(ctx context.Context, authorID, postID uint) error {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	if post.UserID != authorID {
		return ErrNotPostAuthor
	}

	return s.posts.Delete(ctx, postID)
}

func toResponses(posts []models.Post) []models.PostResponse {
	out := make([]models.PostResponse, 0, len(posts))
	for i := range posts {
		out = append(out, posts[i].ToResponse())
	}
	return out
}
