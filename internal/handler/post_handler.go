package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"relay-service/internal/models"
	"relay-service/internal/service"
	"relay-service/pkg/response"
)

type PostHandler struct {
	postService *service.PostService
}

func NewPostHandler(postService *service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// Create godoc
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreatePostRequest true "Post content"
// @Success 201 {object} models.PostResponse
// @Failure 400 {object} models.ErrorResponse "Invalid input data"
// @Router /posts [post]
func (h *PostHandler) Create(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var req models.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid input data", err.Error())
		return
	}

	post, err := h.postService.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to create post", "")
		return
	}

	c.JSON(http.StatusCreated, post)
}

// Feed godoc
// @Summary List all posts, newest first
// @Tags posts
// @Produce json
// @Success 200 {array} models.PostResponse
// @Router /posts [get]
func (h *PostHandler) Feed(c *gin.Context) {
	posts, err := h.postService.Feed(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to load posts", "")
		return
	}

	c.JSON(http.StatusOK, posts)
}

// UserPosts godoc
// @Summary List a user's posts
// @Tags posts
// @Produce json
// @Param userId path int true "Author user id"
// @Success 200 {array} models.PostResponse
// @Failure 400 {object} models.ErrorResponse "Invalid id"
// @Router /posts/user/{userId} [get]
func (h *PostHandler) UserPosts(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid user id", "")
		return
	}

	posts, err := h.postService.UserPosts(c.Request.Context(), uint(userID))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to load posts", "")
		return
	}

	c.JSON(http.StatusOK, posts)
}

// Update godoc
// @Summary Update a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post id"
// @Param request body models.UpdatePostRequest true "New content"
// @Success 200 {object} models.PostResponse
// @Failure 403 {object} models.ErrorResponse "Not the author"
// @Failure 404 {object} models.ErrorResponse "Post not found"
// @Router /posts/{id} [put]
func (h *PostHandler) Update(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid post id", "")
		return
	}

	var req models.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid input data", err.Error())
		return
	}

	post, err := h.postService.Update(c.Request.Context(), userID, uint(postID), req)
	if err != nil {
		h.writePostError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// Delete godoc
// @Summary Delete a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post id"
// @Success 200 {object} models.MessageResponse
// @Failure 403 {object} models.ErrorResponse "Not the author"
// @Failure 404 {object} models.ErrorResponse "Post not found"
// @Router /posts/{id} [delete]
func (h *PostHandler) Delete(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid post id", "")
		return
	}

	if err := h.postService.Delete(c.Request.Context(), userID, uint(postID)); err != nil {
		h.writePostError(c, err)
		return
	}

	response.Message(c, http.StatusOK, "post deleted")
}

func (h *PostHandler) writePostError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPostNotFound):
		response.Error(c, http.StatusNotFound, "post not found", "")
	case errors.Is(err, service.ErrNotPostAuthor):
		response.Error(c, http.StatusForbidden, "only the author may modify a post", "")
	default:
		response.Error(c, http.StatusInternalServerError, "post operation failed", "")
	}
}
