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

type BlockHandler struct {
	blockService *service.BlockService
}

func NewBlockHandler(blockService *service.BlockService) *BlockHandler {
	return &BlockHandler{blockService: blockService}
}

// Block godoc
// @Summary Block a user
// @Description Messages from the blocked user stop reaching the caller from the next send onward
// @Tags blocks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.BlockRequest true "User to block"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse "Invalid input or self-block"
// @Failure 404 {object} models.ErrorResponse "User not found"
// @Router /users/block [post]
func (h *BlockHandler) Block(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var req models.BlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid input data", err.Error())
		return
	}

	if err := h.blockService.Block(c.Request.Context(), userID, req.BlockedID); err != nil {
		switch {
		case errors.Is(err, service.ErrSelfBlock):
			response.Error(c, http.StatusBadRequest, "cannot block yourself", "")
		case errors.Is(err, service.ErrUserNotFound):
			response.Error(c, http.StatusNotFound, "user not found", "")
		default:
			response.Error(c, http.StatusInternalServerError, "failed to block user", "")
		}
		return
	}

	response.Message(c, http.StatusOK, "user blocked")
}

// Unblock godoc
// @Summary Unblock a user
// @Tags blocks
// @Produce json
// @Security BearerAuth
// @Param blockedId path int true "User id to unblock"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse "Invalid id"
// @Router /users/unblock/{blockedId} [delete]
func (h *BlockHandler) Unblock(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	blockedID, err := strconv.ParseUint(c.Param("blockedId"), 10, 32)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid user id", "")
		return
	}

	if err := h.blockService.Unblock(c.Request.Context(), userID, uint(blockedID)); err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to unblock user", "")
		return
	}

	response.Message(c, http.StatusOK, "user unblocked")
}

// ListBlocked godoc
// @Summary List blocked users
// @Tags blocks
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.BlockedUserResponse
// @Router /users/blocked [get]
func (h *BlockHandler) ListBlocked(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	blocked, err := h.blockService.ListBlocked(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list blocked users", "")
		return
	}

	c.JSON(http.StatusOK, blocked)
}
