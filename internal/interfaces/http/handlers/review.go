// internal/interfaces/http/handlers/review.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/bakery-storefront/internal/api"
	"github.com/your-org/bakery-storefront/internal/domain/order"
	"github.com/your-org/bakery-storefront/internal/domain/review"
)

// ReviewHandler handles review endpoints
type ReviewHandler struct {
	reviews *review.Service
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviews *review.Service) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// ReplyRequest is the staff answer to a review
type ReplyRequest struct {
	Reply string `json:"reply"`
}

var errReviewNotFound = &api.Error{Kind: api.KindNotFound, Message: "Review not found"}

// GetMyReviews handles GET /reviews
func (h *ReviewHandler) GetMyReviews(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}

	reviews, err := h.reviews.UserReviews(c.Request.Context(), d.Session)
	if err != nil {
		respondError(c, err)
		return
	}
	if reviews == nil {
		reviews = []review.Review{}
	}

	respondOK(c, "Reviews retrieved successfully", reviews)
}

// CreateReview handles POST /reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}

	var req review.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	set, err := d.Reviewed(ctx, h.reviews)
	if err != nil {
		respondError(c, err)
		return
	}

	history := d.History(order.ScopeOwn)
	if _, err := history.Load(ctx); err != nil {
		respondError(c, err)
		return
	}

	created, err := h.reviews.CreatePurchased(ctx, d.Session, set, history.Purchased, req)
	if err != nil {
		d.Feed.Error(api.MessageOf(err))
		respondError(c, err)
		return
	}

	d.Feed.Success("Thank you for your review")
	c.JSON(http.StatusCreated, gin.H{
		"message": "Review created successfully",
		"data":    created,
	})
}

// AdminGetReviews handles GET /admin/reviews
func (h *ReviewHandler) AdminGetReviews(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}

	reviews, err := h.reviews.List(c.Request.Context(), d.Session)
	if err != nil {
		respondError(c, err)
		return
	}
	if reviews == nil {
		reviews = []review.Review{}
	}

	respondOK(c, "Reviews retrieved successfully", reviews)
}

// AdminReply handles POST /admin/reviews/:id/reply
func (h *ReviewHandler) AdminReply(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	reviews, err := h.reviews.List(ctx, d.Session)
	if err != nil {
		respondError(c, err)
		return
	}

	var target *review.Review
	for i := range reviews {
		if reviews[i].ID == id {
			target = &reviews[i]
			break
		}
	}
	if target == nil {
		respondError(c, errReviewNotFound)
		return
	}

	if err := h.reviews.Reply(ctx, d.Session, *target, req.Reply); err != nil {
		d.Feed.Error(api.MessageOf(err))
		respondError(c, err)
		return
	}

	d.Feed.Success("Reply saved")
	c.JSON(http.StatusOK, gin.H{
		"message": "Reply saved successfully",
	})
}

// AdminDeleteReview handles DELETE /admin/reviews/:id
func (h *ReviewHandler) AdminDeleteReview(c *gin.Context) {
	d, ok := currentDevice(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.reviews.Delete(c.Request.Context(), d.Session, id); err != nil {
		respondError(c, err)
		return
	}

	d.Feed.Success("Review deleted")
	c.JSON(http.StatusOK, gin.H{
		"message": "Review deleted successfully",
	})
}
