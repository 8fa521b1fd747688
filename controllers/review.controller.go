package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"shaaban-furniture-backend/models"
)

func reviewList(reviews []models.PrivateReview) []models.PrivateReview { return reviews }

// GetPublicReviews lists approved testimonials.
func (ctrl *Controller) GetPublicReviews(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	limit, _ := strconv.Atoi(c.Query("limit"))
	reviews, err := ctrl.Reviews.Public(ctx, limit)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

// SubmitReview queues a testimonial for moderation.
func (ctrl *Controller) SubmitReview(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.ReviewRequest
	if !ctrl.bind(c, &req) {
		return
	}
	review, err := ctrl.Reviews.Submit(ctx, session(c), req)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Thank you! Your review will appear once approved.", "review": review})
}

// GetModerationReviews lists submissions for the moderation screen.
func (ctrl *Controller) GetModerationReviews(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reviews, err := ctrl.Reviews.Moderation(ctx, session(c))
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

func (ctrl *Controller) StreamModerationReviews(c *gin.Context) {
	streamLive(c, ctrl, ctrl.Reviews.NewLive(), true, reviewList)
}

func (ctrl *Controller) ApproveReview(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	review, err := ctrl.Reviews.Approve(ctx, session(c), c.Param("id"))
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"review": review})
}

func (ctrl *Controller) RejectReview(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := ctrl.Reviews.Reject(ctx, session(c), c.Param("id")); err != nil {
		ctrl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review rejected"})
}

func (ctrl *Controller) DeleteReview(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := ctrl.Reviews.Delete(ctx, session(c), c.Param("id")); err != nil {
		ctrl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review deleted successfully"})
}
