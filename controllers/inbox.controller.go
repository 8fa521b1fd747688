package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shaaban-furniture-backend/models"
)

// Contact stores a contact-form message.
func (ctrl *Controller) Contact(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.ContactRequest
	if !ctrl.bind(c, &req) {
		return
	}
	msg, err := ctrl.Inbox.Contact(ctx, req)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Message sent! We'll get back to you soon.", "id": msg.ID})
}

// Subscribe adds an email to the newsletter. Repeats are accepted quietly.
func (ctrl *Controller) Subscribe(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.NewsletterRequest
	if !ctrl.bind(c, &req) {
		return
	}
	created, err := ctrl.Inbox.Subscribe(ctx, req)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	if created {
		c.JSON(http.StatusCreated, gin.H{"message": "Subscribed successfully"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "You are already subscribed"})
}

func (ctrl *Controller) GetMessages(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msgs, err := ctrl.Inbox.Messages(ctx, session(c))
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func (ctrl *Controller) ToggleMessageRead(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	read, err := ctrl.Inbox.ToggleRead(ctx, session(c), c.Param("id"))
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "isRead": read})
}

func (ctrl *Controller) DeleteMessage(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := ctrl.Inbox.DeleteMessage(ctx, session(c), c.Param("id")); err != nil {
		ctrl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Message deleted successfully"})
}

func (ctrl *Controller) GetSubscribers(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	subs, err := ctrl.Inbox.Subscribers(ctx, session(c))
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscribers": subs})
}

func (ctrl *Controller) DeleteSubscriber(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := ctrl.Inbox.DeleteSubscriber(ctx, session(c), c.Param("id")); err != nil {
		ctrl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Subscriber removed"})
}
