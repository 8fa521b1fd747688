package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shaaban-furniture-backend/models"
)

// GetUsers lists every profile with its admin flag. Admin only.
func (ctrl *Controller) GetUsers(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users, err := ctrl.Users.List(ctx, session(c))
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// SetUserAdmin grants or revokes the admin role.
func (ctrl *Controller) SetUserAdmin(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.AdminRoleRequest
	if !ctrl.bind(c, &req) {
		return
	}
	if err := ctrl.Users.SetAdmin(ctx, session(c), c.Param("id"), req.Admin); err != nil {
		ctrl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "isAdmin": req.Admin})
}

func (ctrl *Controller) DeleteUser(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := ctrl.Users.Delete(ctx, session(c), c.Param("id")); err != nil {
		ctrl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// GetProfile returns the caller's own profile.
func (ctrl *Controller) GetProfile(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s := session(c)
	if !s.SignedIn() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Sign in to view your profile"})
		return
	}
	profile, err := ctrl.Users.Profile(ctx, s.UID())
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

func (ctrl *Controller) UpdateProfile(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.ProfileRequest
	if !ctrl.bind(c, &req) {
		return
	}
	profile, err := ctrl.Users.UpdateProfile(ctx, session(c), req)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}
