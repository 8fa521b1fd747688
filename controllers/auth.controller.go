package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shaaban-furniture-backend/access"
	"shaaban-furniture-backend/models"
)

// signedIn issues a token for id and answers with the redirect hint.
func (ctrl *Controller) signedIn(c *gin.Context, ctx context.Context, status int, id access.Identity) {
	token, exp, err := ctrl.Tokens.Issue(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	sess := ctrl.Roles.Resolve(ctx, &id)
	c.JSON(status, gin.H{
		"token":     token,
		"expiresAt": exp,
		"identity":  id,
		"isAdmin":   sess.IsAdmin(),
		"home":      sess.Home(),
	})
}

// SignUp registers an email account.
func (ctrl *Controller) SignUp(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.SignUpRequest
	if !ctrl.bind(c, &req) {
		return
	}
	id, err := ctrl.Auth.SignUp(ctx, req.Email, req.Password, req.DisplayName)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	ctrl.signedIn(c, ctx, http.StatusCreated, id)
}

// SignIn handles email and password sign-in.
func (ctrl *Controller) SignIn(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.SignInRequest
	if !ctrl.bind(c, &req) {
		return
	}
	id, err := ctrl.Auth.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	ctrl.signedIn(c, ctx, http.StatusOK, id)
}

// SignInWithGoogle exchanges a Google ID token for a session token.
func (ctrl *Controller) SignInWithGoogle(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.GoogleSignInRequest
	if !ctrl.bind(c, &req) {
		return
	}
	id, err := ctrl.Auth.SignInWithGoogle(ctx, req.IDToken)
	if err != nil {
		ctrl.logf("google sign-in failed: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Google sign-in failed"})
		return
	}
	ctrl.signedIn(c, ctx, http.StatusOK, id)
}

// SignInAnonymously hands out a guest identity for cart and checkout.
func (ctrl *Controller) SignInAnonymously(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ctrl.signedIn(c, ctx, http.StatusCreated, ctrl.Auth.SignInAnonymously(ctx))
}

// SignOut is a no-op: tokens are stateless and dropped by the client.
func (ctrl *Controller) SignOut(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Me reports who the caller is and where to send them.
func (ctrl *Controller) Me(c *gin.Context) {
	s := session(c)
	c.JSON(http.StatusOK, gin.H{
		"identity": s.Identity,
		"isAdmin":  s.IsAdmin(),
		"role":     s.Role.String(),
		"home":     s.Home(),
	})
}
