package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"shaaban-furniture-backend/access"
)

// streamLive serves a LiveQuery as server-sent events until the client goes
// away. With gated set, the stream starts with the role unresolved and
// re-plans the query each time the caller's admin role document changes.
func streamLive[T, V any](c *gin.Context, ctrl *Controller, live *access.LiveQuery[T], gated bool, render func([]T) V) {
	ctx := c.Request.Context()
	defer live.Close()

	sess := session(c)
	var roles <-chan access.Role
	if gated && sess.Identity != nil {
		w, err := ctrl.Roles.Watch(ctx, sess.UID())
		if err != nil {
			ctrl.logf("stream %s: %v", c.Request.URL.Path, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not start stream"})
			return
		}
		defer w.Cancel()
		roles = w.Roles()
		sess.Role = access.RoleUnresolved
	}
	if err := live.Apply(ctx, sess); err != nil {
		ctrl.logf("stream %s: %v", c.Request.URL.Path, err)
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case role, ok := <-roles:
			if !ok {
				roles = nil
				return true
			}
			sess.Role = role
			c.SSEvent("role", role.String())
			if err := live.Apply(ctx, sess); err != nil {
				ctrl.logf("stream %s: %v", c.Request.URL.Path, err)
			}
			return true
		case v, ok := <-live.Views():
			if !ok {
				return false
			}
			payload := gin.H{"loading": v.Loading}
			if v.Err != nil {
				payload["error"] = "Live query failed"
			} else if !v.Loading {
				payload["items"] = render(v.Items)
			}
			c.SSEvent("snapshot", payload)
			return true
		}
	})
}
