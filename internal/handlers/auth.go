package handlers

import (
	"errors"
	"net/http"

	"traceper/internal/guard"
	"traceper/internal/service"
	"traceper/internal/tabs"

	"github.com/gin-gonic/gin"
)

type loginForm struct {
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type registerForm struct {
	Name     string `form:"name" binding:"required"`
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
}

const (
	errLoginFields    = "Email and password are required"
	errRegisterFields = "Name, email and password are required"
)

// bindFormOrRender tries to bind the form into dst and re-renders the page at
// location with a 400 on failure. Returns false if the request was handled.
func (h *Handler) bindFormOrRender(c *gin.Context, t *tabs.Tab, location, msg string, dst any, data pageData) bool {
	if err := c.ShouldBind(dst); err != nil {
		h.log.Infow("auth_bad_request_body", "tab", t.ID, "err", err)
		data.Error = msg
		h.render(c, http.StatusBadRequest, t, t.Navigator.Navigate(location), data)
		return false
	}
	return true
}

// redirectIfAuthenticated sends an already signed-in tab to its default page.
func (h *Handler) redirectIfAuthenticated(c *gin.Context, t *tabs.Tab) bool {
	if t.Guard.State() != guard.Authenticated {
		return false
	}
	d := t.Navigator.Navigate(t.Guard.Routes().Default)
	c.Redirect(http.StatusSeeOther, tabURL(t.ID, d.Location))
	return true
}

func (h *Handler) login(c *gin.Context) {
	t := tabFrom(c)
	if h.redirectIfAuthenticated(c, t) {
		return
	}

	var input loginForm
	if ok := h.bindFormOrRender(c, t, "/login", errLoginFields, &input, pageData{Email: c.PostForm("email")}); !ok {
		return
	}

	if err := t.Services.Login(c.Request.Context(), input.Email, input.Password); err != nil {
		h.log.Infow("auth_login_rejected", "tab", t.ID, "email", input.Email, "err", err)
		h.render(c, http.StatusUnauthorized, t, t.Navigator.Navigate("/login"), pageData{
			Email: input.Email,
			Error: formMessage(err),
		})
		return
	}

	// The guard has already moved to Authenticated; resolve against it.
	d := t.Navigator.Navigate(t.Guard.Routes().Default)
	h.log.Infow("auth_login", "tab", t.ID, "location", d.Location)
	c.Redirect(http.StatusSeeOther, tabURL(t.ID, d.Location))
}

func (h *Handler) register(c *gin.Context) {
	t := tabFrom(c)
	if h.redirectIfAuthenticated(c, t) {
		return
	}

	var input registerForm
	data := pageData{Name: c.PostForm("name"), Email: c.PostForm("email")}
	if ok := h.bindFormOrRender(c, t, "/register", errRegisterFields, &input, data); !ok {
		return
	}

	if err := t.Services.Register(c.Request.Context(), input.Name, input.Email, input.Password); err != nil {
		data.Error = formMessage(err)
		h.render(c, http.StatusBadRequest, t, t.Navigator.Navigate("/register"), data)
		return
	}

	c.Redirect(http.StatusSeeOther, tabURL(t.ID, "/login?registered=1"))
}

func (h *Handler) logout(c *gin.Context) {
	t := tabFrom(c)
	t.Services.Logout(c.Request.Context())

	d := t.Navigator.Navigate(t.Guard.Routes().Landing)
	h.log.Infow("auth_logout", "tab", t.ID, "location", d.Location)
	c.Redirect(http.StatusSeeOther, tabURL(t.ID, d.Location))
}

func formMessage(err error) string {
	var authErr *service.AuthError
	if errors.As(err, &authErr) {
		return authErr.Message
	}
	return err.Error()
}
