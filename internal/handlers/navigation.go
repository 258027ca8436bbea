package handlers

import (
	"errors"
	"net/http"

	"traceper/internal/apiclient"
	"traceper/internal/guard"
	"traceper/internal/service"
	"traceper/internal/tabs"

	"github.com/gin-gonic/gin"
)

const (
	statusOK = "ok"

	errOpenTab     = "failed to open tab"
	errLoadRecords = "Failed to load records."
	errLoadStats   = "Failed to load dashboard stats."
	errDelete      = "Failed to delete record."
	noticeSignedUp = "Account created. Please sign in."
)

// TabStatus is the JSON view of one tab.
type TabStatus struct {
	ID          string `json:"id" example:"5d0c6f0e-6b1e-4c1a-9a55-0c4c1d1f3b8e"`
	State       string `json:"state" example:"authenticated"`
	Location    string `json:"location" example:"/dashboard"`
	DisplayName string `json:"display_name,omitempty" example:"Alice"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
		"tabs":   h.tabs.Len(),
	})
}

// @Summary      Tab status
// @Description  Guard state and current location of an open tab
// @Tags         tabs
// @Produce      json
// @Param        tab  path      string  true  "Tab id"
// @Success      200  {object}  TabStatus
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/tabs/{tab} [get]
func (h *Handler) tabStatus(c *gin.Context) {
	t := tabFrom(c)
	sess := t.Store.Session()
	c.JSON(http.StatusOK, TabStatus{
		ID:          t.ID,
		State:       t.Guard.State().String(),
		Location:    t.Navigator.Location(),
		DisplayName: sess.DisplayName,
	})
}

func (h *Handler) openTab(c *gin.Context) {
	t, err := h.tabs.Open()
	if err != nil {
		h.log.Errorw("tab_open_failed", "err", err)
		c.String(http.StatusInternalServerError, errOpenTab)
		return
	}
	c.Redirect(http.StatusSeeOther, tabURL(t.ID, "/"))
}

// page navigates the tab to the requested path. Unreachable paths redirect to
// wherever the guard sends them.
func (h *Handler) page(c *gin.Context) {
	t := tabFrom(c)
	d := t.Navigator.Navigate(c.Param("path"))
	if d.Redirected {
		c.Redirect(http.StatusFound, tabURL(t.ID, d.Location))
		return
	}

	var data pageData
	if d.Location == "/login" && c.Query("registered") != "" {
		data.Notice = noticeSignedUp
	}
	h.render(c, http.StatusOK, t, d, data)
}

func (h *Handler) deleteRecord(c *gin.Context) {
	t := tabFrom(c)
	resource := c.Param("resource")
	back := "/" + resource
	if t.Guard.State() != guard.Authenticated {
		d := t.Navigator.Navigate(back)
		c.Redirect(http.StatusSeeOther, tabURL(t.ID, d.Location))
		return
	}

	err := t.Services.Delete(c.Request.Context(), resource, c.Param("id"))
	switch {
	case err == nil:
		h.log.Infow("record_deleted", "tab", t.ID, "resource", resource, "id", c.Param("id"))
	case errors.Is(err, service.ErrUnknownResource):
		c.Redirect(http.StatusSeeOther, tabURL(t.ID, t.Navigator.Navigate(back).Location))
		return
	default:
		h.log.Errorw("record_delete_failed", "tab", t.ID, "resource", resource, "err", err)
		d := t.Navigator.Navigate(back)
		h.render(c, statusFor(err), t, d, pageData{Error: errDelete})
		return
	}
	c.Redirect(http.StatusSeeOther, tabURL(t.ID, t.Navigator.Navigate(back).Location))
}

// render draws the destination of d. Protected destinations are drawn inside
// the shell and fetch their data on the way; fetch errors show inline.
func (h *Handler) render(c *gin.Context, status int, t *tabs.Tab, d guard.Decision, data pageData) {
	data.TabID = t.ID
	data.Location = d.Location
	data.Title = title(d.Location)

	if !d.Shell {
		c.HTML(status, publicTemplate(d.Location), data)
		return
	}

	data.Nav = sidebar
	data.DisplayName = t.Store.Session().DisplayName
	ctx := c.Request.Context()

	if resource, ok := resourceOf(d.Location); ok {
		data.Resource = resource
		data.Columns = resourceColumns[resource]
		recs, err := t.Services.List(ctx, resource)
		if err != nil {
			h.log.Errorw("records_load_failed", "tab", t.ID, "resource", resource, "err", err)
			if data.Error == "" {
				data.Error = errLoadRecords
			}
		}
		data.Rows = buildRows(data.Columns, recs)
		c.HTML(status, tmplRecords, data)
		return
	}

	stats, err := t.Services.Stats(ctx)
	if err != nil {
		h.log.Errorw("stats_load_failed", "tab", t.ID, "err", err)
		if data.Error == "" {
			data.Error = errLoadStats
		}
	}
	data.Stats = stats
	c.HTML(status, tmplDashboard, data)
}

// statusFor maps a remote failure onto the page's status code.
func statusFor(err error) int {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		return apiErr.Status
	}
	return http.StatusBadGateway
}
