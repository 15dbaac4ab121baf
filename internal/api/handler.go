package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/b3view/internal/chart"
	"github.com/guttosm/b3view/internal/dashboard"
	"github.com/guttosm/b3view/internal/domain/dto"
	"github.com/guttosm/b3view/internal/domain/models"
	"github.com/guttosm/b3view/internal/marketapi"
	"github.com/guttosm/b3view/internal/middleware"
)

// SessionStore hands out the dashboard controller of a browser session.
type SessionStore interface {
	Get(id string) *dashboard.Controller
	Transient() *dashboard.Controller
}

// defaultSession is used when the Session middleware is not installed.
const defaultSession = "default"

// Handler provides the HTTP handlers of the dashboard.
//
// Responsibilities:
//   - Resolve the caller's session controller
//   - Validate path, query and body parameters
//   - Translate controller state and errors into response DTOs
type Handler struct {
	sessions SessionStore
}

// NewHandler constructs a Handler backed by sessions.
func NewHandler(sessions SessionStore) *Handler {
	return &Handler{sessions: sessions}
}

func (h *Handler) controller(c *gin.Context) *dashboard.Controller {
	id := middleware.SessionID(c)
	switch {
	case id == "":
		id = defaultSession
	case middleware.SessionIsNew(c):
		return h.sessions.Transient()
	}
	return h.sessions.Get(id)
}

// GetDirectory godoc
// @Summary      List tickers
// @Description  Returns the ticker directory filtered by a case-insensitive substring
// @Tags         dashboard
// @Produce      json
// @Param        q    query     string  false  "Search text" example(ETR)
// @Success      200  {object}  dto.DirectoryResponse
// @Router       /api/v1/directory [get]
func (h *Handler) GetDirectory(c *gin.Context) {
	q := c.Query("q")
	tickers := h.controller(c).Filter(q)
	c.JSON(http.StatusOK, dto.DirectoryResponse{
		Total:   len(tickers),
		Query:   q,
		Tickers: tickers,
	})
}

// SelectAsset godoc
// @Summary      Select a ticker
// @Description  Loads the history of a ticker and draws it in the active display mode
// @Tags         dashboard
// @Produce      json
// @Param        ticker  path      string  true  "Ticker" example(PETR4)
// @Success      200     {object}  dto.StateResponse
// @Failure      400     {object}  dto.ErrorResponse  "Bad Request"
// @Failure      404     {object}  dto.ErrorResponse  "Unknown ticker"
// @Failure      409     {object}  dto.ErrorResponse  "Superseded by a newer selection"
// @Failure      422     {object}  dto.ErrorResponse  "Records cannot be charted"
// @Failure      502     {object}  dto.ErrorResponse  "Market API failure"
// @Router       /api/v1/assets/{ticker} [post]
func (h *Handler) SelectAsset(c *gin.Context) {
	ctrl := h.controller(c)
	err := ctrl.SelectTicker(c.Request.Context(), c.Param("ticker"))
	if err != nil {
		switch {
		case errors.Is(err, dashboard.ErrEmptyTicker):
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse("ticker is required", err))
		case errors.Is(err, dashboard.ErrSuperseded):
			c.JSON(http.StatusConflict, dto.NewErrorResponse("selection superseded", err))
		case errors.Is(err, marketapi.ErrNotFound):
			c.JSON(http.StatusNotFound, dto.NewErrorResponse("ticker not found", err))
		case isChartError(err):
			c.JSON(http.StatusUnprocessableEntity, dto.NewErrorResponse("cannot chart asset", err))
		default:
			c.JSON(http.StatusBadGateway, dto.NewErrorResponse("failed to load asset", err))
		}
		return
	}
	c.JSON(http.StatusOK, toStateResponse(ctrl.State()))
}

// SetMode godoc
// @Summary      Switch display mode
// @Description  Redraws the current asset from cached records in another mode
// @Tags         dashboard
// @Produce      json
// @Param        mode  path      string  true  "Display mode" Enums(fechamento, abertura, maximo, minimo, volume)
// @Success      200   {object}  dto.StateResponse
// @Failure      400   {object}  dto.ErrorResponse  "Unknown mode"
// @Failure      422   {object}  dto.ErrorResponse  "Records lack the field"
// @Router       /api/v1/mode/{mode} [post]
func (h *Handler) SetMode(c *gin.Context) {
	ctrl := h.controller(c)
	if err := ctrl.SetMode(c.Param("mode")); err != nil {
		if errors.Is(err, models.ErrInvalidMode) {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid display mode", err))
			return
		}
		c.JSON(http.StatusUnprocessableEntity, dto.NewErrorResponse("cannot chart mode", err))
		return
	}
	c.JSON(http.StatusOK, toStateResponse(ctrl.State()))
}

// GetChart godoc
// @Summary      Current chart
// @Description  Returns the Chart.js configuration of the chart on screen, 204 when there is none
// @Tags         chart
// @Produce      json
// @Success      200  {object}  chart.Config
// @Success      204  "No chart"
// @Router       /api/v1/chart [get]
func (h *Handler) GetChart(c *gin.Context) {
	cfg, err := h.controller(c).Chart()
	if err != nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// SetViewport godoc
// @Summary      Sync chart viewport
// @Description  Stores the visible label window after a pan or zoom on the page
// @Tags         chart
// @Accept       json
// @Produce      json
// @Param        body  body      dto.ViewportRequest  true  "Visible window"
// @Success      200   {object}  dto.ViewportResponse
// @Failure      400   {object}  dto.ErrorResponse  "Invalid window"
// @Failure      404   {object}  dto.ErrorResponse  "No chart"
// @Router       /api/v1/chart/viewport [post]
func (h *Handler) SetViewport(c *gin.Context) {
	var req dto.ViewportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid viewport body", err))
		return
	}
	v, err := h.controller(c).SetViewport(chart.Viewport{Min: *req.Min, Max: *req.Max})
	h.writeViewport(c, v, err)
}

// ResetZoom godoc
// @Summary      Reset zoom
// @Description  Shows every point of the current chart again
// @Tags         chart
// @Produce      json
// @Success      200  {object}  dto.ViewportResponse
// @Failure      404  {object}  dto.ErrorResponse  "No chart"
// @Router       /api/v1/chart/reset-zoom [post]
func (h *Handler) ResetZoom(c *gin.Context) {
	v, err := h.controller(c).ResetZoom()
	h.writeViewport(c, v, err)
}

func (h *Handler) writeViewport(c *gin.Context, v chart.Viewport, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, dto.ViewportResponse{Min: v.Min, Max: v.Max})
	case errors.Is(err, chart.ErrNoChart), errors.Is(err, chart.ErrDestroyed):
		c.JSON(http.StatusNotFound, dto.NewErrorResponse("no chart", err))
	case errors.Is(err, chart.ErrInvalidWindow):
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid viewport", err))
	default:
		_ = c.Error(err)
	}
}

// ExportChart godoc
// @Summary      Export chart
// @Description  Renders the visible window of the current chart as PNG
// @Tags         chart
// @Produce      png
// @Produce      json
// @Param        format  query     string  false  "dataurl to get a JSON data URL instead of a file" Enums(png, dataurl)
// @Success      200     {file}    binary
// @Success      200     {object}  dto.ExportDataURLResponse
// @Failure      404     {object}  dto.ErrorResponse  "No chart"
// @Failure      500     {object}  dto.ErrorResponse  "Render failure"
// @Router       /api/v1/chart/export [get]
func (h *Handler) ExportChart(c *gin.Context) {
	exp, err := h.controller(c).Export()
	if err != nil {
		if errors.Is(err, chart.ErrNoChart) || errors.Is(err, chart.ErrDestroyed) {
			c.JSON(http.StatusNotFound, dto.NewErrorResponse("no chart to export", err))
			return
		}
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("failed to export chart", err))
		return
	}

	if strings.EqualFold(c.Query("format"), "dataurl") {
		c.JSON(http.StatusOK, dto.ExportDataURLResponse{Filename: exp.Filename, DataURL: exp.DataURL()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+exp.Filename+`"`)
	c.Data(http.StatusOK, "image/png", exp.PNG)
}

// GetState godoc
// @Summary      Dashboard state
// @Description  Returns the view state of the caller's session
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  dto.StateResponse
// @Router       /api/v1/state [get]
func (h *Handler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, toStateResponse(h.controller(c).State()))
}

func isChartError(err error) bool {
	return errors.Is(err, chart.ErrMissingField) ||
		errors.Is(err, chart.ErrBadDate) ||
		errors.Is(err, chart.ErrNoData)
}

func toStateResponse(st dashboard.ViewState) dto.StateResponse {
	modes := make([]dto.ModeButton, len(models.Modes))
	for i, m := range models.Modes {
		modes[i] = dto.ModeButton{Mode: m.String(), Label: m.Label(), Active: m == st.Mode}
	}
	resp := dto.StateResponse{
		View:       string(st.View),
		Ticker:     st.Ticker,
		Mode:       st.Mode.String(),
		Modes:      modes,
		Records:    st.Records,
		HasChart:   st.HasChart,
		Generation: st.Generation,
	}
	if st.Viewport != nil {
		resp.Viewport = &dto.ViewportResponse{Min: st.Viewport.Min, Max: st.Viewport.Max}
	}
	return resp
}
