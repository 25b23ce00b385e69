package api

import (
	"errors"
	"log/slog"
	"net/http"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"
	"github.com/gin-gonic/gin"

	"github.com/mr1hm/go-migrant-health/internal/cache"
	internalgrpc "github.com/mr1hm/go-migrant-health/internal/grpc"
	"github.com/mr1hm/go-migrant-health/internal/ingestion"
	"github.com/mr1hm/go-migrant-health/internal/models"
	"github.com/mr1hm/go-migrant-health/internal/session"
	"github.com/mr1hm/go-migrant-health/internal/views"
)

type Cache interface {
	Refresh()
	Stats() cache.Stats
}

type SyncStatus interface {
	Status() ingestion.Status
}

type Deps struct {
	Data        views.Data
	Cache       Cache
	Auth        session.Authenticator
	Sessions    *session.Store
	Issuer      *session.Issuer
	Broadcaster *internalgrpc.Broadcaster
	Sync        SyncStatus // nil when the mirror sync is disabled
}

type Handler struct {
	data        views.Data
	cache       Cache
	auth        session.Authenticator
	sessions    *session.Store
	issuer      *session.Issuer
	broadcaster *internalgrpc.Broadcaster
	sync        SyncStatus
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		data:        d.Data,
		cache:       d.Cache,
		auth:        d.Auth,
		sessions:    d.Sessions,
		issuer:      d.Issuer,
		broadcaster: d.Broadcaster,
		sync:        d.Sync,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.health)

	v := r.Group("/api")
	v.POST("/login", h.login)

	v.GET("/dashboard/alerts/stream", StreamAuthMiddleware(h.issuer, h.sessions), h.alertsStream)

	authed := v.Group("", AuthMiddleware(h.issuer, h.sessions))
	authed.POST("/logout", h.logout)
	authed.POST("/cache/refresh", h.refreshCache)

	dash := authed.Group("/dashboard")
	dash.GET("", h.dashboard)
	dash.POST("/select", h.selectBar)
	dash.GET("/districts", h.districts)
	dash.GET("/locations", h.locations)
	dash.GET("/alerts", h.alerts)
	dash.GET("/alerts/map", h.alertsMap)
	dash.GET("/migrants", h.search)
	dash.GET("/profile", h.profile)

	migrants := authed.Group("/migrants")
	migrants.GET("/list/:filterType", h.listByType)
	migrants.GET("/by-district/:districtName", h.listByDistrict)
	migrants.GET("/by-location/:locationId", h.listByLocation)
	migrants.GET("/details/:phone", h.details)
}

func (h *Handler) health(c *gin.Context) {
	resp := gin.H{"status": "ok"}
	if h.cache != nil {
		resp["cache"] = h.cache.Stats()
	}
	if h.sync != nil {
		resp["sync"] = h.sync.Status()
	}
	c.JSON(http.StatusOK, resp)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

var loginRequestSchema = z.Struct(z.Shape{
	"Email":    z.String().Email().Required(),
	"Password": z.String().Required(),
})

type LoginResponse struct {
	Token     string           `json:"token"`
	ExpiresAt int64            `json:"expires_at"`
	Official  session.Official `json:"official"`
}

func (h *Handler) login(c *gin.Context) {
	var req LoginRequest
	if errs := loginRequestSchema.Parse(zhttp.Request(c.Request), &req); errs != nil {
		sendError(c, http.StatusBadRequest, CodeValidationError,
			"Validation failed", "A valid email and a password are required")
		return
	}

	official, err := h.auth.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		slog.Warn("login rejected", "email", req.Email)
		sendError(c, http.StatusUnauthorized, CodeInvalidCredentials,
			"Invalid credentials", "Email or password is incorrect")
		return
	}

	sess := h.sessions.Create(*official)
	token, expires, err := h.issuer.Issue(sess)
	if err != nil {
		h.sessions.Delete(sess.ID)
		slog.Error("failed to issue token", "error", err)
		sendError(c, http.StatusInternalServerError, CodeInternalError,
			"failed to issue token", "Please try again later")
		return
	}

	slog.Info("official logged in", "username", official.Username, "session_id", sess.ID)
	c.JSON(http.StatusOK, LoginResponse{Token: token, ExpiresAt: expires.Unix(), Official: *official})
}

func (h *Handler) logout(c *gin.Context) {
	sess := currentSession(c)
	h.sessions.Delete(sess.ID)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *Handler) profile(c *gin.Context) {
	c.JSON(http.StatusOK, currentSession(c).Official)
}

func (h *Handler) refreshCache(c *gin.Context) {
	h.cache.Refresh()
	slog.Info("cache refreshed", "session_id", currentSession(c).ID)
	c.JSON(http.StatusOK, h.cache.Stats())
}

func (h *Handler) dashboard(c *gin.Context) {
	filters := models.Filters{
		District: c.Query("district"),
		Location: c.Query("location"),
	}
	c.JSON(http.StatusOK, currentSession(c).Dashboard.Load(c.Request.Context(), filters))
}

func (h *Handler) selectBar(c *gin.Context) {
	var bar views.BarEntry
	if err := c.ShouldBindJSON(&bar); err != nil {
		sendError(c, http.StatusBadRequest, CodeValidationError, "Validation failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, currentSession(c).Dashboard.Select(c.Request.Context(), bar))
}

func (h *Handler) districts(c *gin.Context) {
	districts, err := h.data.ListDistricts(c.Request.Context())
	if err != nil {
		h.upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, districts)
}

func (h *Handler) locations(c *gin.Context) {
	locations, err := h.data.ListLocationsForDistrict(c.Request.Context(), c.Query("district"))
	if err != nil {
		h.upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, locations)
}

func (h *Handler) alerts(c *gin.Context) {
	c.JSON(http.StatusOK, currentSession(c).Alerts.Load(c.Request.Context()))
}

func (h *Handler) alertsMap(c *gin.Context) {
	alerts, err := h.data.HotspotAlerts(c.Request.Context())
	if err != nil {
		h.upstreamError(c, err)
		return
	}

	fc := toGeoJSON(alerts)
	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, fc)
}

func (h *Handler) search(c *gin.Context) {
	c.JSON(http.StatusOK, currentSession(c).Search.Run(c.Request.Context(), c.Query("phone")))
}

func (h *Handler) listByType(c *gin.Context) {
	h.list(c, views.ListRoute{FilterType: c.Param("filterType")})
}

func (h *Handler) listByDistrict(c *gin.Context) {
	h.list(c, views.ListRoute{DistrictName: c.Param("districtName"), Filter: c.Query("filter")})
}

func (h *Handler) listByLocation(c *gin.Context) {
	h.list(c, views.ListRoute{LocationID: c.Param("locationId"), Filter: c.Query("filter")})
}

func (h *Handler) list(c *gin.Context, route views.ListRoute) {
	state, err := currentSession(c).List.Load(c.Request.Context(), route)
	if errors.Is(err, views.ErrInvalidRoute) {
		sendError(c, http.StatusBadRequest, CodeInvalidRoute, "Invalid route", err.Error())
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *Handler) details(c *gin.Context) {
	c.JSON(http.StatusOK, currentSession(c).Detail.Load(c.Request.Context(), c.Param("phone")))
}

func (h *Handler) upstreamError(c *gin.Context, err error) {
	slog.Error("upstream request failed", "path", c.FullPath(), "error", err)
	sendError(c, http.StatusBadGateway, CodeUpstreamError,
		"failed to reach health API", "The health data service is unavailable")
}
