package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"civic-trust-service/internal/auth"
	"civic-trust-service/internal/geo"
	"civic-trust-service/internal/http/middleware"
	"civic-trust-service/internal/location"
	"civic-trust-service/internal/model"
	"civic-trust-service/internal/service"
)

type Handler struct {
	authenticator    *auth.Authenticator
	issuer           *auth.Issuer
	disposalService  *service.DisposalService
	complaintService *service.ComplaintService
	rewardService    *service.RewardService
	alertService     *service.AlertService
	analyticsService *service.AnalyticsService
	log              zerolog.Logger
}

func NewHandler(
	authenticator *auth.Authenticator,
	issuer *auth.Issuer,
	disposalService *service.DisposalService,
	complaintService *service.ComplaintService,
	rewardService *service.RewardService,
	alertService *service.AlertService,
	analyticsService *service.AnalyticsService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		authenticator:    authenticator,
		issuer:           issuer,
		disposalService:  disposalService,
		complaintService: complaintService,
		rewardService:    rewardService,
		alertService:     alertService,
		analyticsService: analyticsService,
		log:              log,
	}
}

// FixPayload is the client-reported location reading attached to every
// submitted action.
type FixPayload struct {
	Latitude       float64   `json:"latitude" binding:"required"`
	Longitude      float64   `json:"longitude" binding:"required"`
	AccuracyMeters float64   `json:"accuracy_meters"`
	Timestamp      time.Time `json:"timestamp" binding:"required"`
	Mocked         bool      `json:"mocked"`
}

func (p FixPayload) toFix() location.Fix {
	return location.Fix{
		Coordinates:    geo.Coordinates{Latitude: p.Latitude, Longitude: p.Longitude},
		AccuracyMeters: p.AccuracyMeters,
		Timestamp:      p.Timestamp,
		Mocked:         p.Mocked,
	}
}

func (h *Handler) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		DeviceID string `json:"device_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	principal, err := h.authenticator.Login(c.Request.Context(), req.Email, req.Password, req.DeviceID)
	if err != nil {
		if err == auth.ErrInvalidCredentials {
			c.JSON(http.StatusUnauthorized, errorResponse("invalid credentials"))
			return
		}
		h.log.Error().Err(err).Msg("login failed")
		c.JSON(http.StatusBadGateway, errorResponse("identity provider unavailable"))
		return
	}

	token, expiresAt, err := h.issuer.Issue(*principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"user": gin.H{
			"id":          principal.UserID,
			"role":        principal.Role,
			"role_source": principal.RoleSource,
			"name":        principal.Name,
			"ward":        principal.Ward,
		},
	}))
}

func (h *Handler) createDisposal(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	var req struct {
		BinID     string     `json:"bin_id" binding:"required"`
		QRCodeID  string     `json:"qr_code_id" binding:"required"`
		PhotoRef  string     `json:"photo_ref" binding:"required"`
		WasteSize string     `json:"waste_size" binding:"required"`
		Fix       FixPayload `json:"fix" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	binID, err := uuid.Parse(strings.TrimSpace(req.BinID))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid bin_id"))
		return
	}

	input := service.DisposeInput{
		BinID:     binID,
		QRCodeID:  req.QRCodeID,
		PhotoRef:  req.PhotoRef,
		WasteSize: model.WasteSize(strings.ToUpper(strings.TrimSpace(req.WasteSize))),
		Fix:       req.Fix.toFix(),
	}

	result, err := h.disposalService.Dispose(c.Request.Context(), principal, input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(result))
}

func (h *Handler) listDisposals(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}

	records, err := h.disposalService.ListByUser(c.Request.Context(), principal, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": records}))
}

func (h *Handler) listBins(c *gin.Context) {
	bins, err := h.disposalService.ListBins(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(gin.H{"items": bins}))
}

func (h *Handler) reportBinFull(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid bin id"))
		return
	}

	bin, err := h.disposalService.ReportBinFull(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(bin))
}

func (h *Handler) suggestBin(c *gin.Context) {
	var exclude uuid.UUID
	if raw := strings.TrimSpace(c.Query("exclude")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid exclude id"))
			return
		}
		exclude = id
	}

	var origin *geo.Coordinates
	latRaw := strings.TrimSpace(c.Query("lat"))
	lngRaw := strings.TrimSpace(c.Query("lng"))
	if latRaw != "" && lngRaw != "" {
		lat, latErr := strconv.ParseFloat(latRaw, 64)
		lng, lngErr := strconv.ParseFloat(lngRaw, 64)
		if latErr != nil || lngErr != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid coordinates"))
			return
		}
		origin = &geo.Coordinates{Latitude: lat, Longitude: lng}
	}

	bin, err := h.disposalService.SuggestNextAvailableBin(c.Request.Context(), exclude, origin)
	if err != nil {
		h.handleError(c, err)
		return
	}
	if bin == nil {
		c.JSON(http.StatusNotFound, errorResponse("no available bins"))
		return
	}

	c.JSON(http.StatusOK, successResponse(bin))
}

func (h *Handler) createComplaint(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	var req struct {
		Category    string     `json:"category" binding:"required"`
		Description string     `json:"description"`
		PhotoRef    string     `json:"photo_ref" binding:"required"`
		Fix         FixPayload `json:"fix" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	input := service.ReportIssueInput{
		Category:    model.ComplaintCategory(strings.ToUpper(strings.TrimSpace(req.Category))),
		Description: req.Description,
		PhotoRef:    req.PhotoRef,
		Fix:         req.Fix.toFix(),
	}

	complaint, err := h.complaintService.ReportIssue(c.Request.Context(), principal, input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(complaint))
}

func (h *Handler) listComplaints(c *gin.Context) {
	if _, ok := middleware.MustPrincipal(c); !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	var statuses []model.ComplaintStatus
	if raw := c.Query("status"); raw != "" {
		for _, val := range splitCSV(raw) {
			statuses = append(statuses, model.ComplaintStatus(strings.ToUpper(val)))
		}
	}
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}

	complaints, err := h.complaintService.List(c.Request.Context(), statuses, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": complaints}))
}

func (h *Handler) getComplaint(c *gin.Context) {
	if _, ok := middleware.MustPrincipal(c); !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid complaint id"))
		return
	}

	complaint, err := h.complaintService.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(complaint))
}

func (h *Handler) submitCleanup(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid complaint id"))
		return
	}

	var req struct {
		PhotoRef string     `json:"photo_ref" binding:"required"`
		Fix      FixPayload `json:"fix" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	result, err := h.complaintService.SubmitCleanup(c.Request.Context(), principal, id, service.SubmitCleanupInput{
		PhotoRef: req.PhotoRef,
		Fix:      req.Fix.toFix(),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(result))
}

func (h *Handler) verifyCleanup(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid complaint id"))
		return
	}

	var req struct {
		Approve *bool  `json:"approve" binding:"required"`
		Note    string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	complaint, err := h.complaintService.VerifyCleanup(c.Request.Context(), principal, id, *req.Approve, req.Note)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(complaint))
}

func (h *Handler) getWallet(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	statement, err := h.rewardService.Statement(c.Request.Context(), principal.UserID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(statement))
}

func (h *Handler) listRewards(c *gin.Context) {
	rewards, err := h.rewardService.ListRewards(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(gin.H{"items": rewards}))
}

func (h *Handler) redeemReward(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid reward id"))
		return
	}

	redemption, err := h.rewardService.Redeem(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(redemption))
}

func (h *Handler) listRedemptions(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	redemptions, err := h.rewardService.ListRedemptions(c.Request.Context(), principal.UserID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": redemptions}))
}

func (h *Handler) analyticsSummary(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	summary, err := h.analyticsService.Summary(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(summary))
}

func (h *Handler) listFraudAlerts(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	var statuses []model.AlertStatus
	if raw := c.Query("status"); raw != "" {
		for _, val := range splitCSV(raw) {
			statuses = append(statuses, model.AlertStatus(strings.ToUpper(val)))
		}
	}
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}

	alerts, err := h.alertService.List(c.Request.Context(), principal, statuses, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"items": alerts}))
}

func (h *Handler) reviewFraudAlert(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("principal missing"))
		return
	}

	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid alert id"))
		return
	}

	alert, err := h.alertService.Review(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(alert))
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch err {
	case service.ErrPermissionDenied:
		c.JSON(http.StatusForbidden, errorResponse(err.Error()))
	case service.ErrInvalidInput:
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case service.ErrNotFound:
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case service.ErrConflict:
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	case service.ErrInvalidStatus:
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case service.ErrInsufficientPoints:
		c.JSON(http.StatusPaymentRequired, errorResponse(err.Error()))
	case service.ErrValidationFailed:
		c.JSON(http.StatusUnprocessableEntity, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

type responseEnvelope struct {
	Data interface{} `json:"data"`
}

func successResponse(data interface{}) responseEnvelope {
	return responseEnvelope{Data: data}
}

func errorResponse(msg string) gin.H {
	return gin.H{"error": msg}
}
