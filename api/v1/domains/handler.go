package domains

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dns_manager/internal/activity"
	"dns_manager/internal/domainutil"
	"dns_manager/internal/httpx"
	"dns_manager/internal/model"
	"dns_manager/internal/reconcile"
)

// ListRequest represents list domains request
type ListRequest struct {
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
	Keyword   string `form:"keyword"`
	AccountID int    `form:"accountId"`
	Status    string `form:"status"`
}

// CreateRequest represents create domain request
type CreateRequest struct {
	Name             string `json:"name" binding:"required"`
	AccountID        int    `json:"accountId" binding:"required"`
	RegistrationDate string `json:"registrationDate"`
	Registrar        string `json:"registrar"`
	Contact          string `json:"contact"`
}

// UpdateRequest represents update domain request
type UpdateRequest struct {
	ID               int     `json:"id" binding:"required"`
	AccountID        *int    `json:"accountId"`
	RegistrationDate *string `json:"registrationDate"`
	Registrar        *string `json:"registrar"`
	Contact          *string `json:"contact"`
	Status           *string `json:"status"`
}

// DeleteRequest represents delete domain request
type DeleteRequest struct {
	ID int `json:"id" binding:"required"`
}

// ApplyPresetRequest represents apply preset request
type ApplyPresetRequest struct {
	PresetID int `json:"presetId" binding:"required"`
}

// Handler handles domains API
type Handler struct {
	db      *gorm.DB
	engine  *reconcile.Engine
	applier *reconcile.Applier
	audit   *activity.DBLogger
}

// NewHandler creates a new domains handler
func NewHandler(db *gorm.DB, engine *reconcile.Engine, applier *reconcile.Applier) *Handler {
	return &Handler{
		db:      db,
		engine:  engine,
		applier: applier,
		audit:   activity.NewDBLogger(db),
	}
}

// List handles GET /api/v1/domains
func (h *Handler) List(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}

	query := h.db.Model(&model.Domain{})
	if req.Keyword != "" {
		query = query.Where("name LIKE ?", "%"+req.Keyword+"%")
	}
	if req.AccountID > 0 {
		query = query.Where("account_id = ?", req.AccountID)
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("", err))
		return
	}

	var items []model.Domain
	if err := query.Order("id ASC").
		Offset((req.Page - 1) * req.PageSize).Limit(req.PageSize).
		Find(&items).Error; err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("", err))
		return
	}

	httpx.OKItems(c, items, total, req.Page, req.PageSize)
}

// Get handles GET /api/v1/domains/:id
func (h *Handler) Get(c *gin.Context) {
	domain, ok := h.loadDomain(c)
	if !ok {
		return
	}
	httpx.OK(c, domain)
}

// Create handles POST /api/v1/domains/create
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}

	name, err := domainutil.ValidateZoneName(req.Name)
	if err != nil {
		httpx.FailErr(c, httpx.ErrParamIllegal(err.Error()))
		return
	}

	var account model.CloudflareAccount
	if err := h.db.First(&account, req.AccountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.FailErr(c, httpx.ErrParamIllegal("cloudflare account does not exist"))
			return
		}
		httpx.FailErr(c, httpx.ErrDatabaseError("", err))
		return
	}

	domain := model.Domain{
		Name:             name,
		AccountID:        req.AccountID,
		Status:           model.DomainStatusPending,
		RegistrationDate: req.RegistrationDate,
		Registrar:        req.Registrar,
		Contact:          req.Contact,
	}
	if err := h.db.Create(&domain).Error; err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("", err))
		return
	}

	h.audit.ForUser(c.GetInt("uid")).
		Log("domain", domain.ID, domain.Name, model.ActivityActionCreate, "Created domain")
	httpx.OK(c, domain)
}

// Update handles POST /api/v1/domains/update. The name is the identity of
// the domain and cannot change; delete and recreate instead.
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}

	var domain model.Domain
	if err := h.db.First(&domain, req.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.FailErr(c, httpx.ErrNotFound("domain not found"))
			return
		}
		httpx.FailErr(c, httpx.ErrDatabaseError("", err))
		return
	}

	updates := map[string]interface{}{}
	if req.AccountID != nil {
		updates["account_id"] = *req.AccountID
		// New account means the cached zone pointer is meaningless.
		updates["zone_id"] = ""
	}
	if req.RegistrationDate != nil {
		updates["registration_date"] = *req.RegistrationDate
	}
	if req.Registrar != nil {
		updates["registrar"] = *req.Registrar
	}
	if req.Contact != nil {
		updates["contact"] = *req.Contact
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if len(updates) > 0 {
		if err := h.db.Model(&domain).Updates(updates).Error; err != nil {
			httpx.FailErr(c, httpx.ErrDatabaseError("", err))
			return
		}
	}

	h.audit.ForUser(c.GetInt("uid")).
		Log("domain", domain.ID, domain.Name, model.ActivityActionUpdate, "Updated domain")
	httpx.OK(c, domain)
}

// Delete handles POST /api/v1/domains/delete. Local records go with the
// domain; nothing is touched at the provider.
func (h *Handler) Delete(c *gin.Context) {
	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}

	var domain model.Domain
	if err := h.db.First(&domain, req.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.FailErr(c, httpx.ErrNotFound("domain not found"))
			return
		}
		httpx.FailErr(c, httpx.ErrDatabaseError("", err))
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("domain_id = ?", domain.ID).Delete(&model.DNSRecord{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain).Error
	})
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("", err))
		return
	}

	h.audit.ForUser(c.GetInt("uid")).
		Log("domain", domain.ID, domain.Name, model.ActivityActionDelete, "Deleted domain and local records")
	httpx.OK(c, nil)
}

// Sync handles POST /api/v1/domains/:id/sync-from-cloudflare
func (h *Handler) Sync(c *gin.Context) {
	domain, ok := h.loadDomain(c)
	if !ok {
		return
	}

	result, err := h.engine.Pull(c.Request.Context(), domain.ID)
	if err != nil {
		httpx.FailWith(c, err)
		return
	}
	httpx.OK(c, result)
}

// Push handles POST /api/v1/domains/:id/push-to-cloudflare
func (h *Handler) Push(c *gin.Context) {
	domain, ok := h.loadDomain(c)
	if !ok {
		return
	}

	result, err := h.engine.Push(c.Request.Context(), domain.ID)
	if err != nil {
		httpx.FailWith(c, err)
		return
	}
	if len(result.Failed) > 0 {
		httpx.OKMsg(c, fmt.Sprintf("push completed with %d failures", len(result.Failed)), result)
		return
	}
	httpx.OK(c, result)
}

// ApplyPreset handles POST /api/v1/domains/:id/apply-preset
func (h *Handler) ApplyPreset(c *gin.Context) {
	domain, ok := h.loadDomain(c)
	if !ok {
		return
	}

	var req ApplyPresetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}

	result, err := h.applier.ApplyPreset(c.Request.Context(), domain.ID, req.PresetID)
	if err != nil {
		if result != nil {
			// The local replace already happened; report it alongside the
			// push error.
			app := httpx.FromError(err).WithData(result)
			httpx.FailErr(c, app)
			return
		}
		httpx.FailWith(c, err)
		return
	}
	httpx.OK(c, result)
}

func (h *Handler) loadDomain(c *gin.Context) (*model.Domain, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid domain id"))
		return nil, false
	}

	var domain model.Domain
	if err := h.db.First(&domain, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.FailErr(c, httpx.ErrNotFound("domain not found"))
			return nil, false
		}
		httpx.FailErr(c, httpx.ErrDatabaseError("", err))
		return nil, false
	}
	return &domain, true
}
