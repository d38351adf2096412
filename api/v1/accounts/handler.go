package accounts

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"dns_manager/internal/activity"
	"dns_manager/internal/httpx"
	"dns_manager/internal/model"
	"dns_manager/internal/reconcile"
)

// CreateRequest represents create account request
type CreateRequest struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email"`
	APIKey          string `json:"apiKey" binding:"required"`
	ProviderAccount string `json:"accountId"`
}

// UpdateRequest represents update account request
type UpdateRequest struct {
	ID              int     `json:"id" binding:"required"`
	Name            *string `json:"name"`
	Email           *string `json:"email"`
	APIKey          *string `json:"apiKey"`
	ProviderAccount *string `json:"accountId"`
	Status          *string `json:"status"`
}

// DeleteRequest represents delete account request
type DeleteRequest struct {
	ID int `json:"id" binding:"required"`
}

// ImportZonesRequest represents import zones request
type ImportZonesRequest struct {
	AccountID int `json:"accountId" binding:"required"`
}

// ImportZonesResponse represents import zones response
type ImportZonesResponse struct {
	Total    int `json:"total"`
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Handler handles Cloudflare account API
type Handler struct {
	db        *gorm.DB
	newClient reconcile.ClientFactory
	audit     *activity.DBLogger
}

// NewHandler creates a new accounts handler
func NewHandler(db *gorm.DB, newClient reconcile.ClientFactory) *Handler {
	return &Handler{db: db, newClient: newClient, audit: activity.NewDBLogger(db)}
}

// List handles GET /api/v1/cloudflare-accounts
func (h *Handler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	query := h.db.Model(&model.CloudflareAccount{})
	if keyword := c.Query("keyword"); keyword != "" {
		query = query.Where("name LIKE ? OR email LIKE ?", "%"+keyword+"%", "%"+keyword+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("", err))
		return
	}

	var items []model.CloudflareAccount
	if err := query.Order("id ASC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&items).Error; err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("", err))
		return
	}

	httpx.OKItems(c, items, total, page, pageSize)
}

// Create handles POST /api/v1/cloudflare-accounts/create
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}

	account := model.CloudflareAccount{
		Name:            req.Name,
		Email:           req.Email,
		APIKey:          req.APIKey,
		ProviderAccount: req.ProviderAccount,
		Status:          model.CloudflareAccountStatusActive,
	}
	if err := h.db.Create(&account).Error; err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("", err))
		return
	}

	h.audit.ForUser(c.GetInt("uid")).
		Log("cloudflare_account", account.ID, account.Name, model.ActivityActionCreate, "Created Cloudflare account")
	httpx.OK(c, account)
}

// Update handles POST /api/v1/cloudflare-accounts/update
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}

	var account model.CloudflareAccount
	if err := h.db.First(&account, req.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.FailErr(c, httpx.ErrNotFound("account not found"))
			return
		}
		httpx.FailErr(c, httpx.ErrDatabaseError("", err))
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.APIKey != nil && *req.APIKey != "" {
		updates["api_key"] = *req.APIKey
	}
	if req.ProviderAccount != nil {
		updates["provider_account"] = *req.ProviderAccount
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if len(updates) > 0 {
		if err := h.db.Model(&account).Updates(updates).Error; err != nil {
			httpx.FailErr(c, httpx.ErrDatabaseError("", err))
			return
		}
	}

	h.audit.ForUser(c.GetInt("uid")).
		Log("cloudflare_account", account.ID, account.Name, model.ActivityActionUpdate, "Updated Cloudflare account")
	httpx.OK(c, account)
}

// Delete handles POST /api/v1/cloudflare-accounts/delete
func (h *Handler) Delete(c *gin.Context) {
	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}

	var count int64
	if err := h.db.Model(&model.Domain{}).Where("account_id = ?", req.ID).Count(&count).Error; err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("", err))
		return
	}
	if count > 0 {
		httpx.FailErr(c, httpx.ErrStateConflict(fmt.Sprintf("account still has %d linked domains", count)))
		return
	}

	var account model.CloudflareAccount
	if err := h.db.First(&account, req.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.FailErr(c, httpx.ErrNotFound("account not found"))
			return
		}
		httpx.FailErr(c, httpx.ErrDatabaseError("", err))
		return
	}
	if err := h.db.Delete(&account).Error; err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("", err))
		return
	}

	h.audit.ForUser(c.GetInt("uid")).
		Log("cloudflare_account", account.ID, account.Name, model.ActivityActionDelete, "Deleted Cloudflare account")
	httpx.OK(c, nil)
}

// TestConnection handles POST /api/v1/cloudflare-accounts/:id/test-connection
func (h *Handler) TestConnection(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid account id"))
		return
	}

	var account model.CloudflareAccount
	if err := h.db.First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.FailErr(c, httpx.ErrNotFound("account not found"))
			return
		}
		httpx.FailErr(c, httpx.ErrDatabaseError("", err))
		return
	}

	result, err := h.newClient(&account).VerifyCredentials(c.Request.Context())
	if err != nil {
		httpx.FailWith(c, err)
		return
	}
	httpx.OK(c, result)
}

// Zones handles GET /api/v1/cloudflare-accounts/:id/zones
func (h *Handler) Zones(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid account id"))
		return
	}

	var account model.CloudflareAccount
	if err := h.db.First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.FailErr(c, httpx.ErrNotFound("account not found"))
			return
		}
		httpx.FailErr(c, httpx.ErrDatabaseError("", err))
		return
	}

	zones, err := h.newClient(&account).ListZones(c.Request.Context())
	if err != nil {
		httpx.FailWith(c, err)
		return
	}
	httpx.OK(c, zones)
}

// ImportZones handles POST /api/v1/cloudflare-accounts/import-zones.
// Every hosted zone of the account that is not yet a managed domain gets a
// domain row; existing domains are left alone.
func (h *Handler) ImportZones(c *gin.Context) {
	var req ImportZonesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}

	var account model.CloudflareAccount
	if err := h.db.First(&account, req.AccountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.FailErr(c, httpx.ErrNotFound("account not found"))
			return
		}
		httpx.FailErr(c, httpx.ErrDatabaseError("", err))
		return
	}

	zones, err := h.newClient(&account).ListZones(c.Request.Context())
	if err != nil {
		httpx.FailWith(c, err)
		return
	}

	resp := ImportZonesResponse{Total: len(zones)}
	audit := h.audit.ForUser(c.GetInt("uid"))
	for _, zone := range zones {
		var existing model.Domain
		err := h.db.Where("name = ?", zone.Name).First(&existing).Error
		if err == nil {
			resp.Skipped++
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.FailErr(c, httpx.ErrDatabaseError("", err))
			return
		}

		nameServers, _ := json.Marshal(zone.NameServers)
		domain := model.Domain{
			Name:        zone.Name,
			AccountID:   account.ID,
			ZoneID:      zone.ID,
			Status:      zoneStatus(zone.Status),
			NameServers: datatypes.JSON(nameServers),
		}
		if err := h.db.Create(&domain).Error; err != nil {
			httpx.FailErr(c, httpx.ErrDatabaseError("", err))
			return
		}
		audit.Log("domain", domain.ID, domain.Name, model.ActivityActionImport,
			fmt.Sprintf("Imported zone %s from account %s", zone.Name, account.Name))
		resp.Imported++
	}

	httpx.OK(c, resp)
}

func zoneStatus(status string) model.DomainStatus {
	switch status {
	case "active":
		return model.DomainStatusActive
	case "pending", "initializing":
		return model.DomainStatusPending
	default:
		return model.DomainStatusInactive
	}
}
