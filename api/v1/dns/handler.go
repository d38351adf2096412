package dns

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dns_manager/internal/activity"
	"dns_manager/internal/httpx"
	"dns_manager/internal/model"
	"dns_manager/internal/reconcile"
	"dns_manager/internal/store"
)

// Handler handles DNS record API requests
type Handler struct {
	store  *store.Store
	engine *reconcile.Engine
	audit  *activity.DBLogger
}

// NewHandler creates a new DNS records handler
func NewHandler(db *gorm.DB, engine *reconcile.Engine) *Handler {
	return &Handler{
		store:  store.New(db),
		engine: engine,
		audit:  activity.NewDBLogger(db),
	}
}

// CreateRecordRequest represents the request body for creating a DNS record
type CreateRecordRequest struct {
	Type     model.DNSRecordType `json:"type" binding:"required"`
	Name     string              `json:"name" binding:"required"`
	Content  string              `json:"content" binding:"required"`
	TTL      int                 `json:"ttl"`
	Priority *int                `json:"priority"`
	Proxied  bool                `json:"proxied"`
}

// UpdateRecordRequest represents the request body for updating a DNS record
type UpdateRecordRequest struct {
	Type     *model.DNSRecordType `json:"type"`
	Name     *string              `json:"name"`
	Content  *string              `json:"content"`
	TTL      *int                 `json:"ttl"`
	Priority *int                 `json:"priority"`
	Proxied  *bool                `json:"proxied"`
}

// List handles GET /api/v1/domains/:id/records
func (h *Handler) List(c *gin.Context) {
	domainID, ok := h.domainID(c)
	if !ok {
		return
	}

	records, err := h.store.ListByDomain(domainID)
	if err != nil {
		httpx.FailWith(c, err)
		return
	}
	httpx.OK(c, gin.H{"items": records, "total": len(records)})
}

// Create handles POST /api/v1/domains/:id/records/create.
// The record is a local draft until the next push.
func (h *Handler) Create(c *gin.Context) {
	domainID, ok := h.domainID(c)
	if !ok {
		return
	}

	var req CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}
	if req.TTL == 0 {
		req.TTL = model.TTLAuto
	}

	record := model.DNSRecord{
		DomainID: domainID,
		Type:     req.Type,
		Name:     req.Name,
		Content:  req.Content,
		TTL:      req.TTL,
		Priority: req.Priority,
		Proxied:  req.Proxied,
	}
	if err := h.store.Upsert(&record); err != nil {
		httpx.FailWith(c, err)
		return
	}

	h.audit.ForUser(c.GetInt("uid")).
		Log("dns_record", record.ID, record.Name, model.ActivityActionCreate,
			fmt.Sprintf("Created %s record %s -> %s", record.Type, record.Name, record.Content))
	httpx.OK(c, record)
}

// Update handles POST /api/v1/domains/:id/records/:recordId/update.
// Changing type, name or content changes the record's identity: the remote
// pointer is dropped so the next push creates the new tuple and prunes the
// old one.
func (h *Handler) Update(c *gin.Context) {
	domainID, ok := h.domainID(c)
	if !ok {
		return
	}
	recordID, err := strconv.Atoi(c.Param("recordId"))
	if err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid record id"))
		return
	}

	var req UpdateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}

	record, err := h.store.GetRecord(domainID, recordID)
	if err != nil {
		httpx.FailWith(c, err)
		return
	}

	identityChanged := false
	if req.Type != nil && *req.Type != record.Type {
		record.Type = *req.Type
		identityChanged = true
	}
	if req.Name != nil && *req.Name != record.Name {
		record.Name = *req.Name
		identityChanged = true
	}
	if req.Content != nil && *req.Content != record.Content {
		record.Content = *req.Content
		identityChanged = true
	}
	if req.TTL != nil {
		record.TTL = *req.TTL
	}
	if req.Priority != nil {
		record.Priority = req.Priority
	}
	if req.Proxied != nil {
		record.Proxied = *req.Proxied
	}
	if identityChanged {
		record.RemoteID = ""
	}

	if err := h.store.Upsert(record); err != nil {
		httpx.FailWith(c, err)
		return
	}

	h.audit.ForUser(c.GetInt("uid")).
		Log("dns_record", record.ID, record.Name, model.ActivityActionUpdate,
			fmt.Sprintf("Updated %s record %s", record.Type, record.Name))
	httpx.OK(c, record)
}

// Delete handles POST /api/v1/domains/:id/records/:recordId/delete.
// Deletion is local; the remote copy goes away on the next push.
func (h *Handler) Delete(c *gin.Context) {
	domainID, ok := h.domainID(c)
	if !ok {
		return
	}
	recordID, err := strconv.Atoi(c.Param("recordId"))
	if err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid record id"))
		return
	}

	record, err := h.store.GetRecord(domainID, recordID)
	if err != nil {
		httpx.FailWith(c, err)
		return
	}
	if err := h.store.Delete(domainID, recordID); err != nil {
		httpx.FailWith(c, err)
		return
	}

	h.audit.ForUser(c.GetInt("uid")).
		Log("dns_record", record.ID, record.Name, model.ActivityActionDelete,
			fmt.Sprintf("Deleted %s record %s", record.Type, record.Name))
	httpx.OK(c, nil)
}

// ToggleProxy handles POST /api/v1/domains/:id/records/:recordId/toggle-proxy
func (h *Handler) ToggleProxy(c *gin.Context) {
	domainID, ok := h.domainID(c)
	if !ok {
		return
	}
	recordID, err := strconv.Atoi(c.Param("recordId"))
	if err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid record id"))
		return
	}

	result, err := h.engine.ToggleProxy(c.Request.Context(), domainID, recordID)
	if err != nil {
		httpx.FailWith(c, err)
		return
	}
	httpx.OK(c, result)
}

func (h *Handler) domainID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid domain id"))
		return 0, false
	}
	return id, true
}
