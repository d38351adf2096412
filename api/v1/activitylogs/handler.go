package activitylogs

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dns_manager/internal/httpx"
	"dns_manager/internal/model"
)

// Handler handles activity log API
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new activity logs handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// List handles GET /api/v1/activity-logs
func (h *Handler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "50"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}

	query := h.db.Model(&model.ActivityLog{})
	if entityType := c.Query("entityType"); entityType != "" {
		query = query.Where("entity_type = ?", entityType)
	}
	if entityID := c.Query("entityId"); entityID != "" {
		if id, err := strconv.Atoi(entityID); err == nil {
			query = query.Where("entity_id = ?", id)
		}
	}
	if action := c.Query("action"); action != "" {
		query = query.Where("action = ?", action)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("", err))
		return
	}

	var items []model.ActivityLog
	if err := query.Order("id DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&items).Error; err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("", err))
		return
	}

	httpx.OKItems(c, items, total, page, pageSize)
}
