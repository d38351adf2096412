package presets

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dns_manager/internal/activity"
	"dns_manager/internal/httpx"
	"dns_manager/internal/model"
)

// RecordRequest represents one template record in a preset request
type RecordRequest struct {
	Type     model.DNSRecordType `json:"type" binding:"required"`
	Name     string              `json:"name"`
	Content  string              `json:"content" binding:"required"`
	TTL      int                 `json:"ttl"`
	Priority *int                `json:"priority"`
	Proxied  bool                `json:"proxied"`
}

// CreateRequest represents create preset request
type CreateRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Records     []RecordRequest `json:"records"`
}

// UpdateRequest represents update preset request. Records, when present,
// replace the preset's template set wholesale.
type UpdateRequest struct {
	ID          int              `json:"id" binding:"required"`
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Records     *[]RecordRequest `json:"records"`
}

// DeleteRequest represents delete preset request
type DeleteRequest struct {
	ID int `json:"id" binding:"required"`
}

// PresetDetail represents a preset with its template records
type PresetDetail struct {
	model.Preset
	Records []model.PresetRecord `json:"records"`
}

// Handler handles presets API
type Handler struct {
	db    *gorm.DB
	audit *activity.DBLogger
}

// NewHandler creates a new presets handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db, audit: activity.NewDBLogger(db)}
}

// List handles GET /api/v1/presets
func (h *Handler) List(c *gin.Context) {
	var presets []model.Preset
	if err := h.db.Order("name ASC").Find(&presets).Error; err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("", err))
		return
	}
	httpx.OK(c, gin.H{"items": presets, "total": len(presets)})
}

// Get handles GET /api/v1/presets/:id
func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid preset id"))
		return
	}

	detail, appErr := h.loadDetail(id)
	if appErr != nil {
		httpx.FailErr(c, appErr)
		return
	}
	httpx.OK(c, detail)
}

// Create handles POST /api/v1/presets/create
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}

	preset := model.Preset{Name: req.Name, Description: req.Description}
	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&preset).Error; err != nil {
			return err
		}
		return createRecords(tx, preset.ID, req.Records)
	})
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("", err))
		return
	}

	h.audit.ForUser(c.GetInt("uid")).
		Log("preset", preset.ID, preset.Name, model.ActivityActionCreate,
			fmt.Sprintf("Created preset with %d records", len(req.Records)))

	detail, appErr := h.loadDetail(preset.ID)
	if appErr != nil {
		httpx.FailErr(c, appErr)
		return
	}
	httpx.OK(c, detail)
}

// Update handles POST /api/v1/presets/update.
// Editing a preset never touches domains it was already applied to; they
// keep their materialized records until the preset is re-applied.
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}

	var preset model.Preset
	if err := h.db.First(&preset, req.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.FailErr(c, httpx.ErrNotFound("preset not found"))
			return
		}
		httpx.FailErr(c, httpx.ErrDatabaseError("", err))
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{}
		if req.Name != nil {
			updates["name"] = *req.Name
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if len(updates) > 0 {
			if err := tx.Model(&preset).Updates(updates).Error; err != nil {
				return err
			}
		}
		if req.Records != nil {
			if err := tx.Where("preset_id = ?", preset.ID).Delete(&model.PresetRecord{}).Error; err != nil {
				return err
			}
			return createRecords(tx, preset.ID, *req.Records)
		}
		return nil
	})
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("", err))
		return
	}

	h.audit.ForUser(c.GetInt("uid")).
		Log("preset", preset.ID, preset.Name, model.ActivityActionUpdate, "Updated preset")

	detail, appErr := h.loadDetail(preset.ID)
	if appErr != nil {
		httpx.FailErr(c, appErr)
		return
	}
	httpx.OK(c, detail)
}

// Delete handles POST /api/v1/presets/delete
func (h *Handler) Delete(c *gin.Context) {
	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid(err.Error()))
		return
	}

	var preset model.Preset
	if err := h.db.First(&preset, req.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.FailErr(c, httpx.ErrNotFound("preset not found"))
			return
		}
		httpx.FailErr(c, httpx.ErrDatabaseError("", err))
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		// Domains keep their records; only the preset link is cleared.
		if err := tx.Model(&model.Domain{}).
			Where("preset_id = ?", preset.ID).
			Update("preset_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("preset_id = ?", preset.ID).Delete(&model.PresetRecord{}).Error; err != nil {
			return err
		}
		return tx.Delete(&preset).Error
	})
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("", err))
		return
	}

	h.audit.ForUser(c.GetInt("uid")).
		Log("preset", preset.ID, preset.Name, model.ActivityActionDelete, "Deleted preset")
	httpx.OK(c, nil)
}

func (h *Handler) loadDetail(presetID int) (*PresetDetail, *httpx.AppError) {
	var preset model.Preset
	if err := h.db.First(&preset, presetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httpx.ErrNotFound("preset not found")
		}
		return nil, httpx.ErrDatabaseError("", err)
	}

	var records []model.PresetRecord
	if err := h.db.Where("preset_id = ?", presetID).Order("id ASC").Find(&records).Error; err != nil {
		return nil, httpx.ErrDatabaseError("", err)
	}

	return &PresetDetail{Preset: preset, Records: records}, nil
}

func createRecords(tx *gorm.DB, presetID int, records []RecordRequest) error {
	for _, r := range records {
		ttl := r.TTL
		if ttl == 0 {
			ttl = model.TTLAuto
		}
		rec := model.PresetRecord{
			PresetID: presetID,
			Type:     r.Type,
			Name:     r.Name,
			Content:  r.Content,
			TTL:      ttl,
			Priority: r.Priority,
			Proxied:  r.Proxied,
		}
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
	}
	return nil
}
