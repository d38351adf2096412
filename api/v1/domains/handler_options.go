package domains

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"dns_manager/internal/httpx"
	"dns_manager/internal/model"
)

// OptionsHandler handles domain options requests
type OptionsHandler struct {
	db *gorm.DB
}

// NewOptionsHandler creates a new options handler
func NewOptionsHandler(db *gorm.DB) *OptionsHandler {
	return &OptionsHandler{db: db}
}

// GetOptions handles GET /api/v1/domains/options
// Returns all managed domains for dropdown selection
func (h *OptionsHandler) GetOptions(c *gin.Context) {
	var domains []model.Domain
	if err := h.db.Order("name ASC").Find(&domains).Error; err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("", err))
		return
	}

	items := make([]OptionDTO, 0, len(domains))
	for _, d := range domains {
		var pulled *string
		if d.PulledAt != nil {
			s := d.PulledAt.Format(time.RFC3339)
			pulled = &s
		}
		items = append(items, OptionDTO{
			ID:        d.ID,
			Name:      d.Name,
			Status:    string(d.Status),
			PulledAt:  pulled,
			CreatedAt: d.CreatedAt,
		})
	}

	httpx.OK(c, gin.H{"items": items})
}
