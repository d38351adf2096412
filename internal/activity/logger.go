package activity

import (
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"dns_manager/internal/model"
)

// Logger receives one event per mutating operation. Implementations are
// fire-and-forget: failures to log must never abort the operation they
// describe.
type Logger interface {
	Log(entityType string, entityID int, entityName, action, details string)
}

// DBLogger persists activity entries through gorm
type DBLogger struct {
	db     *gorm.DB
	userID int
}

// NewDBLogger creates a logger writing to the activity_logs table
func NewDBLogger(db *gorm.DB) *DBLogger {
	return &DBLogger{db: db}
}

// ForUser returns a copy of the logger attributing entries to the given user
func (l *DBLogger) ForUser(userID int) *DBLogger {
	return &DBLogger{db: l.db, userID: userID}
}

// Log writes one activity entry. Errors are logged and swallowed.
func (l *DBLogger) Log(entityType string, entityID int, entityName, action, details string) {
	entry := model.ActivityLog{
		EntityType: entityType,
		EntityID:   entityID,
		EntityName: entityName,
		Action:     action,
		Details:    details,
		UserID:     l.userID,
	}
	if err := l.db.Create(&entry).Error; err != nil {
		logrus.WithField("component", "activity").
			Warnf("failed to write log entry (%s %s): %v", action, entityType, err)
	}
}

// Nop is a Logger that discards all entries
type Nop struct{}

// Log implements Logger
func (Nop) Log(string, int, string, string, string) {}
