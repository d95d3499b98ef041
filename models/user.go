// models/user.go
package models

import (
	"time"
)

// User is the remote profile row: a row-per-user, eventually consistent
// mirror of progression state. Columns are overwritten by best-effort
// pushes from the progression store; there is no read-modify-write merge.
// During an active session the local store, not this row, is authoritative.
type User struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Username    string  `gorm:"uniqueIndex;not null" json:"username"`
	Email       *string `gorm:"uniqueIndex" json:"email,omitempty"`
	Password    string  `gorm:"not null" json:"-"`
	DisplayName string  `json:"display_name"`
	IsGuest     bool    `gorm:"default:false" json:"is_guest"`
	IsAdmin     bool    `gorm:"default:false" json:"is_admin"`

	// Progression mirror
	XP               int    `gorm:"default:0" json:"xp"`
	Gems             int    `gorm:"default:0" json:"gems"`
	Hearts           int    `gorm:"default:20" json:"hearts"`
	Streak           int    `gorm:"default:0" json:"streak"`
	LeagueID         int    `gorm:"default:1" json:"league_id"`
	LearningLanguage string `gorm:"default:'es';size:10" json:"learning_language"`
	// Per-language completed lesson counts, serialized JSON.
	LanguageProgress string `gorm:"type:text" json:"language_progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	LastLogin time.Time `json:"last_login"`
}

func (User) TableName() string {
	return "users"
}
