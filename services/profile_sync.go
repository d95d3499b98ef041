// services/profile_sync.go
package services

import (
	"encoding/json"
	"strconv"
	"time"

	"lingua/database"
	"lingua/models"
)

// ProfileSync mirrors progression fields into the users table. Each push
// overwrites only the targeted columns; there is no merge logic, matching
// the last-write-wins contract of the remote profile store.
type ProfileSync struct{}

// NewProfileSync returns the gorm-backed RemoteSync implementation.
func NewProfileSync() ProfileSync {
	return ProfileSync{}
}

func (ProfileSync) PushProfile(userID string, fields map[string]any) error {
	id, err := strconv.ParseUint(userID, 10, 64)
	if err != nil {
		return err
	}

	updates := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		if k == "language_progress" {
			// Stored as a JSON text column.
			blob, err := json.Marshal(v)
			if err != nil {
				return err
			}
			updates[k] = string(blob)
			continue
		}
		updates[k] = v
	}
	updates["updated_at"] = time.Now().UTC()

	return database.GetDB().
		Model(&models.User{}).
		Where("id = ?", uint(id)).
		Updates(updates).Error
}
