package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	ChatUserID      int64  `gorm:"uniqueIndex;not null" json:"chat_user_id"`
	Username        string `gorm:"type:varchar(255)" json:"username"`
	Nickname        string `gorm:"type:varchar(100)" json:"nickname"`
	Bio             string `gorm:"type:varchar(500)" json:"bio" validate:"max=500"`
	AvatarFileID    string `gorm:"type:varchar(255)" json:"avatar_file_id"`
	IsProfilePublic bool   `gorm:"default:false" json:"is_profile_public"`
	HideUsername    bool   `gorm:"default:false" json:"hide_username"`
	// relations
	Artworks  []Artwork `gorm:"foreignKey:OwnerID" json:"artworks,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// FindOrCreateUser registers an account on first contact. Existing rows keep
// their profile fields; only the transport username is refreshed.
func FindOrCreateUser(db *gorm.DB, chatUserID int64, username string) (*User, error) {
	var user User
	result := db.Where("chat_user_id = ?", chatUserID).First(&user)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			user = User{ChatUserID: chatUserID, Username: username}
			if err := db.Create(&user).Error; err != nil {
				return nil, err
			}
			return &user, nil
		}
		return nil, result.Error
	}

	if username != "" && username != user.Username {
		if err := db.Model(&user).Update("username", username).Error; err != nil {
			return nil, err
		}
	}
	return &user, nil
}

// DisplayName resolves what other members see for this account. Moderators
// always get the real handle.
func (u *User) DisplayName(forModerator bool) string {
	if forModerator {
		if u.Username != "" {
			return "@" + u.Username
		}
		return "User"
	}
	if u.HideUsername {
		return "Anonymous"
	}
	if u.Nickname != "" {
		return u.Nickname
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return "User"
}
