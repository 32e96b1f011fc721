package dbmysql

import "time"

type SocialAccount struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	TeamID    string    `gorm:"not null;index;size:36" json:"team_id"`
	Platform  string    `gorm:"not null;size:32" json:"platform"` // instagram, facebook, linkedin, x ...
	Name      string    `gorm:"size:255" json:"name"`
	Handle    string    `gorm:"size:255" json:"handle"`
	Active    bool      `gorm:"default:true" json:"active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SocialAccount) TableName() string {
	return "social_accounts"
}
