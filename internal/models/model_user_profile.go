package models

// UserProfile carries the organizational placement used for
// hierarchy-scoped access checks.
type UserProfile struct {
	ID         string  `gorm:"column:id;primary_key;type:uuid" json:"id"`
	UserID     string  `gorm:"column:user_id;type:varchar(64);not null;uniqueIndex:unique_profile_user" json:"user_id"`
	FullName   string  `gorm:"column:full_name;type:varchar(128)" json:"full_name"`
	ReportsTo  *string `gorm:"column:reports_to;type:varchar(64);index:idx_profile_reports_to" json:"reports_to"`
	Department *string `gorm:"column:department;type:varchar(64);index:idx_profile_department" json:"department"`
	LocationID *string `gorm:"column:location_id;type:uuid" json:"location_id"`
	IsActive   bool    `gorm:"column:is_active;not null;default:true" json:"is_active"`
}

func (UserProfile) TableName() string { return "user_profile" }
