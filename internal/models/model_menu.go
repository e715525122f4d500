package models

import "time"

type Tenant struct {
	ID       string `gorm:"column:id;primary_key;type:uuid" json:"id"`
	Code     string `gorm:"column:code;type:varchar(64);not null;uniqueIndex:unique_tenant_code" json:"code"`
	Name     string `gorm:"column:name;type:varchar(128);not null" json:"name"`
	IsActive bool   `gorm:"column:is_active;not null;default:true" json:"is_active"`
}

func (Tenant) TableName() string { return "tenant" }

type Permission struct {
	ID       string `gorm:"column:id;primary_key;type:uuid" json:"id"`
	Codename string `gorm:"column:codename;type:varchar(128);not null;uniqueIndex:unique_permission_codename" json:"codename"`
	Name     string `gorm:"column:name;type:varchar(128)" json:"name"`
}

func (Permission) TableName() string { return "permission" }

type Role struct {
	ID          string        `gorm:"column:id;primary_key;type:uuid" json:"id"`
	Code        string        `gorm:"column:code;type:varchar(64);not null;uniqueIndex:unique_role_code_tenant,priority:1" json:"code"`
	Name        string        `gorm:"column:name;type:varchar(128)" json:"name"`
	TenantID    *string       `gorm:"column:tenant_id;type:uuid;uniqueIndex:unique_role_code_tenant,priority:2" json:"tenant_id"`
	Permissions []*Permission `gorm:"many2many:role_permission;" json:"permissions,omitempty"`
}

func (Role) TableName() string { return "role" }

// UserRole and UserPermission are the principal's grants. Permissions may
// be granted directly or inherited through roles.
type UserRole struct {
	UserID string `gorm:"column:user_id;type:varchar(64);primary_key" json:"user_id"`
	RoleID string `gorm:"column:role_id;type:uuid;primary_key" json:"role_id"`
}

func (UserRole) TableName() string { return "user_role" }

type UserPermission struct {
	UserID       string `gorm:"column:user_id;type:varchar(64);primary_key" json:"user_id"`
	PermissionID string `gorm:"column:permission_id;type:uuid;primary_key" json:"permission_id"`
}

func (UserPermission) TableName() string { return "user_permission" }

// MenuItem is one node of the navigation tree. Parent and child always
// share tenant scope; code is unique within a tenant.
type MenuItem struct {
	ID           string  `gorm:"column:id;primary_key;type:uuid" json:"id"`
	Code         string  `gorm:"column:code;type:varchar(64);not null;uniqueIndex:unique_menu_code_tenant,priority:1" json:"code"`
	Label        string  `gorm:"column:label;type:varchar(128);not null" json:"label"`
	Icon         string  `gorm:"column:icon;type:varchar(64)" json:"icon"`
	Path         string  `gorm:"column:path;type:varchar(255)" json:"path"`
	IsExternal   bool    `gorm:"column:is_external;not null;default:false" json:"is_external"`
	OpenInNewTab bool    `gorm:"column:open_in_new_tab;not null;default:false" json:"open_in_new_tab"`
	ParentID     *string `gorm:"column:parent_id;type:uuid;index:idx_menu_parent" json:"parent_id"`
	Order        int     `gorm:"column:menu_order;not null;default:0" json:"order"`
	CSSClass     string  `gorm:"column:css_class;type:varchar(64)" json:"css_class"`
	FeatureFlag  *string `gorm:"column:feature_flag;type:varchar(64)" json:"feature_flag"`
	TenantID     *string `gorm:"column:tenant_id;type:uuid;uniqueIndex:unique_menu_code_tenant,priority:2" json:"tenant_id"`
	BadgeKey     *string `gorm:"column:badge_key;type:varchar(64)" json:"badge_key"`
	BadgeColor   *string `gorm:"column:badge_color;type:varchar(16)" json:"badge_color"`
	IsActive     bool    `gorm:"column:is_active;not null;default:true" json:"is_active"`
	IsVisible    bool    `gorm:"column:is_visible;not null;default:true" json:"is_visible"`

	Roles       []*Role       `gorm:"many2many:menu_item_role;" json:"roles,omitempty"`
	Permissions []*Permission `gorm:"many2many:menu_item_permission;" json:"permissions,omitempty"`
}

func (MenuItem) TableName() string { return "menu_item" }

// UserMenuPreference is the per-user overlay on one menu item.
type UserMenuPreference struct {
	ID          string    `gorm:"column:id;primary_key;type:uuid" json:"id"`
	UserID      string    `gorm:"column:user_id;type:varchar(64);not null;uniqueIndex:unique_user_menu_item,priority:1" json:"user_id"`
	MenuItemID  string    `gorm:"column:menu_item_id;type:uuid;not null;uniqueIndex:unique_user_menu_item,priority:2" json:"menu_item_id"`
	IsPinned    bool      `gorm:"column:is_pinned;not null;default:false" json:"is_pinned"`
	IsCollapsed bool      `gorm:"column:is_collapsed;not null;default:false" json:"is_collapsed"`
	IsHidden    bool      `gorm:"column:is_hidden;not null;default:false" json:"is_hidden"`
	CustomOrder *int      `gorm:"column:custom_order" json:"custom_order"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`

	MenuItem *MenuItem `gorm:"foreignKey:MenuItemID" json:"menu_item,omitempty"`
}

func (UserMenuPreference) TableName() string { return "user_menu_preference" }
