package models

// Ownership is embedded by every resource that is either platform-owned (system) or
// owned by the user who created it.
type Ownership struct {
	IsSystem  bool    `gorm:"not null;default:false;index" json:"is_system"`
	CreatedBy *string `gorm:"type:char(36);index" json:"created_by,omitempty"`
}

// System implements policy.Owned
func (o Ownership) System() bool {
	return o.IsSystem
}

// Owner implements policy.Owned
func (o Ownership) Owner() string {
	if o.CreatedBy == nil {
		return ""
	}
	return *o.CreatedBy
}
