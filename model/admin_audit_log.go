package model

// AdminAuditLog records one mutating back-office request.
type AdminAuditLog struct {
	Base
	AdminID     string `gorm:"type:varchar(64);not null;index" json:"admin_id"`
	AdminEmail  string `gorm:"type:varchar(255)" json:"admin_email"`
	Action      string `gorm:"type:varchar(10);not null" json:"action"`
	Resource    string `gorm:"type:varchar(100);index" json:"resource"`
	ResourceID  string `gorm:"type:varchar(160)" json:"resource_id"`
	StatusCode  int    `json:"status_code"`
	IPAddress   string `gorm:"type:varchar(45)" json:"ip_address"`
	UserAgent   string `gorm:"type:text" json:"user_agent"`
	Description string `gorm:"type:text" json:"description"`
}

func (AdminAuditLog) TableName() string {
	return "admin_audit_logs"
}
