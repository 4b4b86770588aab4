package models

import "time"

// Admin 管理员账号
type Admin struct {
	ID           uint      `gorm:"primarykey" json:"id"`              // 主键
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`                 // bcrypt 哈希
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Admin) TableName() string {
	return "admins"
}
