package entity

import "time"

// Operator is a back-office operator registry row. The pipeline core only
// ever sees the username; skills and activity are surface concerns.
type Operator struct {
	ID            string    `gorm:"column:id;type:uuid;primaryKey"`
	Username      string    `gorm:"column:username;type:varchar(100);not null;unique"`
	DisplayName   *string   `gorm:"column:display_name;type:varchar(200)"`
	Skills        []string  `gorm:"column:skills;type:jsonb;serializer:json"`
	IsActive      bool      `gorm:"column:is_active;type:boolean;not null;default:true"`
	CurrentTaskID *string   `gorm:"column:current_task_id;type:uuid"`
	CreatedAt     time.Time `gorm:"column:created_at;type:timestamptz;not null;autoCreateTime"`
}

func (Operator) TableName() string {
	return "operators"
}
