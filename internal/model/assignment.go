package model

import "time"

// AssignmentActive is one currently open custody relation between an asset
// and an employee. The unique index on asset_code keeps at most one open
// row per asset.
type AssignmentActive struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	PsdID        string    `json:"psd_id" gorm:"type:varchar(64);not null"`
	AssetCode    string    `json:"asset_code" gorm:"type:varchar(64);uniqueIndex;not null"`
	EmpCode      string    `json:"emp_code" gorm:"type:varchar(32);index;not null"`
	AssignedBy   string    `json:"assigned_by" gorm:"type:varchar(32);not null"`
	AssignDate   Date      `json:"assign_date" gorm:"not null"`
	AssignRemark string    `json:"assign_remark" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`
}

func (AssignmentActive) TableName() string { return "assignment_active" }

// AssignmentHistory is the append-only custody record. A row with a nil
// ReturnDate mirrors a still open AssignmentActive row.
type AssignmentHistory struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	PsdID        string    `json:"psd_id" gorm:"type:varchar(64);not null"`
	AssetCode    string    `json:"asset_code" gorm:"type:varchar(64);index;not null"`
	EmpCode      string    `json:"emp_code" gorm:"type:varchar(32);index;not null"`
	AssignedBy   string    `json:"assigned_by" gorm:"type:varchar(32);not null"`
	AssignDate   Date      `json:"assign_date" gorm:"not null"`
	AssignRemark string    `json:"assign_remark" gorm:"type:text"`
	ReturnDate   *Date     `json:"return_date" gorm:"index"`
	ReturnedTo   *string   `json:"returned_to" gorm:"type:varchar(32)"`
	ReturnRemark *string   `json:"return_remark" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (AssignmentHistory) TableName() string { return "assignment_history" }

// IsOpen reports whether the history row still mirrors an active assignment
func (h *AssignmentHistory) IsOpen() bool {
	return h.ReturnDate == nil
}
