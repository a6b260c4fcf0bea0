package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Shreehari27/Asset-Management/internal/model"
	"github.com/Shreehari27/Asset-Management/pkg/apperror"
	"github.com/Shreehari27/Asset-Management/pkg/logger"
)

const (
	EmployeeActive   = "active"
	EmployeeInactive = "inactive"
)

// EmployeeService is the employee directory
type EmployeeService struct {
	db *gorm.DB
}

func NewEmployeeService(db *gorm.DB) *EmployeeService {
	return &EmployeeService{db: db}
}

// EmployeeInput creates an employee
type EmployeeInput struct {
	EmpCode string `json:"emp_code" validate:"required"`
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
	IsIT    bool   `json:"isIT"`
	Status  string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// EmployeeUpdate edits an employee. Nil means unchanged.
type EmployeeUpdate struct {
	Name   *string `json:"name"`
	Email  *string `json:"email" validate:"omitempty,email"`
	IsIT   *bool   `json:"isIT"`
	Status *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (s *EmployeeService) List(ctx context.Context) ([]model.Employee, error) {
	var rows []model.Employee
	if err := s.db.WithContext(ctx).Order("emp_code").Find(&rows).Error; err != nil {
		return nil, apperror.Store(err, "Failed to retrieve employees")
	}
	return rows, nil
}

// ListIT returns the active IT staff, who may receive returned assets
func (s *EmployeeService) ListIT(ctx context.Context) ([]model.Employee, error) {
	var rows []model.Employee
	err := s.db.WithContext(ctx).
		Where("is_it = ? AND status = ?", true, EmployeeActive).
		Order("emp_code").
		Find(&rows).Error
	if err != nil {
		return nil, apperror.Store(err, "Failed to retrieve IT staff")
	}
	return rows, nil
}

func (s *EmployeeService) Get(ctx context.Context, empCode string) (*model.Employee, error) {
	var emp model.Employee
	err := s.db.WithContext(ctx).Where("emp_code = ?", empCode).First(&emp).Error
	if isNotFound(err) {
		return nil, apperror.NotFound("Employee %s not found", empCode)
	}
	if err != nil {
		return nil, apperror.Store(err, "Failed to retrieve employee")
	}
	return &emp, nil
}

func (s *EmployeeService) Create(ctx context.Context, in EmployeeInput) (*model.Employee, error) {
	log := logger.FromContext(ctx)

	emp := model.Employee{
		EmpCode: strings.TrimSpace(in.EmpCode),
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.ToLower(strings.TrimSpace(in.Email)),
		IsIT:    in.IsIT,
		Status:  strings.TrimSpace(in.Status),
	}
	if emp.EmpCode == "" || emp.Name == "" {
		return nil, apperror.Validation("emp_code and name are required")
	}
	if emp.Status == "" {
		emp.Status = EmployeeActive
	}

	db := s.db.WithContext(ctx)
	var n int64
	if err := db.Model(&model.Employee{}).Where("emp_code = ?", emp.EmpCode).Count(&n).Error; err != nil {
		return nil, apperror.Store(err, "Failed to check employee")
	}
	if n > 0 {
		return nil, apperror.Conflict("Employee %s already exists", emp.EmpCode)
	}

	if err := db.Create(&emp).Error; err != nil {
		if isDuplicate(err) {
			return nil, apperror.Conflict("Employee %s already exists", emp.EmpCode)
		}
		return nil, apperror.Store(err, "Failed to create employee")
	}

	log.Info("Employee created", zap.String("emp_code", emp.EmpCode), zap.Bool("is_it", emp.IsIT))
	return &emp, nil
}

func (s *EmployeeService) Update(ctx context.Context, empCode string, in EmployeeUpdate) (*model.Employee, error) {
	updates := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperror.Validation("name cannot be empty")
		}
		updates["name"] = name
	}
	if in.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.IsIT != nil {
		updates["is_it"] = *in.IsIT
	}
	if in.Status != nil {
		switch st := strings.TrimSpace(*in.Status); st {
		case EmployeeActive, EmployeeInactive:
			updates["status"] = st
		default:
			return nil, apperror.Validation("Invalid status %q", *in.Status)
		}
	}
	if len(updates) == 0 {
		return nil, apperror.Validation("No fields to update")
	}

	db := s.db.WithContext(ctx)
	res := db.Model(&model.Employee{}).Where("emp_code = ?", empCode).Updates(updates)
	if res.Error != nil {
		return nil, apperror.Store(res.Error, "Failed to update employee")
	}
	if res.RowsAffected == 0 {
		return nil, apperror.NotFound("Employee %s not found", empCode)
	}

	logger.FromContext(ctx).Info("Employee updated", zap.String("emp_code", empCode))
	return s.Get(ctx, empCode)
}
