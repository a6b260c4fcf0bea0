package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Shreehari27/Asset-Management/internal/service"
	"github.com/Shreehari27/Asset-Management/pkg/logger"
)

// ListEmployees handles retrieving the employee directory
func (h *Handler) ListEmployees(c echo.Context) error {
	rows, err := h.employees.List(logger.RequestContext(c))
	if err != nil {
		return respondError(c, err, "Failed to list employees")
	}
	return c.JSON(http.StatusOK, rows)
}

// ListITStaff handles retrieving the active IT staff
func (h *Handler) ListITStaff(c echo.Context) error {
	rows, err := h.employees.ListIT(logger.RequestContext(c))
	if err != nil {
		return respondError(c, err, "Failed to list IT staff")
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *Handler) GetEmployee(c echo.Context) error {
	emp, err := h.employees.Get(logger.RequestContext(c), c.Param("emp_code"))
	if err != nil {
		return respondError(c, err, "Failed to get employee")
	}
	return c.JSON(http.StatusOK, emp)
}

// CreateEmployee handles adding an employee to the directory
func (h *Handler) CreateEmployee(c echo.Context) error {
	log := logger.FromEcho(c)

	var req service.EmployeeInput
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err, "Invalid employee request")
	}

	emp, err := h.employees.Create(logger.RequestContext(c), req)
	if err != nil {
		return respondError(c, err, "Failed to create employee")
	}

	log.Info("Employee created successfully", zap.String("emp_code", emp.EmpCode))
	return c.JSON(http.StatusCreated, emp)
}

// UpdateEmployee handles partial employee updates
func (h *Handler) UpdateEmployee(c echo.Context) error {
	var req service.EmployeeUpdate
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err, "Invalid employee update")
	}

	emp, err := h.employees.Update(logger.RequestContext(c), c.Param("emp_code"), req)
	if err != nil {
		return respondError(c, err, "Failed to update employee")
	}
	return c.JSON(http.StatusOK, emp)
}
