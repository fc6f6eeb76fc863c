package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skryldev/employee-payroll/models"
	"github.com/Skryldev/employee-payroll/payroll"
	"github.com/Skryldev/employee-payroll/spreadsheet"
)

// EmployeeService is the part of service.EmployeeService the handlers use.
type EmployeeService interface {
	Create(ctx context.Context, p models.CreateEmployeeParams) (*models.Employee, error)
	Update(ctx context.Context, p models.UpdateEmployeeParams) (*models.Employee, error)
	Delete(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context) ([]*models.Employee, error)
	Get(ctx context.Context, id int64) (*models.Employee, error)
	Import(ctx context.Context, items []models.CreateEmployeeParams) ([]*models.Employee, error)
	Preview(baseSalary, workedHours float64) (payroll.Breakdown, error)
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type EmployeeHandler struct {
	svc EmployeeService
}

func NewEmployeeHandler(svc EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{svc: svc}
}

func (h *EmployeeHandler) CreateHandler(c echo.Context) error {
	var req EmployeeRequest
	if err := c.Bind(&req); err != nil {
		return ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}

	e, err := h.svc.Create(c.Request().Context(), req.createParams())
	if err != nil {
		return respondServiceError(c, "Failed to create employee", err)
	}
	return ResponseSuccess(c, http.StatusCreated, "Employee created successfully", toEmployeeResponse(e))
}

func (h *EmployeeHandler) GetHandler(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return ResponseError(c, http.StatusBadRequest, "Invalid employee ID", err)
	}

	e, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return respondServiceError(c, "Failed to get employee", err)
	}
	return ResponseSuccess(c, http.StatusOK, "Employee retrieved successfully", toEmployeeResponse(e))
}

func (h *EmployeeHandler) UpdateHandler(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return ResponseError(c, http.StatusBadRequest, "Invalid employee ID", err)
	}

	var req EmployeeRequest
	if err := c.Bind(&req); err != nil {
		return ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}

	e, err := h.svc.Update(c.Request().Context(), req.updateParams(id))
	if err != nil {
		return respondServiceError(c, "Failed to update employee", err)
	}
	return ResponseSuccess(c, http.StatusOK, "Employee updated successfully", toEmployeeResponse(e))
}

func (h *EmployeeHandler) DeleteHandler(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return ResponseError(c, http.StatusBadRequest, "Invalid employee ID", err)
	}

	deleted, err := h.svc.Delete(c.Request().Context(), id)
	if err != nil {
		return respondServiceError(c, "Failed to delete employee", err)
	}
	if !deleted {
		return ResponseError(c, http.StatusNotFound, "Employee not found", nil)
	}
	return ResponseSuccess(c, http.StatusOK, "Employee deleted successfully", nil)
}

func (h *EmployeeHandler) ListHandler(c echo.Context) error {
	es, err := h.svc.List(c.Request().Context())
	if err != nil {
		return respondServiceError(c, "Failed to list employees", err)
	}
	return ResponseSuccess(c, http.StatusOK, "Employees listed successfully", toEmployeeResponses(es))
}

func (h *EmployeeHandler) ExportHandler(c echo.Context) error {
	es, err := h.svc.List(c.Request().Context())
	if err != nil {
		return respondServiceError(c, "Failed to export employees", err)
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, xlsxContentType)
	res.Header().Set(echo.HeaderContentDisposition, `attachment; filename="employees.xlsx"`)
	res.WriteHeader(http.StatusOK)
	return spreadsheet.WriteEmployees(res, es)
}

// ImportHandler reads the multipart "file" field as an import workbook.
func (h *EmployeeHandler) ImportHandler(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return ResponseError(c, http.StatusBadRequest, "Missing file field", err)
	}
	src, err := fh.Open()
	if err != nil {
		return ResponseError(c, http.StatusBadRequest, "Unreadable upload", err)
	}
	defer src.Close()

	items, err := spreadsheet.ReadEmployees(src)
	if err != nil {
		return ResponseError(c, http.StatusBadRequest, "Invalid spreadsheet", err)
	}
	es, err := h.svc.Import(c.Request().Context(), items)
	if err != nil {
		return respondServiceError(c, "Failed to import employees", err)
	}
	return ResponseSuccess(c, http.StatusCreated,
		fmt.Sprintf("%d employees imported", len(es)), toEmployeeResponses(es))
}

func (h *EmployeeHandler) PreviewHandler(c echo.Context) error {
	var req PreviewRequest
	if err := c.Bind(&req); err != nil {
		return ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}

	b, err := h.svc.Preview(req.BaseSalary, req.WorkedHours)
	if err != nil {
		return respondServiceError(c, "Failed to compute payslip", err)
	}
	return ResponseSuccess(c, http.StatusOK, "Payslip computed", toBreakdownResponse(b))
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("id must be a positive integer, got %q", c.Param("id"))
	}
	return id, nil
}
