package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/shopsense/server/handoff"
	apierrors "github.com/hrygo/shopsense/server/internal/errors"
)

// StaffLoginRequest registers a staff member as available.
type StaffLoginRequest struct {
	StaffID     string `json:"staff_id"`
	MaxWorkload int    `json:"max_workload"`
}

// StaffLogin marks the staff member ONLINE(AVAILABLE) and drains the queue.
// POST /api/v1/staff/login
func (s *APIV1Service) StaffLogin(c echo.Context) error {
	request := &StaffLoginRequest{}
	if err := c.Bind(request); err != nil {
		return s.errorJSON(c, apierrors.InvalidArgument("malformed request body"))
	}
	if request.StaffID == "" {
		return s.errorJSON(c, apierrors.InvalidArgument("staff_id is required"))
	}
	if request.MaxWorkload <= 0 {
		request.MaxWorkload = 1
	}

	if err := s.ChatService.StaffLogin(c.Request().Context(), request.StaffID, request.MaxWorkload); err != nil {
		return s.errorJSON(c, apierrors.StorageUnavailable("staff login failed", err),
			"staff_id", request.StaffID)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// StaffLogoutRequest marks a staff member offline.
type StaffLogoutRequest struct {
	StaffID string `json:"staff_id"`
}

// StaffLogout marks the staff member OFFLINE. Assigned conversations stay
// assigned until resolved.
// POST /api/v1/staff/logout
func (s *APIV1Service) StaffLogout(c echo.Context) error {
	request := &StaffLogoutRequest{}
	if err := c.Bind(request); err != nil {
		return s.errorJSON(c, apierrors.InvalidArgument("malformed request body"))
	}
	if request.StaffID == "" {
		return s.errorJSON(c, apierrors.InvalidArgument("staff_id is required"))
	}

	err := s.ChatService.StaffLogout(c.Request().Context(), request.StaffID)
	if err == handoff.ErrUnknownStaff {
		return s.errorJSON(c, apierrors.UnknownStaff(request.StaffID))
	}
	if err != nil {
		return s.errorJSON(c, apierrors.StorageUnavailable("staff logout failed", err),
			"staff_id", request.StaffID)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// StaffSetStatusRequest toggles an online staff member between statuses.
type StaffSetStatusRequest struct {
	StaffID string `json:"staff_id"`
	Status  string `json:"status"` // AVAILABLE | BUSY
}

// StaffSetStatus toggles an online staff member between AVAILABLE and BUSY.
// POST /api/v1/staff/status
func (s *APIV1Service) StaffSetStatus(c echo.Context) error {
	request := &StaffSetStatusRequest{}
	if err := c.Bind(request); err != nil {
		return s.errorJSON(c, apierrors.InvalidArgument("malformed request body"))
	}
	if request.StaffID == "" {
		return s.errorJSON(c, apierrors.InvalidArgument("staff_id is required"))
	}

	status := handoff.StaffStatus(request.Status)
	if status != handoff.StaffAvailable && status != handoff.StaffBusy {
		return s.errorJSON(c, apierrors.InvalidArgument("status must be AVAILABLE or BUSY"))
	}

	err := s.ChatService.StaffSetStatus(c.Request().Context(), request.StaffID, status)
	if err == handoff.ErrUnknownStaff {
		return s.errorJSON(c, apierrors.UnknownStaff(request.StaffID))
	}
	if err == handoff.ErrInvalidTransition {
		return s.errorJSON(c, apierrors.InvalidTransition("staff member is offline"))
	}
	if err != nil {
		return s.errorJSON(c, apierrors.StorageUnavailable("staff status change failed", err),
			"staff_id", request.StaffID)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
