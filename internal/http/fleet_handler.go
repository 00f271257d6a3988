package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/schooltransit/dispatch/internal/application"
)

type fleetService interface {
	CreateVehicle(ctx context.Context, principal application.Principal, input application.VehicleInput) (application.Vehicle, error)
	UpdateVehicle(ctx context.Context, principal application.Principal, vehicleID string, input application.VehicleInput) (application.Vehicle, error)
	GetVehicle(ctx context.Context, vehicleID string) (application.Vehicle, error)
	ListVehicles(ctx context.Context) ([]application.Vehicle, error)
	DeleteVehicle(ctx context.Context, principal application.Principal, vehicleID string) error

	CreateDriver(ctx context.Context, principal application.Principal, input application.DriverInput) (application.Driver, error)
	UpdateDriver(ctx context.Context, principal application.Principal, driverID string, input application.DriverInput) (application.Driver, error)
	GetDriver(ctx context.Context, driverID string) (application.Driver, error)
	ListDrivers(ctx context.Context) ([]application.Driver, error)
	DeleteDriver(ctx context.Context, principal application.Principal, driverID string) error

	CreateStudent(ctx context.Context, principal application.Principal, input application.StudentInput) (application.Student, error)
	UpdateStudent(ctx context.Context, principal application.Principal, studentID string, input application.StudentInput) (application.Student, error)
	GetStudent(ctx context.Context, studentID string) (application.Student, error)
	ListStudents(ctx context.Context) ([]application.Student, error)
	DeleteStudent(ctx context.Context, principal application.Principal, studentID string) error
}

// FleetHandler serves the vehicle, driver, and student catalog routes.
type FleetHandler struct {
	service fleetService
	respond responder
}

func NewFleetHandler(service fleetService) *FleetHandler {
	return &FleetHandler{service: service}
}

func (h *FleetHandler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req vehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	vehicle, err := h.service.CreateVehicle(r.Context(), principal, req.toInput())
	if err != nil {
		h.respond.handleServiceError(r.Context(), w, err)
		return
	}
	h.respond.writeJSON(r.Context(), w, http.StatusCreated, toVehicleDTO(vehicle))
}

func (h *FleetHandler) UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req vehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	vehicle, err := h.service.UpdateVehicle(r.Context(), principal, chi.URLParam(r, "id"), req.toInput())
	if err != nil {
		h.respond.handleServiceError(r.Context(), w, err)
		return
	}
	h.respond.writeJSON(r.Context(), w, http.StatusOK, toVehicleDTO(vehicle))
}

func (h *FleetHandler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	vehicle, err := h.service.GetVehicle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respond.handleServiceError(r.Context(), w, err)
		return
	}
	h.respond.writeJSON(r.Context(), w, http.StatusOK, toVehicleDTO(vehicle))
}

func (h *FleetHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.service.ListVehicles(r.Context())
	if err != nil {
		h.respond.handleServiceError(r.Context(), w, err)
		return
	}
	out := make([]vehicleDTO, 0, len(vehicles))
	for _, vehicle := range vehicles {
		out = append(out, toVehicleDTO(vehicle))
	}
	h.respond.writeJSON(r.Context(), w, http.StatusOK, vehicleListResponse{Vehicles: out})
}

func (h *FleetHandler) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	if err := h.service.DeleteVehicle(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		h.respond.handleServiceError(r.Context(), w, err)
		return
	}
	h.respond.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *FleetHandler) CreateDriver(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req driverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	driver, err := h.service.CreateDriver(r.Context(), principal, req.toInput())
	if err != nil {
		h.respond.handleServiceError(r.Context(), w, err)
		return
	}
	h.respond.writeJSON(r.Context(), w, http.StatusCreated, toDriverDTO(driver))
}

func (h *FleetHandler) UpdateDriver(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req driverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	driver, err := h.service.UpdateDriver(r.Context(), principal, chi.URLParam(r, "id"), req.toInput())
	if err != nil {
		h.respond.handleServiceError(r.Context(), w, err)
		return
	}
	h.respond.writeJSON(r.Context(), w, http.StatusOK, toDriverDTO(driver))
}

func (h *FleetHandler) GetDriver(w http.ResponseWriter, r *http.Request) {
	driver, err := h.service.GetDriver(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respond.handleServiceError(r.Context(), w, err)
		return
	}
	h.respond.writeJSON(r.Context(), w, http.StatusOK, toDriverDTO(driver))
}

func (h *FleetHandler) ListDrivers(w http.ResponseWriter, r *http.Request) {
	drivers, err := h.service.ListDrivers(r.Context())
	if err != nil {
		h.respond.handleServiceError(r.Context(), w, err)
		return
	}
	out := make([]driverDTO, 0, len(drivers))
	for _, driver := range drivers {
		out = append(out, toDriverDTO(driver))
	}
	h.respond.writeJSON(r.Context(), w, http.StatusOK, driverListResponse{Drivers: out})
}

func (h *FleetHandler) DeleteDriver(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	if err := h.service.DeleteDriver(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		h.respond.handleServiceError(r.Context(), w, err)
		return
	}
	h.respond.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *FleetHandler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req studentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	student, err := h.service.CreateStudent(r.Context(), principal, req.toInput())
	if err != nil {
		h.respond.handleServiceError(r.Context(), w, err)
		return
	}
	h.respond.writeJSON(r.Context(), w, http.StatusCreated, toStudentDTO(student))
}

func (h *FleetHandler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req studentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	student, err := h.service.UpdateStudent(r.Context(), principal, chi.URLParam(r, "id"), req.toInput())
	if err != nil {
		h.respond.handleServiceError(r.Context(), w, err)
		return
	}
	h.respond.writeJSON(r.Context(), w, http.StatusOK, toStudentDTO(student))
}

func (h *FleetHandler) GetStudent(w http.ResponseWriter, r *http.Request) {
	student, err := h.service.GetStudent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respond.handleServiceError(r.Context(), w, err)
		return
	}
	h.respond.writeJSON(r.Context(), w, http.StatusOK, toStudentDTO(student))
}

func (h *FleetHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.service.ListStudents(r.Context())
	if err != nil {
		h.respond.handleServiceError(r.Context(), w, err)
		return
	}
	out := make([]studentDTO, 0, len(students))
	for _, student := range students {
		out = append(out, toStudentDTO(student))
	}
	h.respond.writeJSON(r.Context(), w, http.StatusOK, studentListResponse{Students: out})
}

func (h *FleetHandler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	if err := h.service.DeleteStudent(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		h.respond.handleServiceError(r.Context(), w, err)
		return
	}
	h.respond.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type vehicleRequest struct {
	FleetNumber  string `json:"fleet_number"`
	LicensePlate string `json:"license_plate"`
	Capacity     int    `json:"capacity"`
	Active       bool   `json:"active"`
}

func (req vehicleRequest) toInput() application.VehicleInput {
	return application.VehicleInput{
		FleetNumber:  req.FleetNumber,
		LicensePlate: req.LicensePlate,
		Capacity:     req.Capacity,
		Active:       req.Active,
	}
}

type vehicleDTO struct {
	ID           string `json:"id"`
	FleetNumber  string `json:"fleet_number"`
	LicensePlate string `json:"license_plate,omitempty"`
	Capacity     int    `json:"capacity"`
	Active       bool   `json:"active"`
}

type vehicleListResponse struct {
	Vehicles []vehicleDTO `json:"vehicles"`
}

func toVehicleDTO(vehicle application.Vehicle) vehicleDTO {
	return vehicleDTO{
		ID:           vehicle.ID,
		FleetNumber:  vehicle.FleetNumber,
		LicensePlate: vehicle.LicensePlate,
		Capacity:     vehicle.Capacity,
		Active:       vehicle.Active,
	}
}

type driverRequest struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	LicenseClass string `json:"license_class"`
	Active       bool   `json:"active"`
}

func (req driverRequest) toInput() application.DriverInput {
	return application.DriverInput{
		Name:         req.Name,
		Phone:        req.Phone,
		LicenseClass: req.LicenseClass,
		Active:       req.Active,
	}
}

type driverDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Phone        string `json:"phone,omitempty"`
	LicenseClass string `json:"license_class,omitempty"`
	Active       bool   `json:"active"`
}

type driverListResponse struct {
	Drivers []driverDTO `json:"drivers"`
}

func toDriverDTO(driver application.Driver) driverDTO {
	return driverDTO{
		ID:           driver.ID,
		Name:         driver.Name,
		Phone:        driver.Phone,
		LicenseClass: driver.LicenseClass,
		Active:       driver.Active,
	}
}

type studentRequest struct {
	Name          string `json:"name"`
	Grade         string `json:"grade"`
	GuardianPhone string `json:"guardian_phone"`
	Active        bool   `json:"active"`
}

func (req studentRequest) toInput() application.StudentInput {
	return application.StudentInput{
		Name:          req.Name,
		Grade:         req.Grade,
		GuardianPhone: req.GuardianPhone,
		Active:        req.Active,
	}
}

type studentDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Grade         string `json:"grade,omitempty"`
	GuardianPhone string `json:"guardian_phone,omitempty"`
	Active        bool   `json:"active"`
}

type studentListResponse struct {
	Students []studentDTO `json:"students"`
}

func toStudentDTO(student application.Student) studentDTO {
	return studentDTO{
		ID:            student.ID,
		Name:          student.Name,
		Grade:         student.Grade,
		GuardianPhone: student.GuardianPhone,
		Active:        student.Active,
	}
}
