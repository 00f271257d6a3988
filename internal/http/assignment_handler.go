package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/schooltransit/dispatch/internal/application"
)

type assignmentService interface {
	AssignStudent(ctx context.Context, params application.AssignStudentParams) (application.Assignment, error)
	UpdateAssignment(ctx context.Context, studentID, eventID string, input application.AssignmentInput) (application.Assignment, error)
	UnassignStudent(ctx context.Context, studentID, eventID string) error
	ConfirmAttendance(ctx context.Context, assignmentID string, attended bool) (application.Assignment, error)
	ListByEvent(eventID string) []application.Assignment
	ListByStudent(studentID string) []application.Assignment
}

// AssignmentHandler serves the student-to-event assignment routes.
type AssignmentHandler struct {
	service assignmentService
	respond responder
}

func NewAssignmentHandler(service assignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: service}
}

func (h *AssignmentHandler) Assign(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req assignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	assignment, err := h.service.AssignStudent(r.Context(), application.AssignStudentParams{
		Principal: principal,
		EventID:   chi.URLParam(r, "id"),
		StudentID: req.StudentID,
		Input: application.AssignmentInput{
			PickupLocation:  req.PickupLocation,
			DropoffLocation: req.DropoffLocation,
			Notes:           req.Notes,
		},
	})
	if err != nil {
		h.respond.handleServiceError(r.Context(), w, err)
		return
	}
	h.respond.writeJSON(r.Context(), w, http.StatusCreated, toAssignmentDTO(assignment))
}

func (h *AssignmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req assignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	assignment, err := h.service.UpdateAssignment(r.Context(), chi.URLParam(r, "studentID"), chi.URLParam(r, "id"), application.AssignmentInput{
		PickupLocation:  req.PickupLocation,
		DropoffLocation: req.DropoffLocation,
		Notes:           req.Notes,
	})
	if err != nil {
		h.respond.handleServiceError(r.Context(), w, err)
		return
	}
	h.respond.writeJSON(r.Context(), w, http.StatusOK, toAssignmentDTO(assignment))
}

func (h *AssignmentHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	if err := h.service.UnassignStudent(r.Context(), chi.URLParam(r, "studentID"), chi.URLParam(r, "id")); err != nil {
		h.respond.handleServiceError(r.Context(), w, err)
		return
	}
	h.respond.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *AssignmentHandler) ConfirmAttendance(w http.ResponseWriter, r *http.Request) {
	var req attendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	assignment, err := h.service.ConfirmAttendance(r.Context(), chi.URLParam(r, "id"), req.Attended)
	if err != nil {
		h.respond.handleServiceError(r.Context(), w, err)
		return
	}
	h.respond.writeJSON(r.Context(), w, http.StatusOK, toAssignmentDTO(assignment))
}

func (h *AssignmentHandler) ListByEvent(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, h.service.ListByEvent(chi.URLParam(r, "id")))
}

func (h *AssignmentHandler) ListByStudent(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, r, h.service.ListByStudent(chi.URLParam(r, "id")))
}

func (h *AssignmentHandler) writeList(w http.ResponseWriter, r *http.Request, assignments []application.Assignment) {
	out := make([]assignmentDTO, 0, len(assignments))
	for _, assignment := range assignments {
		out = append(out, toAssignmentDTO(assignment))
	}
	h.respond.writeJSON(r.Context(), w, http.StatusOK, assignmentListResponse{Assignments: out})
}

type assignmentRequest struct {
	StudentID       string `json:"student_id"`
	PickupLocation  string `json:"pickup_location"`
	DropoffLocation string `json:"dropoff_location"`
	Notes           string `json:"notes"`
}

type attendanceRequest struct {
	Attended bool `json:"attended"`
}

type assignmentDTO struct {
	ID              string `json:"id"`
	StudentID       string `json:"student_id"`
	EventID         string `json:"event_id"`
	PickupLocation  string `json:"pickup_location,omitempty"`
	DropoffLocation string `json:"dropoff_location,omitempty"`
	Notes           string `json:"notes,omitempty"`
	Attended        *bool  `json:"attended,omitempty"`
}

type assignmentListResponse struct {
	Assignments []assignmentDTO `json:"assignments"`
}

func toAssignmentDTO(assignment application.Assignment) assignmentDTO {
	return assignmentDTO{
		ID:              assignment.ID,
		StudentID:       assignment.StudentID,
		EventID:         assignment.EventID,
		PickupLocation:  assignment.PickupLocation,
		DropoffLocation: assignment.DropoffLocation,
		Notes:           assignment.Notes,
		Attended:        assignment.Attended,
	}
}
