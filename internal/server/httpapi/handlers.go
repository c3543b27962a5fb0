package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/regisync/regisync/internal/server/errorlog"
	"github.com/regisync/regisync/internal/server/notify"
	"github.com/regisync/regisync/internal/server/participants"
	"github.com/regisync/regisync/internal/shared"
)

type participantResponse struct {
	ID                  string            `json:"id"`
	FullName            string            `json:"full_name"`
	Email               string            `json:"email"`
	Phone               string            `json:"phone,omitempty"`
	RegistrationStatus  string            `json:"registration_status"`
	AttendanceConfirmed bool              `json:"attendance_confirmed"`
	RegisteredAt        time.Time         `json:"registered_at"`
	CheckedInAt         *time.Time        `json:"checked_in_at,omitempty"`
	QRCodeData          string            `json:"qr_code_data,omitempty"`
	RawSourceRow        map[string]string `json:"raw_source_row,omitempty"`
}

func toParticipantResponse(p *participants.Participant, includeRaw bool) participantResponse {
	resp := participantResponse{
		ID:                  p.ID,
		FullName:            p.FullName,
		Email:               p.Email,
		Phone:               p.Phone,
		RegistrationStatus:  string(p.RegistrationStatus),
		AttendanceConfirmed: p.AttendanceConfirmed,
		RegisteredAt:        p.RegisteredAt,
		CheckedInAt:         p.CheckedInAt,
		QRCodeData:          p.IdentifierPayload,
	}
	if includeRaw {
		resp.RawSourceRow = p.RawSourceRow
	}
	return resp
}

// participantError maps domain errors onto HTTP statuses. Anything unmapped
// is a 500 and goes to the error log.
func (s *Server) participantError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "participant not found")
	case errors.Is(err, shared.ErrValidation):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, shared.ErrNotRegistered):
		s.writeError(w, http.StatusForbidden, "participant is not registered")
	case errors.Is(err, shared.ErrAlreadyCheckedIn):
		s.writeError(w, http.StatusConflict, "participant already checked in")
	case errors.Is(err, shared.ErrAlreadyApproved):
		s.writeError(w, http.StatusConflict, "participant is already approved")
	default:
		s.recorder.Record(r.Context(), errorlog.LevelError,
			fmt.Sprintf("%s %s failed: %v", r.Method, r.URL.Path, err), "")
		s.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, admin, err := s.admins.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, shared.ErrUnauthorized) {
			s.recorder.Record(r.Context(), errorlog.LevelWarning,
				fmt.Sprintf("failed login attempt for username %q", req.Username), "")
			s.writeError(w, http.StatusUnauthorized, "invalid username or password")
			return
		}
		s.participantError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"message":      "login successful",
		"username":     admin.Username,
		"role":         admin.Role,
		"access_token": token,
	})
}

func (s *Server) handleAdminRegister(w http.ResponseWriter, r *http.Request) {

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	admin, err := s.admins.Create(r.Context(), req.Username, req.Password, req.Role)
	if err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			s.writeError(w, http.StatusConflict, "username already taken")
			return
		}
		s.participantError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]any{
		"message":  "admin created",
		"username": admin.Username,
		"role":     admin.Role,
	})
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {

	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	summary, err := s.engine.Run(r.Context())
	if err != nil {
		if errors.Is(err, shared.ErrSourceUnavailable) {
			s.recorder.Record(r.Context(), errorlog.LevelError,
				fmt.Sprintf("sync aborted: %v", err), "")
			s.writeError(w, http.StatusBadGateway, "registration feed is unavailable")
			return
		}
		s.participantError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"message": "sync completed",
		"summary": summary,
	})
}

func parseListQuery(r *http.Request) (participants.ListFilter, int, int) {

	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}

	f := participants.ListFilter{
		Search: q.Get("search"),
		Status: participants.RegistrationStatus(q.Get("status")),
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	}
	if v := q.Get("attendance"); v != "" {
		attended := v == "true" || v == "1"
		f.Attendance = &attended
	}

	return f, page, perPage
}

func (s *Server) handleListParticipants(w http.ResponseWriter, r *http.Request) {

	f, page, perPage := parseListQuery(r)

	list, total, err := s.participants.List(r.Context(), f)
	if err != nil {
		s.participantError(w, r, err)
		return
	}

	data := make([]participantResponse, 0, len(list))
	for _, p := range list {
		data = append(data, toParticipantResponse(p, false))
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"data":     data,
		"total":    total,
		"page":     page,
		"per_page": perPage,
		"pages":    (total + perPage - 1) / perPage,
	})
}

func (s *Server) handleGetParticipant(w http.ResponseWriter, r *http.Request) {

	p, err := s.participants.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.participantError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toParticipantResponse(p, true))
}

func (s *Server) handleEditParticipant(w http.ResponseWriter, r *http.Request) {

	var req struct {
		FullName            *string `json:"full_name"`
		Email               *string `json:"email"`
		Phone               *string `json:"phone"`
		RegistrationStatus  *string `json:"registration_status"`
		AttendanceConfirmed *bool   `json:"attendance_confirmed"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	edit := participants.EditRequest{
		FullName:            req.FullName,
		Email:               req.Email,
		Phone:               req.Phone,
		AttendanceConfirmed: req.AttendanceConfirmed,
	}
	if req.RegistrationStatus != nil {
		status := participants.RegistrationStatus(*req.RegistrationStatus)
		edit.RegistrationStatus = &status
	}

	p, err := s.participants.Edit(r.Context(), r.PathValue("id"), edit)
	if err != nil {
		s.participantError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toParticipantResponse(p, true))
}

func (s *Server) handleDeleteParticipant(w http.ResponseWriter, r *http.Request) {

	if err := s.participants.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.participantError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"message": "participant deleted"})
}

func (s *Server) handleApproveParticipant(w http.ResponseWriter, r *http.Request) {

	p, err := s.participants.Approve(r.Context(), r.PathValue("id"))
	if err != nil {
		s.participantError(w, r, err)
		return
	}

	// Same post-commit side effects as a sync-created registration.
	s.confirmParticipant(r.Context(), p)

	s.writeJSON(w, http.StatusOK, toParticipantResponse(p, false))
}

func (s *Server) handleAuthenticateParticipant(w http.ResponseWriter, r *http.Request) {

	var req struct {
		Email  string `json:"email"`
		QRData string `json:"qr_data"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := s.participants.Authenticate(r.Context(), req.Email, req.QRData)
	if err != nil {
		s.participantError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toParticipantResponse(p, false))
}

func (s *Server) handleCheckIn(w http.ResponseWriter, r *http.Request) {

	var req struct {
		QRData string `json:"qr_data"`
	}
	if err := decodeBody(r, &req); err != nil || req.QRData == "" {
		s.writeError(w, http.StatusBadRequest, "qr_data is required")
		return
	}

	p, err := s.participants.CheckIn(r.Context(), req.QRData)
	if err != nil {
		s.participantError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"message":     "check-in successful",
		"participant": toParticipantResponse(p, false),
	})
}

func (s *Server) handleErrorLogs(w http.ResponseWriter, r *http.Request) {

	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}

	entries, total, err := s.errorLogRepo.List(r.Context(), perPage, (page-1)*perPage)
	if err != nil {
		s.participantError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"data":     entries,
		"total":    total,
		"page":     page,
		"per_page": perPage,
		"pages":    (total + perPage - 1) / perPage,
	})
}

// handleParticipantQR serves the participant's badge image: redirect to the
// object store when it holds a copy, render on demand otherwise.
func (s *Server) handleParticipantQR(w http.ResponseWriter, r *http.Request) {

	p, err := s.participants.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.participantError(w, r, err)
		return
	}

	if p.IdentifierPayload == "" {
		s.writeError(w, http.StatusNotFound, "participant has no QR code yet")
		return
	}

	if s.badges != nil {
		if ok, err := s.badges.Exists(r.Context(), p.ID); err == nil && ok {
			if url, err := s.badges.PresignGet(r.Context(), p.ID); err == nil {
				http.Redirect(w, r, url, http.StatusFound)
				return
			}
		}
	}

	png, err := s.renderer.Render(r.Context(), p.IdentifierPayload)
	if err != nil {
		s.participantError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// confirmParticipant mirrors the engine's post-registration side effects for
// admin approvals. Best-effort: failures are recorded, never returned.
func (s *Server) confirmParticipant(ctx context.Context, p *participants.Participant) {

	qrURL := fmt.Sprintf("%s/api/participants/%s/qr", s.config.PublicBaseURL, p.ID)

	png, err := s.renderer.Render(ctx, p.IdentifierPayload)
	if err != nil {
		s.recorder.Record(ctx, errorlog.LevelError,
			fmt.Sprintf("failed to render badge for participant %s: %v", p.ID, err), "")
	} else if s.badges != nil {
		if err := s.badges.Put(ctx, p.ID, png); err != nil {
			s.recorder.Record(ctx, errorlog.LevelError,
				fmt.Sprintf("failed to store badge for participant %s: %v", p.ID, err), "")
		}
	}

	body := notify.ConfirmationMessage(p, qrURL)
	if err := s.notifier.Send(ctx, p.Email, notify.ConfirmationSubject, body); err != nil {
		s.recorder.Record(ctx, errorlog.LevelWarning,
			fmt.Sprintf("failed to send confirmation to %q: %v", p.Email, err), "")
	}
}
