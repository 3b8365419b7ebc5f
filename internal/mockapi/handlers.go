package mockapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/CjlConsultoria/convivium2/internal/api"
	"github.com/CjlConsultoria/convivium2/internal/audit"
	"github.com/CjlConsultoria/convivium2/internal/auth"
	"github.com/CjlConsultoria/convivium2/internal/gateway"
	"github.com/CjlConsultoria/convivium2/internal/validate"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	s.mu.Lock()
	acct := s.accounts[s.byEmail[email]]
	s.mu.Unlock()
	if acct == nil || verifyPassword(acct.passwordHash, req.Password) != nil {
		_ = audit.LogEvent(r.Context(), "mock.login.rejected", map[string]any{"email": email})
		writeError(w, r, http.StatusUnauthorized, "Email ou senha inválidos", "INVALID_CREDENTIALS")
		return
	}

	s.mu.Lock()
	access, refresh, err := s.issue(acct.info.ID, acct.info.Email)
	info := acct.info.Clone()
	s.mu.Unlock()
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "token generation failed", "INTERNAL")
		return
	}
	_ = audit.LogEvent(auth.ContextWithUser(r.Context(), info), "mock.login", map[string]any{"email": email})
	writeData(w, http.StatusOK, api.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    s.expiresIn(),
		User:         *info,
	})
}

// handleRefresh rotates the refresh token: the presented one is consumed.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.refreshCalls.Add(1)
	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
		return
	}
	if s.refreshDelay > 0 {
		select {
		case <-time.After(s.refreshDelay):
		case <-r.Context().Done():
			return
		}
	}

	s.mu.Lock()
	userID, ok := s.refresh[req.RefreshToken]
	delete(s.refresh, req.RefreshToken)
	acct := s.accounts[userID]
	if !ok || acct == nil {
		s.mu.Unlock()
		writeError(w, r, http.StatusUnauthorized, "Refresh token inválido", "INVALID_REFRESH_TOKEN")
		return
	}
	access, refresh, err := s.issue(userID, acct.info.Email)
	info := acct.info.Clone()
	s.mu.Unlock()
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "token generation failed", "INTERNAL")
		return
	}
	writeData(w, http.StatusOK, gateway.RefreshResult{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    s.expiresIn(),
		User:         info,
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
		return
	}
	if errs := registrationErrors(req); len(errs) > 0 {
		writeFieldErrors(w, r, errs)
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	hash, err := hashPassword(req.Password)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "password hashing failed", "INTERNAL")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[email]; exists {
		writeError(w, r, http.StatusConflict, "Email já cadastrado", "EMAIL_IN_USE")
		return
	}
	condo, ok := s.condos[req.CondominiumID]
	if !ok || condo.Status != api.CondominiumActive {
		writeFieldErrors(w, r, []gateway.FieldError{{Field: "condominiumId", Message: "Condomínio indisponível"}})
		return
	}
	id := s.nextUserID
	s.nextUserID++
	phone := validate.FormatPhone(req.Phone)
	s.accounts[id] = &account{
		passwordHash: hash,
		info: auth.UserInfo{
			ID: id, UUID: uuid.New(), Email: email, Name: strings.TrimSpace(req.Name), Phone: &phone,
			CondominiumRoles: []auth.Membership{{
				CondominiumID: condo.ID, CondominiumName: condo.Name,
				Role: auth.RoleMorador, Status: auth.StatusPending, UnitID: ptr(req.UnitID),
			}},
		},
	}
	s.byEmail[email] = id
	writeData(w, http.StatusCreated, nil)
}

func registrationErrors(req api.RegisterRequest) []gateway.FieldError {
	var errs []gateway.FieldError
	add := func(field, msg string) { errs = append(errs, gateway.FieldError{Field: field, Message: msg}) }
	if !validate.Required(req.Name) {
		add("name", "Nome é obrigatório")
	}
	if !validate.Email(req.Email) {
		add("email", "Email inválido")
	}
	if !validate.MinLength(req.Password, 8) {
		add("password", "A senha deve ter ao menos 8 caracteres")
	}
	if !validate.CPF(req.CPF) {
		add("cpf", "CPF inválido")
	}
	if !validate.Phone(req.Phone) {
		add("phone", "Telefone inválido")
	}
	if req.CondominiumID <= 0 {
		add("condominiumId", "Selecione o condomínio")
	}
	return errs
}

func (s *Server) handleRegistrationCondos(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]api.CondominiumOption, 0, len(s.condoOrder))
	for _, id := range s.condoOrder {
		if c := s.condos[id]; c.Status == api.CondominiumActive {
			out = append(out, api.CondominiumOption{ID: c.ID, Name: c.Name})
		}
	}
	s.mu.Unlock()
	writeData(w, http.StatusOK, out)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, currentUser(r))
}

func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var upd api.ProfileUpdate
	if err := decodeJSON(w, r, &upd); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
		return
	}
	var errs []gateway.FieldError
	if upd.Name != nil && !validate.Required(*upd.Name) {
		errs = append(errs, gateway.FieldError{Field: "name", Message: "Nome é obrigatório"})
	}
	if upd.Phone != nil && !validate.Phone(*upd.Phone) {
		errs = append(errs, gateway.FieldError{Field: "phone", Message: "Telefone inválido"})
	}
	if len(errs) > 0 {
		writeFieldErrors(w, r, errs)
		return
	}

	s.mu.Lock()
	acct := s.accounts[currentUser(r).ID]
	if upd.Name != nil {
		acct.info.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Phone != nil {
		phone := validate.FormatPhone(*upd.Phone)
		acct.info.Phone = &phone
	}
	info := acct.info.Clone()
	s.mu.Unlock()
	writeData(w, http.StatusOK, info)
}

func (s *Server) handleAdminCondos(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	all := make([]api.Condominium, 0, len(s.condoOrder))
	for _, id := range s.condoOrder {
		all = append(all, *s.condos[id])
	}
	s.mu.Unlock()
	writeData(w, http.StatusOK, paginate(r, all))
}

func (s *Server) handleCondoSummary(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	c := *s.condos[condoFrom(r)]
	s.mu.Unlock()
	writeData(w, http.StatusOK, c)
}

func (s *Server) handleComplaints(w http.ResponseWriter, r *http.Request) {
	condoID := condoFrom(r)
	if !auth.NewPrincipal(currentUser(r), condoID).HasPermission(auth.PermComplaintsView) {
		writeError(w, r, http.StatusForbidden, "Acesso negado", "FORBIDDEN")
		return
	}
	status := api.ComplaintStatus(r.URL.Query().Get("status"))
	s.mu.Lock()
	var out []api.Complaint
	for _, c := range s.complaints {
		if c.CondominiumID == condoID && (status == "" || c.Status == status) {
			out = append(out, c)
		}
	}
	s.mu.Unlock()
	writeData(w, http.StatusOK, paginate(r, out))
}

func (s *Server) handleParcels(w http.ResponseWriter, r *http.Request) {
	condoID := condoFrom(r)
	if !auth.NewPrincipal(currentUser(r), condoID).HasPermission(auth.PermParcelsView) {
		writeError(w, r, http.StatusForbidden, "Acesso negado", "FORBIDDEN")
		return
	}
	status := api.ParcelStatus(r.URL.Query().Get("status"))
	s.mu.Lock()
	var out []api.Parcel
	for _, p := range s.parcels {
		if p.CondominiumID == condoID && (status == "" || p.Status == status) {
			out = append(out, p)
		}
	}
	s.mu.Unlock()
	writeData(w, http.StatusOK, paginate(r, out))
}

// handleMyComplaints lists complaints filed under the caller's name.
func (s *Server) handleMyComplaints(w http.ResponseWriter, r *http.Request) {
	condoID, user := condoFrom(r), currentUser(r)
	s.mu.Lock()
	var out []api.Complaint
	for _, c := range s.complaints {
		if c.CondominiumID == condoID && c.ComplainantName != nil && *c.ComplainantName == user.Name {
			out = append(out, c)
		}
	}
	s.mu.Unlock()
	writeData(w, http.StatusOK, paginate(r, out))
}

// handleMyParcels lists parcels addressed to the caller's units.
func (s *Server) handleMyParcels(w http.ResponseWriter, r *http.Request) {
	condoID, user := condoFrom(r), currentUser(r)
	units := map[string]bool{}
	for _, m := range user.CondominiumRoles {
		if m.CondominiumID == condoID && m.UnitIdentifier != nil {
			units[*m.UnitIdentifier] = true
		}
	}
	s.mu.Lock()
	var out []api.Parcel
	for _, p := range s.parcels {
		if p.CondominiumID == condoID && units[p.UnitIdentifier] {
			out = append(out, p)
		}
	}
	s.mu.Unlock()
	writeData(w, http.StatusOK, paginate(r, out))
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	items := append([]api.Notification(nil), s.notifications[currentUser(r).ID]...)
	s.mu.Unlock()
	writeData(w, http.StatusOK, paginate(r, items))
}

func (s *Server) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	n := 0
	for _, item := range s.notifications[currentUser(r).ID] {
		if !item.IsRead {
			n++
		}
	}
	s.mu.Unlock()
	writeData(w, http.StatusOK, map[string]int{"count": n})
}

func (s *Server) handleRead(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r.PathValue("id"))
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid notification id", "BAD_REQUEST")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.notifications[currentUser(r).ID]
	for i := range items {
		if items[i].ID == id {
			markRead(&items[i])
			writeData(w, http.StatusOK, nil)
			return
		}
	}
	writeError(w, r, http.StatusNotFound, "Notificação não encontrada", "NOT_FOUND")
}

func (s *Server) handleReadAll(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	items := s.notifications[currentUser(r).ID]
	for i := range items {
		markRead(&items[i])
	}
	s.mu.Unlock()
	writeData(w, http.StatusOK, nil)
}

func markRead(n *api.Notification) {
	if n.IsRead {
		return
	}
	n.IsRead = true
	n.ReadAt = ptr(stamp())
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
