package handlers

import (
	"errors"
	"mime"
	"net/http"

	"github.com/diewo77/invoice-manager/auth"
	"github.com/diewo77/invoice-manager/httpx"
	"github.com/diewo77/invoice-manager/internal/services"
)

type AuthHandler struct {
	users *services.UserService
}

func NewAuthHandler(users *services.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// readCredentials accepts a JSON body or a classic form post.
func readCredentials(r *http.Request) (credentials, error) {
	var c credentials
	if ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); ct == "application/json" {
		err := httpx.DecodeJSON(r, &c)
		return c, err
	}
	if err := r.ParseForm(); err != nil {
		return c, err
	}
	c.Email = r.FormValue("email")
	c.Password = r.FormValue("password")
	c.Name = r.FormValue("name")
	return c, nil
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	c, err := readCredentials(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	user, err := h.users.Signup(r.Context(), c.Email, c.Password, c.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	auth.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	c, err := readCredentials(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	user, err := h.users.Authenticate(r.Context(), c.Email, c.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	auth.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusOK, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	w.WriteHeader(http.StatusNoContent)
}
