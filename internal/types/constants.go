package types

import "github.com/solarworks/solarworks/internal/models"

const (
	ContextAdminKey     = "admin"
	ContextRequestIDKey = "request_id"
	ContextDebugKey     = "debug"

	RequestIDHeader = "X-Request-ID"
)

// AdminResponse is the public view of an admin; the password hash never leaves the store.
type AdminResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type AuthResponse struct {
	Token string        `json:"token"`
	Admin AdminResponse `json:"admin"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Stack string `json:"stack,omitempty"`
}

func NewAdminResponse(admin *models.Admin) AdminResponse {
	return AdminResponse{
		ID:    admin.ID.Hex(),
		Email: admin.Email,
		Name:  admin.Name,
	}
}
