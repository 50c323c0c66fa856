package command

import (
	"crypto/subtle"
	"fmt"

	"github.com/nextedu/portal/internal/domain/directory"
	"github.com/nextedu/portal/internal/domain/shared"
)

// AdminAccount is the configured administrator.
type AdminAccount struct {
	Username string
	Password string
}

// Authenticator checks student and teacher credentials.
type Authenticator interface {
	Authenticate(role shared.Role, username, password string) (directory.Account, error)
}

// LoginCommand is a sign-in attempt for one dashboard.
type LoginCommand struct {
	Role     string
	Username string
	Password string
}

// LoginHandler handles LoginCommand. It only checks credentials:
// sessions belong to the caller.
type LoginHandler struct {
	auth     Authenticator
	admin    AdminAccount
	observer LoginObserver
}

// NewLoginHandler creates a new LoginHandler. observer may be nil.
func NewLoginHandler(auth Authenticator, admin AdminAccount, observer LoginObserver) *LoginHandler {
	return &LoginHandler{auth: auth, admin: admin, observer: observer}
}

// Handle returns the signed-in account.
func (h *LoginHandler) Handle(cmd LoginCommand) (directory.Account, error) {
	role, err := shared.ParseRole(cmd.Role)
	if err != nil {
		return directory.Account{}, fmt.Errorf("login: %w", err)
	}

	var account directory.Account
	if role == shared.RoleAdmin {
		account, err = h.adminLogin(cmd.Username, cmd.Password)
	} else {
		account, err = h.auth.Authenticate(role, cmd.Username, cmd.Password)
	}
	if h.observer != nil {
		h.observer.ObserveLogin(role.String(), err)
	}
	if err != nil {
		return directory.Account{}, fmt.Errorf("login: %w", err)
	}
	return account, nil
}

func (h *LoginHandler) adminLogin(username, password string) (directory.Account, error) {
	if h.admin.Username == "" || h.admin.Password == "" {
		return directory.Account{}, shared.ErrInvalidCredentials
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(h.admin.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(h.admin.Password)) == 1
	if !userOK || !passOK {
		return directory.Account{}, shared.ErrInvalidCredentials
	}
	return directory.Account{Role: shared.RoleAdmin, ID: "admin", Name: "Administrator"}, nil
}
