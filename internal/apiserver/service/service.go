// Package service holds the multi-step operations behind the HTTP handlers:
// tenant provisioning, the registration workflow, tenant administration,
// sessions and password resets.
package service

import "golang.org/x/crypto/bcrypt"

// Recorder observes business events, e.g. for metrics
type Recorder interface {
	Login(kind string, ok bool)
	Registration(event string)
}

type nopRecorder struct{}

func (nopRecorder) Login(string, bool)  {}
func (nopRecorder) Registration(string) {}

// Login kinds
const (
	LoginUser       = "user"
	LoginSuperAdmin = "super_admin"
)

// Registration events
const (
	EventSubmitted = "submitted"
	EventApproved  = "approved"
	EventRejected  = "rejected"
)

// HashPassword hashes a plain text password with bcrypt
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckPassword reports whether password matches hash
func CheckPassword(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
