package library

import (
	"context"
	"slices"
	"strings"
	"unicode/utf8"
)

// MinPasswordLength is the only password strength rule.
const MinPasswordLength = 6

// Register validates req and appends a new account. The full name defaults
// to the username.
func (lm *LibraryManager) Register(ctx context.Context, req RegisterRequest) (Account, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	password := strings.TrimSpace(req.Password)
	confirm := strings.TrimSpace(req.ConfirmPassword)
	fullName := strings.TrimSpace(req.FullName)

	if username == "" || email == "" || password == "" || confirm == "" {
		return Account{}, validationf("all fields are required")
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return Account{}, validationf("password must be at least %d characters", MinPasswordLength)
	}
	if password != confirm {
		return Account{}, validationf("passwords do not match")
	}
	if fullName == "" {
		fullName = username
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()

	for _, a := range lm.accounts {
		if a.Username == username {
			return Account{}, validationf("username %q is already registered", username)
		}
	}
	for _, a := range lm.accounts {
		if a.Email == email {
			return Account{}, validationf("email %q is already registered", email)
		}
	}

	acct := Account{Username: username, Email: email, Password: password, FullName: fullName}
	staged := append(slices.Clone(lm.accounts), acct)
	if err := saveCollection(ctx, lm.gw, KeyAccounts, staged); err != nil {
		return Account{}, err
	}
	lm.accounts = staged
	lm.logger.Printf("registered account %q", username)
	return acct, nil
}

// Authenticate finds the account whose username or email equals identifier
// and whose password matches exactly, and makes it the current session.
func (lm *LibraryManager) Authenticate(identifier, password string) (Account, error) {
	identifier = strings.TrimSpace(identifier)
	password = strings.TrimSpace(password)
	if identifier == "" || password == "" {
		return Account{}, validationf("username/email and password are required")
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()

	for _, a := range lm.accounts {
		if (a.Username == identifier || a.Email == identifier) && a.Password == password {
			acct := a
			lm.current = &acct
			lm.logger.Printf("account %q logged in", a.Username)
			return acct, nil
		}
	}
	return Account{}, &Error{Code: CodeAuthentication, Message: "wrong username/email or password"}
}

// Logout clears the current session. Persisted data is untouched.
func (lm *LibraryManager) Logout() {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	if lm.current != nil {
		lm.logger.Printf("account %q logged out", lm.current.Username)
	}
	lm.current = nil
}

// CurrentAccount returns the logged-in account, if any.
func (lm *LibraryManager) CurrentAccount() (Account, bool) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	if lm.current == nil {
		return Account{}, false
	}
	return *lm.current, true
}
