// Package session tracks who is logged in and wipes the ledger on logout.
package session

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"expensetracker/internal/log"
)

// DefaultUserName is stored when login supplies no display name.
const DefaultUserName = "User"

// Gate is the session context object handed to whatever needs identity.
type Gate struct {
	prefs   Preferences
	cascade Cascade
	logger  *log.Logger
}

func NewGate(prefs Preferences, cascade Cascade, logger *log.Logger) *Gate {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Gate{prefs: prefs, cascade: cascade, logger: logger.WithComponent(log.ComponentSession)}
}

// Login persists the logged-in flag and identity.
func (g *Gate) Login(ctx context.Context, email, displayName string) error {
	if strings.TrimSpace(displayName) == "" {
		displayName = DefaultUserName
	}
	for _, kv := range [][2]string{
		{KeyLoggedIn, "true"},
		{KeyUserEmail, email},
		{KeyUserName, displayName},
	} {
		if err := g.prefs.SetPreference(ctx, kv[0], kv[1]); err != nil {
			return fmt.Errorf("login: %w", err)
		}
	}
	g.logger.InfoContext(ctx, "User logged in", log.FieldEmail, email)
	return nil
}

// Logout clears the session and starts the ledger wipe without waiting for
// it. A write racing the wipe can survive it.
func (g *Gate) Logout(ctx context.Context) error {
	if err := g.prefs.SetPreference(ctx, KeyLoggedIn, "false"); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	if err := g.prefs.ClearPreferences(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	g.logger.InfoContext(ctx, "User logged out")
	if g.cascade != nil {
		g.cascade.Start()
	}
	return nil
}

func (g *Gate) IsLoggedIn(ctx context.Context) (bool, error) {
	v, _, err := g.prefs.GetPreference(ctx, KeyLoggedIn)
	if err != nil {
		return false, err
	}
	return v == "true", nil
}

func (g *Gate) UserEmail(ctx context.Context) (string, error) {
	v, _, err := g.prefs.GetPreference(ctx, KeyUserEmail)
	return v, err
}

// UserName returns the stored display name, or the local part of the email
// with only its first letter upper-cased.
func (g *Gate) UserName(ctx context.Context) (string, error) {
	name, _, err := g.prefs.GetPreference(ctx, KeyUserName)
	if err != nil {
		return "", err
	}
	if name != "" {
		return name, nil
	}
	email, err := g.UserEmail(ctx)
	if err != nil {
		return "", err
	}
	return NameFromEmail(email), nil
}

// NameFromEmail turns "john.doe@x.com" into "John.doe".
func NameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	r, size := utf8.DecodeRuneInString(local)
	if r == utf8.RuneError || !unicode.IsLower(r) {
		return local
	}
	return string(unicode.ToTitle(r)) + local[size:]
}
