package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/userdash/internal/client/client"
	"github.com/dmitrijs2005/userdash/internal/client/identity"
	"github.com/dmitrijs2005/userdash/internal/client/services"
	"github.com/dmitrijs2005/userdash/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// SignUp prompts for email, password and contact and creates an account.
// Rejections are printed as user messages and returned.
func (a *App) SignUp(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.Wipe(password)

	contact, err := getSimpleText(a.reader, "Enter contact", a.out)
	if err != nil {
		return err
	}

	res, err := a.auth.SignUp(ctx, email, string(password), contact)
	if err != nil {
		printlnFn(identity.UserMessage(err))
		return err
	}

	printlnFn("Account created.")
	a.reportSignIn(res)
	return nil
}

// Login prompts for credentials and signs in. When the identity provider
// is unreachable the service falls back to cached credentials; the mode is
// updated accordingly:
//   - ModeOnline if online sign in succeeds,
//   - ModeOffline if offline sign in succeeds,
//   - ModeDisabled if the provider is unreachable and nothing is cached.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.Wipe(password)

	res, err := a.auth.SignIn(ctx, email, string(password))
	if err != nil {
		if errors.Is(err, client.ErrUnavailable) {
			a.setMode(ModeDisabled)
		}
		a.log.Debug(ctx, "sign in failed", "error", err)
		printlnFn(identity.UserMessage(err))
		return err
	}

	if res.Offline {
		a.setMode(ModeOffline)
		printlnFn("Signed in offline.")
	} else {
		a.setMode(ModeOnline)
		printlnFn("Login successful.")
	}
	a.reportSignIn(res)
	return nil
}

func (a *App) reportSignIn(res *services.SignInResult) {
	if res == nil || res.Sync == nil {
		return
	}
	printlnFn(syncSummary(res.Sync))
}

// Logout drops the current session.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.SignOut(ctx); err != nil {
		a.log.Error(ctx, "sign out failed", "error", err)
		return err
	}
	printlnFn("Logged out.")
	return nil
}
