package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/userdash/internal/common"
)

func (a *App) requireSession(action string) bool {
	if a.isLoggedIn() {
		return true
	}
	printlnFn(fmt.Sprintf("Please sign in to %s.", action))
	return false
}

// Details asks for a name and contact and stores them for the signed-in user.
func (a *App) Details(ctx context.Context) error {
	if !a.requireSession("add details") {
		return common.ErrNoSession
	}

	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	contact, err := getSimpleText(a.reader, "Enter contact", a.out)
	if err != nil {
		return err
	}

	if err := a.profile.SubmitDetails(ctx, name, contact); err != nil {
		a.reportProfileError(ctx, "Failed to save details.", err)
		return err
	}
	printlnFn("Details saved.")
	return nil
}

// Contact changes the contact of the signed-in user.
func (a *App) Contact(ctx context.Context) error {
	if !a.requireSession("update your contact") {
		return common.ErrNoSession
	}

	contact, err := getSimpleText(a.reader, "Enter new contact", a.out)
	if err != nil {
		return err
	}

	if err := a.profile.UpdateContact(ctx, contact); err != nil {
		a.reportProfileError(ctx, "Failed to update contact.", err)
		return err
	}
	printlnFn("Contact updated.")
	return nil
}

// Profile prints the cached record of the signed-in user.
func (a *App) Profile(ctx context.Context) error {
	if !a.requireSession("view your profile") {
		return common.ErrNoSession
	}

	u, err := a.profile.Current(ctx)
	if err != nil {
		a.reportProfileError(ctx, "Failed to load profile.", err)
		return err
	}

	printlnFn(fmt.Sprintf("Email:   %s", u.Email))
	printlnFn(fmt.Sprintf("Name:    %s", u.Name))
	printlnFn(fmt.Sprintf("Contact: %s", u.Contact))
	printlnFn(fmt.Sprintf("Joined:  %s", u.SignupDate))
	return nil
}

func (a *App) reportProfileError(ctx context.Context, msg string, err error) {
	switch {
	case errors.Is(err, common.ErrInvalidInput):
		printlnFn("All fields are required.")
	case errors.Is(err, common.ErrNotFound):
		printlnFn("Your profile is not cached yet. Run 'sync' first.")
	default:
		a.log.Error(ctx, msg, "error", err)
		printlnFn(msg)
	}
}
