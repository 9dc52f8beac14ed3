package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dverbitsky/chronokeeper/internal/client/models"
)

// setup runs the first-launch flow: profile details plus the PIN that gates
// the local UI from then on.
func (a *App) setup(ctx context.Context) error {

	fmt.Println("No profile found, let's set one up.")

	name, err := GetSimpleText(a.reader, "Your name", os.Stdout)
	if err != nil {
		return err
	}

	birthDate, _, err := GetTime(a.reader, "Birth date (YYYY-MM-DD)", os.Stdout)
	if err != nil {
		return err
	}

	for {
		pin, err := GetPIN(os.Stdout, "Choose a PIN")
		if err != nil {
			return err
		}
		confirm, err := GetPIN(os.Stdout, "Repeat PIN")
		if err != nil {
			return err
		}
		if len(pin) == 0 || string(pin) != string(confirm) {
			fmt.Println("PINs are empty or do not match, try again")
			continue
		}

		if _, err := a.profileSvc.Setup(ctx, name, birthDate, pin); err != nil {
			return err
		}
		break
	}

	a.unlocked = true
	fmt.Println("Profile created. Welcome, " + name + "!")
	return nil
}

func (a *App) showProfile(ctx context.Context) {
	p, err := a.profileSvc.Get(ctx)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return
	}

	fmt.Println("Name:   " + p.Name)
	if !p.BirthDate.IsZero() {
		fmt.Println("Birth:  " + p.BirthDate.Format("2006-01-02"))
	}
	fmt.Println("Locale: " + p.Locale)
	fmt.Println("Theme:  " + p.Theme)

	answer, err := GetSimpleText(a.reader, "Edit profile? (y/n)", os.Stdout)
	if err != nil || answer != "y" {
		return
	}

	patch := &models.ProfilePatch{}
	if name, entered, _ := GetOptionalText(a.reader, "New name", os.Stdout); entered {
		patch.Name = &name
	}
	if locale, entered, _ := GetOptionalText(a.reader, "New locale", os.Stdout); entered {
		patch.Locale = &locale
	}
	if theme, entered, _ := GetOptionalText(a.reader, "New theme (light/dark)", os.Stdout); entered {
		patch.Theme = &theme
	}

	if _, err := a.profileSvc.Update(ctx, patch); err != nil {
		log.Printf("Error: %s", err.Error())
		return
	}
	fmt.Println("Profile updated")
}

func (a *App) changePIN(ctx context.Context) {
	current, err := GetPIN(os.Stdout, "Current PIN")
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	next, err := GetPIN(os.Stdout, "New PIN")
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	if err := a.profileSvc.ChangePIN(ctx, current, next); err != nil {
		log.Printf("Error: %s", err.Error())
		return
	}
	fmt.Println("PIN changed")
}

// wipe deletes all local data after an explicit confirmation. Returns true
// when the wipe happened and the session should end.
func (a *App) wipe(ctx context.Context) bool {
	answer, err := GetSimpleText(a.reader, "This deletes ALL local data. Type 'wipe' to confirm", os.Stdout)
	if err != nil || answer != "wipe" {
		fmt.Println("Cancelled")
		return false
	}

	if err := a.profileSvc.Wipe(ctx); err != nil {
		log.Printf("Error: %s", err.Error())
		return false
	}

	fmt.Println("All local data removed. Bye!")
	return true
}
