package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dverbitsky/chronokeeper/internal/common"
)

func (a *App) getStatus() string {
	s := string(a.Mode)
	if !a.unlocked {
		s = s + " locked"
	}
	return fmt.Sprintf("(%s)", s)
}

// Root runs the interactive command loop. It first makes sure a profile
// exists and the PIN gate is passed, then dispatches commands until EOF or
// an exit command.
func (a *App) Root(ctx context.Context) {

	log.Println("Welcome to ChronoKeeper CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	if err := a.ensureProfile(ctx); err != nil {
		log.Printf("error: %v", err)
		return
	}

	for {
		fmt.Printf("ck %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			fmt.Println("Available commands: add, (l)ist, agenda, show, edit, delete, find, chat, history, profile, pin, status, wipe, exit")

		case "add":
			a.addEvent(ctx)
		case "l", "list":
			a.listEvents()
		case "agenda":
			a.agenda(ctx, args)
		case "show":
			if len(args) == 0 {
				fmt.Println("Usage: show <id>")
				continue
			}
			a.showEvent(ctx, args[0])
		case "edit":
			if len(args) == 0 {
				fmt.Println("Usage: edit <id>")
				continue
			}
			a.editEvent(ctx, args[0])
		case "delete":
			if len(args) == 0 {
				fmt.Println("Usage: delete <id>")
				continue
			}
			a.deleteEvent(ctx, args[0])
		case "find":
			a.findEvents(ctx)
		case "chat":
			a.chat(ctx, strings.Join(args, " "))
		case "history":
			a.history(ctx)
		case "profile":
			a.showProfile(ctx)
		case "pin":
			a.changePIN(ctx)
		case "status":
			fmt.Printf("Mode: %s, events: %d\n", a.Mode, len(a.eventService.Events()))
		case "wipe":
			if a.wipe(ctx) {
				return
			}
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Println("Unknown command:", cmd)
		}
	}
}

// ensureProfile runs first-time setup when no profile exists, otherwise asks
// for the PIN. Three wrong attempts end the session.
func (a *App) ensureProfile(ctx context.Context) error {
	_, err := a.profileSvc.Get(ctx)
	if err != nil {
		if errors.Is(err, common.ErrNoProfile) {
			return a.setup(ctx)
		}
		return err
	}

	for attempt := 0; attempt < 3; attempt++ {
		pin, err := GetPIN(os.Stdout, "Enter PIN")
		if err != nil {
			return err
		}
		err = a.profileSvc.VerifyPIN(ctx, pin)
		if err == nil {
			a.unlocked = true
			return nil
		}
		if errors.Is(err, common.ErrWrongPIN) {
			fmt.Println("Wrong PIN, try again")
			continue
		}
		return err
	}
	return errors.New("too many wrong PIN attempts")
}
