package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/dverbitsky/chronokeeper/internal/common"
)

func (a *App) chat(ctx context.Context, message string) {

	if message == "" {
		var err error
		message, err = GetSimpleText(a.reader, "Message", os.Stdout)
		if err != nil {
			log.Printf("error: %v", err)
			return
		}
	}

	result, err := a.assistantSvc.Chat(ctx, message)
	if err != nil {
		if errors.Is(err, common.ErrOffline) {
			fmt.Println("The assistant needs a network connection; you are offline.")
			return
		}
		log.Printf("Error: %s", err.Error())
		return
	}

	fmt.Println(result.Message)
	if result.Event != nil {
		fmt.Println("  " + formatEvent(result.Event))
		printConflicts(result.Conflicts)
	}
	for _, e := range result.Events {
		fmt.Println("  " + formatEvent(e))
	}
}

func (a *App) history(ctx context.Context) {
	messages, err := a.assistantSvc.History(ctx, 20)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return
	}

	if len(messages) == 0 {
		fmt.Println("No chat history")
		return
	}
	for _, m := range messages {
		fmt.Printf("[%s] you: %s\n", m.Timestamp.Local().Format("2006-01-02 15:04"), m.UserText)
		fmt.Printf("           assistant: %s\n", m.AIResponse)
	}
}
