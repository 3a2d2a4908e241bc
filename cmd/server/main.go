// Command server runs the FinBrain webhook server: it receives Messenger
// message events, routes them through the expense assistant, and replies.
//
// Exit codes: 0 = clean shutdown, 1 = startup or runtime error.
package main

import (
	"context"
	"log"

	"github.com/finbrain/finbrain/internal/app"
)

func main() {
	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("server: %v", err)
	}
}
