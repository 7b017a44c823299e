package notify

import (
	"context"
	"fmt"

	"github.com/campuskit/go-accounts"
)

// Console prints the message instead of delivering it. Useful in development
// and in tests that only care about the lifecycle side of a flow.
type Console struct{}

var _ accounts.Notifier = Console{}

// Notify implements accounts.Notifier.
func (Console) Notify(_ context.Context, recipient string, purpose accounts.Purpose, link string) error {
	subject, _ := Compose(purpose, link)

	fmt.Println("====== SENDING EMAIL NOTIFICATION =======")
	fmt.Printf("to: %s\n", recipient)
	fmt.Printf("subject: %s\n", subject)
	fmt.Printf("link: %s\n", link)

	return nil
}
