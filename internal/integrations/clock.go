// ABOUTME: Clock integration providing the current_datetime command
// ABOUTME: Lets the model answer time and date questions without guessing

package integrations

import (
	"context"
	"fmt"
	"time"

	"github.com/averla/assist-gateway/internal/command"
)

// Clock provides the current date and time.
type Clock struct {
	now func() time.Time
}

// NewClock creates a Clock provider using the system clock.
func NewClock() *Clock {
	return &Clock{now: time.Now}
}

// Commands returns the current_datetime registration.
func (c *Clock) Commands() []command.Registration {
	return []command.Registration{
		{
			Name:        "current_datetime",
			Description: "the current date, time, and weekday",
			Handler:     c.currentDateTime,
		},
	}
}

func (c *Clock) currentDateTime(ctx context.Context, params map[string]string) (string, error) {
	now := c.now()
	return fmt.Sprintf("It is %s, %s", now.Weekday(), now.Format("2006-01-02 15:04:05 MST")), nil
}
