package announce

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/celerix-dev/painel-store/pkg/schema"
)

// ColorAlertTitle is the title of the automatic monthly color announcement.
const ColorAlertTitle = "Forbidden color change"

// Color is the tape and inspection color banned for a month.
type Color struct {
	Name  string `json:"name"`
	Class string `json:"class"`
}

var forbiddenColors = [4]Color{
	{Name: "Red", Class: "bg-red-600"},
	{Name: "Blue", Class: "bg-blue-600"},
	{Name: "Yellow", Class: "bg-yellow-500"},
	{Name: "Green", Class: "bg-green-600"},
}

// ForbiddenColor returns the color for a zero-based month. The rotation repeats every four months.
func ForbiddenColor(month0 int) Color {
	return forbiddenColors[((month0%4)+4)%4]
}

// PostMonthlyColorAlert publishes the forbidden color of now's month. It only acts on the
// first day of a month, once per month, and never over an existing color announcement.
func (b *Broadcaster) PostMonthlyColorAlert(now time.Time) (bool, error) {
	if now.Day() != 1 {
		return false, nil
	}
	month0 := int(now.Month()) - 1
	flag := b.keys.ForbiddenColorAlertKey(month0, now.Year())
	if _, err := b.medium.Get(flag); err == nil {
		return false, nil
	}
	if current, ok := b.Get(); ok && current.Title == ColorAlertTitle {
		return false, nil
	}

	color := ForbiddenColor(month0)
	a, err := b.Set(colorAnnouncement(now, color))
	if err != nil {
		return false, err
	}
	if err := b.medium.Set(flag, "true"); err != nil {
		return true, fmt.Errorf("flag color alert: %w", err)
	}
	b.logger.Info("posted monthly color alert", zap.String("announcement", a.ID), zap.String("color", color.Name))
	return true, nil
}

func colorAnnouncement(now time.Time, color Color) schema.Announcement {
	return schema.Announcement{
		Title: ColorAlertTitle,
		Message: fmt.Sprintf("Attention team!\n\nThe month of %s has started.\n\n"+
			"The forbidden color for inspections and tapes this month is: %s.\n\n"+
			"Please update the markings according to the safety standard.",
			strings.ToUpper(now.Month().String()), strings.ToUpper(color.Name)),
		Active:    true,
		CreatedAt: now,
		CreatedBy: schema.SystemIdentity.Username,
	}
}
