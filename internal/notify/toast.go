// Package notify sends best-effort desktop notifications for reminder
// transitions, grounded on ODSapper-CLIAIMONITOR's toast notifier
// (internal/notifications/toast.go): Windows-only, never fatal on other
// platforms.
package notify

import (
	"fmt"
	"runtime"

	"github.com/go-toast/toast"

	"github.com/todozi/todozi/internal/model"
)

// ToastNotifier fires a desktop toast when a Reminder transitions
// Pending → Active (spec §2 DOMAIN STACK). Notification failures never
// block the reminder state change itself; callers treat the returned
// error as diagnostic only.
type ToastNotifier struct {
	appID string
}

// NewToastNotifier constructs a notifier; appID defaults to "todozi".
func NewToastNotifier(appID string) *ToastNotifier {
	if appID == "" {
		appID = "todozi"
	}
	return &ToastNotifier{appID: appID}
}

// IsSupported reports whether toast notifications can fire on this OS.
func (n *ToastNotifier) IsSupported() bool {
	return runtime.GOOS == "windows"
}

// NotifyReminderActivated shows a toast for a reminder that just became
// due. It is a no-op error on non-Windows platforms.
func (n *ToastNotifier) NotifyReminderActivated(r *model.Reminder) error {
	if runtime.GOOS != "windows" {
		return fmt.Errorf("toast notifications only supported on Windows")
	}

	notification := toast.Notification{
		AppID:   n.appID,
		Title:   "Reminder due",
		Message: r.Message,
		Audio:   toast.Default,
	}
	return notification.Push()
}
