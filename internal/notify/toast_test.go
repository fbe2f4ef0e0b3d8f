package notify

import (
	"runtime"
	"testing"
	"time"

	"github.com/todozi/todozi/internal/model"
)

func TestIsSupportedMatchesGOOS(t *testing.T) {
	n := NewToastNotifier("")
	if n.IsSupported() != (runtime.GOOS == "windows") {
		t.Fatalf("IsSupported()=%v, want %v", n.IsSupported(), runtime.GOOS == "windows")
	}
}

func TestNotifyReminderActivatedErrorsOffWindows(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("this assertion only applies off Windows")
	}
	n := NewToastNotifier("todozi-test")
	r, err := model.NewReminder("check the deploy", time.Now(), model.PriorityMedium, time.Now())
	if err != nil {
		t.Fatalf("NewReminder: %v", err)
	}
	if err := n.NotifyReminderActivated(r); err == nil {
		t.Fatal("expected an error on non-Windows platforms")
	}
}
