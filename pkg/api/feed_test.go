package api

import "testing"

func TestDecodeFeedSplitsSentinelsFromContent(t *testing.T) {
	records := []Notification{
		{ID: "1", Message: "Study time", Priority: 1},
		{ID: "2", Message: "__UNINSTALL_ALL_COMMAND__"},
		{ID: "3", Message: "Bed time", Priority: 3},
		{ID: "4", Message: "__UNINSTALL_SPECIFIC_COMMAND__"},
	}

	feed := DecodeFeed(records)

	if len(feed.Notifications) != 2 {
		t.Fatalf("got %d notifications, want 2", len(feed.Notifications))
	}
	if feed.Notifications[0].ID != "1" || feed.Notifications[1].ID != "3" {
		t.Errorf("notification order = %v %v, want server order preserved",
			feed.Notifications[0].ID, feed.Notifications[1].ID)
	}
	if len(feed.Uninstalls) != 2 || feed.Uninstalls[0] != ScopeAll || feed.Uninstalls[1] != ScopeSpecific {
		t.Errorf("uninstalls = %v, want [all specific] in arrival order", feed.Uninstalls)
	}
}

func TestDecodeFeedDropsCompletedRecords(t *testing.T) {
	feed := DecodeFeed([]Notification{
		{ID: "1", Message: "old", Status: "completed"},
		{ID: "2", Message: "old too", Status: "Completed"},
		{ID: "3", Message: "live", Status: "pending"},
		{ID: "4", Message: "no status"},
	})

	if len(feed.Notifications) != 2 {
		t.Fatalf("got %d notifications, want 2", len(feed.Notifications))
	}
	if feed.Notifications[0].ID != "3" || feed.Notifications[1].ID != "4" {
		t.Errorf("kept ids = %v %v, want 3 and 4", feed.Notifications[0].ID, feed.Notifications[1].ID)
	}
}

func TestDecodeFeedKeepsSentinelEvenIfMarkedCompleted(t *testing.T) {
	// Command interception happens before the status filter: a pushed
	// uninstall must take effect regardless of bookkeeping fields.
	feed := DecodeFeed([]Notification{
		{ID: "1", Message: "__UNINSTALL_SPECIFIC_COMMAND__", Status: "completed"},
	})
	if len(feed.Uninstalls) != 1 {
		t.Fatalf("uninstalls = %v, want one command", feed.Uninstalls)
	}
}

func TestScopeString(t *testing.T) {
	if ScopeSpecific.String() != "specific" || ScopeAll.String() != "all" {
		t.Errorf("scope strings = %q/%q", ScopeSpecific.String(), ScopeAll.String())
	}
}
