package domain

import "testing"

func TestParseStatus(t *testing.T) {
	cases := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"REQUESTED", StatusRequested, false},
		{"confirmed", StatusConfirmed, false},
		{"  Cancelled ", StatusCancelled, false},
		{"COMPLETED", StatusCompleted, false},
		{"", "", true},
		{"PENDING", "", true},
	}

	for _, tc := range cases {
		got, err := ParseStatus(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseStatus(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseStatus(%q) error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseStatus(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCanTransition(t *testing.T) {
	allowed := map[[2]Status]bool{
		{StatusRequested, StatusConfirmed}: true,
		{StatusRequested, StatusCancelled}: true,
		{StatusConfirmed, StatusCancelled}: true,
		{StatusConfirmed, StatusCompleted}: true,
	}

	for _, from := range Statuses {
		for _, to := range Statuses {
			want := allowed[[2]Status{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Fatalf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestTerminalStatusesHaveNoOutgoingTransitions(t *testing.T) {
	for _, from := range Statuses {
		if !from.Terminal() {
			continue
		}
		for _, to := range Statuses {
			if CanTransition(from, to) {
				t.Fatalf("terminal status %s permits transition to %s", from, to)
			}
		}
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range Statuses {
		if !s.Valid() {
			t.Fatalf("status %s reported invalid", s)
		}
	}
	if Status("PENDING").Valid() {
		t.Fatalf("unknown status reported valid")
	}
}
