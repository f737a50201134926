package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/club-scheduler/internal/persistence/memory"
)

func TestMemberService(t *testing.T) {
	ctx := context.Background()
	svc := NewMemberService(memory.New(), func() string { return "member-1" }, func() time.Time { return fixedNow })

	dob := time.Date(1992, time.July, 14, 18, 30, 0, 0, time.FixedZone("X", 3600))
	member, err := svc.RegisterMember(ctx, MemberInput{FullName: "Sam Lee", DateOfBirth: &dob, Gender: "f", Phone: "555-0199"})
	if err != nil {
		t.Fatalf("RegisterMember returned error: %v", err)
	}
	if member.DateOfBirth == nil || !member.DateOfBirth.Equal(time.Date(1992, time.July, 14, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected date of birth truncated to a UTC date, got %v", member.DateOfBirth)
	}

	got, err := svc.GetMember(ctx, "member-1")
	if err != nil || got.FullName != "Sam Lee" {
		t.Fatalf("unexpected member %+v (err=%v)", got, err)
	}

	if _, err := svc.GetMember(ctx, "ghost"); !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}

	future := fixedNow.Add(48 * time.Hour)
	_, err = svc.RegisterMember(ctx, MemberInput{DateOfBirth: &future})
	var vErr *ValidationError
	if !errors.As(err, &vErr) || len(vErr.FieldErrors) != 2 {
		t.Fatalf("expected full_name and date_of_birth errors, got %v", err)
	}
}
