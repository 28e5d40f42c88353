package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wolfman30/dental-booking-bridge/internal/practice"
	"github.com/wolfman30/dental-booking-bridge/internal/smilebook"
)

type fakeSource struct {
	slots []smilebook.Slot
	err   error

	gotToken    string
	gotDate     string
	gotType     string
	gotProvider string
}

func (f *fakeSource) Slots(ctx context.Context, token, date, typeCode, providerCode string) ([]smilebook.Slot, error) {
	f.gotToken = token
	f.gotDate = date
	f.gotType = typeCode
	f.gotProvider = providerCode
	return f.slots, f.err
}

type blockingSource struct{}

func (blockingSource) Slots(ctx context.Context, _, _, _, _ string) ([]smilebook.Slot, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func testStore() practice.Store {
	cfg := practice.DefaultConfig("desert-smiles")
	cfg.Token = "tok-desert"
	return practice.NewMemoryStore(cfg)
}

func TestGetSlotsRemote(t *testing.T) {
	src := &fakeSource{slots: []smilebook.Slot{
		{ID: "r1", Time: "09:00", Available: true},
		{ID: "r2", Time: "09:30", Available: false},
	}}
	svc := NewService(src, testStore(), 0, nil, nil)

	result := svc.GetSlots(context.Background(), "desert-smiles", "2026-02-24", "Emergency Exam", "Dr Chen")

	if result.Source != SourceRemote {
		t.Fatalf("source = %q, want remote", result.Source)
	}
	if len(result.Slots) != 2 {
		t.Fatalf("got %d slots, want 2", len(result.Slots))
	}
	if src.gotToken != "tok-desert" {
		t.Errorf("token = %q, want tok-desert", src.gotToken)
	}
	if src.gotType != "2" {
		t.Errorf("type code = %q, want 2 for emergency exam", src.gotType)
	}
	if src.gotProvider != "102" {
		t.Errorf("provider code = %q, want 102 for dr chen", src.gotProvider)
	}
	if got := result.AvailableTimes(); len(got) != 1 || got[0] != "09:00" {
		t.Errorf("available times = %v, want [09:00]", got)
	}
}

func TestGetSlotsFallbackOnError(t *testing.T) {
	src := &fakeSource{err: errors.New("upstream down")}
	svc := NewService(src, testStore(), 0, nil, nil)

	result := svc.GetSlots(context.Background(), "desert-smiles", "2026-02-24", "cleaning", "")

	if result.Source != SourceFallback {
		t.Fatalf("source = %q, want fallback", result.Source)
	}
	want := []string{"09:00", "09:30", "10:00", "10:30", "11:00", "14:00", "14:30", "15:00", "15:30", "16:00"}
	got := result.AvailableTimes()
	if len(got) != len(want) {
		t.Fatalf("got %d fallback times, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slot %d = %q, want %q", i, got[i], want[i])
		}
	}
	for _, s := range result.Slots {
		if !s.Available {
			t.Errorf("fallback slot %s should be available", s.ID)
		}
	}
}

func TestGetSlotsFallbackOnTimeout(t *testing.T) {
	svc := NewService(blockingSource{}, testStore(), 20*time.Millisecond, nil, nil)

	result := svc.GetSlots(context.Background(), "desert-smiles", "2026-02-24", "cleaning", "")
	if result.Source != SourceFallback {
		t.Fatalf("source = %q, want fallback after timeout", result.Source)
	}
}

func TestGetSlotsNoSourceConfigured(t *testing.T) {
	svc := NewService(nil, testStore(), 0, nil, nil)

	result := svc.GetSlots(context.Background(), "desert-smiles", "2026-02-24", "", "")
	if result.Source != SourceFallback {
		t.Fatalf("source = %q, want fallback with nil source", result.Source)
	}
	if len(result.Slots) != 10 {
		t.Errorf("got %d slots, want 10", len(result.Slots))
	}
}

func TestGetSlotsUnknownPracticeUsesDefaults(t *testing.T) {
	src := &fakeSource{slots: []smilebook.Slot{}}
	svc := NewService(src, practice.NewMemoryStore(), 0, nil, nil)

	result := svc.GetSlots(context.Background(), "never-seen", "2026-02-24", "filling", "")
	if result.Source != SourceRemote {
		t.Fatalf("source = %q, want remote (empty list is valid data)", result.Source)
	}
	if src.gotType != "4" {
		t.Errorf("type code = %q, want default table code 4 for filling", src.gotType)
	}
}

func TestFallbackSlotsDeterministic(t *testing.T) {
	a := fallbackSlots("2026-02-24")
	b := fallbackSlots("2026-02-24")
	if len(a) != 10 || len(b) != 10 {
		t.Fatalf("fallback should always produce 10 slots, got %d and %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("slot %d differs between calls: %+v vs %+v", i, a[i], b[i])
		}
	}
	if a[0].ID != "fallback-2026-02-24-0900" {
		t.Errorf("first slot id = %q", a[0].ID)
	}
}

func TestFallbackSlotsExcludeMidday(t *testing.T) {
	for _, s := range fallbackSlots("2026-02-24") {
		switch s.Time {
		case "11:30", "12:00", "12:30", "13:00", "13:30":
			t.Errorf("midday slot %s should not be offered", s.Time)
		}
	}
}
