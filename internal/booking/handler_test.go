package booking

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/wolfman30/dental-booking-bridge/internal/practice"
)

type stubAdapter struct {
	name    string
	out     Outcome
	err     error
	calls   int
	gotPrac practice.Config
	gotReq  Request
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) Book(_ context.Context, prac practice.Config, req Request) (Outcome, error) {
	s.calls++
	s.gotPrac = prac
	s.gotReq = req
	if s.err != nil {
		return Outcome{}, s.err
	}
	out := s.out
	out.Strategy = s.name
	return out, nil
}

type stubNotifier struct {
	ch chan Outcome
}

func (s *stubNotifier) NotifyOutcome(_ context.Context, _ practice.Config, _ Request, out Outcome) {
	s.ch <- out
}

const validBody = `{
	"firstName": "Test",
	"lastName": "Patient",
	"phone": "4805551234",
	"date": "2026-02-24",
	"time": "10:00",
	"appointmentType": "emergency-exam"
}`

func newTestHandler(store practice.Store, notifier OutcomeNotifier, adapters ...Adapter) *Handler {
	return NewHandler(HandlerConfig{
		Store:           store,
		Adapters:        adapters,
		DefaultStrategy: StrategyAutomation,
		DefaultPractice: "default",
		Notifier:        notifier,
	})
}

func TestBookAppointmentSuccess(t *testing.T) {
	adapter := &stubAdapter{
		name: StrategyAutomation,
		out:  Outcome{Status: StatusSuccess, ConfirmationNumber: "ABC-123", Message: "Appointment booked successfully. Confirmation number: ABC-123"},
	}
	h := newTestHandler(practice.NewMemoryStore(), nil, adapter)

	rec := httptest.NewRecorder()
	h.BookAppointment(rec, httptest.NewRequest("POST", "/book-appointment", strings.NewReader(validBody)))

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp bookResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.Status != "success" || resp.ConfirmationNumber != "ABC-123" {
		t.Errorf("resp = %+v", resp)
	}
	if resp.Patient.Name != "Test Patient" {
		t.Errorf("patient name = %q", resp.Patient.Name)
	}
	if resp.Patient.Phone != "(480) 555-1234" {
		t.Errorf("patient phone = %q, want formatted", resp.Patient.Phone)
	}
	if resp.Patient.Appointment != "emergency-exam on 2026-02-24 at 10:00" {
		t.Errorf("patient appointment = %q", resp.Patient.Appointment)
	}
	if adapter.calls != 1 {
		t.Errorf("adapter called %d times, want 1", adapter.calls)
	}
	if adapter.gotPrac.ID != "default" {
		t.Errorf("practice id = %q, want default applied", adapter.gotPrac.ID)
	}
}

func TestBookAppointmentFailureIsStill200(t *testing.T) {
	adapter := &stubAdapter{
		name: StrategyAutomation,
		out:  Outcome{Status: StatusFailure, Message: "Booking error: open booking page: timeout"},
	}
	h := newTestHandler(practice.NewMemoryStore(), nil, adapter)

	rec := httptest.NewRecorder()
	h.BookAppointment(rec, httptest.NewRequest("POST", "/book-appointment", strings.NewReader(validBody)))

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200 for a decided attempt", rec.Code)
	}
	var resp bookResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Success || resp.Status != "failure" {
		t.Errorf("resp = %+v, want failure reported in body", resp)
	}
	if !strings.HasPrefix(resp.Message, "Booking error:") {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestBookAppointmentMissingFields(t *testing.T) {
	h := newTestHandler(practice.NewMemoryStore(), nil, &stubAdapter{name: StrategyAutomation})

	rec := httptest.NewRecorder()
	h.BookAppointment(rec, httptest.NewRequest("POST", "/book-appointment",
		strings.NewReader(`{"firstName":"Test","time":"10:00","appointmentType":"cleaning"}`)))

	if rec.Code != 400 {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := rec.Body.String()
	for _, field := range []string{"lastName", "phone", "date"} {
		if !strings.Contains(body, field) {
			t.Errorf("error should list %q, got %s", field, body)
		}
	}
}

func TestBookAppointmentBadJSON(t *testing.T) {
	h := newTestHandler(practice.NewMemoryStore(), nil, &stubAdapter{name: StrategyAutomation})

	rec := httptest.NewRecorder()
	h.BookAppointment(rec, httptest.NewRequest("POST", "/book-appointment", strings.NewReader(`{oops`)))

	if rec.Code != 400 {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestBookAppointmentPoolSaturated(t *testing.T) {
	adapter := &stubAdapter{name: StrategyAutomation, err: ErrPoolSaturated}
	h := newTestHandler(practice.NewMemoryStore(), nil, adapter)

	rec := httptest.NewRecorder()
	h.BookAppointment(rec, httptest.NewRequest("POST", "/book-appointment", strings.NewReader(validBody)))

	if rec.Code != 503 {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("503 should carry Retry-After")
	}
}

func TestBookAppointmentAdapterErrorIs500(t *testing.T) {
	adapter := &stubAdapter{name: StrategyAutomation, err: errors.New("wiring broken")}
	h := newTestHandler(practice.NewMemoryStore(), nil, adapter)

	rec := httptest.NewRecorder()
	h.BookAppointment(rec, httptest.NewRequest("POST", "/book-appointment", strings.NewReader(validBody)))

	if rec.Code != 500 {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestBookAppointmentPerPracticeStrategy(t *testing.T) {
	auto := &stubAdapter{name: StrategyAutomation, out: Outcome{Status: StatusSuccess, Message: "ok"}}
	handoff := &stubAdapter{name: StrategyHandoff, out: Outcome{Status: StatusSuccess, Message: "link sent"}}

	cfg := practice.DefaultConfig("texters")
	cfg.Strategy = StrategyHandoff
	store := practice.NewMemoryStore(cfg)

	h := newTestHandler(store, nil, auto, handoff)

	body := strings.Replace(validBody, `"firstName"`, `"practiceId":"texters","firstName"`, 1)
	rec := httptest.NewRecorder()
	h.BookAppointment(rec, httptest.NewRequest("POST", "/book-appointment", strings.NewReader(body)))

	if rec.Code != 200 {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if handoff.calls != 1 || auto.calls != 0 {
		t.Errorf("handoff calls = %d, automation calls = %d; want per-practice override honored",
			handoff.calls, auto.calls)
	}
}

func TestBookAppointmentUnknownStrategyFallsBack(t *testing.T) {
	auto := &stubAdapter{name: StrategyAutomation, out: Outcome{Status: StatusSuccess, Message: "ok"}}

	cfg := practice.DefaultConfig("odd")
	cfg.Strategy = "carrier-pigeon"
	store := practice.NewMemoryStore(cfg)

	h := newTestHandler(store, nil, auto)

	body := strings.Replace(validBody, `"firstName"`, `"practiceId":"odd","firstName"`, 1)
	rec := httptest.NewRecorder()
	h.BookAppointment(rec, httptest.NewRequest("POST", "/book-appointment", strings.NewReader(body)))

	if rec.Code != 200 {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if auto.calls != 1 {
		t.Errorf("automation calls = %d, want fallback to default strategy", auto.calls)
	}
}

func TestBookAppointmentNotifiesFrontDesk(t *testing.T) {
	notifier := &stubNotifier{ch: make(chan Outcome, 1)}
	adapter := &stubAdapter{name: StrategyAutomation, out: Outcome{Status: StatusSuccess, Message: "ok"}}
	h := newTestHandler(practice.NewMemoryStore(), notifier, adapter)

	rec := httptest.NewRecorder()
	h.BookAppointment(rec, httptest.NewRequest("POST", "/book-appointment", strings.NewReader(validBody)))

	select {
	case out := <-notifier.ch:
		if out.Status != StatusSuccess {
			t.Errorf("notified outcome = %+v", out)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("front-desk notification never fired")
	}
}

func TestRequestMissingFieldsOrder(t *testing.T) {
	var req Request
	got := req.MissingFields()
	want := []string{"firstName", "lastName", "phone", "date", "time"}
	if len(got) != len(want) {
		t.Fatalf("missing = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("missing[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestOutcomeSucceeded(t *testing.T) {
	if !(Outcome{Status: StatusSuccess}).Succeeded() {
		t.Error("success should succeed")
	}
	if !(Outcome{Status: StatusUnverified}).Succeeded() {
		t.Error("unverified should map to succeeded")
	}
	if (Outcome{Status: StatusFailure}).Succeeded() {
		t.Error("failure should not succeed")
	}
}
