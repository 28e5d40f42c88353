package smilebook

import (
	"context"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/wolfman30/dental-booking-bridge/internal/automation"
	"github.com/wolfman30/dental-booking-bridge/internal/booking"
	"github.com/wolfman30/dental-booking-bridge/internal/practice"
)

func TestFieldSelectorsCoverAllKinds(t *testing.T) {
	kinds := []automation.FieldKind{
		automation.FieldFirstName,
		automation.FieldLastName,
		automation.FieldPhone,
		automation.FieldEmail,
		automation.FieldDate,
		automation.FieldAppointmentType,
	}
	for _, kind := range kinds {
		if len(fieldSelectors[kind]) == 0 {
			t.Errorf("no selector candidates for %s", kind)
		}
	}
	if len(slotSelectors) == 0 || len(submitSelectors) == 0 {
		t.Error("slot and submit selector lists must not be empty")
	}
}

func TestSelectorCandidatesUnique(t *testing.T) {
	for kind, candidates := range fieldSelectors {
		seen := map[string]bool{}
		for _, sel := range candidates {
			if seen[sel] {
				t.Errorf("%s lists %q twice", kind, sel)
			}
			seen[sel] = true
		}
	}
}

// bookingFormHTML is a self-contained page shaped like a SmileBook booking
// widget. Submitting it rewrites the page with a confirmation, so the whole
// engine flow can run against it with no network.
const bookingFormHTML = `<!DOCTYPE html>
<html><body>
  <h1>Book an appointment</h1>
  <select name="appointmentType">
    <option value="1">Cleaning</option>
    <option value="2">Emergency Exam</option>
  </select>
  <input name="firstName" placeholder="First name">
  <input name="lastName" placeholder="Last name">
  <input name="phone" type="tel" placeholder="Phone">
  <input name="email" type="email" placeholder="Email">
  <input name="date" placeholder="Date">
  <div class="time-slot" onclick="this.classList.add('picked')">9:30 AM</div>
  <div class="time-slot" onclick="this.classList.add('picked')">10:00 AM</div>
  <button type="submit" onclick="document.getElementById('verdict').textContent='Thank you! confirmation #E2E-77'">Book Now</button>
  <div id="verdict"></div>
</body></html>`

// TestDriverBooksAgainstLocalPage runs the full driver + engine stack in a
// real headless browser. Gate it behind an env var so suites on hosts
// without playwright browsers skip it.
func TestDriverBooksAgainstLocalPage(t *testing.T) {
	if os.Getenv("DENTALBRIDGE_BROWSER_TESTS") == "" {
		t.Skip("set DENTALBRIDGE_BROWSER_TESTS=1 to run browser tests")
	}

	driver := NewDriver(DriverConfig{Headless: true, NavTimeout: 30 * time.Second})
	defer driver.Shutdown()

	sess, err := driver.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	prac := *practice.DefaultConfig("e2e")
	prac.BookingURL = "data:text/html," + url.PathEscape(bookingFormHTML)

	engine := automation.NewEngine(automation.EngineConfig{SettleDelay: 500 * time.Millisecond})
	out := engine.Book(context.Background(), sess, prac, booking.Request{
		FirstName:       "Test",
		LastName:        "Patient",
		Phone:           "4805551234",
		Email:           "test@example.com",
		Date:            "2026-02-24",
		Time:            "10:00",
		AppointmentType: "emergency-exam",
	})

	if out.Status != booking.StatusSuccess {
		t.Fatalf("outcome = %+v, want success", out)
	}
	if out.ConfirmationNumber != "E2E-77" {
		t.Errorf("confirmation = %q, want E2E-77", out.ConfirmationNumber)
	}
}
