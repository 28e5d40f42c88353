package smilebook

import (
	"github.com/playwright-community/playwright-go"

	"github.com/wolfman30/dental-booking-bridge/internal/automation"
)

// fieldSelectors are tried in order; first hit wins. SmileBook's widget has
// stable names, but practices embed it with their own themes, so each field
// carries name, id, and placeholder fallbacks.
var fieldSelectors = map[automation.FieldKind][]string{
	automation.FieldFirstName: {
		`input[name="firstName"]`,
		`input[name="first_name"]`,
		`input[name="fname"]`,
		`#firstName`,
		`#first_name`,
		`input[placeholder*="First" i]`,
	},
	automation.FieldLastName: {
		`input[name="lastName"]`,
		`input[name="last_name"]`,
		`input[name="lname"]`,
		`#lastName`,
		`#last_name`,
		`input[placeholder*="Last" i]`,
	},
	automation.FieldPhone: {
		`input[name="phone"]`,
		`input[name="phoneNumber"]`,
		`input[type="tel"]`,
		`#phone`,
		`input[placeholder*="Phone" i]`,
	},
	automation.FieldEmail: {
		`input[name="email"]`,
		`input[type="email"]`,
		`#email`,
		`input[placeholder*="Email" i]`,
	},
	automation.FieldDate: {
		`input[name="date"]`,
		`input[name="appointmentDate"]`,
		`input[type="date"]`,
		`#appointment-date`,
		`#date`,
		`input[placeholder*="Date" i]`,
	},
	automation.FieldAppointmentType: {
		`select[name="appointmentType"]`,
		`select[name="appointment_type"]`,
		`select[name="service"]`,
		`#appointmentType`,
		`#service`,
		`select[name="type"]`,
	},
}

// slotSelectors find clickable time-slot elements.
var slotSelectors = []string{
	`.time-slot`,
	`[data-slot-time]`,
	`button[data-time]`,
	`.appointment-slot`,
	`[class*="timeslot"]`,
}

// submitSelectors find the booking form's submit control.
var submitSelectors = []string{
	`button[type="submit"]`,
	`input[type="submit"]`,
	`button:has-text("Book")`,
	`button:has-text("Submit")`,
	`button:has-text("Confirm")`,
}

// formLocator resolves the engine's field kinds against a live page.
type formLocator struct {
	page playwright.Page
}

var _ automation.Locator = (*formLocator)(nil)

func (l *formLocator) Field(kind automation.FieldKind) (automation.Handle, bool) {
	for _, sel := range fieldSelectors[kind] {
		el, err := l.page.QuerySelector(sel)
		if err != nil || el == nil {
			continue
		}
		return &elementHandle{el: el}, true
	}
	return nil, false
}

// TimeSlots returns the first selector's worth of slot elements. An empty
// page yields an empty list, not an error; errors are reserved for a page
// that cannot be evaluated at all.
func (l *formLocator) TimeSlots() ([]automation.Handle, error) {
	for _, sel := range slotSelectors {
		els, err := l.page.QuerySelectorAll(sel)
		if err != nil || len(els) == 0 {
			continue
		}
		handles := make([]automation.Handle, 0, len(els))
		for _, el := range els {
			handles = append(handles, &elementHandle{el: el})
		}
		return handles, nil
	}
	return nil, nil
}

func (l *formLocator) SubmitControl() (automation.Handle, bool) {
	for _, sel := range submitSelectors {
		el, err := l.page.QuerySelector(sel)
		if err != nil || el == nil {
			continue
		}
		return &elementHandle{el: el}, true
	}
	return nil, false
}

// elementHandle adapts a playwright element to the engine's Handle.
type elementHandle struct {
	el playwright.ElementHandle
}

var _ automation.Handle = (*elementHandle)(nil)

func (h *elementHandle) Fill(value string) error {
	return h.el.Fill(value)
}

func (h *elementHandle) Value() (string, error) {
	return h.el.InputValue()
}

func (h *elementHandle) Click() error {
	return h.el.Click()
}

func (h *elementHandle) Select(value string) error {
	_, err := h.el.SelectOption(playwright.SelectOptionValues{
		Values: playwright.StringSlice(value),
	})
	return err
}

func (h *elementHandle) Text() (string, error) {
	return h.el.TextContent()
}
