package gaiola

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/gaiola-watcher/internal/site"
)

const (
	selOpenForm       = "#CheckAvailability_904"
	selConfirmBooking = "#ConfermaPrenotazione"
	selSelect2Search  = ".select2-search__field"

	// booking confirmation appears as a query parameter of the landing URL
	confirmationParam = "prenotazione="

	// WebDriver key code for Return, used to commit select2 lookups
	keyReturn = "\ue006"
)

// Form fill defaults for the lookup dropdowns when the subject carries no
// explicit values.
const (
	defaultBirthplace   = "NAPOLI"
	defaultCountry      = "Italia"
	defaultProvince     = "Napoli"
	defaultMunicipality = "muni"
)

// SubmitBookingForm opens the booking form for the currently selected
// day/shift, populates it, submits, and extracts the confirmation code
// from the landing URL. Individual identity fields are best-effort: a
// missing field is logged and skipped, only the submit button itself is
// required.
func (a *Adapter) SubmitBookingForm(ctx context.Context, subject site.Subject, contact site.Contact) (string, error) {
	open, err := a.client.Find(ctx, selOpenForm)
	if err != nil {
		return "", fmt.Errorf("open booking form: %w", err)
	}
	if err := a.click(ctx, open); err != nil {
		return "", fmt.Errorf("open booking form: %w", err)
	}
	a.pause(ctx, time.Second)

	a.fillSubject(ctx, 1, subject, contact)

	// shared contact block
	a.fillField(ctx, "email_main", contact.Email)
	a.fillField(ctx, "email_main2", contact.Email)
	a.fillField(ctx, "telefono", contact.Phone)

	// the two mandatory consent checkboxes
	a.clickByID(ctx, "privacy")
	a.clickByID(ctx, "regolamento")

	confirm, err := a.client.Find(ctx, selConfirmBooking)
	if err != nil {
		return "", fmt.Errorf("find confirm button: %w", err)
	}
	if err := a.click(ctx, confirm); err != nil {
		return "", fmt.Errorf("confirm booking: %w", err)
	}

	return a.awaitConfirmation(ctx)
}

// fillSubject populates the identity block for one form slot (slots are
// 1-indexed on the page).
func (a *Adapter) fillSubject(ctx context.Context, slot int, s site.Subject, contact site.Contact) {
	email := s.Email
	if email == "" {
		email = contact.Email
	}

	a.fillField(ctx, fmt.Sprintf("nome_%d", slot), s.Name)
	a.fillField(ctx, fmt.Sprintf("cognome_%d", slot), s.Surname)
	a.fillField(ctx, fmt.Sprintf("sesso_%d", slot), s.Sex)
	a.fillField(ctx, fmt.Sprintf("data_nascita_%d", slot), s.BirthDate)
	a.fillLookup(ctx, fmt.Sprintf("comune_nascita_%d", slot), orDefault(s.Birthplace, defaultBirthplace))
	a.fillField(ctx, fmt.Sprintf("codice_fiscale_%d", slot), s.TaxCode)
	a.fillField(ctx, fmt.Sprintf("email_%d", slot), email)
	a.fillLookup(ctx, fmt.Sprintf("stato_residenza_%d", slot), orDefault(s.Country, defaultCountry))
	a.fillLookup(ctx, fmt.Sprintf("provincia_residenza_%d", slot), orDefault(s.Province, defaultProvince))
	a.fillMunicipality(ctx, slot, orDefault(s.Municipality, defaultMunicipality))
}

// fillField locates an input by id, scrolls to it, and types the value.
// Missing fields are warnings, not failures.
func (a *Adapter) fillField(ctx context.Context, id, value string) {
	el, err := a.client.Find(ctx, "#"+id)
	if err != nil {
		slog.Warn("booking form field not found", "field", id, "err", err)
		return
	}
	if err := a.client.Exec(ctx, "arguments[0].scrollIntoView(true);", el); err != nil {
		slog.Warn("booking form field scroll failed", "field", id, "err", err)
	}
	if err := a.client.SendKeys(ctx, el, value); err != nil {
		slog.Warn("booking form field fill failed", "field", id, "err", err)
	}
}

// fillLookup drives a select2 dropdown: open the container, type the
// query into the search field, commit with Return.
func (a *Adapter) fillLookup(ctx context.Context, id, query string) {
	container, err := a.client.Find(ctx, fmt.Sprintf("[aria-labelledby='select2-%s-container']", id))
	if err != nil {
		slog.Warn("booking form lookup not found", "field", id, "err", err)
		return
	}
	if err := a.click(ctx, container); err != nil {
		slog.Warn("booking form lookup open failed", "field", id, "err", err)
		return
	}
	search, err := a.client.Find(ctx, selSelect2Search)
	if err != nil {
		slog.Warn("booking form lookup search field not found", "field", id, "err", err)
		return
	}
	if err := a.client.SendKeys(ctx, search, query+keyReturn); err != nil {
		slog.Warn("booking form lookup fill failed", "field", id, "err", err)
	}
}

// fillMunicipality is the one lookup addressed by container id rather
// than label.
func (a *Adapter) fillMunicipality(ctx context.Context, slot int, query string) {
	container, err := a.client.Find(ctx, fmt.Sprintf("#select2-municipalita_%d-container", slot))
	if err != nil {
		slog.Warn("booking form municipality not found", "slot", slot, "err", err)
		return
	}
	if err := a.click(ctx, container); err != nil {
		slog.Warn("booking form municipality open failed", "slot", slot, "err", err)
		return
	}
	search, err := a.client.Find(ctx, selSelect2Search)
	if err != nil {
		slog.Warn("booking form municipality search field not found", "slot", slot, "err", err)
		return
	}
	if err := a.client.SendKeys(ctx, search, query+keyReturn); err != nil {
		slog.Warn("booking form municipality fill failed", "slot", slot, "err", err)
	}
}

func (a *Adapter) clickByID(ctx context.Context, id string) {
	el, err := a.client.Find(ctx, "#"+id)
	if err != nil {
		slog.Warn("booking form checkbox not found", "field", id, "err", err)
		return
	}
	if err := a.click(ctx, el); err != nil {
		slog.Warn("booking form checkbox click failed", "field", id, "err", err)
	}
}

// awaitConfirmation polls the current URL until the confirmation
// parameter shows up, then extracts the code.
func (a *Adapter) awaitConfirmation(ctx context.Context) (string, error) {
	const attempts = 10
	for i := 0; i < attempts; i++ {
		a.pause(ctx, time.Second)
		if err := ctx.Err(); err != nil {
			return "", err
		}

		url, err := a.client.CurrentURL(ctx)
		if err != nil {
			return "", err
		}
		if code, ok := extractConfirmationCode(url); ok {
			return code, nil
		}
	}
	return "", site.ErrConfirmationNotReached
}

func extractConfirmationCode(url string) (string, bool) {
	idx := strings.Index(url, confirmationParam)
	if idx < 0 {
		return "", false
	}
	code := url[idx+len(confirmationParam):]
	if amp := strings.IndexByte(code, '&'); amp >= 0 {
		code = code[:amp]
	}
	if code == "" {
		return "", false
	}
	return code, true
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
