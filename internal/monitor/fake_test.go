package monitor

import (
	"context"
	"fmt"
	"sync"

	"github.com/example/gaiola-watcher/internal/bookings"
	"github.com/example/gaiola-watcher/internal/catalog"
	"github.com/example/gaiola-watcher/internal/site"
)

// fakeAdapter is a scriptable site.Adapter. Availability is held per
// (day label, shift); reads return the value of the currently selected
// pair, mirroring the page's single shared readout.
type fakeAdapter struct {
	labels   []string
	location string

	counts map[string]map[catalog.Shift]int

	selDay   string
	selShift catalog.Shift

	listErr   error
	dayErr    error
	shiftErr  error
	readErr   error
	submitErr error

	submitCode string
	submits    int
	reloads    int
}

func newFakeAdapter(labels ...string) *fakeAdapter {
	return &fakeAdapter{
		labels:     labels,
		location:   "https://example.test/booking",
		counts:     map[string]map[catalog.Shift]int{},
		submitCode: "CODE1",
	}
}

func (f *fakeAdapter) set(label string, shift catalog.Shift, n int) {
	if f.counts[label] == nil {
		f.counts[label] = map[catalog.Shift]int{}
	}
	f.counts[label][shift] = n
}

func (f *fakeAdapter) ListBookableDays(context.Context) ([]string, error) {
	return f.labels, f.listErr
}

func (f *fakeAdapter) SelectDay(_ context.Context, label string) error {
	if f.dayErr != nil {
		return f.dayErr
	}
	f.selDay = label
	return nil
}

func (f *fakeAdapter) SelectShift(_ context.Context, shift catalog.Shift) error {
	if f.shiftErr != nil {
		return f.shiftErr
	}
	f.selShift = shift
	return nil
}

func (f *fakeAdapter) ReadAvailabilityCount(context.Context) (int, error) {
	if f.readErr != nil {
		return 0, f.readErr
	}
	return f.counts[f.selDay][f.selShift], nil
}

func (f *fakeAdapter) SubmitBookingForm(context.Context, site.Subject, site.Contact) (string, error) {
	f.submits++
	if f.submitErr != nil {
		return "", f.submitErr
	}
	return f.submitCode, nil
}

func (f *fakeAdapter) CurrentLocation(context.Context) (string, error) {
	return f.location, nil
}

func (f *fakeAdapter) Reload(context.Context) error {
	f.reloads++
	f.location = "https://example.test/booking"
	return nil
}

// memStore is an in-memory bookings.Store for loop tests.
type memStore struct {
	mu   sync.Mutex
	recs []bookings.Record
	err  error
}

func (s *memStore) Put(_ context.Context, name, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.recs = append(s.recs, bookings.Record{SubjectName: name, Code: code})
	return nil
}

func (s *memStore) FindByName(_ context.Context, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.recs {
		if r.SubjectName == name {
			return r.Code, nil
		}
	}
	return "", bookings.ErrNotFound
}

func (s *memStore) Delete(_ context.Context, name, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.recs {
		if r.SubjectName == name && r.Code == code {
			s.recs = append(s.recs[:i], s.recs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) List(context.Context) ([]bookings.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]bookings.Record(nil), s.recs...), nil
}

// memNotifier records sent messages.
type memNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (n *memNotifier) Send(_ context.Context, subscriber, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, fmt.Sprintf("%s: %s", subscriber, text))
	return nil
}

func (n *memNotifier) messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.sent...)
}

func testSubject() site.Subject {
	return site.Subject{
		Name:      "Mario",
		Surname:   "Rossi",
		Sex:       "M",
		BirthDate: "01/01/1990",
		TaxCode:   "RSSMRA90A01F839X",
	}
}

func testTask(subscriber, label string, shifts ...catalog.Shift) *Task {
	if len(shifts) == 0 {
		shifts = []catalog.Shift{catalog.Morning}
	}
	return &Task{
		Subscriber: subscriber,
		Subject:    testSubject(),
		Contact:    site.Contact{Email: "mario@example.test", Phone: "3334445566"},
		Dates:      []string{label},
		Shifts:     shifts,
	}
}
