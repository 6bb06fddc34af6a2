package booking

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemDatastore keeps the three relations in memory. Transactions run one
// at a time against a copy of the state and swap it in on commit, so a
// failed transaction leaves nothing behind. Backs the console's standalone
// mode and the test suites.
type MemDatastore struct {
	mu    sync.Mutex
	state memState
}

type memState struct {
	availabilities map[string]map[string]bool // date key -> set of caregivers
	vaccines       map[string]int
	appointments   map[int64]Appointment
}

func NewMemDatastore() *MemDatastore {
	return &MemDatastore{
		state: memState{
			availabilities: make(map[string]map[string]bool),
			vaccines:       make(map[string]int),
			appointments:   make(map[int64]Appointment),
		},
	}
}

func (s *MemDatastore) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.clone()
	if err := fn(&memTx{state: &next}); err != nil {
		return err
	}
	s.state = next
	return nil
}

func (st memState) clone() memState {
	next := memState{
		availabilities: make(map[string]map[string]bool, len(st.availabilities)),
		vaccines:       make(map[string]int, len(st.vaccines)),
		appointments:   make(map[int64]Appointment, len(st.appointments)),
	}
	for date, caregivers := range st.availabilities {
		set := make(map[string]bool, len(caregivers))
		for name := range caregivers {
			set[name] = true
		}
		next.availabilities[date] = set
	}
	for name, doses := range st.vaccines {
		next.vaccines[name] = doses
	}
	for id, a := range st.appointments {
		next.appointments[id] = a
	}
	return next
}

type memTx struct {
	state *memState
}

func dateKey(date time.Time) string {
	return date.Format(DateLayout)
}

func (t *memTx) AvailableCaregivers(ctx context.Context, date time.Time) ([]string, error) {
	var names []string
	for name := range t.state.availabilities[dateKey(date)] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (t *memTx) HasAvailability(ctx context.Context, caregiver string, date time.Time) (bool, error) {
	return t.state.availabilities[dateKey(date)][caregiver], nil
}

func (t *memTx) InsertAvailability(ctx context.Context, caregiver string, date time.Time) error {
	key := dateKey(date)
	if t.state.availabilities[key] == nil {
		t.state.availabilities[key] = make(map[string]bool)
	}
	t.state.availabilities[key][caregiver] = true
	return nil
}

func (t *memTx) DeleteAvailability(ctx context.Context, caregiver string, date time.Time) error {
	delete(t.state.availabilities[dateKey(date)], caregiver)
	return nil
}

func (t *memTx) GetVaccine(ctx context.Context, name string) (*Vaccine, error) {
	doses, ok := t.state.vaccines[name]
	if !ok {
		return nil, ErrVaccineNotFound
	}
	return &Vaccine{Name: name, Doses: doses}, nil
}

func (t *memTx) InsertVaccine(ctx context.Context, v Vaccine) error {
	t.state.vaccines[v.Name] = v.Doses
	return nil
}

func (t *memTx) SetVaccineDoses(ctx context.Context, name string, doses int) error {
	t.state.vaccines[name] = doses
	return nil
}

func (t *memTx) ListVaccines(ctx context.Context) ([]Vaccine, error) {
	var out []Vaccine
	for name, doses := range t.state.vaccines {
		out = append(out, Vaccine{Name: name, Doses: doses})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (t *memTx) MaxAppointmentID(ctx context.Context) (int64, error) {
	var max int64
	for id := range t.state.appointments {
		if id > max {
			max = id
		}
	}
	return max, nil
}

func (t *memTx) InsertAppointment(ctx context.Context, a Appointment) error {
	t.state.appointments[a.ID] = a
	return nil
}

func (t *memTx) GetAppointment(ctx context.Context, id int64) (*Appointment, error) {
	a, ok := t.state.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	return &a, nil
}

func (t *memTx) DeleteAppointment(ctx context.Context, id int64) error {
	delete(t.state.appointments, id)
	return nil
}

func (t *memTx) AppointmentsByPatient(ctx context.Context, username string) ([]Appointment, error) {
	return t.listAppointments(func(a Appointment) bool { return a.Patient == username }), nil
}

func (t *memTx) AppointmentsByCaregiver(ctx context.Context, username string) ([]Appointment, error) {
	return t.listAppointments(func(a Appointment) bool { return a.Caregiver == username }), nil
}

func (t *memTx) listAppointments(match func(Appointment) bool) []Appointment {
	var out []Appointment
	for _, a := range t.state.appointments {
		if match(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
