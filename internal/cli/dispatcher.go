// Package cli is the line-oriented console surface: it parses commands,
// calls the booking engine and renders results as user-facing text.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vaxsched/vaccine-scheduler/internal/account"
	"github.com/vaxsched/vaccine-scheduler/internal/booking"
)

type Dispatcher struct {
	engine *booking.Engine
	sess   booking.Session
	out    io.Writer
}

func New(engine *booking.Engine, out io.Writer) *Dispatcher {
	return &Dispatcher{engine: engine, out: out}
}

// Run reads commands until quit or EOF.
func (d *Dispatcher) Run(ctx context.Context, in io.Reader) error {
	d.printGreeting()
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(d.out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		if quit := d.Execute(ctx, scanner.Text()); quit {
			return nil
		}
	}
}

func (d *Dispatcher) printGreeting() {
	fmt.Fprintln(d.out)
	fmt.Fprintln(d.out, "Welcome to the COVID-19 Vaccine Reservation Scheduling Application!")
	fmt.Fprintln(d.out, "*** Please enter one of the following commands ***")
	fmt.Fprintln(d.out, "> create_patient <username> <password>")
	fmt.Fprintln(d.out, "> create_caregiver <username> <password>")
	fmt.Fprintln(d.out, "> login_patient <username> <password>")
	fmt.Fprintln(d.out, "> login_caregiver <username> <password>")
	fmt.Fprintln(d.out, "> search_caregiver_schedule <date>")
	fmt.Fprintln(d.out, "> reserve <date> <vaccine>")
	fmt.Fprintln(d.out, "> upload_availability <date>")
	fmt.Fprintln(d.out, "> cancel <appointment_id>")
	fmt.Fprintln(d.out, "> add_doses <vaccine> <number>")
	fmt.Fprintln(d.out, "> show_appointments")
	fmt.Fprintln(d.out, "> logout")
	fmt.Fprintln(d.out, "> quit")
	fmt.Fprintln(d.out)
}

// Execute runs one command line and reports whether the loop should quit.
func (d *Dispatcher) Execute(ctx context.Context, line string) bool {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		fmt.Fprintln(d.out, "Please try again!")
		return false
	}
	switch tokens[0] {
	case "create_patient":
		d.createAccount(ctx, tokens, account.RolePatient)
	case "create_caregiver":
		d.createAccount(ctx, tokens, account.RoleCaregiver)
	case "login_patient":
		d.login(ctx, tokens, account.RolePatient)
	case "login_caregiver":
		d.login(ctx, tokens, account.RoleCaregiver)
	case "search_caregiver_schedule":
		d.searchSchedule(ctx, tokens)
	case "reserve":
		d.reserve(ctx, tokens)
	case "upload_availability":
		d.uploadAvailability(ctx, tokens)
	case "cancel":
		d.cancel(ctx, tokens)
	case "add_doses":
		d.addDoses(ctx, tokens)
	case "show_appointments":
		d.showAppointments(ctx, tokens)
	case "logout":
		d.logout(tokens)
	case "quit":
		fmt.Fprintln(d.out, "Bye!")
		return true
	default:
		fmt.Fprintln(d.out, "Invalid operation name!")
	}
	return false
}

func (d *Dispatcher) createAccount(ctx context.Context, tokens []string, role account.Role) {
	if len(tokens) != 3 {
		fmt.Fprintln(d.out, "Failed to create user.")
		return
	}
	username, password := tokens[1], tokens[2]
	err := d.engine.Register(ctx, username, password, role)
	switch {
	case err == nil:
		fmt.Fprintln(d.out, "Created user "+username)
	case errors.Is(err, account.ErrWeakPassword):
		fmt.Fprintln(d.out, "- Password must be at least 8 characters long")
		fmt.Fprintln(d.out, "- Must include at least one character from each of the following types:")
		fmt.Fprintln(d.out, "  - Uppercase letters (A-Z)")
		fmt.Fprintln(d.out, "  - Lowercase letters (a-z)")
		fmt.Fprintln(d.out, "  - Numbers (0-9)")
		fmt.Fprintln(d.out, "  - Special characters (e.g., !@#$%^&*()_+-=[]{}|;':\",.<>?/)")
	case errors.Is(err, account.ErrDuplicateUsername):
		fmt.Fprintln(d.out, "Username taken, try again!")
	default:
		fmt.Fprintln(d.out, "Failed to create user.")
	}
}

func (d *Dispatcher) login(ctx context.Context, tokens []string, role account.Role) {
	if d.sess.Authenticated() {
		fmt.Fprintln(d.out, "User already logged in.")
		return
	}
	if len(tokens) != 3 {
		fmt.Fprintln(d.out, "Login failed.")
		return
	}
	if err := d.engine.Login(ctx, &d.sess, role, tokens[1], tokens[2]); err != nil {
		fmt.Fprintln(d.out, "Login failed.")
		return
	}
	fmt.Fprintln(d.out, "Logged in as: "+tokens[1])
}

func (d *Dispatcher) searchSchedule(ctx context.Context, tokens []string) {
	if !d.sess.Authenticated() {
		fmt.Fprintln(d.out, "Please login first!")
		return
	}
	if len(tokens) != 2 {
		fmt.Fprintln(d.out, "Please try again!")
		return
	}
	date, err := booking.ParseDate(tokens[1])
	if err != nil {
		fmt.Fprintln(d.out, "Please enter a valid date!")
		return
	}
	sched, err := d.engine.SearchSchedule(ctx, &d.sess, date)
	if err != nil {
		fmt.Fprintln(d.out, "Please try again!")
		return
	}
	if len(sched.Caregivers) == 0 {
		fmt.Fprintln(d.out, "No available caregiver!")
		return
	}
	fmt.Fprintln(d.out, "Available Caregivers: "+strings.Join(sched.Caregivers, " "))
	for _, v := range sched.Vaccines {
		fmt.Fprintf(d.out, "Vaccines: %s Available Doses: %d\n", v.Name, v.Doses)
	}
}

func (d *Dispatcher) reserve(ctx context.Context, tokens []string) {
	if !d.sess.Authenticated() {
		fmt.Fprintln(d.out, "Please login first!")
		return
	}
	if d.sess.Role() == account.RoleCaregiver {
		fmt.Fprintln(d.out, "Please login as a patient!")
		return
	}
	if len(tokens) != 3 {
		fmt.Fprintln(d.out, "Please try again!")
		return
	}
	date, err := booking.ParseDate(tokens[1])
	if err != nil {
		fmt.Fprintln(d.out, "Please enter a valid date!")
		return
	}
	appt, err := d.engine.Reserve(ctx, &d.sess, date, tokens[2])
	switch {
	case err == nil:
		fmt.Fprintf(d.out, "Appointment ID: %d\n", appt.ID)
		fmt.Fprintln(d.out, "Caregiver username: "+appt.Caregiver)
	case errors.Is(err, booking.ErrNoAvailability):
		fmt.Fprintln(d.out, "No available caregiver!")
	case errors.Is(err, booking.ErrInsufficientDoses):
		fmt.Fprintln(d.out, "No available vaccine!")
	default:
		fmt.Fprintln(d.out, "Please try again!")
	}
}

func (d *Dispatcher) uploadAvailability(ctx context.Context, tokens []string) {
	if !d.sess.Authenticated() || d.sess.Role() != account.RoleCaregiver {
		fmt.Fprintln(d.out, "Please login as a caregiver first!")
		return
	}
	if len(tokens) != 2 {
		fmt.Fprintln(d.out, "Please try again!")
		return
	}
	date, err := booking.ParseDate(tokens[1])
	if err != nil {
		fmt.Fprintln(d.out, "Please enter a valid date!")
		return
	}
	if err := d.engine.PublishAvailability(ctx, &d.sess, date); err != nil {
		fmt.Fprintln(d.out, "Error occurred when uploading availability")
		return
	}
	fmt.Fprintln(d.out, "Availability uploaded!")
}

func (d *Dispatcher) cancel(ctx context.Context, tokens []string) {
	if !d.sess.Authenticated() {
		fmt.Fprintln(d.out, "Please login first!")
		return
	}
	if len(tokens) != 2 {
		fmt.Fprintln(d.out, "Please try again!")
		return
	}
	id, err := strconv.ParseInt(tokens[1], 10, 64)
	if err != nil {
		fmt.Fprintln(d.out, "Please try again!")
		return
	}
	if err := d.engine.Cancel(ctx, &d.sess, id); err != nil {
		if errors.Is(err, booking.ErrAppointmentNotFound) || errors.Is(err, booking.ErrInvalidInput) {
			fmt.Fprintln(d.out, "You have no such appointment!")
		} else {
			fmt.Fprintln(d.out, "Please try again!")
		}
		return
	}
	fmt.Fprintln(d.out, "Canceled successfully!")
}

func (d *Dispatcher) addDoses(ctx context.Context, tokens []string) {
	if !d.sess.Authenticated() || d.sess.Role() != account.RoleCaregiver {
		fmt.Fprintln(d.out, "Please login as a caregiver first!")
		return
	}
	if len(tokens) != 3 {
		fmt.Fprintln(d.out, "Please try again!")
		return
	}
	count, err := strconv.Atoi(tokens[2])
	if err != nil {
		fmt.Fprintln(d.out, "Please try again!")
		return
	}
	if err := d.engine.AddDoses(ctx, &d.sess, tokens[1], count); err != nil {
		fmt.Fprintln(d.out, "Error occurred when adding doses")
		return
	}
	fmt.Fprintln(d.out, "Doses updated!")
}

func (d *Dispatcher) showAppointments(ctx context.Context, tokens []string) {
	if !d.sess.Authenticated() {
		fmt.Fprintln(d.out, "Please login first!")
		return
	}
	if len(tokens) != 1 {
		fmt.Fprintln(d.out, "Please try again!")
		return
	}
	appts, err := d.engine.ListAppointments(ctx, &d.sess)
	if err != nil {
		fmt.Fprintln(d.out, "Please try again!")
		return
	}
	if len(appts) == 0 {
		fmt.Fprintln(d.out, "You have no appointment! Having a good day!")
		return
	}
	for _, a := range appts {
		fmt.Fprintf(d.out, "Appointment ID: %d\n", a.ID)
		fmt.Fprintln(d.out, "Vaccine: "+a.Vaccine)
		fmt.Fprintln(d.out, "Date: "+a.Date.Format(booking.DateLayout))
		if d.sess.Role() == account.RolePatient {
			fmt.Fprintln(d.out, "Caregiver: "+a.Caregiver)
		} else {
			fmt.Fprintln(d.out, "Patient: "+a.Patient)
		}
	}
}

func (d *Dispatcher) logout(tokens []string) {
	if !d.sess.Authenticated() {
		fmt.Fprintln(d.out, "Please login first.")
		return
	}
	if len(tokens) != 1 {
		fmt.Fprintln(d.out, "Please try again!")
		return
	}
	if err := d.engine.Logout(&d.sess); err != nil {
		fmt.Fprintln(d.out, "Please try again!")
		return
	}
	fmt.Fprintln(d.out, "Successfully logged out!")
}
