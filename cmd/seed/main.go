package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/vaxsched/vaccine-scheduler/internal/account"
	"github.com/vaxsched/vaccine-scheduler/internal/booking"
	"github.com/vaxsched/vaccine-scheduler/internal/db"
	redisclient "github.com/vaxsched/vaccine-scheduler/internal/redis"
)

// Every seeded account gets the same demo password so the console and the
// simulator can log in as any of them.
const seedPassword = "Vax!demo1"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(context.Background(), pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	gofakeit.Seed(time.Now().UnixNano())

	engine := booking.NewEngine(
		booking.NewPgDatastore(pool),
		account.NewPgStore(pool),
		redisclient.NewNopLocker(),
	)

	caregivers, err := seedAccounts(context.Background(), engine, account.RoleCaregiver, 10)
	if err != nil {
		log.Fatalf("seed caregivers: %v", err)
	}
	if _, err := seedAccounts(context.Background(), engine, account.RolePatient, 50); err != nil {
		log.Fatalf("seed patients: %v", err)
	}
	if err := seedVaccines(context.Background(), engine, caregivers[0]); err != nil {
		log.Fatalf("seed vaccines: %v", err)
	}
	if err := seedAvailabilities(context.Background(), engine, caregivers, 14); err != nil {
		log.Fatalf("seed availabilities: %v", err)
	}

	log.Println("seed complete")
}

func seedAccounts(ctx context.Context, engine *booking.Engine, role account.Role, count int) ([]string, error) {
	log.Printf("seeding %d %s accounts", count, role)

	usernames := make([]string, 0, count)
	for i := 0; i < count; i++ {
		username := fmt.Sprintf("%s-%s%d", role, gofakeit.Username(), i)
		if err := engine.Register(ctx, username, seedPassword, role); err != nil {
			return nil, fmt.Errorf("register %s: %w", username, err)
		}
		usernames = append(usernames, username)
	}
	return usernames, nil
}

func seedVaccines(ctx context.Context, engine *booking.Engine, caregiver string) error {
	vaccines := []string{"Pfizer", "Moderna", "AstraZeneca", "Novavax", "Janssen"}
	log.Printf("seeding %d vaccines", len(vaccines))

	sess := booking.AuthenticatedSession(caregiver, account.RoleCaregiver)
	for _, name := range vaccines {
		if err := engine.AddDoses(ctx, &sess, name, gofakeit.Number(20, 200)); err != nil {
			return fmt.Errorf("add doses for %s: %w", name, err)
		}
	}
	return nil
}

func seedAvailabilities(ctx context.Context, engine *booking.Engine, caregivers []string, days int) error {
	log.Printf("seeding availabilities for %d caregivers over %d days", len(caregivers), days)

	start := time.Now().Truncate(24 * time.Hour)
	for _, caregiver := range caregivers {
		sess := booking.AuthenticatedSession(caregiver, account.RoleCaregiver)
		for day := 0; day < days; day++ {
			if gofakeit.Bool() {
				continue
			}
			date := start.AddDate(0, 0, day)
			if err := engine.PublishAvailability(ctx, &sess, date); err != nil {
				return fmt.Errorf("publish %s on %s: %w", caregiver, date.Format(booking.DateLayout), err)
			}
		}
	}
	return nil
}
