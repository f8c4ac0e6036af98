package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Demo-user generation bounds. The bounding box covers the Minsk metro area
// so seeded users actually land inside each other's search radii.
const (
	seedLatMin = 53.85
	seedLatMax = 53.94
	seedLngMin = 27.44
	seedLngMax = 27.64
)

var (
	seedAgeDeltas = []int{1, 2, 3, 5, 8, 13}
	seedRadii     = []float64{10, 25}
	seedTiers     = []Subscription{SubscriptionBase, SubscriptionVIP, SubscriptionPremium}
)

// SeedDemoUsers resets the database and populates it with count demo users,
// each with a shared location and preference profile.
//
// Behavior:
//  1. Clears all tables.
//  2. Creates count users with hashed passwords, random sex/age/tier and a
//     position inside the seed bounding box.
//  3. ~10% of users are generated with preferred_sex equal to their own sex.
//
// Compatible with both MySQL and SQLite (AUTO_INCREMENT reset skipped for SQLite).
func SeedDemoUsers(db *gorm.DB, count int) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// --- Fresh start ---
	for _, table := range []string{"messages", "chat_participants", "chats", "relationships", "locations", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	switch db.Dialector.Name() {
	case "mysql":
		db.Exec("ALTER TABLE users AUTO_INCREMENT = 1")
		db.Exec("ALTER TABLE chats AUTO_INCREMENT = 1")
		db.Exec("ALTER TABLE messages AUTO_INCREMENT = 1")
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence WHERE name IN ('users', 'chats', 'messages')")
	}

	log.Println("Cleared existing data")

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	for i := 1; i <= count; i++ {
		sex := SexMale
		if r.Intn(2) == 0 {
			sex = SexFemale
		}

		// 90% hetero, 10% homo
		preferredSex := sex.Opposite()
		if r.Intn(100) < 10 {
			preferredSex = sex
		}

		age := 18 + r.Intn(37)
		deltaMinus := seedAgeDeltas[r.Intn(len(seedAgeDeltas))]
		deltaPlus := seedAgeDeltas[r.Intn(len(seedAgeDeltas))]
		tier := seedTiers[r.Intn(len(seedTiers))]

		user := User{
			Username:        fmt.Sprintf("user%d", i),
			Email:           fmt.Sprintf("user%d@example.com", i),
			PasswordHash:    string(hash),
			Sex:             sex,
			Age:             age,
			PreferredSex:    preferredSex,
			PreferredAgeMin: age - deltaMinus,
			PreferredAgeMax: age + deltaPlus,
			Subscription:    tier,
			SearchRadiusKm:  seedRadii[r.Intn(len(seedRadii))],
			SwipesRemaining: defaultSwipes(tier),
			Location: &Location{
				Longitude: seedLngMin + r.Float64()*(seedLngMax-seedLngMin),
				Latitude:  seedLatMin + r.Float64()*(seedLatMax-seedLatMin),
			},
		}

		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
	}

	log.Printf("Seeded %d users.", count)
	return nil
}

func defaultSwipes(tier Subscription) int {
	if n := tier.Policy().DailySwipes; n > 0 {
		return n
	}
	return 0
}
