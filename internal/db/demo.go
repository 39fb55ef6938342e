package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// DemoTable is the dataset shown by default for the demo database.
const DemoTable = "visit_log"

const demoVisitCount = 64

const demoSchema = `
CREATE TABLE IF NOT EXISTS restaurants (
    id           INTEGER PRIMARY KEY,
    name         TEXT NOT NULL,
    city         TEXT,
    neighborhood TEXT,
    cuisine      TEXT,
    price_range  TEXT CHECK(price_range IN ('$','$$','$$$','$$$$') OR price_range IS NULL),
    created_at   TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
);

CREATE TABLE IF NOT EXISTS visits (
    id            INTEGER PRIMARY KEY,
    restaurant_id INTEGER NOT NULL REFERENCES restaurants(id),
    visited_on    DATE,
    rating        REAL CHECK(rating BETWEEN 1 AND 10 OR rating IS NULL),
    notes         TEXT,
    would_return  INTEGER CHECK(would_return IN (0,1) OR would_return IS NULL)
);

CREATE INDEX IF NOT EXISTS idx_visits_restaurant_id ON visits(restaurant_id);

CREATE VIEW IF NOT EXISTS visit_log AS
SELECT
    v.visited_on AS visited_on,
    r.name AS restaurant,
    r.city AS city,
    r.cuisine AS cuisine,
    r.price_range AS price,
    v.rating AS rating,
    CASE v.would_return WHEN 1 THEN 'yes' WHEN 0 THEN 'no' END AS would_return,
    v.notes AS notes
FROM visits v
JOIN restaurants r ON v.restaurant_id = r.id;
`

type demoRestaurant struct {
	name         string
	city         string
	neighborhood string
	cuisine      string
	priceRange   string
}

var demoRestaurants = []demoRestaurant{
	{"Café Lumière", "Montréal", "Plateau", "French", "$$"},
	{"Phở Hòa", "Seattle", "International District", "Vietnamese", "$"},
	{"Bánh Mì Saigon", "San Francisco", "Tenderloin", "Vietnamese", "$"},
	{"Smörgås Chef", "New York", "Financial District", "Scandinavian", "$$$"},
	{"Crème & Co", "Paris", "Le Marais", "Bakery", "$$"},
	{"Taquería El Farolito", "San Francisco", "Mission", "Mexican", "$"},
	{"Osteria Francescana", "Modena", "", "Italian", "$$$$"},
	{"Shake Shack", "New York", "Madison Square", "Burgers", "$"},
	{"Noma", "Copenhagen", "Christianshavn", "Nordic", "$$$$"},
	{"Katz's Delicatessen", "New York", "Lower East Side", "Deli", "$$"},
	{"Sushi Saito", "Tokyo", "Roppongi", "Japanese", "$$$$"},
	{"Ichiran", "Tokyo", "Shibuya", "Ramen", "$"},
	{"Tartine Bakery", "San Francisco", "Mission", "Bakery", "$$"},
	{"Pujol", "Mexico City", "Polanco", "Mexican", "$$$$"},
	{"Dishoom", "London", "Covent Garden", "Indian", "$$"},
	{"St. John", "London", "Smithfield", "British", "$$$"},
	{"Zuni Café", "San Francisco", "Hayes Valley", "Californian", "$$$"},
	{"Joe's Pizza", "New York", "Greenwich Village", "Pizza", "$"},
	{"L'As du Fallafel", "Paris", "Le Marais", "Middle Eastern", "$"},
	{"Gjelina", "Los Angeles", "Venice", "Californian", "$$$"},
	{"Mäder Stübli", "Zürich", "", "Swiss", ""},
	{"Açaí Corner", "São Paulo", "Pinheiros", "Brazilian", "$"},
}

var demoNotes = []string{
	"",
	"Get the tasting menu",
	"<b>Must</b> order the tarte tatin",
	"Long line,\nworth it",
	"Service was slow",
	"Great for groups &amp; birthdays",
	"Cash only",
	"Ask for the counter seats",
	"-",
}

// seedDemo fills the demo tables with a deterministic journal.
func seedDemo(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed: %w", err)
	}
	defer tx.Rollback()

	insertRestaurant, err := tx.PrepareContext(ctx, `
		INSERT INTO restaurants (id, name, city, neighborhood, cuisine, price_range)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare restaurant insert: %w", err)
	}
	defer insertRestaurant.Close()

	for i, r := range demoRestaurants {
		if _, err := insertRestaurant.ExecContext(ctx, i+1, r.name, nullString(r.city), nullString(r.neighborhood), nullString(r.cuisine), nullString(r.priceRange)); err != nil {
			return fmt.Errorf("failed to insert restaurant: %w", err)
		}
	}

	insertVisit, err := tx.PrepareContext(ctx, `
		INSERT INTO visits (restaurant_id, visited_on, rating, notes, would_return)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare visit insert: %w", err)
	}
	defer insertVisit.Close()

	first := time.Date(2023, 1, 7, 0, 0, 0, 0, time.UTC)
	for i := 0; i < demoVisitCount; i++ {
		restaurantID := (i*7)%len(demoRestaurants) + 1
		visitedOn := first.AddDate(0, 0, i*5+i%3).Format("2006-01-02")

		var rating interface{}
		if i%11 != 4 {
			rating = float64(3+(i*13)%15) / 2
		}
		var wouldReturn interface{}
		switch i % 4 {
		case 0, 1:
			wouldReturn = 1
		case 2:
			wouldReturn = 0
		}

		if _, err := insertVisit.ExecContext(ctx, restaurantID, visitedOn, rating, nullString(demoNotes[i%len(demoNotes)]), wouldReturn); err != nil {
			return fmt.Errorf("failed to insert visit: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed: %w", err)
	}
	return nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
