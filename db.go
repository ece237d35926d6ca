// db.go - SQLite storage for visitor metrics and received submissions
package main

import (
	"database/sql"
	"log"
	"time"

	_ "modernc.org/sqlite"
)

var db *sql.DB

// initDB opens the SQLite database and creates the schema on first run
func initDB(path string) {
	var err error
	db, err = sql.Open("sqlite", path)
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}

	createVisitors := `
	CREATE TABLE IF NOT EXISTS visitors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		hashed_ip TEXT NOT NULL,  -- Store hashed IP instead of raw IP
		user_agent TEXT,
		path TEXT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		country TEXT
	)`
	if _, err := db.Exec(createVisitors); err != nil {
		log.Fatal("Failed to create visitors table:", err)
	}

	createSubmissions := `
	CREATE TABLE IF NOT EXISTS submissions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		first_name TEXT NOT NULL,
		email TEXT NOT NULL,
		enquiry_type TEXT NOT NULL,
		comment TEXT NOT NULL,
		delivered INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := db.Exec(createSubmissions); err != nil {
		log.Fatal("Failed to create submissions table:", err)
	}
}

// recordSubmission keeps a copy of a received submission for the admin view,
// with whether the delivery transport accepted it
func recordSubmission(fields FormFields, delivered bool) {
	_, err := db.Exec(`
		INSERT INTO submissions (first_name, email, enquiry_type, comment, delivered, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, fields.FirstName, fields.Email, string(fields.Type), fields.Comment, delivered, time.Now())

	if err != nil {
		log.Printf("Error recording submission: %v", err)
	}
}
