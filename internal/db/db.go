package db

import (
	"database/sql"
	"log"

	_ "github.com/go-sql-driver/mysql"
)

func InitDB(dbURL string) *sql.DB {
	db, err := sql.Open("mysql", dbURL)
	if err != nil {
		log.Fatal("Could not open database connection:", err)
	}

	err = db.Ping()
	if err != nil {
		log.Fatal("Database is not responding:", err)
	}

	log.Println("Connected to database")
	return db
}

func RunMigrations(db *sql.DB) {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS capitals (
			user_id VARCHAR(128) PRIMARY KEY,
			amount DECIMAL(20,2) NOT NULL,
			periodicity VARCHAR(16) NOT NULL,
			created_at DATETIME(3) DEFAULT CURRENT_TIMESTAMP(3),
			updated_at DATETIME(3) DEFAULT CURRENT_TIMESTAMP(3) ON UPDATE CURRENT_TIMESTAMP(3)
		);`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id CHAR(36) PRIMARY KEY,
			user_id VARCHAR(128) NOT NULL,
			type VARCHAR(10) NOT NULL,
			amount DECIMAL(20,2) NOT NULL,
			category VARCHAR(100) NOT NULL,
			tx_date DATETIME(3) NOT NULL,
			note VARCHAR(300),
			source VARCHAR(50) NOT NULL DEFAULT 'manual',
			remaining_capital DECIMAL(20,2) NOT NULL,
			created_at DATETIME(3) DEFAULT CURRENT_TIMESTAMP(3),
			updated_at DATETIME(3) DEFAULT CURRENT_TIMESTAMP(3) ON UPDATE CURRENT_TIMESTAMP(3),
			INDEX idx_user_date_id (user_id, tx_date, id)
		);`,
	}

	for _, q := range queries {
		_, err := db.Exec(q)
		if err != nil {
			log.Fatal("Migration failed:", err)
		}
	}
	log.Println("Migrations completed")
}
