package main

import (
	"log"

	"word-imposter/internal/config"
	"word-imposter/internal/db"
	"word-imposter/internal/words"

	"gorm.io/gorm/clause"
)

// Seeds the built-in category and word catalogue. Re-running is harmless:
// existing rows are left untouched.
func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}

	conn, err := db.Open()
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	inserted := 0
	for _, category := range words.Catalogue() {
		record := db.Category{Slug: category.Slug, Name: category.Name}
		err := conn.Clauses(clause.OnConflict{DoNothing: true}).
			Where("slug = ?", category.Slug).
			FirstOrCreate(&record).Error
		if err != nil {
			log.Fatalf("failed to seed category %q: %v", category.Slug, err)
		}
		for _, text := range category.Words {
			word := db.Word{CategoryID: record.ID, Text: text}
			result := conn.Clauses(clause.OnConflict{DoNothing: true}).Create(&word)
			if result.Error != nil {
				log.Fatalf("failed to seed word %q: %v", text, result.Error)
			}
			inserted += int(result.RowsAffected)
		}
	}
	log.Printf("seeded %d words across %d categories", inserted, len(words.Catalogue()))
}
