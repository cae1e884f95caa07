package seed

import (
	"fmt"
	"log"

	"blogchef/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	NumFlagged  int
	ShouldClean bool
}

// Seed populates the database with test data: users, approved posts, and a
// handful of flagged posts waiting in the moderation queue.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Starting database seeding with %d users, %d posts, %d flagged...",
		opts.NumUsers, opts.NumPosts, opts.NumFlagged)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	f := NewFactory(db)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("%d test users created", len(users))
	if len(users) == 0 {
		return nil
	}

	for i := 0; i < opts.NumPosts; i++ {
		author := users[i%len(users)]
		if _, err := f.CreatePost(author); err != nil {
			return fmt.Errorf("failed to create post: %w", err)
		}
	}
	log.Printf("%d posts created", opts.NumPosts)

	for i := 0; i < opts.NumFlagged; i++ {
		author := users[i%len(users)]
		if _, err := f.CreateFlaggedPost(author); err != nil {
			return fmt.Errorf("failed to create flagged post: %w", err)
		}
	}
	log.Printf("%d flagged posts created", opts.NumFlagged)

	return nil
}

// clearData removes seeded rows. Posts go first so user deletion does not
// trip the foreign key.
func clearData(db *gorm.DB) error {
	if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Post{}).Error; err != nil {
		return err
	}
	return db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.User{}).Error
}
