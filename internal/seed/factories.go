// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"blogchef/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// spamLines trip the profanity filter so seeded databases always contain a
// few posts sitting in the moderation queue.
var spamLines = []string{
	"buy cheap viagra now",
	"win big at our online casino tonight",
	"cheap cialis no prescription needed",
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db  *gorm.DB
	rnd *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{db: db, rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:     gofakeit.Name(),
		Email:    fmt.Sprintf("%d.%s", gofakeit.Number(100, 999), gofakeit.Email()),
		Password: string(hashedPassword),
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePost constructs and persists a sample `models.Post` for the given
// user. Generated content is food themed and clean, so the post passes the
// moderation gate unless an override says otherwise.
func (f *Factory) CreatePost(user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	dishes := []string{gofakeit.Breakfast(), gofakeit.Lunch(), gofakeit.Dinner(), gofakeit.Dessert()}
	dish := dishes[f.rnd.Intn(len(dishes))]

	post := &models.Post{
		Title:      dish,
		Content:    fmt.Sprintf("%s\n\n%s", gofakeit.Sentence(12), gofakeit.Paragraph(1, 3, 8, "\n")),
		UserID:     user.ID,
		IsApproved: true,
	}

	// realistic created_at spread over the past 90 days
	daysBack := f.rnd.Intn(90)
	hoursBack := f.rnd.Intn(24)
	post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

	for _, override := range overrides {
		override(post)
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateFlaggedPost persists a post whose content trips the profanity
// filter, left unapproved as the moderation gate would leave it.
func (f *Factory) CreateFlaggedPost(user *models.User) (*models.Post, error) {
	line := spamLines[f.rnd.Intn(len(spamLines))]
	return f.CreatePost(user, func(p *models.Post) {
		p.Title = "Limited time offer"
		p.Content = line
		p.IsApproved = false
	})
}
