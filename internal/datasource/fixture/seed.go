package fixture

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simp-lee/petadmin/internal/domain"
	"github.com/simp-lee/petadmin/internal/pkg"
)

// seed inserts the demo data set when the members table is empty. It
// reports whether anything was written.
func (s *Source) seed(ctx context.Context, adminEmail, adminPassword string) (bool, error) {
	if adminEmail == "" || adminPassword == "" {
		return false, errors.New("admin email and password are required")
	}

	db := s.db.WithContext(ctx)
	var n int64
	if err := db.Model(&domain.Member{}).Count(&n).Error; err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	adminHash, err := s.hashPassword(adminPassword)
	if err != nil {
		return false, err
	}
	// Demo members get an unguessable password; only the admin can log in.
	memberHash, err := s.hashPassword(uuid.NewString())
	if err != nil {
		return false, err
	}

	base := s.now().UTC().Truncate(time.Minute).Add(-30 * 24 * time.Hour)
	at := func(days int) domain.Timestamp {
		return domain.NewTimestamp(base.Add(time.Duration(days) * 24 * time.Hour))
	}

	members := []domain.Member{
		{ID: 1, Email: adminEmail, Nickname: "admin", Role: RoleAdmin, Status: domain.MemberActivated, PasswordHash: adminHash, CreatedAt: at(0)},
		{ID: 2, Email: "kim@example.com", Nickname: "doglover_kim", Role: "MEMBER", Status: domain.MemberActivated, PasswordHash: memberHash, CreatedAt: at(2)},
		{ID: 3, Email: "lee@example.com", Nickname: "catperson", Role: "MEMBER", Status: domain.MemberActivated, PasswordHash: memberHash, CreatedAt: at(5)},
		{ID: 4, Email: "park@example.com", Nickname: "birdwatcher", Role: "MEMBER", Status: domain.MemberDeactivated, PasswordHash: memberHash, CreatedAt: at(9)},
		{ID: 5, Email: "choi@example.com", Nickname: "hamster_mom", Role: "MEMBER", Status: domain.MemberActivated, PasswordHash: memberHash, CreatedAt: at(14)},
	}

	posts := []domain.Post{
		{ID: 1, Type: domain.PostTypeLost, Title: "Lost beagle near the river park", Content: "Brown and white, answers to Coco.", PetName: "Coco", Breed: "Beagle", Location: "River Park", AuthorID: 2, AuthorNickname: "doglover_kim", CreatedAt: at(3)},
		{ID: 2, Type: domain.PostTypeFound, Title: "Found grey cat at the bus stop", Content: "Very friendly, no collar.", Breed: "Domestic shorthair", Location: "Central Station", AuthorID: 3, AuthorNickname: "catperson", CreatedAt: at(6)},
		{ID: 3, Type: domain.PostTypeLost, Title: "Missing parrot", Content: "Green parrot, says hello.", PetName: "Kiwi", Breed: "Amazon parrot", Location: "North Hill", AuthorID: 4, AuthorNickname: "birdwatcher", AIGenerated: true, CreatedAt: at(10)},
		{ID: 4, Type: domain.PostTypeFound, Title: "Found small dog with red collar", Content: "Waiting at the vet clinic.", Breed: "Maltese", Location: "Elm Street", AuthorID: 5, AuthorNickname: "hamster_mom", AIGenerated: true, CreatedAt: at(15)},
		{ID: 5, Type: domain.PostTypeLost, Title: "Lost hamster in the apartment block", Content: "Golden hamster, very small.", PetName: "Nugget", Location: "Maple Apartments", AuthorID: 5, AuthorNickname: "hamster_mom", CreatedAt: at(18)},
		{ID: 6, Type: domain.PostTypeFound, Title: "Found puppy at the market", Content: "Black puppy, about three months.", Location: "East Market", AuthorID: 2, AuthorNickname: "doglover_kim", AIGenerated: true, CreatedAt: at(21)},
	}

	reports := []domain.Report{
		{ID: 1, Type: domain.PostTypeLost, PostID: 3, PostTitle: posts[2].Title, ReporterID: 3, ReporterNickname: "catperson", Reason: "SPAM", Content: "Same post every day.", Status: domain.ReportPending, CreatedAt: at(11)},
		{ID: 2, Type: domain.PostTypeFound, PostID: 4, PostTitle: posts[3].Title, ReporterID: 2, ReporterNickname: "doglover_kim", Reason: "FAKE", Content: "This photo is from a stock site.", Status: domain.ReportPending, CreatedAt: at(16)},
		{ID: 3, Type: domain.PostTypeFound, PostID: 6, PostTitle: posts[5].Title, ReporterID: 5, ReporterNickname: "hamster_mom", Reason: "INAPPROPRIATE", Status: domain.ReportPending, CreatedAt: at(22)},
	}

	err = pkg.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.Create(&members).Error; err != nil {
			return err
		}
		if err := tx.Create(&posts).Error; err != nil {
			return err
		}
		return tx.Create(&reports).Error
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
