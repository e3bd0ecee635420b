package fixture

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"github.com/simp-lee/petadmin/internal/domain"
	"github.com/simp-lee/petadmin/internal/pkg"
)

var (
	memberSearchFields = []string{"nickname", "email"}
	memberSortFields   = []string{"id", "nickname", "email", "created_at"}
)

const notDeleted = "(is_deleted IS NULL OR is_deleted = ?)"

// ListMembers returns a page of members matching q.SearchText against
// nickname or email. TotalUsers counts every member not deleted.
func (s *Source) ListMembers(ctx context.Context, token string, q domain.PageQuery) (*domain.MemberPage, error) {
	if _, err := s.authorize(ctx, token); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	var total int64
	base := db.Model(&domain.Member{}).Scopes(pkg.Search(q.SearchText, memberSearchFields...))
	if err := base.Count(&total).Error; err != nil {
		return nil, mapError(err)
	}

	var members []domain.Member
	if err := base.Scopes(pkg.Paginate(q), pkg.Sort("", memberSortFields)).Find(&members).Error; err != nil {
		return nil, mapError(err)
	}
	if err := s.fillCounts(db, members); err != nil {
		return nil, err
	}

	var users int64
	if err := db.Model(&domain.Member{}).Where(notDeleted, false).Count(&users).Error; err != nil {
		return nil, mapError(err)
	}

	return &domain.MemberPage{
		PageResult: *pkg.NewPageResult(members, total, q),
		TotalUsers: users,
	}, nil
}

type countRow struct {
	ID int64
	N  int64
}

func (s *Source) fillCounts(db *gorm.DB, members []domain.Member) error {
	if len(members) == 0 {
		return nil
	}
	ids := make([]int64, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}

	var posts, reports []countRow
	if err := db.Model(&domain.Post{}).Select("author_id AS id, COUNT(*) AS n").
		Where("author_id IN ?", ids).Group("author_id").Scan(&posts).Error; err != nil {
		return mapError(err)
	}
	if err := db.Model(&domain.Report{}).Select("reporter_id AS id, COUNT(*) AS n").
		Where("reporter_id IN ?", ids).Group("reporter_id").Scan(&reports).Error; err != nil {
		return mapError(err)
	}

	postCounts := make(map[int64]int64, len(posts))
	for _, r := range posts {
		postCounts[r.ID] = r.N
	}
	reportCounts := make(map[int64]int64, len(reports))
	for _, r := range reports {
		reportCounts[r.ID] = r.N
	}
	for i := range members {
		members[i].PostCount = postCounts[members[i].ID]
		members[i].ReportCount = reportCounts[members[i].ID]
	}
	return nil
}

// GetMember returns one member with the posts they wrote and the reports
// they filed, newest first.
func (s *Source) GetMember(ctx context.Context, token string, id int64) (*domain.MemberDetail, error) {
	if _, err := s.authorize(ctx, token); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	var detail domain.MemberDetail
	if err := db.First(&detail.Member, id).Error; err != nil {
		return nil, mapError(err)
	}
	if err := db.Where("author_id = ?", id).Order("id desc").Find(&detail.Activity.Posts).Error; err != nil {
		return nil, mapError(err)
	}
	if err := db.Where("reporter_id = ?", id).Order("id desc").Find(&detail.Activity.Reports).Error; err != nil {
		return nil, mapError(err)
	}
	detail.PostCount = int64(len(detail.Activity.Posts))
	detail.ReportCount = int64(len(detail.Activity.Reports))
	return &detail, nil
}

// SetMemberStatus activates or deactivates a member. Deleted members and
// the caller's own account cannot be changed.
func (s *Source) SetMemberStatus(ctx context.Context, token string, id int64, status domain.MemberStatus) error {
	claims, err := s.authorize(ctx, token)
	if err != nil {
		return err
	}
	if _, err := domain.ParseMemberStatus(string(status)); err != nil {
		return err
	}
	if self, _ := claims.MemberID(); self == id {
		return domain.NewAppError(domain.CodeValidation, "cannot change your own status", nil)
	}

	db := s.db.WithContext(ctx)
	var m domain.Member
	if err := db.First(&m, id).Error; err != nil {
		return mapError(err)
	}
	if isDeleted(m.IsDeleted) {
		return domain.NewAppError(domain.CodeConflict, "member is deleted", nil)
	}
	if err := db.Model(&m).Update("status", status).Error; err != nil {
		return mapError(err)
	}

	s.logger.InfoContext(ctx, "member status changed",
		slog.Int64("member_id", id),
		slog.String("status", string(status)),
	)
	return nil
}

// DeleteMember soft-deletes a member and every live post they wrote in one
// transaction.
func (s *Source) DeleteMember(ctx context.Context, token string, id int64) error {
	claims, err := s.authorize(ctx, token)
	if err != nil {
		return err
	}
	if self, _ := claims.MemberID(); self == id {
		return domain.NewAppError(domain.CodeValidation, "cannot delete your own account", nil)
	}

	now := s.timestamp()
	var cascaded int64
	err = pkg.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		var m domain.Member
		if err := tx.First(&m, id).Error; err != nil {
			return mapError(err)
		}
		if isDeleted(m.IsDeleted) {
			return domain.NewAppError(domain.CodeConflict, "member already deleted", nil)
		}
		if err := tx.Model(&m).Updates(map[string]any{
			"is_deleted": true,
			"deleted_at": now,
		}).Error; err != nil {
			return mapError(err)
		}
		res := tx.Model(&domain.Post{}).
			Where("author_id = ?", id).
			Where(notDeleted, false).
			Updates(map[string]any{"is_deleted": true, "deleted_at": now})
		if res.Error != nil {
			return mapError(res.Error)
		}
		cascaded = res.RowsAffected
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "member deleted",
		slog.Int64("member_id", id),
		slog.Int64("posts_deleted", cascaded),
	)
	return nil
}
