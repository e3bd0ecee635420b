package fixture

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"github.com/simp-lee/petadmin/internal/domain"
	"github.com/simp-lee/petadmin/internal/pkg"
)

var (
	postSearchFields = []string{"title", "pet_name", "author_nickname"}
	postSortFields   = []string{"id", "created_at"}
)

// ListPosts returns a page of posts, deleted ones included, filtered by
// type and AI origin.
func (s *Source) ListPosts(ctx context.Context, token string, filter domain.PostFilter, q domain.PageQuery) (*domain.PageResult[domain.Post], error) {
	if _, err := s.authorize(ctx, token); err != nil {
		return nil, err
	}

	base := s.db.WithContext(ctx).Model(&domain.Post{}).
		Scopes(pkg.Search(q.SearchText, postSearchFields...))
	if filter.Type != "" && filter.Type != domain.PostTypeAll {
		base = base.Where("type = ?", filter.Type)
	}
	if filter.AIOnly {
		base = base.Where("ai_generated = ?", true)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, mapError(err)
	}

	var posts []domain.Post
	if err := base.Scopes(pkg.Paginate(q), pkg.Sort("", postSortFields)).Find(&posts).Error; err != nil {
		return nil, mapError(err)
	}
	return pkg.NewPageResult(posts, total, q), nil
}

// GetPost returns the post with id. A post of another type is not found.
func (s *Source) GetPost(ctx context.Context, token string, postType domain.PostType, id int64) (*domain.Post, error) {
	if _, err := s.authorize(ctx, token); err != nil {
		return nil, err
	}
	var p domain.Post
	if err := s.db.WithContext(ctx).Where("type = ?", postType).First(&p, id).Error; err != nil {
		return nil, mapError(err)
	}
	return &p, nil
}

// DeletePost soft-deletes a post and resolves its pending reports as
// deleted.
func (s *Source) DeletePost(ctx context.Context, token string, postType domain.PostType, id int64) error {
	if _, err := s.authorize(ctx, token); err != nil {
		return err
	}

	now := s.timestamp()
	err := pkg.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		return deletePost(tx, postType, id, now)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "post deleted",
		slog.String("type", string(postType)),
		slog.Int64("post_id", id),
	)
	return nil
}

func deletePost(tx *gorm.DB, postType domain.PostType, id int64, now domain.Timestamp) error {
	var p domain.Post
	if err := tx.Where("type = ?", postType).First(&p, id).Error; err != nil {
		return mapError(err)
	}
	if p.Deleted() {
		return domain.NewAppError(domain.CodeConflict, "post already deleted", nil)
	}
	if err := tx.Model(&p).Updates(map[string]any{
		"is_deleted": true,
		"deleted_at": now,
	}).Error; err != nil {
		return mapError(err)
	}
	return resolveReports(tx, map[string]any{"post_id": id, "type": postType}, domain.ReportDeleted)
}

// resolveReports marks the pending reports matching cond as resolved with
// action.
func resolveReports(tx *gorm.DB, cond map[string]any, action domain.ReportAction) error {
	err := tx.Model(&domain.Report{}).
		Where(cond).
		Where("status = ?", domain.ReportPending).
		Updates(map[string]any{
			"status":       domain.ReportResolved,
			"action_state": action,
		}).Error
	return mapError(err)
}
