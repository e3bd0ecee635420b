package fixture

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"github.com/simp-lee/petadmin/internal/domain"
	"github.com/simp-lee/petadmin/internal/pkg"
)

var reportSortFields = []string{"id", "created_at"}

// ListReports returns a page of reports, newest first. Reports have no
// search.
func (s *Source) ListReports(ctx context.Context, token string, q domain.PageQuery) (*domain.PageResult[domain.Report], error) {
	if _, err := s.authorize(ctx, token); err != nil {
		return nil, err
	}

	base := s.db.WithContext(ctx).Model(&domain.Report{})
	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, mapError(err)
	}

	var reports []domain.Report
	if err := base.Scopes(pkg.Paginate(q), pkg.Sort("", reportSortFields)).Find(&reports).Error; err != nil {
		return nil, mapError(err)
	}
	return pkg.NewPageResult(reports, total, q), nil
}

// IgnoreReport resolves a pending report without touching its post.
func (s *Source) IgnoreReport(ctx context.Context, token string, postType domain.PostType, id int64) error {
	if _, err := s.authorize(ctx, token); err != nil {
		return err
	}

	err := pkg.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		r, err := pendingReport(tx, postType, id)
		if err != nil {
			return err
		}
		return resolveReports(tx, map[string]any{"id": r.ID}, domain.ReportIgnored)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "report ignored", slog.Int64("report_id", id))
	return nil
}

// DeleteReport soft-deletes the reported post and resolves the report, and
// every other pending report on that post, as deleted. A post that is
// already gone only resolves the report.
func (s *Source) DeleteReport(ctx context.Context, token string, postType domain.PostType, id int64) error {
	if _, err := s.authorize(ctx, token); err != nil {
		return err
	}

	now := s.timestamp()
	var postID int64
	err := pkg.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		r, err := pendingReport(tx, postType, id)
		if err != nil {
			return err
		}
		postID = r.PostID

		err = deletePost(tx, r.Type, r.PostID, now)
		if err == nil {
			return nil
		}
		if !domain.IsNotFound(err) && !domain.IsConflict(err) {
			return err
		}
		return resolveReports(tx, map[string]any{"id": r.ID}, domain.ReportDeleted)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "report resolved by deleting post",
		slog.Int64("report_id", id),
		slog.Int64("post_id", postID),
	)
	return nil
}

// pendingReport loads report id, which must concern a post of postType and
// still be pending.
func pendingReport(tx *gorm.DB, postType domain.PostType, id int64) (*domain.Report, error) {
	var r domain.Report
	if err := tx.Where("type = ?", postType).First(&r, id).Error; err != nil {
		return nil, mapError(err)
	}
	if r.Resolved() || r.Status == domain.ReportResolved {
		return nil, domain.NewAppError(domain.CodeConflict, "report already resolved", nil)
	}
	return &r, nil
}
