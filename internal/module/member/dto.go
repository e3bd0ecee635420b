package member

import "github.com/simp-lee/petadmin/internal/domain"

// StatusRequest is the body of PATCH /members/:id/status.
type StatusRequest struct {
	Status string `json:"status" form:"status" binding:"required,oneof=ACTIVATED DEACTIVATED activated deactivated"`
}

// StatusResult echoes the applied status.
type StatusResult struct {
	ID     int64               `json:"id"`
	Status domain.MemberStatus `json:"status"`
}

// DeleteResult identifies the deleted member.
type DeleteResult struct {
	ID      int64 `json:"id"`
	Deleted bool  `json:"deleted"`
}
