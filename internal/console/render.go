package console

import (
	"fmt"
	"net/http"
	"strings"
	"text/tabwriter"

	"github.com/simp-lee/petadmin/internal/domain"
	"github.com/simp-lee/petadmin/internal/listing"
)

const (
	dateLayout  = "2006-01-02 15:04"
	maxTitleLen = 40
)

func (c *Console) render() {
	switch c.current {
	case ScreenMembers:
		c.renderMembers()
	case ScreenPosts:
		c.renderPosts()
	case ScreenReports:
		c.renderReports()
	}
}

func (c *Console) table() *tabwriter.Writer {
	return tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
}

func (c *Console) renderMembers() {
	page := c.members.Page()
	if c.renderError(c.members.Err()) {
		return
	}

	tw := c.table()
	fmt.Fprintln(tw, "ID\tNICKNAME\tEMAIL\tROLE\tSTATUS\tPOSTS\tREPORTS\tJOINED\tSTATE")
	for _, m := range page.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			m.ID, m.Nickname, m.Email, m.Role, m.Status, m.PostCount, m.ReportCount,
			formatTime(m.CreatedAt), memberState(m, c.members.ActionState(m.ID)))
	}
	tw.Flush()
	c.renderFooter(page.PageIndex, page.TotalPages, page.TotalItems, len(page.Items))
	fmt.Fprintf(c.out, "Total users: %d\n", c.totalUsers.get())
}

func (c *Console) renderPosts() {
	page := c.posts.Page()
	fmt.Fprintf(c.out, "Filter: type %s, AI only %v, search %q\n", c.postFilter.Type, c.postFilter.AIOnly, c.posts.Query().SearchText)
	if c.renderError(c.posts.Err()) {
		return
	}

	tw := c.table()
	fmt.Fprintln(tw, "ID\tTYPE\tTITLE\tPET\tAUTHOR\tAI\tCREATED\tSTATE")
	for _, p := range page.Items {
		ai := ""
		if p.AIGenerated {
			ai = "yes"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Type, truncate(p.Title, maxTitleLen), p.PetName, p.AuthorNickname, ai,
			formatTime(p.CreatedAt), postState(p, c.posts.ActionState(p.ID)))
	}
	tw.Flush()
	c.renderFooter(page.PageIndex, page.TotalPages, page.TotalItems, len(page.Items))
}

func (c *Console) renderReports() {
	page := c.reports.Page()
	if c.renderError(c.reports.Err()) {
		return
	}

	tw := c.table()
	fmt.Fprintln(tw, "ID\tTYPE\tPOST\tTITLE\tREASON\tREPORTER\tREPORTED\tSTATE")
	for _, r := range page.Items {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Type, r.PostID, truncate(r.PostTitle, maxTitleLen), r.Reason, r.ReporterNickname,
			formatTime(r.CreatedAt), reportState(r, c.reports.ActionState(r.ID)))
	}
	tw.Flush()
	c.renderFooter(page.PageIndex, page.TotalPages, page.TotalItems, len(page.Items))
}

// renderError prints a list fetch error inline and reports whether it did.
func (c *Console) renderError(err error) bool {
	if err == nil {
		return false
	}
	fmt.Fprintf(c.out, "Could not load %s: %s\n", c.current, describe(err))
	fmt.Fprintln(c.out, "Use 'list' to try again.")
	return true
}

func (c *Console) renderFooter(index, pages int, total int64, shown int) {
	if shown == 0 {
		fmt.Fprintln(c.out, "No results.")
	}
	fmt.Fprintf(c.out, "Page %d of %d, %d items\n", index+1, max(pages, 1), total)
}

func (c *Console) renderDetail() {
	switch c.detail {
	case ScreenMembers:
		_, id, m, err := c.memberDetail.State()
		if err != nil {
			c.renderDetailError("member", id, err)
			return
		}
		if m != nil {
			c.renderMemberDetail(m)
		}
	case ScreenPosts:
		_, ref, p, err := c.postDetail.State()
		if err != nil {
			c.renderDetailError("post", ref.ID, err)
			return
		}
		if p != nil {
			c.renderPostDetail(p)
		}
	}
}

func (c *Console) renderDetailError(kind string, id int64, err error) {
	if domain.IsNotFound(err) || domain.HTTPStatusCode(err) == http.StatusNotFound {
		fmt.Fprintf(c.out, "%s %d not found.\n", capitalize(kind), id)
	} else {
		fmt.Fprintf(c.out, "Could not load %s %d: %s\n", kind, id, describe(err))
	}
	fmt.Fprintln(c.out, "Use 'retry' or 'close'.")
}

func (c *Console) renderMemberDetail(m *domain.MemberDetail) {
	tw := c.table()
	fmt.Fprintf(tw, "Member\t%d\n", m.ID)
	fmt.Fprintf(tw, "Nickname\t%s\n", m.Nickname)
	fmt.Fprintf(tw, "Email\t%s\n", m.Email)
	fmt.Fprintf(tw, "Role\t%s\n", m.Role)
	fmt.Fprintf(tw, "Status\t%s\n", m.Status)
	fmt.Fprintf(tw, "Joined\t%s\n", formatTime(m.CreatedAt))
	if m.IsDeleted != nil && *m.IsDeleted {
		fmt.Fprintf(tw, "Deleted\t%s\n", formatTimePtr(m.DeletedAt))
	}
	tw.Flush()

	fmt.Fprintf(c.out, "\nPosts (%d):\n", len(m.Activity.Posts))
	tw = c.table()
	for _, p := range m.Activity.Posts {
		fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\n", p.ID, p.Type, truncate(p.Title, maxTitleLen), formatTime(p.CreatedAt))
	}
	tw.Flush()

	fmt.Fprintf(c.out, "\nReports (%d):\n", len(m.Activity.Reports))
	tw = c.table()
	for _, r := range m.Activity.Reports {
		fmt.Fprintf(tw, "  %d\t%s\tpost %d\t%s\t%s\n", r.ID, r.Type, r.PostID, r.Reason, r.Status)
	}
	tw.Flush()
}

func (c *Console) renderPostDetail(p *domain.Post) {
	tw := c.table()
	fmt.Fprintf(tw, "Post\t%d (%s)\n", p.ID, p.Type)
	fmt.Fprintf(tw, "Title\t%s\n", p.Title)
	fmt.Fprintf(tw, "Pet\t%s\n", strings.TrimSpace(p.PetName+" "+p.Breed))
	fmt.Fprintf(tw, "Location\t%s\n", p.Location)
	fmt.Fprintf(tw, "Author\t%s (id %d)\n", p.AuthorNickname, p.AuthorID)
	fmt.Fprintf(tw, "AI generated\t%v\n", p.AIGenerated)
	fmt.Fprintf(tw, "Created\t%s\n", formatTime(p.CreatedAt))
	if p.ImageURL != "" {
		fmt.Fprintf(tw, "Image\t%s\n", p.ImageURL)
	}
	if p.Deleted() {
		fmt.Fprintf(tw, "Deleted\t%s\n", formatTimePtr(p.DeletedAt))
	}
	tw.Flush()
	if p.Content != "" {
		fmt.Fprintf(c.out, "\n%s\n", p.Content)
	}
}

func memberState(m domain.Member, st listing.ActionState) string {
	if m.IsDeleted != nil && *m.IsDeleted {
		return "deleted"
	}
	if st.Phase == listing.ActionPending {
		return "pending"
	}
	return ""
}

func postState(p domain.Post, st listing.ActionState) string {
	if p.Deleted() {
		return "deleted"
	}
	if st.Phase == listing.ActionPending {
		return "pending"
	}
	return ""
}

func reportState(r domain.Report, st listing.ActionState) string {
	if r.Resolved() {
		return string(r.ActionState)
	}
	if st.Phase != listing.ActionNormal {
		return st.Phase.String()
	}
	return strings.ToLower(r.Status)
}

func formatTime(t domain.Timestamp) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(dateLayout)
}

func formatTimePtr(t *domain.Timestamp) string {
	if t == nil {
		return "-"
	}
	return formatTime(*t)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func displayName(p domain.Profile) string {
	if p.Name != "" {
		return p.Name
	}
	if p.Email != "" {
		return p.Email
	}
	return fmt.Sprintf("user %d", p.UserID)
}
