package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/simp-lee/petadmin/internal/domain"
	"github.com/simp-lee/petadmin/internal/listing"
)

func isAbort(err error) bool {
	return errors.Is(err, liner.ErrPromptAborted)
}

func (c *Console) cmdLogin(ctx context.Context, args []string) {
	var email string
	if len(args) > 0 {
		email = args[0]
	} else {
		line, err := c.in.Prompt("Email: ")
		if err != nil {
			fmt.Fprintln(c.out, "Cancelled.")
			return
		}
		email = strings.TrimSpace(line)
	}
	if email == "" {
		fmt.Fprintln(c.out, "Usage: login <email>")
		return
	}

	password, err := c.in.PasswordPrompt("Password: ")
	if err != nil {
		fmt.Fprintln(c.out, "Cancelled.")
		return
	}

	res, err := c.backend.Login(ctx, email, password)
	if err != nil {
		c.logger.WarnContext(ctx, "login failed", slog.String("email", email), slog.String("error", err.Error()))
		fmt.Fprintf(c.out, "Login failed: %s\n", describe(err))
		return
	}
	if err := c.session.Begin(res, email); err != nil {
		fmt.Fprintf(c.out, "Login failed: %v\n", err)
		return
	}

	p, _ := c.session.Profile()
	c.logger.InfoContext(ctx, "logged in", slog.Int64("user_id", p.UserID))
	fmt.Fprintf(c.out, "Logged in as %s.\n", displayName(p))
	c.refresh(ctx)
}

func (c *Console) cmdLogout() {
	c.closeDetail()
	if err := c.session.Clear(); err != nil {
		fmt.Fprintf(c.out, "Logout: %v\n", err)
		return
	}
	fmt.Fprintln(c.out, "Logged out.")
}

func (c *Console) cmdWhoami() {
	p, ok := c.session.Profile()
	if !ok {
		fmt.Fprintln(c.out, "Not logged in.")
		return
	}
	fmt.Fprintf(c.out, "%s (id %d)", displayName(p), p.UserID)
	if p.Email != "" {
		fmt.Fprintf(c.out, " <%s>", p.Email)
	}
	if p.Role != "" {
		fmt.Fprintf(c.out, " role %s", p.Role)
	}
	fmt.Fprintln(c.out)
}

func (c *Console) cmdSearch(ctx context.Context, text string) {
	c.listed(ctx, func(s pager) error { return s.Search(ctx, text) })
}

func (c *Console) cmdPage(ctx context.Context, args []string) {
	n, ok := c.intArg(args, "page <n>")
	if !ok {
		return
	}
	if n < 1 {
		fmt.Fprintln(c.out, "Error: page numbers start at 1")
		return
	}
	c.listed(ctx, func(s pager) error { return s.GoTo(ctx, n-1) })
}

func (c *Console) cmdSize(ctx context.Context, args []string) {
	n, ok := c.intArg(args, "size <n>")
	if !ok {
		return
	}
	c.listed(ctx, func(s pager) error { return s.SetPageSize(ctx, n) })
}

func (c *Console) cmdType(ctx context.Context, args []string) {
	if c.current != ScreenPosts {
		fmt.Fprintln(c.out, "The type filter applies to the posts screen.")
		return
	}
	if len(args) != 1 {
		fmt.Fprintln(c.out, "Usage: type ALL|LOST|FOUND")
		return
	}
	t, err := domain.ParsePostTypeFilter(args[0])
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	c.postFilter.Type = t
	c.listed(ctx, func(s pager) error { return s.GoTo(ctx, 0) })
}

func (c *Console) cmdAI(ctx context.Context, args []string) {
	if c.current != ScreenPosts {
		fmt.Fprintln(c.out, "The AI filter applies to the posts screen.")
		return
	}
	if len(args) != 1 {
		fmt.Fprintln(c.out, "Usage: ai on|off")
		return
	}
	switch strings.ToLower(args[0]) {
	case "on", "true", "yes":
		c.postFilter.AIOnly = true
	case "off", "false", "no":
		c.postFilter.AIOnly = false
	default:
		fmt.Fprintln(c.out, "Usage: ai on|off")
		return
	}
	c.listed(ctx, func(s pager) error { return s.GoTo(ctx, 0) })
}

func (c *Console) cmdShow(ctx context.Context, args []string) {
	if !c.requireLogin() {
		return
	}
	id, ok := c.idArg(args, "show <id>")
	if !ok {
		return
	}

	c.closeDetail()
	var err error
	switch c.current {
	case ScreenMembers:
		c.detail = ScreenMembers
		err = c.memberDetail.Open(ctx, id)
	case ScreenPosts:
		ref := domain.PostRef{Type: c.postFilter.Type, ID: id}
		if p, listed := c.posts.Item(id); listed {
			ref.Type = p.Type
		}
		if ref.Type == domain.PostTypeAll {
			fmt.Fprintf(c.out, "Post %d is not on the current page; set 'type LOST' or 'type FOUND' first.\n", id)
			return
		}
		c.detail = ScreenPosts
		err = c.postDetail.Open(ctx, ref)
	case ScreenReports:
		r, listed := c.reports.Item(id)
		if !listed {
			fmt.Fprintf(c.out, "Report %d is not on the current page.\n", id)
			return
		}
		c.detail = ScreenPosts
		err = c.postDetail.Open(ctx, domain.PostRef{Type: r.Type, ID: r.PostID})
	}
	c.afterDetail(err)
}

func (c *Console) cmdRetry(ctx context.Context) {
	var err error
	switch c.detail {
	case ScreenMembers:
		err = c.memberDetail.Retry(ctx)
	case ScreenPosts:
		err = c.postDetail.Retry(ctx)
	default:
		fmt.Fprintln(c.out, "No detail is open.")
		return
	}
	c.afterDetail(err)
}

func (c *Console) afterDetail(err error) {
	if errors.Is(err, listing.ErrLoginRequired) {
		c.sessionExpired()
		return
	}
	if errors.Is(err, listing.ErrStale) {
		return
	}
	c.renderDetail()
}

func (c *Console) cmdMemberStatus(ctx context.Context, args []string, status domain.MemberStatus) {
	if !c.onScreen(ScreenMembers) {
		return
	}
	verb := "Activate"
	if status == domain.MemberDeactivated {
		verb = "Deactivate"
	}
	id, ok := c.idArg(args, strings.ToLower(verb)+" <id>")
	if !ok {
		return
	}
	act := listing.Action[domain.Member]{
		Name:   "status:" + string(status),
		Prompt: fmt.Sprintf("%s member %d?", verb, id),
		Call: func(ctx context.Context, token string, m domain.Member) error {
			return c.backend.SetMemberStatus(ctx, token, m.ID, status)
		},
		Patch: listing.SetMemberStatus(status),
	}
	c.perform(id, c.members.Perform(ctx, id, act, listing.ConfirmFunc(c.confirm)))
}

func (c *Console) cmdDelete(ctx context.Context, args []string) {
	if !c.requireLogin() {
		return
	}
	id, ok := c.idArg(args, "delete <id>")
	if !ok {
		return
	}

	var err error
	switch c.current {
	case ScreenMembers:
		err = c.members.Perform(ctx, id, listing.Action[domain.Member]{
			Name:   "delete",
			Prompt: fmt.Sprintf("Delete member %d? Their posts are deleted too.", id),
			OneWay: true,
			Done:   func(m domain.Member) bool { return m.IsDeleted != nil && *m.IsDeleted },
			Call: func(ctx context.Context, token string, m domain.Member) error {
				return c.backend.DeleteMember(ctx, token, m.ID)
			},
			Patch: listing.MarkMemberDeleted(domain.NowTimestamp()),
		}, listing.ConfirmFunc(c.confirm))
	case ScreenPosts:
		err = c.posts.Perform(ctx, id, listing.Action[domain.Post]{
			Name:   "delete",
			Prompt: fmt.Sprintf("Delete post %d?", id),
			OneWay: true,
			Done:   domain.Post.Deleted,
			Call: func(ctx context.Context, token string, p domain.Post) error {
				return c.backend.DeletePost(ctx, token, p.Type, p.ID)
			},
			Patch: listing.MarkPostDeleted(domain.NowTimestamp()),
		}, listing.ConfirmFunc(c.confirm))
	case ScreenReports:
		err = c.reports.Perform(ctx, id, reportAction(c, domain.ReportDeleted, id), listing.ConfirmFunc(c.confirm))
	}
	c.perform(id, err)
}

func (c *Console) cmdIgnore(ctx context.Context, args []string) {
	if !c.onScreen(ScreenReports) {
		return
	}
	id, ok := c.idArg(args, "ignore <id>")
	if !ok {
		return
	}
	c.perform(id, c.reports.Perform(ctx, id, reportAction(c, domain.ReportIgnored, id), listing.ConfirmFunc(c.confirm)))
}

func reportAction(c *Console, action domain.ReportAction, id int64) listing.Action[domain.Report] {
	act := listing.Action[domain.Report]{
		Name:   string(action),
		OneWay: true,
		Done:   domain.Report.Resolved,
		Patch:  listing.MarkReportResolved(action),
	}
	if action == domain.ReportDeleted {
		act.Prompt = fmt.Sprintf("Delete the post reported in report %d?", id)
		act.Call = func(ctx context.Context, token string, r domain.Report) error {
			return c.backend.DeleteReport(ctx, token, r.Type, r.ID)
		}
	} else {
		act.Prompt = fmt.Sprintf("Ignore report %d?", id)
		act.Call = func(ctx context.Context, token string, r domain.Report) error {
			return c.backend.IgnoreReport(ctx, token, r.Type, r.ID)
		}
	}
	return act
}

// perform reports the outcome of a mutation.
func (c *Console) perform(id int64, err error) {
	switch {
	case err == nil:
		c.render()
	case errors.Is(err, listing.ErrCancelled):
		fmt.Fprintln(c.out, "Cancelled.")
	case errors.Is(err, listing.ErrAlreadyResolved):
		fmt.Fprintf(c.out, "Item %d is already resolved.\n", id)
	case errors.Is(err, listing.ErrActionPending):
		fmt.Fprintf(c.out, "An action on item %d is still pending.\n", id)
	case errors.Is(err, listing.ErrNotListed):
		fmt.Fprintf(c.out, "Item %d is not on the current page.\n", id)
	case errors.Is(err, listing.ErrLoginRequired):
		c.sessionExpired()
	default:
		c.acknowledge(fmt.Sprintf("Action failed: %s", describe(err)))
	}
}

func (c *Console) onScreen(name string) bool {
	if !c.requireLogin() {
		return false
	}
	if c.current != name {
		fmt.Fprintf(c.out, "This command applies to the %s screen.\n", name)
		return false
	}
	return true
}

func (c *Console) intArg(args []string, usage string) (int, bool) {
	if len(args) != 1 {
		fmt.Fprintf(c.out, "Usage: %s\n", usage)
		return 0, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(c.out, "Usage: %s\n", usage)
		return 0, false
	}
	return n, true
}

func (c *Console) idArg(args []string, usage string) (int64, bool) {
	if len(args) != 1 {
		fmt.Fprintf(c.out, "Usage: %s\n", usage)
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		fmt.Fprintf(c.out, "Usage: %s\n", usage)
		return 0, false
	}
	return id, true
}

// describe renders a backend error for the user.
func describe(err error) string {
	var fe *domain.FetchError
	if errors.As(err, &fe) {
		switch fe.Kind {
		case domain.KindNetwork:
			return "server unreachable"
		case domain.KindNotFound:
			return "not found"
		case domain.KindRejected:
			if fe.Message != "" {
				return fe.Message
			}
			return "request rejected"
		case domain.KindHTTP:
			return fmt.Sprintf("%d %s", fe.Status, fe.StatusText)
		}
	}
	return err.Error()
}
