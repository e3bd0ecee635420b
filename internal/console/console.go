// Package console is the interactive admin console: one list screen per
// resource, a detail view, and confirmed mutations.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/simp-lee/logger"

	"github.com/simp-lee/petadmin/internal/datasource"
	"github.com/simp-lee/petadmin/internal/domain"
	"github.com/simp-lee/petadmin/internal/listing"
	"github.com/simp-lee/petadmin/internal/pkg"
	"github.com/simp-lee/petadmin/internal/session"
)

// Screen names.
const (
	ScreenMembers = "members"
	ScreenPosts   = "posts"
	ScreenReports = "reports"
)

// Backend is what the console calls. upstream.Client implements it.
type Backend interface {
	// Ping checks that token is still accepted.
	Ping(ctx context.Context, token string) error
	datasource.AuthSource
	datasource.MemberSource
	datasource.PostSource
	datasource.ReportSource
}

// Prompter reads one line of input. liner.State implements it.
type Prompter interface {
	Prompt(prompt string) (string, error)
	PasswordPrompt(prompt string) (string, error)
}

// Console holds the session, the three list screens and the open detail.
type Console struct {
	backend Backend
	session *session.Session
	in      Prompter
	out     io.Writer
	logger  *slog.Logger

	members *listing.Screen[domain.Member]
	posts   *listing.Screen[domain.Post]
	reports *listing.Screen[domain.Report]

	memberDetail *listing.DetailLoader[int64, domain.MemberDetail]
	postDetail   *listing.DetailLoader[domain.PostRef, domain.Post]

	current    string
	detail     string
	postFilter domain.PostFilter
	totalUsers memberTotals
}

// memberTotals carries TotalUsers from a members response to the render,
// keyed by the page the fetch returned, so only a response the members
// screen accepts updates the count.
type memberTotals struct {
	mu      sync.Mutex
	pending map[*domain.PageResult[domain.Member]]int64
	current int64
}

func (t *memberTotals) offer(page *domain.PageResult[domain.Member], total int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending == nil {
		t.pending = make(map[*domain.PageResult[domain.Member]]int64)
	}
	t.pending[page] = total
}

func (t *memberTotals) accept(page *domain.PageResult[domain.Member]) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if total, ok := t.pending[page]; ok {
		t.current = total
	}
	clear(t.pending)
}

func (t *memberTotals) get() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// New builds a console. pageSize applies to every screen.
func New(backend Backend, sess *session.Session, in Prompter, out io.Writer, pageSize int, logger *slog.Logger) *Console {
	if backend == nil {
		panic("console: nil backend")
	}
	if sess == nil {
		panic("console: nil session")
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Console{
		backend:    backend,
		session:    sess,
		in:         in,
		out:        out,
		logger:     logger,
		current:    ScreenMembers,
		postFilter: domain.PostFilter{Type: domain.PostTypeAll},
	}

	c.members = listing.NewScreen(ScreenMembers, sess, c.fetchMembers, pageSize, logger)
	c.members.OnAccept(c.totalUsers.accept)
	c.posts = listing.NewScreen(ScreenPosts, sess, c.fetchPosts, pageSize, logger)
	c.reports = listing.NewScreen(ScreenReports, sess, backend.ListReports, pageSize, logger)

	c.memberDetail = listing.NewDetailLoader(sess, backend.GetMember, logger)
	c.postDetail = listing.NewDetailLoader(sess, func(ctx context.Context, token string, ref domain.PostRef) (*domain.Post, error) {
		return backend.GetPost(ctx, token, ref.Type, ref.ID)
	}, logger)
	return c
}

func (c *Console) fetchMembers(ctx context.Context, token string, q domain.PageQuery) (*domain.PageResult[domain.Member], error) {
	page, err := c.backend.ListMembers(ctx, token, q)
	if err != nil {
		return nil, err
	}
	c.totalUsers.offer(&page.PageResult, page.TotalUsers)
	return &page.PageResult, nil
}

func (c *Console) fetchPosts(ctx context.Context, token string, q domain.PageQuery) (*domain.PageResult[domain.Post], error) {
	return c.backend.ListPosts(ctx, token, c.postFilter, q)
}

// Current returns the active screen name.
func (c *Console) Current() string { return c.current }

// Run reads commands until quit or end of input.
func (c *Console) Run(ctx context.Context) error {
	fmt.Fprintln(c.out, "petadmin console. Type 'help' for commands.")
	if c.session.Authenticated() && c.verifySession(ctx) {
		c.refresh(ctx)
	} else {
		fmt.Fprintln(c.out, "Not logged in. Use 'login'.")
	}

	for {
		line, err := c.in.Prompt(c.prompt())
		if err != nil {
			if errors.Is(err, io.EOF) || isAbort(err) {
				fmt.Fprintln(c.out)
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if h, ok := c.in.(interface{ AppendHistory(string) }); ok {
			h.AppendHistory(line)
		}
		if quit := c.Execute(ctx, line); quit {
			return nil
		}
	}
}

// verifySession pings the backend with a restored session. A 401 or 403
// clears it. Other failures keep it; the first list fetch shows the error.
func (c *Console) verifySession(ctx context.Context) bool {
	ctx = withRequestID(ctx)
	err := c.backend.Ping(ctx, c.session.Token())
	if err == nil {
		return true
	}
	if !domain.ClearsSession(err) {
		c.logger.WarnContext(ctx, "session check failed", slog.String("error", err.Error()))
		return true
	}
	c.logger.InfoContext(ctx, "saved session rejected", slog.String("error", err.Error()))
	if clearErr := c.session.Clear(); clearErr != nil {
		c.logger.WarnContext(ctx, "clear session failed", slog.String("error", clearErr.Error()))
	}
	fmt.Fprintln(c.out, "Saved session is no longer valid.")
	return false
}

func withRequestID(ctx context.Context) context.Context {
	id := uuid.NewString()
	return pkg.WithRequestID(logger.WithContextAttrs(ctx, slog.String("request_id", id)), id)
}

func (c *Console) prompt() string {
	if p, ok := c.session.Profile(); ok && p.Name != "" {
		return fmt.Sprintf("petadmin %s@%s> ", p.Name, c.current)
	}
	return fmt.Sprintf("petadmin %s> ", c.current)
}

// Execute runs one command line and reports whether the console should exit.
func (c *Console) Execute(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	// Each command carries its own request id upstream and into the log.
	ctx = withRequestID(ctx)

	switch cmd {
	case "quit", "exit", "q":
		return true
	case "help", "?":
		c.printHelp()
	case "login":
		c.cmdLogin(ctx, args)
	case "logout":
		c.cmdLogout()
	case "whoami":
		c.cmdWhoami()
	case ScreenMembers, ScreenPosts, ScreenReports:
		c.current = cmd
		c.closeDetail()
		c.refresh(ctx)
	case "list", "refresh", "ls":
		c.refresh(ctx)
	case "search":
		c.cmdSearch(ctx, strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0])))
	case "page":
		c.cmdPage(ctx, args)
	case "size":
		c.cmdSize(ctx, args)
	case "next":
		c.listed(ctx, func(s pager) error { return s.Next(ctx) })
	case "prev":
		c.listed(ctx, func(s pager) error { return s.Prev(ctx) })
	case "type":
		c.cmdType(ctx, args)
	case "ai":
		c.cmdAI(ctx, args)
	case "show":
		c.cmdShow(ctx, args)
	case "retry":
		c.cmdRetry(ctx)
	case "close":
		c.closeDetail()
		c.render()
	case "activate":
		c.cmdMemberStatus(ctx, args, domain.MemberActivated)
	case "deactivate":
		c.cmdMemberStatus(ctx, args, domain.MemberDeactivated)
	case "delete", "del":
		c.cmdDelete(ctx, args)
	case "ignore":
		c.cmdIgnore(ctx, args)
	default:
		fmt.Fprintf(c.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

// pager is the screen navigation shared by all three list screens.
type pager interface {
	Refresh(ctx context.Context) error
	Search(ctx context.Context, text string) error
	SetPageSize(ctx context.Context, n int) error
	GoTo(ctx context.Context, i int) error
	Next(ctx context.Context) error
	Prev(ctx context.Context) error
}

func (c *Console) screen() pager {
	switch c.current {
	case ScreenPosts:
		return c.posts
	case ScreenReports:
		return c.reports
	default:
		return c.members
	}
}

// listed runs a list operation on the current screen and renders the result.
func (c *Console) listed(ctx context.Context, op func(pager) error) {
	if !c.requireLogin() {
		return
	}
	err := op(c.screen())
	switch {
	case errors.Is(err, listing.ErrLoginRequired):
		c.sessionExpired()
		return
	case errors.Is(err, listing.ErrStale):
		return
	case err != nil && domain.IsValidation(err):
		fmt.Fprintf(c.out, "Error: %v\n", err)
		return
	}
	// Other fetch errors are kept on the screen and rendered inline.
	c.render()
}

func (c *Console) refresh(ctx context.Context) {
	c.listed(ctx, func(s pager) error { return s.Refresh(ctx) })
}

func (c *Console) requireLogin() bool {
	if c.session.Authenticated() {
		return true
	}
	fmt.Fprintln(c.out, "Not logged in. Use 'login'.")
	return false
}

func (c *Console) sessionExpired() {
	c.closeDetail()
	fmt.Fprintln(c.out, "Session expired or access denied. Please 'login' again.")
}

func (c *Console) closeDetail() {
	c.memberDetail.Close()
	c.postDetail.Close()
	c.detail = ""
}

// confirm asks a yes/no question. Anything but yes or y is a refusal.
func (c *Console) confirm(prompt string) (bool, error) {
	answer, err := c.in.Prompt(prompt + " (yes/no): ")
	if err != nil {
		if errors.Is(err, io.EOF) || isAbort(err) {
			return false, nil
		}
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "yes" || answer == "y", nil
}

// acknowledge shows a blocking message that must be dismissed.
func (c *Console) acknowledge(msg string) {
	fmt.Fprintln(c.out, msg)
	_, _ = c.in.Prompt("Press Enter to continue.")
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.out, `Commands:
  login [email]                  Log in as an administrator
  logout                         End the session
  whoami                         Show the logged-in administrator
  members | posts | reports      Switch screen and fetch
  list                           Fetch the current page again
  search <text>                  Search (empty text clears)
  page <n>                       Go to page n (1-based)
  size <n>                       Set the page size
  next | prev                    Move one page
  type ALL|LOST|FOUND            Filter posts by type
  ai on|off                      Only AI-generated posts
  show <id>                      Open a member, post, or a report's post
  retry | close                  Retry or close the open detail
  activate <id> | deactivate <id>  Change a member's status
  delete <id>                    Delete a member, post, or reported post
  ignore <id>                    Ignore a report
  help                           Show this help
  quit                           Exit`)
}
