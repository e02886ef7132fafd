package browse

import (
	"context"
	"errors"
	"fmt"
)

// fetchLimit is the server-side page size used when refreshing the snapshot.
// It matches the backend's listing cap so the record store holds the full
// working set and fine-grained filtering stays client-side.
const fetchLimit = 100

// Controller owns all browser state. Every mutation goes through its
// methods and the caller is expected to invoke them from a single
// goroutine, the presentation loop. Fetches may execute concurrently, but
// their results re-enter through Apply, which discards any response whose
// request token is no longer current.
type Controller struct {
	api API

	category Category
	criteria Criteria
	search   string
	page     int
	pageSize map[Category]int

	snapshot Snapshot
	numbers  map[int64]string

	user       *UserInfo
	authorized bool

	seq uint64
}

// NewController starts on the oficios tab with an empty snapshot. Page sizes
// default to 20 for documents and 10 for contracts unless overridden with
// SetPageSize.
func NewController(api API) *Controller {
	return &Controller{
		api:      api,
		category: CategoryOficios,
		page:     1,
		pageSize: map[Category]int{
			CategoryOficios:         20,
			CategorySentLetters:     20,
			CategoryReceivedLetters: 20,
			CategoryContracts:       10,
		},
		snapshot: Snapshot{Category: CategoryOficios},
		numbers:  map[int64]string{},
	}
}

// SetPageSize overrides a category's fixed page size.
func (c *Controller) SetPageSize(cat Category, size int) {
	if size > 0 {
		c.pageSize[cat] = size
	}
}

// Fetch is an in-flight refresh request. It captures the parameters at the
// moment the refresh was triggered along with a token identifying it.
type Fetch struct {
	token    uint64
	category Category
	search   string
}

// FetchResult is the outcome of executing a Fetch, to be handed to Apply on
// the owning goroutine.
type FetchResult struct {
	fetch    Fetch
	snapshot Snapshot
	numbers  map[int64]string
}

// BeginFetch registers interest in a fresh snapshot for the current category
// and search term, invalidating every earlier in-flight fetch.
func (c *Controller) BeginFetch() Fetch {
	c.seq++
	return Fetch{token: c.seq, category: c.category, search: c.search}
}

// Execute performs the network round trips for a Fetch. It touches no
// controller state and is safe to run off the owning goroutine.
func (c *Controller) Execute(ctx context.Context, f Fetch) (*FetchResult, error) {
	result := FetchResult{
		fetch:    f,
		snapshot: Snapshot{Category: f.category},
	}
	if f.category.IsContracts() {
		list, err := c.api.ListContracts(ctx, ContractQuery{
			Search:   f.search,
			Page:     1,
			PageSize: fetchLimit,
		})
		if err != nil {
			return nil, fmt.Errorf("fetch contracts: %w", err)
		}
		result.snapshot.Contracts = list.Items
		return &result, nil
	}

	kind, direction, ok := f.category.DocumentKey()
	if !ok {
		return nil, fmt.Errorf("unknown category %q", f.category)
	}
	list, err := c.api.ListDocuments(ctx, DocumentQuery{
		Kind:      kind,
		Direction: direction,
		Search:    f.search,
		SortBy:    f.category.SortBy(),
		Page:      1,
		PageSize:  fetchLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch documents: %w", err)
	}
	result.snapshot.Documents = list.Items

	if f.category == CategorySentLetters {
		numbers, err := c.api.DocumentNumbers(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch document numbers: %w", err)
		}
		result.numbers = numbers
	}
	return &result, nil
}

// Apply installs a fetch result, returning false when the result is stale
// and was discarded. Stale results must never overwrite newer state.
func (c *Controller) Apply(r *FetchResult) bool {
	if r.fetch.token != c.seq {
		return false
	}
	c.snapshot = r.snapshot
	c.snapshot.Numbers = c.numbers
	if r.numbers != nil {
		c.numbers = r.numbers
		c.snapshot.Numbers = r.numbers
	}
	c.page = ClampPage(c.page, c.View().Len(), c.PageSize())
	return true
}

// Reload is the synchronous convenience path: begin, execute, apply. On
// error the snapshot is left untouched so stale data keeps rendering.
func (c *Controller) Reload(ctx context.Context) error {
	f := c.BeginFetch()
	result, err := c.Execute(ctx, f)
	if err != nil {
		return err
	}
	c.Apply(result)
	return nil
}

// RefreshUser re-reads the viewer's identity. An expired session clears the
// authorization flag instead of failing.
func (c *Controller) RefreshUser(ctx context.Context) error {
	user, err := c.api.CurrentUser(ctx)
	if errors.Is(err, ErrUnauthorized) {
		c.user = nil
		c.authorized = false
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetch current user: %w", err)
	}
	c.user = user
	c.authorized = user.Admin
	return nil
}

// Category returns the active tab.
func (c *Controller) Category() Category { return c.category }

// SetCategory switches tabs, resetting the page, criteria and search term.
// The previous category's snapshot is replaced with an empty one so the
// table renders empty until the follow-up fetch lands; without this the
// stale records would keep matching under the old category's key.
func (c *Controller) SetCategory(cat Category) {
	if cat == c.category {
		return
	}
	c.category = cat
	c.criteria = Criteria{}
	c.search = ""
	c.page = 1
	c.snapshot = Snapshot{Category: cat, Numbers: c.numbers}
	c.seq++ // cancel interest in any in-flight fetch
}

// Search returns the current server-side search term.
func (c *Controller) Search() string { return c.search }

// SetSearch records a new search term and resets the page. The caller
// should follow with a fetch.
func (c *Controller) SetSearch(term string) {
	c.search = term
	c.page = 1
	c.seq++
}

// Criteria returns the current client-side refinements.
func (c *Controller) Criteria() Criteria { return c.criteria }

// SetCriteria replaces the client-side refinements and re-clamps the page
// against the narrowed view. No fetch is needed, criteria are applied to the
// snapshot already held.
func (c *Controller) SetCriteria(crit Criteria) {
	c.criteria = crit
	c.page = ClampPage(c.page, c.View().Len(), c.PageSize())
}

// Page returns the current 1-based page.
func (c *Controller) Page() int { return c.page }

// SetPage clamps the requested page into the filtered view's range.
func (c *Controller) SetPage(page int) {
	c.page = ClampPage(page, c.View().Len(), c.PageSize())
}

// NextPage advances one page, saturating at the last.
func (c *Controller) NextPage() { c.SetPage(c.page + 1) }

// PrevPage retreats one page, saturating at the first.
func (c *Controller) PrevPage() { c.SetPage(c.page - 1) }

// PageSize is the fixed page size of the active category.
func (c *Controller) PageSize() int {
	if s, ok := c.pageSize[c.category]; ok {
		return s
	}
	return 20
}

// TotalPages is the page count of the current filtered view.
func (c *Controller) TotalPages() int {
	return TotalPages(c.View().Len(), c.PageSize())
}

// Snapshot exposes the record store for read-only use.
func (c *Controller) Snapshot() *Snapshot { return &c.snapshot }

// User returns the authenticated viewer, or nil.
func (c *Controller) User() *UserInfo { return c.user }

// Authorized reports whether destructive actions should be shown.
func (c *Controller) Authorized() bool { return c.authorized }

// View recomputes the filtered view from the snapshot and criteria. Safe
// against an empty or stale snapshot.
func (c *Controller) View() View {
	return Filter(&c.snapshot, c.criteria)
}

// Rows runs the full pipeline: filter, page, render.
func (c *Controller) Rows() []Row {
	view := c.View()
	size := c.PageSize()
	paged := View{Category: view.Category}
	if view.Category.IsContracts() {
		paged.Contracts = PageOf(view.Contracts, c.page, size)
	} else {
		paged.Documents = PageOf(view.Documents, c.page, size)
	}
	return Render(&paged, Offset(c.page, size), c.authorized, c.numbers)
}
