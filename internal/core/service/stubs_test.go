package service

import (
	"context"
	"sort"
	"strings"

	"github.com/agrienergy/connect/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) error {
	for _, u := range r.users {
		if domain.NormalizeEmail(u.Email) == domain.NormalizeEmail(user.Email) {
			return domain.ErrEmailTaken
		}
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if domain.NormalizeEmail(u.Email) == domain.NormalizeEmail(email) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) ListByRole(_ context.Context, role domain.Role) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User, expectedVersion int64) error {
	cur, ok := r.users[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	if expectedVersion != 0 && cur.Version != expectedVersion {
		return domain.ErrVersionConflict
	}
	next := cloneUser(user)
	next.Version = cur.Version + 1
	r.users[user.ID] = next
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

type stubCategoryRepo struct {
	byID     map[int64]*domain.Category
	nextID   int64
	products *stubProductRepo
}

func newStubCategoryRepo() *stubCategoryRepo {
	return &stubCategoryRepo{byID: make(map[int64]*domain.Category)}
}

func (r *stubCategoryRepo) Create(_ context.Context, c *domain.Category) error {
	for _, existing := range r.byID {
		if existing.NormalizedName() == c.NormalizedName() {
			return domain.ErrCategoryExists
		}
	}
	r.nextID++
	c.ID = r.nextID
	clone := *c
	r.byID[c.ID] = &clone
	return nil
}

func (r *stubCategoryRepo) FindByID(_ context.Context, id int64) (*domain.Category, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *stubCategoryRepo) List(_ context.Context) ([]*domain.Category, error) {
	out := make([]*domain.Category, 0, len(r.byID))
	for _, c := range r.byID {
		clone := *c
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubCategoryRepo) Update(_ context.Context, c *domain.Category, expectedVersion int64) error {
	cur, ok := r.byID[c.ID]
	if !ok {
		return domain.ErrCategoryNotFound
	}
	if expectedVersion != 0 && cur.Version != expectedVersion {
		return domain.ErrVersionConflict
	}
	for id, existing := range r.byID {
		if id != c.ID && existing.NormalizedName() == c.NormalizedName() {
			return domain.ErrCategoryExists
		}
	}
	clone := *c
	clone.Version = cur.Version + 1
	r.byID[c.ID] = &clone
	return nil
}

func (r *stubCategoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrCategoryNotFound
	}
	if r.products != nil {
		for _, p := range r.products.byID {
			if p.CategoryID == id {
				return domain.ErrCategoryInUse
			}
		}
	}
	delete(r.byID, id)
	return nil
}

type stubProductRepo struct {
	byID   map[int64]*domain.Product
	nextID int64
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{byID: make(map[int64]*domain.Product)}
}

func (r *stubProductRepo) Create(_ context.Context, p *domain.Product) error {
	r.nextID++
	p.ID = r.nextID
	clone := *p
	r.byID[p.ID] = &clone
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubProductRepo) List(_ context.Context, f domain.ProductFilter) ([]*domain.Product, error) {
	var out []*domain.Product
	for _, p := range r.byID {
		if f.FarmerID != "" && p.FarmerID != f.FarmerID {
			continue
		}
		if f.CategoryID != 0 && p.CategoryID != f.CategoryID {
			continue
		}
		clone := *p
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubProductRepo) Update(_ context.Context, p *domain.Product, expectedVersion int64) error {
	cur, ok := r.byID[p.ID]
	if !ok {
		return domain.ErrProductNotFound
	}
	if expectedVersion != 0 && cur.Version != expectedVersion {
		return domain.ErrVersionConflict
	}
	clone := *p
	clone.Version = cur.Version + 1
	r.byID[p.ID] = &clone
	return nil
}

func (r *stubProductRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(r.byID, id)
	return nil
}

// stubGuard counts failures in memory.
type stubGuard struct {
	max      int
	failures map[string]int
	err      error
}

func newStubGuard(max int) *stubGuard {
	return &stubGuard{max: max, failures: make(map[string]int)}
}

func (g *stubGuard) IsLocked(_ context.Context, email string) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	return g.failures[strings.ToLower(email)] >= g.max, nil
}

func (g *stubGuard) RecordFailure(_ context.Context, email string) error {
	if g.err != nil {
		return g.err
	}
	g.failures[strings.ToLower(email)]++
	return nil
}

func (g *stubGuard) Reset(_ context.Context, email string) error {
	delete(g.failures, strings.ToLower(email))
	return nil
}
