package clients

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gestiontall/taller/internal/domain/errs"
)

// Repo is the in-memory client store plus the append-only payment log.
type Repo struct {
	mu       sync.RWMutex
	byID     map[string]*Client
	order    []string
	payments []Payment // insertion-ordered, never mutated
}

func NewRepo() *Repo {
	return &Repo{byID: make(map[string]*Client)}
}

func (r *Repo) Create(_ context.Context, name, phone, email string) (*Client, error) {
	if name == "" {
		return nil, errs.Invalidf("client name is required")
	}
	c := &Client{
		ID:        uuid.NewString(),
		Name:      name,
		Phone:     phone,
		Email:     email,
		CreatedAt: time.Now(),
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[c.ID] = c
	r.order = append(r.order, c.ID)
	out := *c
	return &out, nil
}

func (r *Repo) GetByID(_ context.Context, id string) (*Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, errs.NotFoundf("client %s", id)
	}
	out := *c
	return &out, nil
}

func (r *Repo) List(_ context.Context) []Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Client, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.byID[id])
	}
	return out
}

// ListWithDebt returns clients with any outstanding balance.
func (r *Repo) ListWithDebt(_ context.Context) []Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Client
	for _, id := range r.order {
		if c := r.byID[id]; c.HasDebt() {
			out = append(out, *c)
		}
	}
	return out
}

// PaymentsByClient returns the client's slice of the payment log in
// insertion order.
func (r *Repo) PaymentsByClient(_ context.Context, clientID string) []Payment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Payment
	for _, p := range r.payments {
		if p.ClientID == clientID {
			out = append(out, p)
		}
	}
	return out
}

// mutate runs fn against the stored client under the write lock.
func (r *Repo) mutate(id string, fn func(*Client)) (*Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, errs.NotFoundf("client %s", id)
	}
	fn(c)
	out := *c
	return &out, nil
}

// appendPayment records a processed payment. Append-only by construction.
func (r *Repo) appendPayment(p Payment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments = append(r.payments, p)
}
