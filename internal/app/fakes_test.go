package app

import (
	"context"
	"errors"
	"sort"
	"sync"

	"fleetops-disposal-service/internal/domain/auction"
	"fleetops-disposal-service/internal/domain/bid"
	"fleetops-disposal-service/internal/domain/disposal"
	"fleetops-disposal-service/internal/domain/shared"
	"fleetops-disposal-service/internal/domain/vehicle"
	"fleetops-disposal-service/internal/ports/outbound"

	"github.com/google/uuid"
)

var errFakeNotFound = errors.New("not found")
var errFakeUnavailable = errors.New("store unavailable")

type memRequestRepo struct {
	mu         sync.Mutex
	items      map[uuid.UUID]*disposal.Request
	failUpdate bool
}

func newMemRequestRepo() *memRequestRepo {
	return &memRequestRepo{items: make(map[uuid.UUID]*disposal.Request)}
}

func (r *memRequestRepo) Create(ctx context.Context, req *disposal.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *req
	r.items[req.ID] = &cp
	return nil
}

func (r *memRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*disposal.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.items[id]
	if !ok {
		return nil, errFakeNotFound
	}
	cp := *req
	return &cp, nil
}

func (r *memRequestRepo) List(ctx context.Context, status *disposal.Status, page, pageSize int) ([]*disposal.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*disposal.Request
	for _, req := range r.items {
		if status != nil && req.Status != *status {
			continue
		}
		cp := *req
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestDate.After(out[j].RequestDate) })
	return out, nil
}

func (r *memRequestRepo) Update(ctx context.Context, req *disposal.Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUpdate {
		return errFakeUnavailable
	}
	if _, ok := r.items[req.ID]; !ok {
		return errFakeNotFound
	}
	cp := *req
	r.items[req.ID] = &cp
	return nil
}

type memAuctionRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*auction.Auction
}

func newMemAuctionRepo() *memAuctionRepo {
	return &memAuctionRepo{items: make(map[uuid.UUID]*auction.Auction)}
}

func (r *memAuctionRepo) Create(ctx context.Context, a *auction.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.items[a.ID] = &cp
	return nil
}

func (r *memAuctionRepo) GetByID(ctx context.Context, id uuid.UUID) (*auction.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return nil, errFakeNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memAuctionRepo) GetByDisposalID(ctx context.Context, disposalID uuid.UUID) ([]*auction.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*auction.Auction
	for _, a := range r.items {
		if a.DisposalID == disposalID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memAuctionRepo) Update(ctx context.Context, a *auction.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[a.ID]; !ok {
		return errFakeNotFound
	}
	cp := *a
	r.items[a.ID] = &cp
	return nil
}

type memBidRepo struct {
	mu   sync.Mutex
	bids []*bid.Bid
}

func newMemBidRepo() *memBidRepo {
	return &memBidRepo{}
}

func (r *memBidRepo) Create(ctx context.Context, b *bid.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *b
	r.bids = append(r.bids, &cp)
	return nil
}

func (r *memBidRepo) GetByAuctionID(ctx context.Context, auctionID uuid.UUID) ([]*bid.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bid.Bid
	for _, b := range r.bids {
		if b.AuctionID == auctionID {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Amount > out[j].Amount })
	return out, nil
}

func (r *memBidRepo) GetHighest(ctx context.Context, auctionID uuid.UUID) (*bid.Bid, error) {
	bids, _ := r.GetByAuctionID(ctx, auctionID)
	var highest *bid.Bid
	for _, b := range bids {
		if b.IsValid && (highest == nil || b.Amount > highest.Amount) {
			highest = b
		}
	}
	if highest == nil {
		return nil, shared.ErrNoBidsFound
	}
	return highest, nil
}

func (r *memBidRepo) CountByAuctionID(ctx context.Context, auctionID uuid.UUID) (int, error) {
	bids, _ := r.GetByAuctionID(ctx, auctionID)
	return len(bids), nil
}

type memVehicleRepo struct {
	mu               sync.Mutex
	vehicles         map[uuid.UUID]*vehicle.Vehicle
	failStatusUpdate bool
}

func newMemVehicleRepo() *memVehicleRepo {
	return &memVehicleRepo{vehicles: make(map[uuid.UUID]*vehicle.Vehicle)}
}

func (r *memVehicleRepo) add(v *vehicle.Vehicle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *v
	r.vehicles[v.ID] = &cp
}

func (r *memVehicleRepo) GetByID(ctx context.Context, id uuid.UUID) (*vehicle.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vehicles[id]
	if !ok {
		return nil, errFakeNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *memVehicleRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status vehicle.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failStatusUpdate {
		return errFakeUnavailable
	}
	v, ok := r.vehicles[id]
	if !ok {
		return errFakeNotFound
	}
	v.Status = status
	return nil
}

func (r *memVehicleRepo) status(id uuid.UUID) vehicle.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.vehicles[id].Status
}

type captureNotifier struct {
	mu     sync.Mutex
	events []outbound.Event
}

func (n *captureNotifier) Subscribe(ctx context.Context, entityID uuid.UUID, clientID string, eventChan chan outbound.Event) error {
	return nil
}

func (n *captureNotifier) Unsubscribe(ctx context.Context, entityID uuid.UUID, clientID string) error {
	return nil
}

func (n *captureNotifier) UnsubscribeAll(ctx context.Context, clientID string) error {
	return nil
}

func (n *captureNotifier) Publish(ctx context.Context, entityID uuid.UUID, event outbound.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *captureNotifier) IsSubscribed(ctx context.Context, entityID uuid.UUID, clientID string) bool {
	return false
}

func (n *captureNotifier) types() []outbound.EventType {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []outbound.EventType
	for _, e := range n.events {
		out = append(out, e.Type)
	}
	return out
}

type captureAudit struct {
	mu      sync.Mutex
	entries []outbound.AuditEntry
}

func (a *captureAudit) Record(ctx context.Context, entry outbound.AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
	return nil
}
