package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"hatbazar/internal/demand-service/core/domain/model"
	"hatbazar/internal/demand-service/core/geo"
	"hatbazar/internal/demand-service/core/myerrors"
	"hatbazar/internal/demand-service/core/ports"

	messagebrokerdto "hatbazar/internal/demand-service/core/domain/message_broker_dto"
	websocketdto "hatbazar/internal/demand-service/core/domain/websocket_dto"
)

// fakeDemandRepo implements the conditional-update contract of
// IDemandRepo in memory: the status check and the status write happen
// under one lock, exactly like a single conditional UPDATE.
type fakeDemandRepo struct {
	mu      sync.Mutex
	seq     int
	demands map[string]model.Demand

	lastRadius float64
	lastLimit  int
}

func newFakeDemandRepo() *fakeDemandRepo {
	return &fakeDemandRepo{demands: make(map[string]model.Demand)}
}

func (r *fakeDemandRepo) Create(ctx context.Context, d model.Demand) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	d.DemandId = fmt.Sprintf("demand-%d", r.seq)
	d.CreatedAt = time.Now()
	r.demands[d.DemandId] = d
	return d.DemandId, nil
}

func (r *fakeDemandRepo) FindNearestPending(ctx context.Context, origin geo.Coordinate, radiusMeters float64, limit int) ([]ports.NearDemand, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastRadius = radiusMeters
	r.lastLimit = limit

	var near []ports.NearDemand
	for _, d := range r.demands {
		if d.Status != model.StatusPending {
			continue
		}
		dist, err := geo.Distance(origin, d.Origin)
		if err != nil {
			continue
		}
		if dist <= radiusMeters {
			near = append(near, ports.NearDemand{Demand: d, DistanceMeters: dist})
		}
	}
	sort.Slice(near, func(i, j int) bool { return near[i].DistanceMeters < near[j].DistanceMeters })
	if len(near) > limit {
		near = near[:limit]
	}
	return near, nil
}

func (r *fakeDemandRepo) AcceptPending(ctx context.Context, demandId string, vendor model.Vendor, at time.Time) (model.Demand, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.demands[demandId]
	if !ok || d.Status != model.StatusPending {
		return model.Demand{}, myerrors.ErrDemandNotFound
	}
	d.Status = model.StatusAccepted
	d.AcceptedBy = vendor.VendorId
	d.AcceptedAt = at
	d.VendorName = vendor.Name
	d.BusinessName = vendor.BusinessName
	r.demands[demandId] = d
	return d, nil
}

func (r *fakeDemandRepo) GetStatus(ctx context.Context, demandId string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.demands[demandId]
	if !ok {
		return "", myerrors.ErrDemandNotFound
	}
	return d.Status, nil
}

func (r *fakeDemandRepo) FindAcceptedBy(ctx context.Context, demandId, vendorId string) (model.Demand, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.demands[demandId]
	if !ok || d.Status != model.StatusAccepted || d.AcceptedBy != vendorId {
		return model.Demand{}, myerrors.ErrDemandNotFound
	}
	return d, nil
}

func (r *fakeDemandRepo) MarkDelivered(ctx context.Context, demandId, vendorId string, location geo.Coordinate, distanceMeters float64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.demands[demandId]
	if !ok || d.Status != model.StatusAccepted || d.AcceptedBy != vendorId {
		return myerrors.ErrDemandNotFound
	}
	d.Status = model.StatusDelivered
	d.DeliveredAt = at
	d.DeliveryLocation = location
	d.DeliveryDistanceM = distanceMeters
	r.demands[demandId] = d
	return nil
}

func (r *fakeDemandRepo) ListByUsername(ctx context.Context, username string) ([]model.Demand, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res []model.Demand
	for _, d := range r.demands {
		if d.Username == username {
			res = append(res, d)
		}
	}
	return res, nil
}

func (r *fakeDemandRepo) get(demandId string) (model.Demand, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.demands[demandId]
	return d, ok
}

type fakeVendorRepo struct {
	mu      sync.Mutex
	vendors map[string]model.Vendor
	orders  []model.VendorOrder

	failAppend bool
}

func newFakeVendorRepo(vendors ...model.Vendor) *fakeVendorRepo {
	r := &fakeVendorRepo{vendors: make(map[string]model.Vendor)}
	for _, v := range vendors {
		r.vendors[v.VendorId] = v
	}
	return r
}

func (r *fakeVendorRepo) GetById(ctx context.Context, vendorId string) (model.Vendor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.vendors[vendorId]
	if !ok {
		return model.Vendor{}, myerrors.ErrVendorNotFound
	}
	return v, nil
}

func (r *fakeVendorRepo) AppendOrder(ctx context.Context, order model.VendorOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failAppend {
		return errors.New("vendor store unavailable")
	}
	r.orders = append(r.orders, order)
	v := r.vendors[order.VendorId]
	v.TotalOrdersAccepted++
	r.vendors[order.VendorId] = v
	return nil
}

func (r *fakeVendorRepo) MarkOrderDelivered(ctx context.Context, vendorId, demandId string, at time.Time, distanceMeters float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, o := range r.orders {
		if o.VendorId == vendorId && o.DemandId == demandId {
			r.orders[i].Status = model.StatusDelivered
			r.orders[i].DeliveredAt = at
			r.orders[i].DeliveryDistance = distanceMeters
			v := r.vendors[vendorId]
			v.TotalOrdersDelivered++
			r.vendors[vendorId] = v
			return nil
		}
	}
	return myerrors.ErrDemandNotFound
}

func (r *fakeVendorRepo) ListOrders(ctx context.Context, vendorId string) ([]model.VendorOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res []model.VendorOrder
	for _, o := range r.orders {
		if o.VendorId == vendorId {
			res = append(res, o)
		}
	}
	return res, nil
}

type fakeClassifier struct {
	tags []string
	err  error
}

func (c *fakeClassifier) GenerateTags(ctx context.Context, text, photo string) ([]string, error) {
	return c.tags, c.err
}

type fakeBroker struct {
	mu        sync.Mutex
	published []messagebrokerdto.DemandNotification
	err       error
}

func (b *fakeBroker) Close() error { return nil }

func (b *fakeBroker) PublishDemandNotification(ctx context.Context, msg messagebrokerdto.DemandNotification) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.published = append(b.published, msg)
	return nil
}

type fakeDispatcher struct {
	mu     sync.Mutex
	events map[string][]websocketdto.Event
}

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{events: make(map[string][]websocketdto.Event)}
}

func (d *fakeDispatcher) WriteToUser(username string, msg websocketdto.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events[username] = append(d.events[username], msg)
}
