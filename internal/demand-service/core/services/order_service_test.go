package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"hatbazar/internal/demand-service/core/domain/dto"
	"hatbazar/internal/demand-service/core/domain/model"
	"hatbazar/internal/demand-service/core/geo"
	"hatbazar/internal/demand-service/core/myerrors"
)

func testVendor() model.Vendor {
	return model.Vendor{
		VendorId:     "vendor-1",
		Name:         "Rahim",
		Email:        "rahim@example.com",
		BusinessName: "Rahim Hardware",
		Category:     "plumbing",
		Location:     geo.Coordinate{Latitude: 12.9720, Longitude: 77.5950},
		IsActive:     true,
	}
}

func seedPendingDemand(t *testing.T, repo *fakeDemandRepo, email string) string {
	t.Helper()
	id, err := repo.Create(context.Background(), model.Demand{
		Username: "indro",
		Email:    email,
		Address:  "12 MG Road, Bengaluru",
		Origin:   geo.Coordinate{Latitude: 12.9716, Longitude: 77.5946},
		Tags:     []string{"plumbing"},
		Status:   model.StatusPending,
	})
	if err != nil {
		t.Fatalf("seed demand: %v", err)
	}
	return id
}

func newOrderService(t *testing.T, demands *fakeDemandRepo, vendors *fakeVendorRepo, broker *fakeBroker, dispatcher *fakeDispatcher) *OrderService {
	t.Helper()
	svc := NewOrderService(context.Background(), testLogger(t), demands, vendors, broker, dispatcher, 50)
	return svc.(*OrderService)
}

func TestAcceptOrder(t *testing.T) {
	demands := newFakeDemandRepo()
	vendors := newFakeVendorRepo(testVendor())
	broker := &fakeBroker{}
	dispatcher := newFakeDispatcher()
	svc := newOrderService(t, demands, vendors, broker, dispatcher)

	id := seedPendingDemand(t, demands, "indro@example.com")

	res, err := svc.AcceptOrder(id, "vendor-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != model.StatusAccepted {
		t.Fatalf("expected accepted, got %s", res.Status)
	}
	if res.Notification != dto.NotificationSent {
		t.Fatalf("expected notification sent, got %s", res.Notification)
	}

	d, _ := demands.get(id)
	if d.Status != model.StatusAccepted || d.AcceptedBy != "vendor-1" {
		t.Fatalf("stored demand not accepted by vendor-1: %+v", d)
	}
	if d.VendorName != "Rahim" || d.BusinessName != "Rahim Hardware" {
		t.Fatalf("vendor summary not embedded: %+v", d)
	}

	orders, _ := vendors.ListOrders(context.Background(), "vendor-1")
	if len(orders) != 1 {
		t.Fatalf("expected 1 mirrored order, got %d", len(orders))
	}
	if orders[0].DemandId != id || orders[0].Status != model.StatusAccepted {
		t.Fatalf("mirror mismatch: %+v", orders[0])
	}
	if orders[0].CustomerUsername != "indro" {
		t.Fatalf("mirror must carry the customer summary: %+v", orders[0])
	}

	v, _ := vendors.GetById(context.Background(), "vendor-1")
	if v.TotalOrdersAccepted != 1 {
		t.Fatalf("accepted counter not incremented: %d", v.TotalOrdersAccepted)
	}

	if len(broker.published) != 1 || broker.published[0].Recipient != "indro@example.com" {
		t.Fatalf("expected one notification to the requester, got %+v", broker.published)
	}
	if len(dispatcher.events["indro"]) != 1 {
		t.Fatalf("expected one websocket event for the requester")
	}
}

func TestAcceptOrderNoAddress(t *testing.T) {
	demands := newFakeDemandRepo()
	vendors := newFakeVendorRepo(testVendor())
	broker := &fakeBroker{}
	svc := newOrderService(t, demands, vendors, broker, newFakeDispatcher())

	id := seedPendingDemand(t, demands, "")

	res, err := svc.AcceptOrder(id, "vendor-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Notification != dto.NotificationNoAddress {
		t.Fatalf("expected no_address, got %s", res.Notification)
	}
	if len(broker.published) != 0 {
		t.Fatal("nothing should be published without a recipient")
	}
}

func TestAcceptOrderNotificationFailureIsSoft(t *testing.T) {
	demands := newFakeDemandRepo()
	vendors := newFakeVendorRepo(testVendor())
	broker := &fakeBroker{err: errors.New("broker down")}
	svc := newOrderService(t, demands, vendors, broker, newFakeDispatcher())

	id := seedPendingDemand(t, demands, "indro@example.com")

	res, err := svc.AcceptOrder(id, "vendor-1")
	if err != nil {
		t.Fatalf("notification failure must not fail the transition: %v", err)
	}
	if res.Status != model.StatusAccepted {
		t.Fatalf("expected accepted, got %s", res.Status)
	}
	if res.Notification != dto.NotificationFailed {
		t.Fatalf("expected failed soft status, got %s", res.Notification)
	}
}

func TestAcceptOrderMirrorFailureDoesNotRollBack(t *testing.T) {
	demands := newFakeDemandRepo()
	vendors := newFakeVendorRepo(testVendor())
	vendors.failAppend = true
	svc := newOrderService(t, demands, vendors, &fakeBroker{}, newFakeDispatcher())

	id := seedPendingDemand(t, demands, "indro@example.com")

	if _, err := svc.AcceptOrder(id, "vendor-1"); err != nil {
		t.Fatalf("mirror failure must not fail the transition: %v", err)
	}
	d, _ := demands.get(id)
	if d.Status != model.StatusAccepted {
		t.Fatalf("authoritative status must stand, got %s", d.Status)
	}
}

func TestAcceptOrderFailures(t *testing.T) {
	demands := newFakeDemandRepo()
	vendors := newFakeVendorRepo(testVendor())
	svc := newOrderService(t, demands, vendors, &fakeBroker{}, newFakeDispatcher())

	id := seedPendingDemand(t, demands, "indro@example.com")

	if _, err := svc.AcceptOrder("missing", "vendor-1"); !errors.Is(err, myerrors.ErrDemandNotFound) {
		t.Fatalf("expected ErrDemandNotFound, got %v", err)
	}
	if _, err := svc.AcceptOrder(id, "ghost-vendor"); !errors.Is(err, myerrors.ErrVendorNotFound) {
		t.Fatalf("expected ErrVendorNotFound, got %v", err)
	}

	if _, err := svc.AcceptOrder(id, "vendor-1"); err != nil {
		t.Fatalf("first accept: %v", err)
	}
	if _, err := svc.AcceptOrder(id, "vendor-1"); !errors.Is(err, myerrors.ErrAlreadyAccepted) {
		t.Fatalf("expected ErrAlreadyAccepted on second accept, got %v", err)
	}
}

func TestAcceptOrderRaceHasOneWinner(t *testing.T) {
	demands := newFakeDemandRepo()
	v1 := testVendor()
	v2 := testVendor()
	v2.VendorId = "vendor-2"
	v2.Name = "Karim"
	vendors := newFakeVendorRepo(v1, v2)
	svc := newOrderService(t, demands, vendors, &fakeBroker{}, newFakeDispatcher())

	id := seedPendingDemand(t, demands, "indro@example.com")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, vendorId := range []string{"vendor-1", "vendor-2"} {
		wg.Add(1)
		go func(i int, vendorId string) {
			defer wg.Done()
			_, errs[i] = svc.AcceptOrder(id, vendorId)
		}(i, vendorId)
	}
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, myerrors.ErrAlreadyAccepted):
			lost++
		default:
			t.Fatalf("unexpected race outcome: %v", err)
		}
	}
	if won != 1 || lost != 1 {
		t.Fatalf("expected exactly one winner and one AlreadyAccepted, got %d/%d", won, lost)
	}

	d, _ := demands.get(id)
	if d.Status != model.StatusAccepted {
		t.Fatalf("final status must be accepted, got %s", d.Status)
	}
	if d.AcceptedBy != "vendor-1" && d.AcceptedBy != "vendor-2" {
		t.Fatalf("accepted_by must be exactly one of the racers, got %q", d.AcceptedBy)
	}
}

func TestDeliverOrderPendingDemandIsNotFound(t *testing.T) {
	demands := newFakeDemandRepo()
	vendors := newFakeVendorRepo(testVendor())
	svc := newOrderService(t, demands, vendors, &fakeBroker{}, newFakeDispatcher())

	id := seedPendingDemand(t, demands, "indro@example.com")

	// Never accepted: must be NotFound, never a geofence failure.
	_, err := svc.DeliverOrder(id, "vendor-1", geo.Coordinate{Latitude: 12.9716, Longitude: 77.5946})
	if !errors.Is(err, myerrors.ErrDemandNotFound) {
		t.Fatalf("expected ErrDemandNotFound, got %v", err)
	}
	var gf *myerrors.GeofenceError
	if errors.As(err, &gf) {
		t.Fatal("a pending demand must not reach the geofence gate")
	}
}

func TestDeliverOrderWrongVendorIsNotFound(t *testing.T) {
	demands := newFakeDemandRepo()
	v1 := testVendor()
	v2 := testVendor()
	v2.VendorId = "vendor-2"
	vendors := newFakeVendorRepo(v1, v2)
	svc := newOrderService(t, demands, vendors, &fakeBroker{}, newFakeDispatcher())

	id := seedPendingDemand(t, demands, "indro@example.com")
	if _, err := svc.AcceptOrder(id, "vendor-1"); err != nil {
		t.Fatalf("accept: %v", err)
	}

	// The demand exists and is accepted, just not by vendor-2. The
	// response deliberately does not say which part failed.
	_, err := svc.DeliverOrder(id, "vendor-2", geo.Coordinate{Latitude: 12.9716, Longitude: 77.5946})
	if !errors.Is(err, myerrors.ErrDemandNotFound) {
		t.Fatalf("expected ErrDemandNotFound, got %v", err)
	}
}

func TestDeliverOrderInvalidCoordinate(t *testing.T) {
	demands := newFakeDemandRepo()
	vendors := newFakeVendorRepo(testVendor())
	svc := newOrderService(t, demands, vendors, &fakeBroker{}, newFakeDispatcher())

	id := seedPendingDemand(t, demands, "indro@example.com")
	if _, err := svc.AcceptOrder(id, "vendor-1"); err != nil {
		t.Fatalf("accept: %v", err)
	}

	_, err := svc.DeliverOrder(id, "vendor-1", geo.Coordinate{Latitude: 95, Longitude: 77.5946})
	if !errors.Is(err, geo.ErrInvalidLatitude) {
		t.Fatalf("expected ErrInvalidLatitude, got %v", err)
	}
}

func TestDeliverOrderGeofenceViolation(t *testing.T) {
	demands := newFakeDemandRepo()
	vendors := newFakeVendorRepo(testVendor())
	svc := newOrderService(t, demands, vendors, &fakeBroker{}, newFakeDispatcher())

	id := seedPendingDemand(t, demands, "indro@example.com")
	if _, err := svc.AcceptOrder(id, "vendor-1"); err != nil {
		t.Fatalf("accept: %v", err)
	}

	// ~500m east of the origin.
	attempt := geo.Coordinate{Latitude: 12.9716, Longitude: 77.5992}
	_, err := svc.DeliverOrder(id, "vendor-1", attempt)

	var gf *myerrors.GeofenceError
	if !errors.As(err, &gf) {
		t.Fatalf("expected GeofenceError, got %v", err)
	}
	if gf.RequiredMeters != 50 {
		t.Fatalf("expected threshold 50, got %v", gf.RequiredMeters)
	}
	if gf.ActualMeters <= 50 {
		t.Fatalf("reported distance must exceed the threshold, got %v", gf.ActualMeters)
	}
	if gf.Current != attempt {
		t.Fatalf("diagnostic must echo the attempted location: %+v", gf.Current)
	}
	if gf.Target != (geo.Coordinate{Latitude: 12.9716, Longitude: 77.5946}) {
		t.Fatalf("diagnostic must carry the demand origin: %+v", gf.Target)
	}

	d, _ := demands.get(id)
	if d.Status != model.StatusAccepted {
		t.Fatalf("a rejected delivery must not change the status, got %s", d.Status)
	}
}

func TestDeliverOrderAtExactThreshold(t *testing.T) {
	demands := newFakeDemandRepo()
	vendors := newFakeVendorRepo(testVendor())
	svc := newOrderService(t, demands, vendors, &fakeBroker{}, newFakeDispatcher())

	origin := geo.Coordinate{Latitude: 0, Longitude: 0}
	attempt := geo.Coordinate{Latitude: 0, Longitude: 0.00045}
	dist, err := geo.Distance(origin, attempt)
	if err != nil {
		t.Fatalf("distance: %v", err)
	}

	id, err := demands.Create(context.Background(), model.Demand{
		Username: "indro",
		Address:  "equator",
		Origin:   origin,
		Tags:     []string{"plumbing"},
		Status:   model.StatusPending,
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := svc.AcceptOrder(id, "vendor-1"); err != nil {
		t.Fatalf("accept: %v", err)
	}

	// Threshold equal to the exact distance: the comparison is
	// inclusive, so this delivery must pass.
	exact := NewOrderService(context.Background(), testLogger(t), demands, vendors, &fakeBroker{}, newFakeDispatcher(), dist).(*OrderService)
	res, err := exact.DeliverOrder(id, "vendor-1", attempt)
	if err != nil {
		t.Fatalf("delivery at the exact threshold must pass: %v", err)
	}
	if res.Status != model.StatusDelivered {
		t.Fatalf("expected delivered, got %s", res.Status)
	}
}

func TestDeliverOrderSuccess(t *testing.T) {
	demands := newFakeDemandRepo()
	vendors := newFakeVendorRepo(testVendor())
	broker := &fakeBroker{}
	dispatcher := newFakeDispatcher()
	svc := newOrderService(t, demands, vendors, broker, dispatcher)

	id := seedPendingDemand(t, demands, "indro@example.com")
	if _, err := svc.AcceptOrder(id, "vendor-1"); err != nil {
		t.Fatalf("accept: %v", err)
	}

	res, err := svc.DeliverOrder(id, "vendor-1", geo.Coordinate{Latitude: 12.9716, Longitude: 77.5946})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != model.StatusDelivered {
		t.Fatalf("expected delivered, got %s", res.Status)
	}
	if res.DeliveryDistanceMeters != 0 {
		t.Fatalf("delivery from the origin must report 0 m, got %v", res.DeliveryDistanceMeters)
	}
	if _, err := time.Parse(time.RFC3339, res.DeliveredAt); err != nil {
		t.Fatalf("delivered_at not RFC3339: %v", err)
	}

	d, _ := demands.get(id)
	if d.Status != model.StatusDelivered || d.DeliveryDistanceM != 0 {
		t.Fatalf("stored demand mismatch: %+v", d)
	}

	orders, _ := vendors.ListOrders(context.Background(), "vendor-1")
	if len(orders) != 1 || orders[0].Status != model.StatusDelivered {
		t.Fatalf("mirror must reflect delivery: %+v", orders)
	}
	v, _ := vendors.GetById(context.Background(), "vendor-1")
	if v.TotalOrdersDelivered != 1 {
		t.Fatalf("delivered counter not incremented: %d", v.TotalOrdersDelivered)
	}

	// Second delivery: the demand is no longer accepted.
	if _, err := svc.DeliverOrder(id, "vendor-1", geo.Coordinate{Latitude: 12.9716, Longitude: 77.5946}); !errors.Is(err, myerrors.ErrDemandNotFound) {
		t.Fatalf("expected ErrDemandNotFound on repeat delivery, got %v", err)
	}

	if got := len(broker.published); got != 2 {
		t.Fatalf("expected accept + deliver notifications, got %d", got)
	}
	if got := len(dispatcher.events["indro"]); got != 2 {
		t.Fatalf("expected two websocket events, got %d", got)
	}
}

func TestVendorOrdersListing(t *testing.T) {
	demands := newFakeDemandRepo()
	vendors := newFakeVendorRepo(testVendor())
	svc := newOrderService(t, demands, vendors, &fakeBroker{}, newFakeDispatcher())

	id := seedPendingDemand(t, demands, "indro@example.com")
	if _, err := svc.AcceptOrder(id, "vendor-1"); err != nil {
		t.Fatalf("accept: %v", err)
	}

	orders, err := svc.VendorOrders("vendor-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders))
	}
	if orders[0].Status != model.StatusAccepted || orders[0].DeliveredAt != "" {
		t.Fatalf("accepted order must not expose delivery fields: %+v", orders[0])
	}
}

// Full lifecycle walk at real coordinates: create, discover nearby,
// accept, deliver from the origin.
func TestDemandLifecycleEndToEnd(t *testing.T) {
	demands := newFakeDemandRepo()
	vendors := newFakeVendorRepo(testVendor())
	broker := &fakeBroker{}
	dispatcher := newFakeDispatcher()

	demandSvc := NewDemandService(context.Background(), testLogger(t), demands, &fakeClassifier{}, 0, 0)
	orderSvc := newOrderService(t, demands, vendors, broker, dispatcher)

	created, err := demandSvc.CreateDemand(dto.CreateDemandRequest{
		Username:  strPtr("indro"),
		Email:     strPtr("indro@example.com"),
		Address:   strPtr("12 MG Road, Bengaluru"),
		Latitude:  f64Ptr(12.9716),
		Longitude: f64Ptr(77.5946),
		Text:      strPtr("kitchen sink is leaking"),
		Tags:      []string{"plumbing"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != model.StatusPending {
		t.Fatalf("expected pending after create, got %s", created.Status)
	}

	// Vendor a few hundred meters away sees the demand with a
	// positive distance.
	nearby, err := demandSvc.FindNearestPending(dto.NearbyDemandsRequest{
		Latitude:  f64Ptr(12.9720),
		Longitude: f64Ptr(77.5950),
	})
	if err != nil {
		t.Fatalf("nearest: %v", err)
	}
	if len(nearby) != 1 || nearby[0].DemandId != created.DemandId {
		t.Fatalf("vendor must see the new demand, got %+v", nearby)
	}
	if nearby[0].DistanceMeters <= 0 {
		t.Fatalf("expected positive distance, got %v", nearby[0].DistanceMeters)
	}

	accepted, err := orderSvc.AcceptOrder(created.DemandId, "vendor-1")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != model.StatusAccepted {
		t.Fatalf("expected accepted, got %s", accepted.Status)
	}

	delivered, err := orderSvc.DeliverOrder(created.DemandId, "vendor-1", geo.Coordinate{Latitude: 12.9716, Longitude: 77.5946})
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if delivered.Status != model.StatusDelivered {
		t.Fatalf("expected delivered, got %s", delivered.Status)
	}
	if delivered.DeliveryDistanceMeters != 0 {
		t.Fatalf("expected ~0 m delivery distance, got %v", delivered.DeliveryDistanceMeters)
	}

	// The accepted demand is no longer discoverable.
	nearby, err = demandSvc.FindNearestPending(dto.NearbyDemandsRequest{
		Latitude:  f64Ptr(12.9720),
		Longitude: f64Ptr(77.5950),
	})
	if err != nil {
		t.Fatalf("nearest after delivery: %v", err)
	}
	if len(nearby) != 0 {
		t.Fatalf("delivered demand must not appear in nearest results: %+v", nearby)
	}
}
