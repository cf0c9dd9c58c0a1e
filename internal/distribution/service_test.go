package distribution

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fueldesk/fueldesk/internal/platform/httpx"
	"github.com/fueldesk/fueldesk/internal/shared"
)

type memoryRepo struct {
	orders map[int64]*Order
	nextID int64
	seq    int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{orders: make(map[int64]*Order)}
}

func (m *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, m)
}

func (m *memoryRepo) GetOrder(_ context.Context, id int64) (Order, error) {
	order, ok := m.orders[id]
	if !ok {
		return Order{}, fmt.Errorf("%w: order %d", httpx.ErrNotFound, id)
	}
	snapshot := *order
	snapshot.Items = append([]Item(nil), order.Items...)
	return snapshot, nil
}

func (m *memoryRepo) ListOrders(_ context.Context, filter ListFilter) ([]Order, int, error) {
	var result []Order
	for _, order := range m.orders {
		if filter.Status != nil && order.Status != *filter.Status {
			continue
		}
		if filter.RequestingBranchID != nil && order.RequestingBranchID != *filter.RequestingBranchID {
			continue
		}
		result = append(result, *order)
	}
	return result, len(result), nil
}

func (m *memoryRepo) NextOrderNumber(_ context.Context) (string, error) {
	m.seq++
	return shared.FormatSequence("REQ", m.seq), nil
}

func (m *memoryRepo) CreateOrder(_ context.Context, order Order) (int64, error) {
	m.nextID++
	order.ID = m.nextID
	order.Items = nil
	m.orders[order.ID] = &order
	return order.ID, nil
}

func (m *memoryRepo) InsertItem(_ context.Context, item Item) (int64, error) {
	order, ok := m.orders[item.OrderID]
	if !ok {
		return 0, fmt.Errorf("%w: order %d", httpx.ErrNotFound, item.OrderID)
	}
	item.ID = int64(len(order.Items) + 1)
	order.Items = append(order.Items, item)
	return item.ID, nil
}

func (m *memoryRepo) UpdateOrderStatus(_ context.Context, id int64, status OrderStatus, updates map[string]any) error {
	order, ok := m.orders[id]
	if !ok {
		return fmt.Errorf("%w: order %d", httpx.ErrNotFound, id)
	}
	order.Status = status
	for column, value := range updates {
		switch column {
		case "source_branch_id":
			v := value.(int64)
			order.SourceBranchID = &v
		case "source_branch_name":
			v := value.(string)
			order.SourceBranchName = &v
		case "transport_ref":
			v := value.(string)
			order.TransportRef = &v
		case "transport_number":
			v := value.(string)
			order.TransportNumber = &v
		case "truck_plate":
			v := value.(string)
			order.TruckPlate = &v
		case "trailer_plate":
			v := value.(string)
			order.TrailerPlate = &v
		case "driver_name":
			v := value.(string)
			order.DriverName = &v
		case "received_by_name":
			v := value.(string)
			order.ReceivedByName = &v
		case "notes":
			order.Notes = value.(string)
		case "cancelled_by":
			v := value.(string)
			order.CancelledBy = &v
		case "cancelled_at":
			v := value.(time.Time)
			order.CancelledAt = &v
		case "total_amount":
			order.TotalAmount = value.(float64)
		default:
			return fmt.Errorf("unexpected update column %q", column)
		}
	}
	order.UpdatedAt = time.Now()
	return nil
}

func (m *memoryRepo) UpdateItemReceipt(_ context.Context, item Item) error {
	order, ok := m.orders[item.OrderID]
	if !ok {
		return fmt.Errorf("%w: order %d", httpx.ErrNotFound, item.OrderID)
	}
	for i := range order.Items {
		if order.Items[i].ID == item.ID {
			order.Items[i] = item
			return nil
		}
	}
	return fmt.Errorf("%w: item %d", httpx.ErrNotFound, item.ID)
}

func (m *memoryRepo) SetItemTransportRef(_ context.Context, orderID int64, transportRef string) error {
	order, ok := m.orders[orderID]
	if !ok {
		return fmt.Errorf("%w: order %d", httpx.ErrNotFound, orderID)
	}
	for i := range order.Items {
		ref := transportRef
		order.Items[i].TransportRef = &ref
	}
	return nil
}

type stubBranches struct {
	refs map[int64]string
}

func (s stubBranches) BranchRef(_ context.Context, id int64) (BranchRef, error) {
	name, ok := s.refs[id]
	if !ok {
		return BranchRef{}, fmt.Errorf("%w: branch %d", httpx.ErrNotFound, id)
	}
	return BranchRef{ID: id, Name: name}, nil
}

type stubSales struct {
	resales []TruckResale
	err     error
}

func (s *stubSales) ListTruckResales(_ context.Context, _ int64) ([]TruckResale, error) {
	return s.resales, s.err
}

func testBranches() stubBranches {
	return stubBranches{refs: map[int64]string{1: "North Station", 2: "Central Depot"}}
}

func newTestService(repo *memoryRepo, sales *stubSales) *Service {
	if sales == nil {
		sales = &stubSales{}
	}
	return NewService(repo, testBranches(), sales, nil, nil, nil, nil)
}

var (
	requester = shared.Actor{Name: "duangjai", BranchID: 1}
	manager   = shared.Actor{Name: "somsak", BranchID: 2, Manager: true}
)

func createTestOrder(t *testing.T, svc *Service, quantities ...float64) Order {
	t.Helper()
	if len(quantities) == 0 {
		quantities = []float64{1000}
	}
	input := CreateOrderInput{
		RequestingBranchID: 1,
		RequestedDate:      time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	}
	for _, q := range quantities {
		input.Items = append(input.Items, OrderItemInput{
			OilType:           OilDiesel,
			RequestedQuantity: q,
			PricePerLiter:     30.5,
		})
	}
	order, err := svc.Create(context.Background(), input, requester)
	require.NoError(t, err)
	return order
}

func approveAndDispatch(t *testing.T, svc *Service, id int64) Order {
	t.Helper()
	_, err := svc.Approve(context.Background(), id, ApproveInput{
		SourceBranchID: 2,
		TransportRef:   "TR-7001",
	}, manager)
	require.NoError(t, err)
	order, err := svc.Dispatch(context.Background(), id, manager)
	require.NoError(t, err)
	return order
}

func TestCreateOrder(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, nil)

	order := createTestOrder(t, svc, 1000)

	assert.Equal(t, StatusPendingApproval, order.Status)
	assert.Equal(t, "REQ-000001", order.OrderNumber)
	assert.Equal(t, "North Station", order.RequestingBranchName)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 1000.0, order.Items[0].RequestedQuantity)
	assert.Equal(t, 1000.0, order.Items[0].Quantity)
	assert.InDelta(t, 30500.0, order.TotalAmount, 0.001)

	second := createTestOrder(t, svc, 500)
	assert.Equal(t, "REQ-000002", second.OrderNumber)
}

func TestCreateOrderValidation(t *testing.T) {
	svc := newTestService(newMemoryRepo(), nil)
	ctx := context.Background()

	cases := []struct {
		name  string
		input CreateOrderInput
	}{
		{"no branch", CreateOrderInput{RequestedDate: time.Now(), Items: []OrderItemInput{{OilType: OilDiesel, RequestedQuantity: 100}}}},
		{"no date", CreateOrderInput{RequestingBranchID: 1, Items: []OrderItemInput{{OilType: OilDiesel, RequestedQuantity: 100}}}},
		{"no items", CreateOrderInput{RequestingBranchID: 1, RequestedDate: time.Now()}},
		{"bad oil type", CreateOrderInput{RequestingBranchID: 1, RequestedDate: time.Now(), Items: []OrderItemInput{{OilType: "KEROSENE", RequestedQuantity: 100}}}},
		{"zero quantity", CreateOrderInput{RequestingBranchID: 1, RequestedDate: time.Now(), Items: []OrderItemInput{{OilType: OilDiesel, RequestedQuantity: 0}}}},
		{"negative price", CreateOrderInput{RequestingBranchID: 1, RequestedDate: time.Now(), Items: []OrderItemInput{{OilType: OilDiesel, RequestedQuantity: 100, PricePerLiter: -1}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.input, requester)
			assert.True(t, errors.Is(err, httpx.ErrValidation), "expected validation error, got %v", err)
		})
	}

	t.Run("unknown branch", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateOrderInput{
			RequestingBranchID: 99,
			RequestedDate:      time.Now(),
			Items:              []OrderItemInput{{OilType: OilDiesel, RequestedQuantity: 100}},
		}, requester)
		assert.True(t, errors.Is(err, httpx.ErrValidation))
	})

	t.Run("missing actor", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateOrderInput{
			RequestingBranchID: 1,
			RequestedDate:      time.Now(),
			Items:              []OrderItemInput{{OilType: OilDiesel, RequestedQuantity: 100}},
		}, shared.Actor{})
		assert.True(t, errors.Is(err, httpx.ErrValidation))
	})
}

func TestApproveAssignsTransport(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, nil)
	created := createTestOrder(t, svc)

	plate := "83-4521"
	order, err := svc.Approve(context.Background(), created.ID, ApproveInput{
		SourceBranchID: 2,
		TransportRef:   "TR-7001",
		TruckPlate:     &plate,
	}, manager)
	require.NoError(t, err)

	assert.Equal(t, StatusApproved, order.Status)
	require.NotNil(t, order.SourceBranchID)
	assert.Equal(t, int64(2), *order.SourceBranchID)
	require.NotNil(t, order.TransportRef)
	assert.Equal(t, "TR-7001", *order.TransportRef)
	require.NotNil(t, order.Items[0].TransportRef)
	assert.Equal(t, "TR-7001", *order.Items[0].TransportRef)
}

func TestDispatchRequiresTransportRef(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, nil)
	created := createTestOrder(t, svc)

	// force APPROVED without a transport ref
	repo.orders[created.ID].Status = StatusApproved

	_, err := svc.Dispatch(context.Background(), created.ID, manager)
	assert.True(t, errors.Is(err, httpx.ErrInvalidState))
}

func TestReconcileHappyPath(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, nil)
	created := createTestOrder(t, svc, 1000)
	approveAndDispatch(t, svc, created.ID)

	order, err := svc.Reconcile(context.Background(), created.ID, ReconcileInput{
		ReceivedBy: "duangjai",
		Items:      []ReceivedItem{{UnloadedQuantity: 900, KeptOnTruckQuantity: 100}},
	}, requester)
	require.NoError(t, err)

	assert.Equal(t, StatusDelivered, order.Status)
	require.NotNil(t, order.ReceivedByName)
	assert.Equal(t, "duangjai", *order.ReceivedByName)

	item := order.Items[0]
	require.NotNil(t, item.UnloadedQuantity)
	require.NotNil(t, item.KeptOnTruckQuantity)
	assert.Equal(t, 900.0, *item.UnloadedQuantity)
	assert.Equal(t, 100.0, *item.KeptOnTruckQuantity)

	// received quantity of record equals the physical split
	assert.Equal(t, *item.UnloadedQuantity+*item.KeptOnTruckQuantity, item.Quantity)
	assert.Equal(t, 1000.0, item.RequestedQuantity)
	assert.Equal(t, 0.0, ItemVariance(item))

	// kept-on-truck defaults the delivery source to the truck
	require.NotNil(t, item.DeliverySource)
	assert.Equal(t, SourceFromTruck, *item.DeliverySource)

	assert.InDelta(t, 30500.0, order.TotalAmount, 0.001)
}

func TestReconcileShortage(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, nil)
	created := createTestOrder(t, svc, 1000)
	approveAndDispatch(t, svc, created.ID)

	order, err := svc.Reconcile(context.Background(), created.ID, ReconcileInput{
		ReceivedBy: "duangjai",
		Items:      []ReceivedItem{{UnloadedQuantity: 850, KeptOnTruckQuantity: 100}},
	}, requester)
	require.NoError(t, err)

	item := order.Items[0]
	assert.Equal(t, 950.0, item.Quantity)
	assert.Equal(t, -50.0, ItemVariance(item))

	// totals track the received quantity, not the requested one
	assert.InDelta(t, 950*30.5, item.TotalAmount, 0.001)
	assert.InDelta(t, 950*30.5, order.TotalAmount, 0.001)
}

func TestReconcileIsTerminal(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, nil)
	created := createTestOrder(t, svc, 1000)
	approveAndDispatch(t, svc, created.ID)

	receipt := ReconcileInput{
		ReceivedBy: "duangjai",
		Items:      []ReceivedItem{{UnloadedQuantity: 1000, KeptOnTruckQuantity: 0}},
	}
	_, err := svc.Reconcile(context.Background(), created.ID, receipt, requester)
	require.NoError(t, err)

	// a second receipt must not change anything
	_, err = svc.Reconcile(context.Background(), created.ID, receipt, requester)
	assert.True(t, errors.Is(err, httpx.ErrInvalidState))

	order, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, order.Status)
	assert.Equal(t, 1000.0, order.Items[0].Quantity)

	_, err = svc.Cancel(context.Background(), created.ID, CancelInput{Reason: "oops"}, manager)
	assert.True(t, errors.Is(err, httpx.ErrInvalidState))
}

func TestReconcileValidation(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, nil)
	created := createTestOrder(t, svc, 1000)
	approveAndDispatch(t, svc, created.ID)
	ctx := context.Background()

	_, err := svc.Reconcile(ctx, created.ID, ReconcileInput{
		Items: []ReceivedItem{{UnloadedQuantity: 1000}},
	}, requester)
	assert.True(t, errors.Is(err, httpx.ErrValidation), "missing receiver: %v", err)

	_, err = svc.Reconcile(ctx, created.ID, ReconcileInput{
		ReceivedBy: "duangjai",
		Items:      []ReceivedItem{{UnloadedQuantity: 500}, {UnloadedQuantity: 500}},
	}, requester)
	assert.True(t, errors.Is(err, httpx.ErrValidation), "item count mismatch: %v", err)

	_, err = svc.Reconcile(ctx, created.ID, ReconcileInput{
		ReceivedBy: "duangjai",
		Items:      []ReceivedItem{{UnloadedQuantity: -1, KeptOnTruckQuantity: 100}},
	}, requester)
	assert.True(t, errors.Is(err, httpx.ErrValidation), "negative quantity: %v", err)
}

func TestStatusTransitions(t *testing.T) {
	setStatus := func(repo *memoryRepo, id int64, status OrderStatus) {
		repo.orders[id].Status = status
		if status != StatusPendingApproval {
			ref := "TR-7001"
			repo.orders[id].TransportRef = &ref
		}
	}

	transitions := []struct {
		name string
		from OrderStatus
		call func(svc *Service, id int64) error
		ok   bool
	}{
		{"approve from pending", StatusPendingApproval, approveCall, true},
		{"approve from approved", StatusApproved, approveCall, false},
		{"approve from in transit", StatusInTransit, approveCall, false},
		{"approve from delivered", StatusDelivered, approveCall, false},
		{"approve from cancelled", StatusCancelled, approveCall, false},
		{"dispatch from approved", StatusApproved, dispatchCall, true},
		{"dispatch from pending", StatusPendingApproval, dispatchCall, false},
		{"dispatch from in transit", StatusInTransit, dispatchCall, false},
		{"dispatch from delivered", StatusDelivered, dispatchCall, false},
		{"dispatch from cancelled", StatusCancelled, dispatchCall, false},
		{"reconcile from in transit", StatusInTransit, reconcileCall, true},
		{"reconcile from approved", StatusApproved, reconcileCall, false},
		{"reconcile from pending", StatusPendingApproval, reconcileCall, false},
		{"reconcile from cancelled", StatusCancelled, reconcileCall, false},
		{"cancel from pending", StatusPendingApproval, cancelCall, true},
		{"cancel from approved", StatusApproved, cancelCall, true},
		{"cancel from in transit", StatusInTransit, cancelCall, true},
		{"cancel from delivered", StatusDelivered, cancelCall, false},
		{"cancel from cancelled", StatusCancelled, cancelCall, false},
	}

	for _, tc := range transitions {
		t.Run(tc.name, func(t *testing.T) {
			repo := newMemoryRepo()
			svc := newTestService(repo, nil)
			created := createTestOrder(t, svc, 1000)
			setStatus(repo, created.ID, tc.from)

			err := tc.call(svc, created.ID)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, httpx.ErrInvalidState), "expected invalid state, got %v", err)
			}
		})
	}
}

func approveCall(svc *Service, id int64) error {
	_, err := svc.Approve(context.Background(), id, ApproveInput{SourceBranchID: 2, TransportRef: "TR-7001"}, manager)
	return err
}

func dispatchCall(svc *Service, id int64) error {
	_, err := svc.Dispatch(context.Background(), id, manager)
	return err
}

func reconcileCall(svc *Service, id int64) error {
	_, err := svc.Reconcile(context.Background(), id, ReconcileInput{
		ReceivedBy: "duangjai",
		Items:      []ReceivedItem{{UnloadedQuantity: 1000}},
	}, requester)
	return err
}

func cancelCall(svc *Service, id int64) error {
	_, err := svc.Cancel(context.Background(), id, CancelInput{Reason: "test"}, manager)
	return err
}

func TestCancelRecordsActorAndReason(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, nil)
	created := createTestOrder(t, svc)

	order, err := svc.Cancel(context.Background(), created.ID, CancelInput{Reason: "duplicate request"}, manager)
	require.NoError(t, err)

	assert.Equal(t, StatusCancelled, order.Status)
	require.NotNil(t, order.CancelledBy)
	assert.Equal(t, "somsak", *order.CancelledBy)
	require.NotNil(t, order.CancelledAt)
	assert.Contains(t, order.Notes, "duplicate request")
}

func deliveredOrder(t *testing.T, svc *Service, unloaded, kept float64) Order {
	t.Helper()
	created := createTestOrder(t, svc, unloaded+kept)
	approveAndDispatch(t, svc, created.ID)
	order, err := svc.Reconcile(context.Background(), created.ID, ReconcileInput{
		ReceivedBy: "duangjai",
		Items:      []ReceivedItem{{UnloadedQuantity: unloaded, KeptOnTruckQuantity: kept}},
	}, requester)
	require.NoError(t, err)
	return order
}

func TestRemainingOnTruck(t *testing.T) {
	t.Run("no resales", func(t *testing.T) {
		repo := newMemoryRepo()
		svc := newTestService(repo, nil)
		order := deliveredOrder(t, svc, 900, 100)

		remaining, err := svc.RemainingOnTruck(context.Background(), order.ID)
		require.NoError(t, err)
		assert.Equal(t, 100.0, remaining)
	})

	t.Run("partial resale by order number", func(t *testing.T) {
		repo := newMemoryRepo()
		sales := &stubSales{}
		svc := newTestService(repo, sales)
		order := deliveredOrder(t, svc, 900, 100)

		sales.resales = []TruckResale{{SaleNumber: "IPS-000001", Quantity: 60, SourceOrderNumber: order.OrderNumber}}

		remaining, err := svc.RemainingOnTruck(context.Background(), order.ID)
		require.NoError(t, err)
		assert.Equal(t, 40.0, remaining)
	})

	t.Run("resale matched by transport ref", func(t *testing.T) {
		repo := newMemoryRepo()
		sales := &stubSales{}
		svc := newTestService(repo, sales)
		order := deliveredOrder(t, svc, 900, 100)

		sales.resales = []TruckResale{{SaleNumber: "IPS-000002", Quantity: 25, SourceTransportRef: "TR-7001"}}

		remaining, err := svc.RemainingOnTruck(context.Background(), order.ID)
		require.NoError(t, err)
		assert.Equal(t, 75.0, remaining)
	})

	t.Run("legacy resale matched by notes text", func(t *testing.T) {
		repo := newMemoryRepo()
		sales := &stubSales{}
		svc := newTestService(repo, sales)
		order := deliveredOrder(t, svc, 900, 100)

		sales.resales = []TruckResale{{SaleNumber: "IPS-000003", Quantity: 30, Notes: "sold from truck for " + order.OrderNumber}}

		remaining, err := svc.RemainingOnTruck(context.Background(), order.ID)
		require.NoError(t, err)
		assert.Equal(t, 70.0, remaining)
	})

	t.Run("unrelated resales ignored", func(t *testing.T) {
		repo := newMemoryRepo()
		sales := &stubSales{}
		svc := newTestService(repo, sales)
		order := deliveredOrder(t, svc, 900, 100)

		sales.resales = []TruckResale{
			{SaleNumber: "IPS-000004", Quantity: 50, SourceOrderNumber: "REQ-999999"},
			{SaleNumber: "IPS-000005", Quantity: 50, Notes: "regular tank sale"},
		}

		remaining, err := svc.RemainingOnTruck(context.Background(), order.ID)
		require.NoError(t, err)
		assert.Equal(t, 100.0, remaining)
	})

	t.Run("over-resale clamps at zero", func(t *testing.T) {
		repo := newMemoryRepo()
		sales := &stubSales{}
		svc := newTestService(repo, sales)
		order := deliveredOrder(t, svc, 900, 100)

		sales.resales = []TruckResale{
			{SaleNumber: "IPS-000006", Quantity: 80, SourceOrderNumber: order.OrderNumber},
			{SaleNumber: "IPS-000007", Quantity: 70, SourceOrderNumber: order.OrderNumber},
		}

		remaining, err := svc.RemainingOnTruck(context.Background(), order.ID)
		require.NoError(t, err)
		assert.Equal(t, 0.0, remaining)
	})

	t.Run("not delivered yet", func(t *testing.T) {
		repo := newMemoryRepo()
		svc := newTestService(repo, nil)
		created := createTestOrder(t, svc)

		_, err := svc.RemainingOnTruck(context.Background(), created.ID)
		assert.True(t, errors.Is(err, httpx.ErrInvalidState))
	})
}

func TestRemainderCacheInvalidation(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewRemainderCache(client, time.Minute)

	repo := newMemoryRepo()
	sales := &stubSales{}
	svc := NewService(repo, testBranches(), sales, nil, cache, nil, nil)
	order := deliveredOrder(t, svc, 900, 100)

	remaining, err := svc.RemainingOnTruck(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, remaining)

	// a new resale lands; until the version bumps the cached figure serves
	sales.resales = []TruckResale{{SaleNumber: "IPS-000008", Quantity: 60, SourceOrderNumber: order.OrderNumber}}
	remaining, err = svc.RemainingOnTruck(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, remaining)

	require.NoError(t, cache.Bump(context.Background()))
	remaining, err = svc.RemainingOnTruck(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, 40.0, remaining)
}

func TestOrderLockBlocksConcurrentTransition(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	locks := shared.NewRedisLock(client, time.Minute)

	repo := newMemoryRepo()
	svc := NewService(repo, testBranches(), &stubSales{}, locks, nil, nil, nil)
	created := createTestOrder(t, svc)

	release, err := locks.Acquire(context.Background(), shared.OrderLockKey(created.ID))
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), created.ID, ApproveInput{SourceBranchID: 2, TransportRef: "TR-7001"}, manager)
	assert.True(t, errors.Is(err, shared.ErrLockHeld))

	release()
	_, err = svc.Approve(context.Background(), created.ID, ApproveInput{SourceBranchID: 2, TransportRef: "TR-7001"}, manager)
	assert.NoError(t, err)
}

func TestListOrdersFilters(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, nil)
	first := createTestOrder(t, svc)
	createTestOrder(t, svc)
	_, err := svc.Cancel(context.Background(), first.ID, CancelInput{}, manager)
	require.NoError(t, err)

	status := StatusCancelled
	orders, page, err := svc.List(context.Background(), ListFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, first.ID, orders[0].ID)
	assert.Equal(t, 1, page.Total)
}
