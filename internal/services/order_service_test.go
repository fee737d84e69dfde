package services

import (
	"context"
	"testing"
	"time"

	"dinemart/internal/caching"
	"dinemart/internal/common"
	"dinemart/internal/models"
	"dinemart/internal/payments"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// Mock repositories
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) Update(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) List(ctx context.Context, filter *models.OrderFilter) ([]*models.Order, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*models.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByPaymentStatus(ctx context.Context, paymentStatus string, limit int) ([]*models.Order, error) {
	args := m.Called(ctx, paymentStatus, limit)
	return args.Get(0).([]*models.Order), args.Error(1)
}

type MockRestaurantRepository struct {
	mock.Mock
}

func (m *MockRestaurantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Restaurant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Restaurant), args.Error(1)
}

func (m *MockRestaurantRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// stubStrategy is a canned payment gateway.
type stubStrategy struct {
	initiate *payments.InitiateResponse
	verify   *payments.VerifyResponse
}

func (s *stubStrategy) InitiatePayment(ctx context.Context, amount int64, currency string, metadata map[string]string) *payments.InitiateResponse {
	return s.initiate
}

func (s *stubStrategy) VerifyPayment(ctx context.Context, paymentID string) *payments.VerifyResponse {
	return s.verify
}

type OrderServiceTestSuite struct {
	suite.Suite
	mockOrderRepo      *MockOrderRepository
	mockRestaurantRepo *MockRestaurantRepository
	mockUserRepo       *MockUserRepository
	stub               *stubStrategy
	service            OrderServiceInterface
	restaurantID       uuid.UUID
	ctx                context.Context
}

func (suite *OrderServiceTestSuite) SetupTest() {
	suite.mockOrderRepo = &MockOrderRepository{}
	suite.mockRestaurantRepo = &MockRestaurantRepository{}
	suite.mockUserRepo = &MockUserRepository{}
	suite.stub = &stubStrategy{}

	registry := payments.NewRegistry()
	registry.Register("guidini", suite.stub)

	suite.service = NewOrderService(suite.mockOrderRepo, suite.mockRestaurantRepo, suite.mockUserRepo,
		NewDefaultInvoiceCalculator(), registry, nil, nil)
	suite.restaurantID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *OrderServiceTestSuite) TearDownTest() {
	suite.mockOrderRepo.AssertExpectations(suite.T())
	suite.mockRestaurantRepo.AssertExpectations(suite.T())
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func TestOrderServiceTestSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}

func (suite *OrderServiceTestSuite) validRequest() *CreateOrderRequest {
	return &CreateOrderRequest{
		RestaurantID:  suite.restaurantID,
		PaymentMethod: models.PaymentMethodCard,
		Items: []CreateOrderItem{
			{MenuItemID: uuid.New(), Name: "Margherita", Quantity: 2, UnitPrice: 1000},
			{MenuItemID: uuid.New(), Name: "Lasagna", Quantity: 1, UnitPrice: 2500},
		},
		DeliveryAddress: models.DeliveryAddress{
			Street:  "12 Rue Didouche",
			City:    "Algiers",
			State:   "Algiers",
			ZipCode: "16000",
			Country: "DZ",
		},
	}
}

func (suite *OrderServiceTestSuite) pendingOrder() *models.Order {
	return &models.Order{
		ID:            uuid.New(),
		RestaurantID:  suite.restaurantID,
		Status:        models.OrderStatusPending,
		PaymentMethod: models.PaymentMethodCard,
		Invoice:       models.Invoice{Subtotal: 4500, DeliveryFee: 500, Tax: 360, Total: 5360},
	}
}

func (suite *OrderServiceTestSuite) TestCreate_Success() {
	suite.mockRestaurantRepo.On("Exists", mock.Anything, suite.restaurantID).Return(true, nil).Once()
	suite.mockOrderRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Order")).Return(nil).Once()

	order, err := suite.service.Create(suite.ctx, suite.validRequest())

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.OrderStatusPending, order.Status)
	assert.NotEqual(suite.T(), uuid.Nil, order.ID)
	assert.Equal(suite.T(), int64(4500), order.Invoice.Subtotal)
	assert.Equal(suite.T(), int64(5360), order.Invoice.Total)
	assert.Len(suite.T(), order.Items, 2)
	assert.Equal(suite.T(), order.ID, order.Items[0].OrderID)
	assert.Nil(suite.T(), order.PaymentProvider)
}

func (suite *OrderServiceTestSuite) TestCreate_UnknownRestaurant() {
	suite.mockRestaurantRepo.On("Exists", mock.Anything, suite.restaurantID).Return(false, nil).Once()

	order, err := suite.service.Create(suite.ctx, suite.validRequest())

	assert.Nil(suite.T(), order)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
	suite.mockOrderRepo.AssertNotCalled(suite.T(), "Create")
}

func (suite *OrderServiceTestSuite) TestCreate_UnknownUser() {
	userID := uuid.New()
	req := suite.validRequest()
	req.UserID = &userID

	suite.mockRestaurantRepo.On("Exists", mock.Anything, suite.restaurantID).Return(true, nil).Once()
	suite.mockUserRepo.On("Exists", mock.Anything, userID).Return(false, nil).Once()

	order, err := suite.service.Create(suite.ctx, req)

	assert.Nil(suite.T(), order)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
	suite.mockOrderRepo.AssertNotCalled(suite.T(), "Create")
}

func (suite *OrderServiceTestSuite) TestCreate_NoItems() {
	req := suite.validRequest()
	req.Items = nil

	order, err := suite.service.Create(suite.ctx, req)

	assert.Nil(suite.T(), order)
	assert.ErrorIs(suite.T(), err, common.ErrBusinessRule)
}

func (suite *OrderServiceTestSuite) TestCreate_IncompleteAddress() {
	req := suite.validRequest()
	req.DeliveryAddress.City = ""

	order, err := suite.service.Create(suite.ctx, req)

	assert.Nil(suite.T(), order)
	assert.ErrorIs(suite.T(), err, common.ErrBusinessRule)
}

func (suite *OrderServiceTestSuite) TestCreate_InvalidQuantity() {
	req := suite.validRequest()
	req.Items[0].Quantity = 0

	order, err := suite.service.Create(suite.ctx, req)

	assert.Nil(suite.T(), order)
	assert.ErrorIs(suite.T(), err, common.ErrBusinessRule)
}

func (suite *OrderServiceTestSuite) TestFindOne_NotFound() {
	id := uuid.New()
	suite.mockOrderRepo.On("GetByID", mock.Anything, id).Return(nil, nil).Once()

	order, err := suite.service.FindOne(suite.ctx, id)

	assert.Nil(suite.T(), order)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}

func (suite *OrderServiceTestSuite) TestFindAll_UnknownStatusFilter() {
	bogus := models.OrderStatus("shipped")

	orders, err := suite.service.FindAll(suite.ctx, &models.OrderFilter{Status: &bogus})

	assert.Nil(suite.T(), orders)
	assert.ErrorIs(suite.T(), err, common.ErrBusinessRule)
}

func (suite *OrderServiceTestSuite) TestUpdateStatus_ValidTransition() {
	order := suite.pendingOrder()
	suite.mockOrderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil).Once()
	suite.mockOrderRepo.On("Update", mock.Anything, order).Return(nil).Once()

	updated, err := suite.service.UpdateStatus(suite.ctx, order.ID, models.OrderStatusPreparing)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.OrderStatusPreparing, updated.Status)
}

func (suite *OrderServiceTestSuite) TestUpdateStatus_InvalidTransition() {
	order := suite.pendingOrder()
	suite.mockOrderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil).Once()

	updated, err := suite.service.UpdateStatus(suite.ctx, order.ID, models.OrderStatusCompleted)

	assert.Nil(suite.T(), updated)
	assert.ErrorIs(suite.T(), err, common.ErrInvalidTransition)
	suite.mockOrderRepo.AssertNotCalled(suite.T(), "Update")
}

func (suite *OrderServiceTestSuite) TestUpdateStatus_PreparingCanCancel() {
	order := suite.pendingOrder()
	order.Status = models.OrderStatusPreparing
	suite.mockOrderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil).Once()
	suite.mockOrderRepo.On("Update", mock.Anything, order).Return(nil).Once()

	updated, err := suite.service.UpdateStatus(suite.ctx, order.ID, models.OrderStatusCancelled)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.OrderStatusCancelled, updated.Status)
}

func (suite *OrderServiceTestSuite) TestUpdate_StatusGateBeforeOtherFields() {
	order := suite.pendingOrder()
	target := models.OrderStatusCompleted
	method := models.PaymentMethodCash
	suite.mockOrderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil).Once()

	updated, err := suite.service.Update(suite.ctx, order.ID, &models.OrderPatch{
		Status:        &target,
		PaymentMethod: &method,
	})

	assert.Nil(suite.T(), updated)
	assert.ErrorIs(suite.T(), err, common.ErrInvalidTransition)
	assert.Equal(suite.T(), models.PaymentMethodCard, order.PaymentMethod)
	suite.mockOrderRepo.AssertNotCalled(suite.T(), "Update")
}

func (suite *OrderServiceTestSuite) TestCancel_PendingOrder() {
	order := suite.pendingOrder()
	suite.mockOrderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil).Once()
	suite.mockOrderRepo.On("Update", mock.Anything, order).Return(nil).Once()

	cancelled, err := suite.service.Cancel(suite.ctx, order.ID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.OrderStatusCancelled, cancelled.Status)
}

func (suite *OrderServiceTestSuite) TestCancel_PreparingOrderRejected() {
	order := suite.pendingOrder()
	order.Status = models.OrderStatusPreparing
	suite.mockOrderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil).Once()

	cancelled, err := suite.service.Cancel(suite.ctx, order.ID)

	assert.Nil(suite.T(), cancelled)
	assert.ErrorIs(suite.T(), err, common.ErrBusinessRule)
	assert.Equal(suite.T(), models.OrderStatusPreparing, order.Status)
	suite.mockOrderRepo.AssertNotCalled(suite.T(), "Update")
}

func (suite *OrderServiceTestSuite) TestCreateWithPayment_Success() {
	suite.stub.initiate = &payments.InitiateResponse{
		Success:    true,
		PaymentID:  "pay_abc",
		PaymentURL: "https://pay.example/form/abc",
	}
	suite.mockRestaurantRepo.On("Exists", mock.Anything, suite.restaurantID).Return(true, nil).Once()
	suite.mockOrderRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Order")).Return(nil).Once()
	suite.mockOrderRepo.On("Update", mock.Anything, mock.AnythingOfType("*models.Order")).Return(nil).Once()

	order, err := suite.service.CreateWithPayment(suite.ctx, suite.validRequest())

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "guidini", *order.PaymentProvider)
	assert.Equal(suite.T(), "pay_abc", *order.PaymentID)
	assert.Equal(suite.T(), string(payments.StatusProcessing), *order.PaymentStatus)
	assert.Equal(suite.T(), models.OrderStatusPending, order.Status)
}

func (suite *OrderServiceTestSuite) TestCreateWithPayment_GatewayFailureKeepsOrder() {
	suite.stub.initiate = &payments.InitiateResponse{Success: false, Error: "gateway returned status 503"}
	suite.mockRestaurantRepo.On("Exists", mock.Anything, suite.restaurantID).Return(true, nil).Once()
	suite.mockOrderRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Order")).Return(nil).Once()

	order, err := suite.service.CreateWithPayment(suite.ctx, suite.validRequest())

	assert.Nil(suite.T(), order)
	assert.ErrorIs(suite.T(), err, common.ErrGatewayFailure)
	// the order was persisted before the gateway call; no rollback happens
	suite.mockOrderRepo.AssertCalled(suite.T(), "Create", mock.Anything, mock.AnythingOfType("*models.Order"))
	suite.mockOrderRepo.AssertNotCalled(suite.T(), "Update")
}

func (suite *OrderServiceTestSuite) TestCreateWithPayment_UnsupportedProvider() {
	req := suite.validRequest()
	req.PaymentProvider = "stripe"
	suite.mockRestaurantRepo.On("Exists", mock.Anything, suite.restaurantID).Return(true, nil).Once()
	suite.mockOrderRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Order")).Return(nil).Once()

	order, err := suite.service.CreateWithPayment(suite.ctx, req)

	assert.Nil(suite.T(), order)
	assert.ErrorIs(suite.T(), err, common.ErrBusinessRule)
}

func (suite *OrderServiceTestSuite) TestVerifyPayment_NoPaymentInfo() {
	order := suite.pendingOrder()
	suite.mockOrderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil).Once()

	verified, err := suite.service.VerifyPayment(suite.ctx, order.ID)

	assert.Nil(suite.T(), verified)
	assert.ErrorIs(suite.T(), err, common.ErrBusinessRule)
}

func (suite *OrderServiceTestSuite) TestVerifyPayment_SuccessAdvancesToPreparing() {
	order := suite.pendingOrder()
	provider := "guidini"
	paymentID := "pay_abc"
	processing := string(payments.StatusProcessing)
	order.PaymentProvider = &provider
	order.PaymentID = &paymentID
	order.PaymentStatus = &processing

	suite.stub.verify = &payments.VerifyResponse{Success: true, Status: payments.StatusSuccess, Amount: 5360, Currency: "DZD"}
	suite.mockOrderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil).Once()
	suite.mockOrderRepo.On("Update", mock.Anything, order).Return(nil).Once()

	verified, err := suite.service.VerifyPayment(suite.ctx, order.ID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.OrderStatusPreparing, verified.Status)
	assert.Equal(suite.T(), string(payments.StatusSuccess), *verified.PaymentStatus)
}

func (suite *OrderServiceTestSuite) TestVerifyPayment_FailureLeavesStatus() {
	order := suite.pendingOrder()
	provider := "guidini"
	paymentID := "pay_abc"
	processing := string(payments.StatusProcessing)
	order.PaymentProvider = &provider
	order.PaymentID = &paymentID
	order.PaymentStatus = &processing

	suite.stub.verify = &payments.VerifyResponse{Success: false, Status: payments.StatusFailed, Error: "declined"}
	suite.mockOrderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil).Once()
	suite.mockOrderRepo.On("Update", mock.Anything, order).Return(nil).Once()

	verified, err := suite.service.VerifyPayment(suite.ctx, order.ID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.OrderStatusPending, verified.Status)
	assert.Equal(suite.T(), string(payments.StatusFailed), *verified.PaymentStatus)
}

func (suite *OrderServiceTestSuite) TestVerifyPayment_SuccessOnNonPendingOnlyUpdatesPaymentStatus() {
	order := suite.pendingOrder()
	order.Status = models.OrderStatusOnDelivery
	provider := "guidini"
	paymentID := "pay_abc"
	order.PaymentProvider = &provider
	order.PaymentID = &paymentID

	suite.stub.verify = &payments.VerifyResponse{Success: true, Status: payments.StatusSuccess}
	suite.mockOrderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil).Once()
	suite.mockOrderRepo.On("Update", mock.Anything, order).Return(nil).Once()

	verified, err := suite.service.VerifyPayment(suite.ctx, order.ID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.OrderStatusOnDelivery, verified.Status)
	assert.Equal(suite.T(), string(payments.StatusSuccess), *verified.PaymentStatus)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockCacheService) SetOrder(ctx context.Context, order *models.Order, ttl time.Duration) error {
	args := m.Called(ctx, order, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockCacheService) SetString(ctx context.Context, key, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetString(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (suite *OrderServiceTestSuite) TestUpdateStatus_EvictsOrderAndReceiptURLFromCache() {
	mockCache := &MockCacheService{}
	service := NewOrderService(suite.mockOrderRepo, suite.mockRestaurantRepo, suite.mockUserRepo,
		NewDefaultInvoiceCalculator(), payments.NewRegistry(), mockCache, nil)

	order := suite.pendingOrder()
	suite.mockOrderRepo.On("GetByID", mock.Anything, order.ID).Return(order, nil).Once()
	suite.mockOrderRepo.On("Update", mock.Anything, order).Return(nil).Once()
	mockCache.On("GetOrder", mock.Anything, order.ID).Return(nil, nil).Once()
	mockCache.On("SetOrder", mock.Anything, order, mock.Anything).Return(nil).Once()
	mockCache.On("DeleteOrder", mock.Anything, order.ID).Return(nil).Once()
	mockCache.On("Delete", mock.Anything, caching.ReceiptURLKey(order.ID)).Return(nil).Once()

	_, err := service.UpdateStatus(suite.ctx, order.ID, models.OrderStatusPreparing)

	assert.NoError(suite.T(), err)
	mockCache.AssertExpectations(suite.T())
}
