package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"dinemart/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type OrderRepoTestSuite struct {
	suite.Suite
	mock         pgxmock.PgxPoolIface
	repo         OrderRepository
	restaurantID uuid.UUID
	orderID      uuid.UUID
	ctx          context.Context
}

func (suite *OrderRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewOrderRepository(mock)
	suite.restaurantID = uuid.New()
	suite.orderID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *OrderRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestOrderRepoTestSuite(t *testing.T) {
	suite.Run(t, new(OrderRepoTestSuite))
}

func (suite *OrderRepoTestSuite) sampleOrder() *models.Order {
	itemID := uuid.New()
	return &models.Order{
		ID:            suite.orderID,
		RestaurantID:  suite.restaurantID,
		Status:        models.OrderStatusPending,
		PaymentMethod: models.PaymentMethodCard,
		Invoice: models.Invoice{
			Subtotal: 4500, DeliveryFee: 500, Tax: 360, Total: 5360,
		},
		DeliveryAddress: models.DeliveryAddress{
			Street: "12 Rue Didouche", City: "Algiers", State: "Algiers", ZipCode: "16000", Country: "DZ",
		},
		Items: []*models.OrderItem{
			{
				ID:         itemID,
				OrderID:    suite.orderID,
				MenuItemID: uuid.New(),
				Name:       "Margherita",
				Quantity:   2,
				UnitPrice:  1000,
				TotalPrice: 2000,
			},
		},
	}
}

func (suite *OrderRepoTestSuite) TestCreate_InsertsOrderAndItemsTransactionally() {
	order := suite.sampleOrder()

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`INSERT INTO orders`).
		WithArgs(order.ID, order.RestaurantID, order.UserID, order.Status, order.PaymentMethod,
			pgxmock.AnyArg(), pgxmock.AnyArg(), order.PaymentProvider, order.PaymentID, order.PaymentStatus).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	item := order.Items[0]
	suite.mock.ExpectExec(`INSERT INTO order_items`).
		WithArgs(item.ID, order.ID, item.MenuItemID, item.Name, item.Quantity,
			item.UnitPrice, item.TotalPrice, item.SpecialInstructions).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectCommit()

	err := suite.repo.Create(suite.ctx, order)
	assert.NoError(suite.T(), err)
}

func (suite *OrderRepoTestSuite) TestCreate_ItemInsertFailureRollsBack() {
	order := suite.sampleOrder()

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`INSERT INTO orders`).
		WithArgs(order.ID, order.RestaurantID, order.UserID, order.Status, order.PaymentMethod,
			pgxmock.AnyArg(), pgxmock.AnyArg(), order.PaymentProvider, order.PaymentID, order.PaymentStatus).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`INSERT INTO order_items`).
		WithArgs(order.Items[0].ID, order.ID, order.Items[0].MenuItemID, order.Items[0].Name, order.Items[0].Quantity,
			order.Items[0].UnitPrice, order.Items[0].TotalPrice, order.Items[0].SpecialInstructions).
		WillReturnError(errors.New("constraint violation"))
	suite.mock.ExpectRollback()

	err := suite.repo.Create(suite.ctx, order)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "constraint violation")
}

func (suite *OrderRepoTestSuite) TestGetByID_Success() {
	order := suite.sampleOrder()
	invoiceJSON, _ := json.Marshal(order.Invoice)
	addressJSON, _ := json.Marshal(order.DeliveryAddress)
	now := time.Now()

	suite.mock.ExpectQuery(`SELECT .+ FROM orders WHERE id = \$1`).
		WithArgs(suite.orderID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "restaurant_id", "user_id", "status", "payment_method", "invoice", "delivery_address", "payment_provider", "payment_id", "payment_status", "created_at", "updated_at"}).
			AddRow(order.ID, order.RestaurantID, order.UserID, order.Status, order.PaymentMethod,
				invoiceJSON, addressJSON, order.PaymentProvider, order.PaymentID, order.PaymentStatus, now, now))
	suite.mock.ExpectQuery(`SELECT .+ FROM order_items WHERE order_id = \$1`).
		WithArgs(suite.orderID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "order_id", "menu_item_id", "name", "quantity", "unit_price", "total_price", "special_instructions", "created_at"}).
			AddRow(order.Items[0].ID, order.ID, order.Items[0].MenuItemID, "Margherita", 2, int64(1000), int64(2000), (*string)(nil), now))

	result, err := suite.repo.GetByID(suite.ctx, suite.orderID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), order.ID, result.ID)
	assert.Equal(suite.T(), models.OrderStatusPending, result.Status)
	assert.Equal(suite.T(), int64(5360), result.Invoice.Total)
	assert.Equal(suite.T(), "Algiers", result.DeliveryAddress.City)
	assert.Len(suite.T(), result.Items, 1)
	assert.Equal(suite.T(), "Margherita", result.Items[0].Name)
}

func (suite *OrderRepoTestSuite) TestGetByID_NotFoundReturnsNil() {
	suite.mock.ExpectQuery(`SELECT .+ FROM orders WHERE id = \$1`).
		WithArgs(suite.orderID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	result, err := suite.repo.GetByID(suite.ctx, suite.orderID)

	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), result)
}

func (suite *OrderRepoTestSuite) TestUpdate_Success() {
	order := suite.sampleOrder()
	order.Status = models.OrderStatusPreparing

	suite.mock.ExpectExec(`UPDATE orders`).
		WithArgs(order.Status, order.PaymentMethod, pgxmock.AnyArg(), pgxmock.AnyArg(),
			order.PaymentProvider, order.PaymentID, order.PaymentStatus, order.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.Update(suite.ctx, order)
	assert.NoError(suite.T(), err)
}

func (suite *OrderRepoTestSuite) TestList_FiltersCombineWithAnd() {
	status := models.OrderStatusPending
	userID := uuid.New()
	now := time.Now()
	invoiceJSON := []byte(`{"subtotal":0,"delivery_fee":0,"tax":0,"discount":0,"total":0,"items":[]}`)
	addressJSON := []byte(`{"street":"s","city":"c","state":"st","zip_code":"z","country":"dz"}`)

	suite.mock.ExpectQuery(`SELECT .+ FROM orders WHERE 1=1 AND restaurant_id = \$1 AND user_id = \$2 AND status = \$3 ORDER BY created_at DESC`).
		WithArgs(suite.restaurantID, userID, status).
		WillReturnRows(pgxmock.NewRows([]string{"id", "restaurant_id", "user_id", "status", "payment_method", "invoice", "delivery_address", "payment_provider", "payment_id", "payment_status", "created_at", "updated_at"}).
			AddRow(suite.orderID, suite.restaurantID, &userID, status, models.PaymentMethodCash,
				invoiceJSON, addressJSON, (*string)(nil), (*string)(nil), (*string)(nil), now, now))
	suite.mock.ExpectQuery(`SELECT .+ FROM order_items WHERE order_id = \$1`).
		WithArgs(suite.orderID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "order_id", "menu_item_id", "name", "quantity", "unit_price", "total_price", "special_instructions", "created_at"}))

	orders, err := suite.repo.List(suite.ctx, &models.OrderFilter{
		RestaurantID: &suite.restaurantID,
		UserID:       &userID,
		Status:       &status,
	})

	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), orders, 1)
	assert.Equal(suite.T(), suite.orderID, orders[0].ID)
}

func (suite *OrderRepoTestSuite) TestList_NoFilter() {
	suite.mock.ExpectQuery(`SELECT .+ FROM orders WHERE 1=1 ORDER BY created_at DESC`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "restaurant_id", "user_id", "status", "payment_method", "invoice", "delivery_address", "payment_provider", "payment_id", "payment_status", "created_at", "updated_at"}))

	orders, err := suite.repo.List(suite.ctx, nil)

	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), orders)
}

func (suite *OrderRepoTestSuite) TestListByPaymentStatus() {
	now := time.Now()
	invoiceJSON := []byte(`{"subtotal":0,"delivery_fee":0,"tax":0,"discount":0,"total":0,"items":[]}`)
	addressJSON := []byte(`{"street":"s","city":"c","state":"st","zip_code":"z","country":"dz"}`)
	processing := "processing"
	provider := "guidini"
	paymentID := "pay_1"

	suite.mock.ExpectQuery(`SELECT .+ FROM orders WHERE payment_status = \$1 ORDER BY created_at DESC LIMIT \$2`).
		WithArgs("processing", 100).
		WillReturnRows(pgxmock.NewRows([]string{"id", "restaurant_id", "user_id", "status", "payment_method", "invoice", "delivery_address", "payment_provider", "payment_id", "payment_status", "created_at", "updated_at"}).
			AddRow(suite.orderID, suite.restaurantID, (*uuid.UUID)(nil), models.OrderStatusPending, models.PaymentMethodCard,
				invoiceJSON, addressJSON, &provider, &paymentID, &processing, now, now))

	orders, err := suite.repo.ListByPaymentStatus(suite.ctx, "processing", 100)

	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), orders, 1)
	assert.Equal(suite.T(), "pay_1", *orders[0].PaymentID)
}
