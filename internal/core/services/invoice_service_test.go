package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/elena/open-accounting/internal/apperrors"
	"github.com/elena/open-accounting/internal/core/domain"
	portssvc "github.com/elena/open-accounting/internal/core/ports/services"
	"github.com/elena/open-accounting/internal/core/services"
	"github.com/elena/open-accounting/internal/dto"
	"github.com/elena/open-accounting/pkg/config"
)

// MockRelationRepository is a mock type for the RelationRepositoryFacade interface
type MockRelationRepository struct {
	mock.Mock
}

func (m *MockRelationRepository) FindEntityByID(ctx context.Context, entityID string) (*domain.Entity, error) {
	args := m.Called(ctx, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Entity), args.Error(1)
}

func (m *MockRelationRepository) FindEntityByCode(ctx context.Context, code string) (*domain.Entity, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Entity), args.Error(1)
}

func (m *MockRelationRepository) SaveEntity(ctx context.Context, entity domain.Entity) error {
	args := m.Called(ctx, entity)
	return args.Error(0)
}

func (m *MockRelationRepository) FindRelationByID(ctx context.Context, relationID string) (*domain.Relation, error) {
	args := m.Called(ctx, relationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Relation), args.Error(1)
}

func (m *MockRelationRepository) FindRelationByEntity(ctx context.Context, entityID string, kind domain.EntryKind) (*domain.Relation, error) {
	args := m.Called(ctx, entityID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Relation), args.Error(1)
}

func (m *MockRelationRepository) SaveRelation(ctx context.Context, relation domain.Relation) error {
	args := m.Called(ctx, relation)
	return args.Error(0)
}

// subledgersConfig is the posting configuration the subledger service tests
// run against.
func subledgersConfig() config.Subledgers {
	return config.Subledgers{
		AccountsPayableAccount:    "03-0300",
		AccountsReceivableAccount: "01-0300",
		GSTClearingAccount:        "03-0500",
		SuspenseAccount:           "05-0900",
		DefaultTermsDays:          14,
	}
}

// --- Test Suite Setup ---

type InvoiceServiceTestSuite struct {
	suite.Suite
	mockSubledgerRepo *MockSubledgerRepository
	mockRelationRepo  *MockRelationRepository
	mockLedgerSvc     *MockLedgerService
	service           portssvc.InvoiceSvcFacade
}

func (suite *InvoiceServiceTestSuite) SetupTest() {
	suite.mockSubledgerRepo = new(MockSubledgerRepository)
	suite.mockRelationRepo = new(MockRelationRepository)
	suite.mockLedgerSvc = new(MockLedgerService)
	suite.service = services.NewInvoiceService(suite.mockSubledgerRepo, suite.mockRelationRepo, suite.mockLedgerSvc, subledgersConfig())
}

// --- Test Cases ---

func (suite *InvoiceServiceTestSuite) TestCreateInvoice_Success() {
	ctx := context.Background()
	creatorUserID := uuid.NewString()
	relation := &domain.Relation{RelationID: uuid.NewString(), EntityID: uuid.NewString(), Kind: domain.KindInvoice, Terms: 14}
	invoiceDate := time.Date(2023, 6, 21, 0, 0, 0, 0, time.UTC)

	req := dto.CreateInvoiceRequest{
		RelationID:    relation.RelationID,
		InvoiceNumber: "INV-1001",
		Date:          invoiceDate,
		Value:         decimal.RequireFromString("110.00"),
		GSTTotal:      decimal.RequireFromString("10.00"),
		Lines: []dto.TransactionLineInput{
			{Account: "15-0200", Value: decimal.RequireFromString("100.00")},
		},
	}

	txn := &domain.Transaction{TransactionID: uuid.NewString(), Date: invoiceDate, Value: decimal.RequireFromString("110.00")}

	suite.mockRelationRepo.On("FindRelationByID", ctx, relation.RelationID).Return(relation, nil).Once()
	suite.mockSubledgerRepo.On("FindInvoiceByNumber", ctx, relation.RelationID, "INV-1001").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockLedgerSvc.On("CreateTransaction", ctx, mock.MatchedBy(func(r dto.CreateTransactionRequest) bool {
		// Expense and GST debit, the payables control account credits the
		// full invoice value.
		if len(r.Lines) != 3 {
			return false
		}
		return r.Lines[0].Account == "15-0200" && r.Lines[0].Value.Equal(decimal.RequireFromString("100.00")) &&
			r.Lines[1].Account == "03-0500" && r.Lines[1].Value.Equal(decimal.RequireFromString("10.00")) &&
			r.Lines[2].Account == "03-0300" && r.Lines[2].Value.Equal(decimal.RequireFromString("-110.00"))
	}), creatorUserID).Return(txn, nil).Once()
	suite.mockSubledgerRepo.On("SaveInvoice", ctx, mock.AnythingOfType("domain.Invoice")).Return(nil).Once()

	invoice, err := suite.service.CreateInvoice(ctx, req, creatorUserID)

	suite.Require().NoError(err)
	suite.Require().NotNil(invoice)
	suite.Equal(txn.TransactionID, invoice.TransactionID)
	suite.True(invoice.Unpaid.Equal(decimal.RequireFromString("110.00")))
	// No explicit due date: invoice date plus the relation's terms.
	suite.Equal(invoiceDate.AddDate(0, 0, 14), invoice.DueDate)
	suite.mockLedgerSvc.AssertExpectations(suite.T())
}

func (suite *InvoiceServiceTestSuite) TestCreateInvoice_ExplicitDueDate() {
	ctx := context.Background()
	relation := &domain.Relation{RelationID: uuid.NewString(), Kind: domain.KindInvoice, Terms: 14}
	invoiceDate := time.Date(2023, 6, 21, 0, 0, 0, 0, time.UTC)
	dueDate := time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC)
	txn := &domain.Transaction{TransactionID: uuid.NewString()}

	req := dto.CreateInvoiceRequest{
		RelationID:    relation.RelationID,
		InvoiceNumber: "INV-1002",
		Date:          invoiceDate,
		Value:         decimal.RequireFromString("50.00"),
		DueDate:       &dueDate,
		Lines: []dto.TransactionLineInput{
			{Account: "15-0200", Value: decimal.RequireFromString("50.00")},
		},
	}

	suite.mockRelationRepo.On("FindRelationByID", ctx, relation.RelationID).Return(relation, nil).Once()
	suite.mockSubledgerRepo.On("FindInvoiceByNumber", ctx, relation.RelationID, "INV-1002").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockLedgerSvc.On("CreateTransaction", ctx, mock.Anything, mock.Anything).Return(txn, nil).Once()
	suite.mockSubledgerRepo.On("SaveInvoice", ctx, mock.Anything).Return(nil).Once()

	invoice, err := suite.service.CreateInvoice(ctx, req, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(dueDate, invoice.DueDate)
}

func (suite *InvoiceServiceTestSuite) TestCreateInvoice_LineTotalMismatch() {
	ctx := context.Background()
	relation := &domain.Relation{RelationID: uuid.NewString(), Kind: domain.KindInvoice}

	req := dto.CreateInvoiceRequest{
		RelationID:    relation.RelationID,
		InvoiceNumber: "INV-1003",
		Date:          time.Now(),
		Value:         decimal.RequireFromString("110.00"),
		GSTTotal:      decimal.RequireFromString("10.00"),
		Lines: []dto.TransactionLineInput{
			{Account: "15-0200", Value: decimal.RequireFromString("90.00")},
		},
	}

	suite.mockRelationRepo.On("FindRelationByID", ctx, relation.RelationID).Return(relation, nil).Once()
	suite.mockSubledgerRepo.On("FindInvoiceByNumber", ctx, relation.RelationID, "INV-1003").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.CreateInvoice(ctx, req, uuid.NewString())

	suite.Require().ErrorIs(err, services.ErrInvoiceLineTotal)
	suite.mockLedgerSvc.AssertNotCalled(suite.T(), "CreateTransaction", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *InvoiceServiceTestSuite) TestCreateInvoice_NumberTaken() {
	ctx := context.Background()
	relation := &domain.Relation{RelationID: uuid.NewString(), Kind: domain.KindInvoice}
	existing := &domain.Invoice{InvoiceID: uuid.NewString(), InvoiceNumber: "INV-1001"}

	req := dto.CreateInvoiceRequest{
		RelationID:    relation.RelationID,
		InvoiceNumber: "INV-1001",
		Date:          time.Now(),
		Value:         decimal.RequireFromString("110.00"),
		Lines: []dto.TransactionLineInput{
			{Account: "15-0200", Value: decimal.RequireFromString("110.00")},
		},
	}

	suite.mockRelationRepo.On("FindRelationByID", ctx, relation.RelationID).Return(relation, nil).Once()
	suite.mockSubledgerRepo.On("FindInvoiceByNumber", ctx, relation.RelationID, "INV-1001").Return(existing, nil).Once()

	_, err := suite.service.CreateInvoice(ctx, req, uuid.NewString())
	suite.Require().ErrorIs(err, services.ErrInvoiceNumberTaken)
}

func (suite *InvoiceServiceTestSuite) TestCreateInvoice_NonPositiveValue() {
	ctx := context.Background()

	req := dto.CreateInvoiceRequest{
		RelationID:    uuid.NewString(),
		InvoiceNumber: "INV-1004",
		Date:          time.Now(),
		Value:         decimal.Zero,
		Lines: []dto.TransactionLineInput{
			{Account: "15-0200", Value: decimal.Zero},
		},
	}

	_, err := suite.service.CreateInvoice(ctx, req, uuid.NewString())
	suite.Require().ErrorIs(err, apperrors.ErrValidation)
}

func (suite *InvoiceServiceTestSuite) TestIsSettled() {
	ctx := context.Background()
	invoiceID := uuid.NewString()

	suite.mockSubledgerRepo.On("RecomputeUnpaid", ctx, invoiceID).Return(decimal.Zero, nil).Once()

	settled, err := suite.service.IsSettled(ctx, invoiceID)

	suite.Require().NoError(err)
	suite.True(settled)
}

func (suite *InvoiceServiceTestSuite) TestGetInvoice() {
	ctx := context.Background()
	stored := &domain.Invoice{InvoiceID: uuid.NewString(), InvoiceNumber: "INV-1001", Unpaid: decimal.RequireFromString("42.00")}

	suite.mockSubledgerRepo.On("FindInvoiceByID", ctx, stored.InvoiceID).Return(stored, nil).Once()

	invoice, err := suite.service.GetInvoice(ctx, stored.InvoiceID)

	suite.Require().NoError(err)
	suite.Equal(stored, invoice)
}

func (suite *InvoiceServiceTestSuite) TestRecomputeOutstanding() {
	ctx := context.Background()
	invoiceID := uuid.NewString()

	suite.mockSubledgerRepo.On("RecomputeUnpaid", ctx, invoiceID).Return(decimal.RequireFromString("42.00"), nil).Once()

	unpaid, err := suite.service.RecomputeOutstanding(ctx, invoiceID)

	suite.Require().NoError(err)
	suite.True(unpaid.Equal(decimal.RequireFromString("42.00")))
}

func TestInvoiceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(InvoiceServiceTestSuite))
}
