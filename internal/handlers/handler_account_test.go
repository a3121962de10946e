package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/elena/open-accounting/internal/apperrors"
	"github.com/elena/open-accounting/internal/core/domain"
	portssvc "github.com/elena/open-accounting/internal/core/ports/services"
	"github.com/elena/open-accounting/internal/dto"
	"github.com/elena/open-accounting/internal/handlers"
	"github.com/elena/open-accounting/pkg/config"
)

// MockAccountSvc is a mock type for the AccountSvcFacade interface
type MockAccountSvc struct {
	mock.Mock
}

func (m *MockAccountSvc) Resolve(ctx context.Context, identifier string) (*domain.Account, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountSvc) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountSvc) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountSvc) GetAccountBySpecialRole(ctx context.Context, role domain.SpecialRole) (*domain.Account, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountSvc) GetAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountSvc) UpdateAccount(ctx context.Context, identifier string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, identifier, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountSvc) DeactivateAccount(ctx context.Context, identifier string, userID string) error {
	args := m.Called(ctx, identifier, userID)
	return args.Error(0)
}

func (m *MockAccountSvc) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

// MockLedgerSvc is a mock type for the LedgerSvcFacade interface
type MockLedgerSvc struct {
	mock.Mock
}

func (m *MockLedgerSvc) CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, creatorUserID string) (*domain.Transaction, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerSvc) RecomputeBalanced(ctx context.Context, transactionID string, userID string) (bool, error) {
	args := m.Called(ctx, transactionID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerSvc) GetTransactionWithLines(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerSvc) ListAccountTransactions(ctx context.Context, accountID string, limit int, offset int) ([]domain.Transaction, error) {
	args := m.Called(ctx, accountID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

// --- Test Suite Setup ---

type AccountHandlerTestSuite struct {
	suite.Suite
	router         *gin.Engine
	mockAccountSvc *MockAccountSvc
	mockLedgerSvc  *MockLedgerSvc
	userID         string
}

func (suite *AccountHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.mockAccountSvc = new(MockAccountSvc)
	suite.mockLedgerSvc = new(MockLedgerSvc)
	suite.userID = uuid.NewString()

	container := &portssvc.ServiceContainer{
		Account: suite.mockAccountSvc,
		Ledger:  suite.mockLedgerSvc,
	}

	rate, err := limiter.NewRateFromFormatted("10-M")
	suite.Require().NoError(err)
	importLimiter := limiter.New(memory.NewStore(), rate)

	suite.router = gin.New()
	handlers.RegisterRoutes(suite.router, &config.Config{}, container, importLimiter)
}

func (suite *AccountHandlerTestSuite) serve(method, path string, body any, withIdentity bool) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if withIdentity {
		req.Header.Set("X-User-ID", suite.userID)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *AccountHandlerTestSuite) TestCreateAccount_Success() {
	account := &domain.Account{
		AccountID: uuid.NewString(),
		Element:   domain.Asset,
		Number:    "0101",
		Name:      "Main Operating Account",
		IsActive:  true,
	}

	suite.mockAccountSvc.On("CreateAccount", mock.Anything, mock.AnythingOfType("dto.CreateAccountRequest"), suite.userID).Return(account, nil).Once()

	w := suite.serve(http.MethodPost, "/api/v1/accounts", dto.CreateAccountRequest{
		Element: "01",
		Number:  "0101",
		Name:    "Main Operating Account",
	}, true)

	suite.Equal(http.StatusCreated, w.Code)

	var resp dto.AccountResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("01-0101", resp.Code)
	suite.mockAccountSvc.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_MissingIdentity() {
	w := suite.serve(http.MethodPost, "/api/v1/accounts", dto.CreateAccountRequest{
		Element: "01",
		Number:  "0101",
		Name:    "No Identity",
	}, false)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockAccountSvc.AssertNotCalled(suite.T(), "CreateAccount", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_InvalidBody() {
	// Element outside the accepted set fails request binding.
	w := suite.serve(http.MethodPost, "/api/v1/accounts", map[string]string{
		"element": "77",
		"number":  "0101",
		"name":    "Bad Element",
	}, true)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *AccountHandlerTestSuite) TestGetAccount_ByCode() {
	account := &domain.Account{AccountID: uuid.NewString(), Element: domain.Asset, Number: "0101", IsActive: true}

	suite.mockAccountSvc.On("Resolve", mock.Anything, "01-0101").Return(account, nil).Once()

	w := suite.serve(http.MethodGet, "/api/v1/accounts/01-0101", nil, true)

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.AccountResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(account.AccountID, resp.AccountID)
}

func (suite *AccountHandlerTestSuite) TestGetAccount_UnknownCode() {
	suite.mockAccountSvc.On("Resolve", mock.Anything, "01-9999").Return(nil, apperrors.ErrConfiguration).Once()

	w := suite.serve(http.MethodGet, "/api/v1/accounts/01-9999", nil, true)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *AccountHandlerTestSuite) TestUpdateAccount_Success() {
	account := &domain.Account{AccountID: uuid.NewString(), Element: domain.Asset, Number: "0101", Name: "Renamed", IsActive: true}
	newName := "Renamed"

	suite.mockAccountSvc.On("UpdateAccount", mock.Anything, "01-0101", mock.MatchedBy(func(req dto.UpdateAccountRequest) bool {
		return req.Name != nil && *req.Name == newName
	}), suite.userID).Return(account, nil).Once()

	w := suite.serve(http.MethodPut, "/api/v1/accounts/01-0101", dto.UpdateAccountRequest{Name: &newName}, true)

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.AccountResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("Renamed", resp.Name)
	suite.mockAccountSvc.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestUpdateAccount_Unknown() {
	name := "Whatever"
	suite.mockAccountSvc.On("UpdateAccount", mock.Anything, "01-9999", mock.Anything, suite.userID).Return(nil, apperrors.ErrConfiguration).Once()

	w := suite.serve(http.MethodPut, "/api/v1/accounts/01-9999", dto.UpdateAccountRequest{Name: &name}, true)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *AccountHandlerTestSuite) TestDeactivateAccount_Success() {
	suite.mockAccountSvc.On("DeactivateAccount", mock.Anything, "01-0101", suite.userID).Return(nil).Once()

	w := suite.serve(http.MethodDelete, "/api/v1/accounts/01-0101", nil, true)

	suite.Equal(http.StatusNoContent, w.Code)
	suite.mockAccountSvc.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestDeactivateAccount_AlreadyInactive() {
	suite.mockAccountSvc.On("DeactivateAccount", mock.Anything, "01-0101", suite.userID).Return(apperrors.ErrValidation).Once()

	w := suite.serve(http.MethodDelete, "/api/v1/accounts/01-0101", nil, true)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *AccountHandlerTestSuite) TestListAccountTransactions() {
	account := &domain.Account{AccountID: uuid.NewString(), Element: domain.Liability, Number: "0300", IsActive: true}
	txns := []domain.Transaction{{TransactionID: uuid.NewString()}}

	suite.mockAccountSvc.On("Resolve", mock.Anything, account.AccountID).Return(account, nil).Once()
	suite.mockLedgerSvc.On("ListAccountTransactions", mock.Anything, account.AccountID, 50, 0).Return(txns, nil).Once()

	w := suite.serve(http.MethodGet, "/api/v1/accounts/"+account.AccountID+"/transactions", nil, true)

	suite.Equal(http.StatusOK, w.Code)

	var resp struct {
		Account      dto.AccountResponse       `json:"account"`
		Transactions []dto.TransactionResponse `json:"transactions"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(account.AccountID, resp.Account.AccountID)
	suite.Len(resp.Transactions, 1)
}

func TestAccountHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(AccountHandlerTestSuite))
}
