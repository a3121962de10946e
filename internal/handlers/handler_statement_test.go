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

	"github.com/elena/open-accounting/internal/core/domain"
	portssvc "github.com/elena/open-accounting/internal/core/ports/services"
	"github.com/elena/open-accounting/internal/dto"
	"github.com/elena/open-accounting/internal/handlers"
	"github.com/elena/open-accounting/pkg/config"
)

// MockStatementSvc is a mock type for the StatementSvcFacade interface
type MockStatementSvc struct {
	mock.Mock
}

func (m *MockStatementSvc) CreateBankAccount(ctx context.Context, req dto.CreateBankAccountRequest, creatorUserID string) (*domain.BankAccount, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankAccount), args.Error(1)
}

func (m *MockStatementSvc) ListBankAccounts(ctx context.Context) ([]domain.BankAccount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BankAccount), args.Error(1)
}

func (m *MockStatementSvc) ImportStatement(ctx context.Context, bankAccountID string, rawDump string, importerUserID string) ([]domain.BankLine, error) {
	args := m.Called(ctx, bankAccountID, rawDump, importerUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BankLine), args.Error(1)
}

func (m *MockStatementSvc) ReconcileBankLine(ctx context.Context, bankLineID string, req dto.ReconcileBankLineRequest, userID string) (*domain.BankLine, error) {
	args := m.Called(ctx, bankLineID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankLine), args.Error(1)
}

func (m *MockStatementSvc) ListBankLines(ctx context.Context, bankAccountID string, unreconciledOnly bool) ([]domain.BankLine, error) {
	args := m.Called(ctx, bankAccountID, unreconciledOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BankLine), args.Error(1)
}

// --- Test Suite Setup ---

type StatementHandlerTestSuite struct {
	suite.Suite
	router           *gin.Engine
	mockStatementSvc *MockStatementSvc
	userID           string
}

func (suite *StatementHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.mockStatementSvc = new(MockStatementSvc)
	suite.userID = uuid.NewString()

	container := &portssvc.ServiceContainer{
		Statement: suite.mockStatementSvc,
	}

	rate, err := limiter.NewRateFromFormatted("10-M")
	suite.Require().NoError(err)
	importLimiter := limiter.New(memory.NewStore(), rate)

	suite.router = gin.New()
	handlers.RegisterRoutes(suite.router, &config.Config{}, container, importLimiter)
}

func (suite *StatementHandlerTestSuite) serve(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", suite.userID)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *StatementHandlerTestSuite) TestCreateBankAccount_LongName() {
	bankAccount := &domain.BankAccount{BankAccountID: uuid.NewString(), AccountID: uuid.NewString(), BankFormat: "CBA"}

	suite.mockStatementSvc.On("CreateBankAccount", mock.Anything, mock.MatchedBy(func(req dto.CreateBankAccountRequest) bool {
		return req.Name == "Everyday Offset Transaction Account"
	}), suite.userID).Return(bankAccount, nil).Once()

	// A human-readable display name well past six characters is fine.
	w := suite.serve(http.MethodPost, "/api/v1/bank-accounts", dto.CreateBankAccountRequest{
		Account:    "01-0101",
		BankFormat: "CBA",
		Name:       "Everyday Offset Transaction Account",
		BSB:        "062000",
	})

	suite.Equal(http.StatusCreated, w.Code)
	suite.mockStatementSvc.AssertExpectations(suite.T())
}

func (suite *StatementHandlerTestSuite) TestCreateBankAccount_BSBTooLong() {
	// A BSB is six digits; anything longer fails request binding.
	w := suite.serve(http.MethodPost, "/api/v1/bank-accounts", dto.CreateBankAccountRequest{
		Account:    "01-0101",
		BankFormat: "CBA",
		BSB:        "0620001",
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockStatementSvc.AssertNotCalled(suite.T(), "CreateBankAccount", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *StatementHandlerTestSuite) TestListBankAccounts() {
	stored := []domain.BankAccount{
		{BankAccountID: uuid.NewString(), AccountID: uuid.NewString(), BankFormat: "CBA", Name: "Everyday"},
	}

	suite.mockStatementSvc.On("ListBankAccounts", mock.Anything).Return(stored, nil).Once()

	w := suite.serve(http.MethodGet, "/api/v1/bank-accounts", nil)

	suite.Equal(http.StatusOK, w.Code)

	var resp struct {
		BankAccounts []dto.BankAccountResponse `json:"bankAccounts"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().Len(resp.BankAccounts, 1)
	suite.Equal(stored[0].BankAccountID, resp.BankAccounts[0].BankAccountID)
}

func (suite *StatementHandlerTestSuite) TestReconcileBankLine_NoAccountAccepted() {
	line := &domain.BankLine{BankLineID: uuid.NewString(), BankAccountID: uuid.NewString()}

	suite.mockStatementSvc.On("ReconcileBankLine", mock.Anything, line.BankLineID, mock.MatchedBy(func(req dto.ReconcileBankLineRequest) bool {
		return req.Account == ""
	}), suite.userID).Return(line, nil).Once()

	// An empty body is valid; the service parks the line on suspense.
	w := suite.serve(http.MethodPost, "/api/v1/bank-lines/"+line.BankLineID+"/reconcile", dto.ReconcileBankLineRequest{})

	suite.Equal(http.StatusOK, w.Code)
	suite.mockStatementSvc.AssertExpectations(suite.T())
}

func TestStatementHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(StatementHandlerTestSuite))
}
