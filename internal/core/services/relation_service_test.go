package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/elena/open-accounting/internal/apperrors"
	"github.com/elena/open-accounting/internal/core/domain"
	portssvc "github.com/elena/open-accounting/internal/core/ports/services"
	"github.com/elena/open-accounting/internal/core/services"
	"github.com/elena/open-accounting/internal/dto"
)

// --- Test Suite Setup ---

type RelationServiceTestSuite struct {
	suite.Suite
	mockRelationRepo  *MockRelationRepository
	mockSubledgerRepo *MockSubledgerRepository
	mockBankRepo      *MockBankRepository
	service           portssvc.RelationSvcFacade
}

func (suite *RelationServiceTestSuite) SetupTest() {
	suite.mockRelationRepo = new(MockRelationRepository)
	suite.mockSubledgerRepo = new(MockSubledgerRepository)
	suite.mockBankRepo = new(MockBankRepository)
	suite.service = services.NewRelationService(suite.mockRelationRepo, suite.mockSubledgerRepo, suite.mockBankRepo, subledgersConfig())
}

// --- Test Cases ---

func (suite *RelationServiceTestSuite) TestCreateEntity_GeneratesCodeFromName() {
	ctx := context.Background()

	suite.mockRelationRepo.On("FindEntityByCode", ctx, "AC").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRelationRepo.On("SaveEntity", ctx, mock.AnythingOfType("domain.Entity")).Return(nil).Once()

	entity, err := suite.service.CreateEntity(ctx, dto.CreateEntityRequest{Name: "Acme Corp"}, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal("AC", entity.Code)
	suite.True(entity.IsActive)
}

func (suite *RelationServiceTestSuite) TestCreateEntity_GeneratedCodeSkipsTaken() {
	ctx := context.Background()
	taken := &domain.Entity{EntityID: uuid.NewString(), Code: "AC"}

	suite.mockRelationRepo.On("FindEntityByCode", ctx, "AC").Return(taken, nil).Once()
	suite.mockRelationRepo.On("FindEntityByCode", ctx, "AC2").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRelationRepo.On("SaveEntity", ctx, mock.AnythingOfType("domain.Entity")).Return(nil).Once()

	entity, err := suite.service.CreateEntity(ctx, dto.CreateEntityRequest{Name: "Acme Corp"}, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal("AC2", entity.Code)
}

func (suite *RelationServiceTestSuite) TestCreateEntity_CodeSpaceExhausted() {
	ctx := context.Background()
	taken := &domain.Entity{EntityID: uuid.NewString()}

	// Every candidate from the bare stem through the last suffix is taken.
	suite.mockRelationRepo.On("FindEntityByCode", ctx, mock.AnythingOfType("string")).Return(taken, nil)

	_, err := suite.service.CreateEntity(ctx, dto.CreateEntityRequest{Name: "Acme Corp"}, uuid.NewString())

	suite.Require().ErrorIs(err, services.ErrCodeSpaceExhausted)
	suite.mockRelationRepo.AssertNotCalled(suite.T(), "SaveEntity", mock.Anything, mock.Anything)
}

func (suite *RelationServiceTestSuite) TestCreateEntity_ExplicitCodeUpperCased() {
	ctx := context.Background()

	suite.mockRelationRepo.On("FindEntityByCode", ctx, "ACME").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRelationRepo.On("SaveEntity", ctx, mock.AnythingOfType("domain.Entity")).Return(nil).Once()

	entity, err := suite.service.CreateEntity(ctx, dto.CreateEntityRequest{Name: "Acme Corp", Code: "acme"}, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal("ACME", entity.Code)
}

func (suite *RelationServiceTestSuite) TestCreateEntity_ExplicitCodeTaken() {
	ctx := context.Background()
	taken := &domain.Entity{EntityID: uuid.NewString(), Code: "ACME"}

	suite.mockRelationRepo.On("FindEntityByCode", ctx, "ACME").Return(taken, nil).Once()

	_, err := suite.service.CreateEntity(ctx, dto.CreateEntityRequest{Name: "Acme Corp", Code: "ACME"}, uuid.NewString())
	suite.Require().ErrorIs(err, services.ErrEntityCodeTaken)
}

func (suite *RelationServiceTestSuite) TestCreateCreditor_DefaultTerms() {
	ctx := context.Background()
	entity := &domain.Entity{EntityID: uuid.NewString(), Code: "AC"}

	suite.mockRelationRepo.On("FindEntityByID", ctx, entity.EntityID).Return(entity, nil).Once()
	suite.mockRelationRepo.On("FindRelationByEntity", ctx, entity.EntityID, domain.KindInvoice).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRelationRepo.On("SaveRelation", ctx, mock.AnythingOfType("domain.Relation")).Return(nil).Once()

	relation, err := suite.service.CreateCreditor(ctx, dto.CreateCreditorRequest{EntityID: entity.EntityID}, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(domain.KindInvoice, relation.Kind)
	suite.Equal(14, relation.Terms)
}

func (suite *RelationServiceTestSuite) TestCreateCreditor_ExplicitTerms() {
	ctx := context.Background()
	entity := &domain.Entity{EntityID: uuid.NewString()}
	terms := 30

	suite.mockRelationRepo.On("FindEntityByID", ctx, entity.EntityID).Return(entity, nil).Once()
	suite.mockRelationRepo.On("FindRelationByEntity", ctx, entity.EntityID, domain.KindInvoice).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRelationRepo.On("SaveRelation", ctx, mock.AnythingOfType("domain.Relation")).Return(nil).Once()

	relation, err := suite.service.CreateCreditor(ctx, dto.CreateCreditorRequest{EntityID: entity.EntityID, Terms: &terms}, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(30, relation.Terms)
}

func (suite *RelationServiceTestSuite) TestCreateCreditor_AlreadyCreditor() {
	ctx := context.Background()
	entity := &domain.Entity{EntityID: uuid.NewString()}
	existing := &domain.Relation{RelationID: uuid.NewString(), EntityID: entity.EntityID, Kind: domain.KindInvoice}

	suite.mockRelationRepo.On("FindEntityByID", ctx, entity.EntityID).Return(entity, nil).Once()
	suite.mockRelationRepo.On("FindRelationByEntity", ctx, entity.EntityID, domain.KindInvoice).Return(existing, nil).Once()

	_, err := suite.service.CreateCreditor(ctx, dto.CreateCreditorRequest{EntityID: entity.EntityID}, uuid.NewString())

	suite.Require().ErrorIs(err, services.ErrAlreadyCreditor)
	suite.mockRelationRepo.AssertNotCalled(suite.T(), "SaveRelation", mock.Anything, mock.Anything)
}

func (suite *RelationServiceTestSuite) TestCreatePayment_Success() {
	ctx := context.Background()
	relation := &domain.Relation{RelationID: uuid.NewString(), Kind: domain.KindInvoice}

	suite.mockRelationRepo.On("FindRelationByID", ctx, relation.RelationID).Return(relation, nil).Once()
	suite.mockSubledgerRepo.On("SavePayment", ctx, mock.AnythingOfType("domain.Payment")).Return(nil).Once()

	payment, err := suite.service.CreatePayment(ctx, dto.CreatePaymentRequest{RelationID: relation.RelationID}, uuid.NewString())

	suite.Require().NoError(err)
	suite.Equal(relation.RelationID, payment.RelationID)
	suite.Nil(payment.BankLineID)
}

func (suite *RelationServiceTestSuite) TestCreatePayment_UnknownBankLine() {
	ctx := context.Background()
	relation := &domain.Relation{RelationID: uuid.NewString(), Kind: domain.KindInvoice}
	bankLineID := uuid.NewString()

	suite.mockRelationRepo.On("FindRelationByID", ctx, relation.RelationID).Return(relation, nil).Once()
	suite.mockBankRepo.On("FindBankLineByID", ctx, bankLineID).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.CreatePayment(ctx, dto.CreatePaymentRequest{RelationID: relation.RelationID, BankLineID: &bankLineID}, uuid.NewString())

	suite.Require().ErrorIs(err, apperrors.ErrNotFound)
	suite.mockSubledgerRepo.AssertNotCalled(suite.T(), "SavePayment", mock.Anything, mock.Anything)
}

func TestRelationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RelationServiceTestSuite))
}
