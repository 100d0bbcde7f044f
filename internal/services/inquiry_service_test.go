package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/babushkai/saas-marketplace/internal/apperr"
	"github.com/babushkai/saas-marketplace/internal/events"
	"github.com/babushkai/saas-marketplace/internal/metrics"
	"github.com/babushkai/saas-marketplace/internal/models"
	"github.com/babushkai/saas-marketplace/internal/repositories"
	"github.com/babushkai/saas-marketplace/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func validInquiryInput() services.InquiryInput {
	return services.InquiryInput{
		ProductID:   productUUID,
		SenderName:  "Dana Buyer",
		SenderEmail: "a@b.co",
		Message:     "Do you offer annual billing?",
	}
}

func newInquiryService(inquiries *MockInquiryRepository, products *MockProductRepository, pub events.Publisher) *services.InquiryService {
	if pub == nil {
		pub = events.NewLogPublisher(zap.NewNop())
	}
	return services.NewInquiryService(inquiries, products, pub, metrics.Nop{}, zap.NewNop())
}

func TestInquiryService_SubmitInquiry_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(in *services.InquiryInput)
		wantMsg string
	}{
		{name: "missing product", mutate: func(in *services.InquiryInput) { in.ProductID = "" }, wantMsg: "missing required field: product_id"},
		{name: "blank name", mutate: func(in *services.InquiryInput) { in.SenderName = " " }, wantMsg: "missing required field: sender_name"},
		{name: "missing email", mutate: func(in *services.InquiryInput) { in.SenderEmail = "" }, wantMsg: "missing required field: sender_email"},
		{name: "missing message", mutate: func(in *services.InquiryInput) { in.Message = "\n" }, wantMsg: "missing required field: message"},
		{name: "invalid email", mutate: func(in *services.InquiryInput) { in.SenderEmail = "not-an-email" }, wantMsg: "invalid email format"},
		{
			name: "missing field reported before bad email",
			mutate: func(in *services.InquiryInput) {
				in.SenderEmail = "not-an-email"
				in.Message = ""
			},
			wantMsg: "missing required field: message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inquiries := new(MockInquiryRepository)
			products := new(MockProductRepository)
			service := newInquiryService(inquiries, products, nil)

			in := validInquiryInput()
			tt.mutate(&in)
			_, err := service.SubmitInquiry(context.Background(), in)

			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.EqualError(t, err, tt.wantMsg)
			products.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
			inquiries.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestInquiryService_SubmitInquiry_ProductMustBePublished(t *testing.T) {
	draft := publishedProduct()
	draft.IsPublished = false

	tests := []struct {
		name    string
		product *models.Product
		err     error
	}{
		{name: "nonexistent", err: repositories.ErrNotFound},
		{name: "unpublished", product: draft},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inquiries := new(MockInquiryRepository)
			products := new(MockProductRepository)
			service := newInquiryService(inquiries, products, nil)

			if tt.product != nil {
				products.On("GetByID", mock.Anything, productUUID).Return(tt.product, nil).Once()
			} else {
				products.On("GetByID", mock.Anything, productUUID).Return(nil, tt.err).Once()
			}

			_, err := service.SubmitInquiry(context.Background(), validInquiryInput())

			assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
			assert.EqualError(t, err, "product not found")
			inquiries.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestInquiryService_SubmitInquiry(t *testing.T) {
	inquiries := new(MockInquiryRepository)
	products := new(MockProductRepository)
	mockPub := new(MockPublisher)
	service := newInquiryService(inquiries, products, mockPub)

	products.On("GetByID", mock.Anything, productUUID).Return(publishedProduct(), nil).Once()
	inquiries.On("Create", mock.Anything, mock.MatchedBy(func(i *models.Inquiry) bool {
		return i.ID != "" && !i.IsRead && !i.CreatedAt.IsZero() && i.SenderEmail == "a@b.co"
	})).Return(nil).Once()
	mockPub.On("Publish", mock.Anything, events.InquiryCreated, mock.MatchedBy(func(e events.InquiryCreatedEvent) bool {
		return e.SellerID == sellerA.ID && e.ProductID == productUUID && e.SenderEmail == "a@b.co"
	})).Return(errors.New("broker down")).Once()

	inquiry, err := service.SubmitInquiry(context.Background(), validInquiryInput())

	require.NoError(t, err)
	assert.False(t, inquiry.IsRead)
	assert.Equal(t, productUUID, inquiry.ProductID)
	inquiries.AssertExpectations(t)
	mockPub.AssertExpectations(t)
}

func TestInquiryService_GetInquiry(t *testing.T) {
	unread := func() *models.Inquiry {
		return &models.Inquiry{ID: "inq-1", ProductID: productUUID, SenderEmail: "a@b.co"}
	}

	t.Run("owner view marks read", func(t *testing.T) {
		inquiries := new(MockInquiryRepository)
		products := new(MockProductRepository)
		service := newInquiryService(inquiries, products, nil)

		inquiries.On("GetByID", mock.Anything, "inq-1").Return(unread(), nil).Once()
		products.On("GetByID", mock.Anything, productUUID).Return(publishedProduct(), nil).Once()
		inquiries.On("SetRead", mock.Anything, "inq-1", true).Return(nil).Once()

		inquiry, err := service.GetInquiry(context.Background(), sellerA, "inq-1")

		require.NoError(t, err)
		assert.True(t, inquiry.IsRead)
		assert.Equal(t, "Invoice Hub", inquiry.ProductName)
		inquiries.AssertExpectations(t)
	})

	t.Run("already read is not rewritten", func(t *testing.T) {
		inquiries := new(MockInquiryRepository)
		products := new(MockProductRepository)
		service := newInquiryService(inquiries, products, nil)

		read := unread()
		read.IsRead = true
		inquiries.On("GetByID", mock.Anything, "inq-1").Return(read, nil).Once()
		products.On("GetByID", mock.Anything, productUUID).Return(publishedProduct(), nil).Once()

		_, err := service.GetInquiry(context.Background(), sellerA, "inq-1")

		require.NoError(t, err)
		inquiries.AssertNotCalled(t, "SetRead", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("other seller forbidden", func(t *testing.T) {
		inquiries := new(MockInquiryRepository)
		products := new(MockProductRepository)
		service := newInquiryService(inquiries, products, nil)

		inquiries.On("GetByID", mock.Anything, "inq-1").Return(unread(), nil).Once()
		products.On("GetByID", mock.Anything, productUUID).Return(publishedProduct(), nil).Once()

		_, err := service.GetInquiry(context.Background(), sellerB, "inq-1")

		assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
		inquiries.AssertNotCalled(t, "SetRead", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		inquiries := new(MockInquiryRepository)
		products := new(MockProductRepository)
		service := newInquiryService(inquiries, products, nil)

		inquiries.On("GetByID", mock.Anything, "nope").Return(nil, repositories.ErrNotFound).Once()

		_, err := service.GetInquiry(context.Background(), sellerA, "nope")

		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})
}

func TestInquiryService_DeleteInquiry(t *testing.T) {
	inquiries := new(MockInquiryRepository)
	products := new(MockProductRepository)
	service := newInquiryService(inquiries, products, nil)

	inquiry := &models.Inquiry{ID: "inq-1", ProductID: productUUID}
	inquiries.On("GetByID", mock.Anything, "inq-1").Return(inquiry, nil).Twice()
	products.On("GetByID", mock.Anything, productUUID).Return(publishedProduct(), nil).Twice()
	inquiries.On("Delete", mock.Anything, "inq-1").Return(nil).Once()

	err := service.DeleteInquiry(context.Background(), sellerB, "inq-1")
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	inquiries.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)

	assert.NoError(t, service.DeleteInquiry(context.Background(), sellerA, "inq-1"))
	inquiries.AssertExpectations(t)
}

func TestInquiryService_SetInquiryRead(t *testing.T) {
	inquiries := new(MockInquiryRepository)
	products := new(MockProductRepository)
	service := newInquiryService(inquiries, products, nil)

	inquiries.On("GetByID", mock.Anything, "inq-1").Return(&models.Inquiry{ID: "inq-1", ProductID: productUUID, IsRead: true}, nil).Once()
	products.On("GetByID", mock.Anything, productUUID).Return(publishedProduct(), nil).Once()
	inquiries.On("SetRead", mock.Anything, "inq-1", false).Return(nil).Once()

	inquiry, err := service.SetInquiryRead(context.Background(), sellerA, "inq-1", false)

	require.NoError(t, err)
	assert.False(t, inquiry.IsRead)
	inquiries.AssertExpectations(t)
}

func TestInquiryService_ListInquiries(t *testing.T) {
	inquiries := new(MockInquiryRepository)
	products := new(MockProductRepository)
	service := newInquiryService(inquiries, products, nil)

	inquiries.On("ListBySeller", mock.Anything, sellerA.ID, true).Return([]models.Inquiry(nil), nil).Once()
	inquiries.On("CountUnread", mock.Anything, sellerA.ID).Return(int64(0), nil).Once()

	list, unread, err := service.ListInquiries(context.Background(), sellerA, true)

	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
	assert.Zero(t, unread)
	inquiries.AssertExpectations(t)
}
