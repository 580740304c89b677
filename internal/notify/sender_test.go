package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/martin-coser/ArqViewBack-sub000/internal/common/errors"
	"github.com/martin-coser/ArqViewBack-sub000/internal/common/logger"
	"github.com/martin-coser/ArqViewBack-sub000/internal/models"
)

// ==========================
// Mock Implementations
// ==========================

type MockSESService struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
	LastInput     *ses.SendEmailInput
}

func (m *MockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.LastInput = params
	if m.SendEmailFunc != nil {
		return m.SendEmailFunc(ctx, params, optFns...)
	}
	return &ses.SendEmailOutput{}, nil
}

type MockSNSService struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
	LastInput   *sns.PublishInput
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.LastInput = params
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, params, optFns...)
	}
	return &sns.PublishOutput{}, nil
}

func testClient() models.Client {
	return models.Client{
		ID:        7,
		FirstName: "Ana",
		LastName:  "Perez",
		Email:     "ana@example.com",
		Phone:     "+5493530000000",
	}
}

func testProperty() models.Property {
	return models.Property{
		ID:       10,
		Name:     "Casa centro",
		Price:    155000,
		Type:     models.PropertyType{ID: 1, Name: "casa"},
		Location: models.Location{ID: 1, Name: "Villa Maria"},
	}
}

// ==========================
// Email Sending
// ==========================

func TestEmailSender_Send(t *testing.T) {
	mock := &MockSESService{}
	sender := NewEmailSender(mock, logger.NewNoOpLogger())

	msg := NewListingEmail(testClient(), testProperty(), "alerts@arqview.com")
	err := sender.Send(context.Background(), msg)

	require.NoError(t, err)
	require.NotNil(t, mock.LastInput)
	assert.Equal(t, []string{"ana@example.com"}, mock.LastInput.Destination.ToAddresses)
	assert.Equal(t, "alerts@arqview.com", *mock.LastInput.Source)
	assert.Equal(t, "New property in Villa Maria: Casa centro", *mock.LastInput.Message.Subject.Data)
	assert.Contains(t, *mock.LastInput.Message.Body.Text.Data, "Hello Ana")
	assert.Contains(t, *mock.LastInput.Message.Body.Text.Data, "Price: 155000")
}

func TestEmailSender_SendFailure(t *testing.T) {
	mock := &MockSESService{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return nil, errors.New("throttled")
		},
	}
	sender := NewEmailSender(mock, logger.NewNoOpLogger())

	err := sender.Send(context.Background(), models.EmailMessage{To: "ana@example.com"})
	require.Error(t, err)

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeEmailSendFailed, stdErr.Code)
	assert.True(t, apperrors.IsRetryable(err))
}

// ==========================
// SMS Sending
// ==========================

func TestSMSSender_Send(t *testing.T) {
	mock := &MockSNSService{}
	sender := NewSMSSender(mock, "ArqView", logger.NewNoOpLogger())

	text := NewListingSMS(testClient(), testProperty())
	err := sender.Send(context.Background(), "+5493530000000", text)

	require.NoError(t, err)
	require.NotNil(t, mock.LastInput)
	assert.Equal(t, "+5493530000000", *mock.LastInput.PhoneNumber)
	assert.Contains(t, *mock.LastInput.Message, "Casa centro")
	require.Contains(t, mock.LastInput.MessageAttributes, "AWS.SNS.SMS.SenderID")
	assert.Equal(t, "ArqView", *mock.LastInput.MessageAttributes["AWS.SNS.SMS.SenderID"].StringValue)
}

func TestSMSSender_SendFailure(t *testing.T) {
	mock := &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			return nil, errors.New("invalid number")
		},
	}
	sender := NewSMSSender(mock, "", logger.NewNoOpLogger())

	err := sender.Send(context.Background(), "bad", "hi")
	require.Error(t, err)

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeSMSSendFailed, stdErr.Code)
}

// ==========================
// Template Rendering
// ==========================

func TestRenderTemplate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		data     map[string]interface{}
		expected string
	}{
		{
			name:     "replaces placeholders",
			template: "Hello {{firstName}}, see {{propertyName}}",
			data:     map[string]interface{}{"firstName": "Ana", "propertyName": "Casa centro"},
			expected: "Hello Ana, see Casa centro",
		},
		{
			name:     "strips missing placeholders",
			template: "Hello {{firstName}}{{missing}}",
			data:     map[string]interface{}{"firstName": "Ana"},
			expected: "Hello Ana",
		},
		{
			name:     "formats numbers",
			template: "{{count}} matches",
			data:     map[string]interface{}{"count": 3},
			expected: "3 matches",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, renderTemplate(tt.template, tt.data))
		})
	}
}

func TestNewListingMessage(t *testing.T) {
	assert.Equal(t, "New property in Villa Maria: Casa centro", NewListingMessage(testProperty()))
}
