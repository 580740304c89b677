// Package notify delivers listing alerts to clients over email (SES) and
// SMS (SNS).
package notify

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"

	apperrors "github.com/martin-coser/ArqViewBack-sub000/internal/common/errors"
	"github.com/martin-coser/ArqViewBack-sub000/internal/common/logger"
	"github.com/martin-coser/ArqViewBack-sub000/internal/models"
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// EmailSender sends transactional email through SES.
type EmailSender struct {
	client SESService
	logger logger.Logger
}

func NewEmailSender(client SESService, log logger.Logger) *EmailSender {
	return &EmailSender{client: client, logger: log}
}

func (s *EmailSender) Send(ctx context.Context, msg models.EmailMessage) error {
	_, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(msg.Body)},
			},
		},
		Source: aws.String(msg.From),
	})
	if err != nil {
		return apperrors.NewEmailSendFailedError(msg.To, err)
	}
	s.logger.Info("email sent", map[string]interface{}{
		"to":      msg.To,
		"subject": msg.Subject,
	})
	return nil
}

// SMSSender publishes listing alerts to a phone number through SNS.
type SMSSender struct {
	client   SNSService
	senderID string
	logger   logger.Logger
}

func NewSMSSender(client SNSService, senderID string, log logger.Logger) *SMSSender {
	return &SMSSender{client: client, senderID: senderID, logger: log}
}

func (s *SMSSender) Send(ctx context.Context, phone, message string) error {
	input := &sns.PublishInput{
		PhoneNumber: aws.String(phone),
		Message:     aws.String(message),
	}
	if s.senderID != "" {
		input.MessageAttributes = map[string]snstypes.MessageAttributeValue{
			"AWS.SNS.SMS.SenderID": {
				DataType:    aws.String("String"),
				StringValue: aws.String(s.senderID),
			},
		}
	}
	if _, err := s.client.Publish(ctx, input); err != nil {
		return apperrors.NewSMSSendFailedError(phone, err)
	}
	s.logger.Info("sms sent", map[string]interface{}{"phone": phone})
	return nil
}
