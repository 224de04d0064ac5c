package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"strings"

	"robinhoodarmy/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// ErrConfirmationFields is returned when a confirmation request lacks its address or link
var ErrConfirmationFields = errors.New("Email and confirmation URL are required")

// sendEmailAPI is the part of the SES client used for sending
type sendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client    sendEmailAPI
	fromEmail string
	fromName  string
	enabled   bool
	debug     bool
}

// NewEmailService creates a new email service
func NewEmailService(awsRegion, fromEmail, fromName string, debug bool) (*EmailService, error) {
	// If fromEmail is empty, create a disabled service
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		if debug {
			log.Println("[DEBUG] Confirmation templates will be rendered but not sent")
		}
		return &EmailService{
			enabled: false,
			debug:   debug,
		}, nil
	}

	if debug {
		log.Printf("[DEBUG] Initializing email service with AWS SES")
		log.Printf("[DEBUG] AWS Region: %s", awsRegion)
		log.Printf("[DEBUG] From Email: %s", fromEmail)
		log.Printf("[DEBUG] From Name: %s", fromName)
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)

	return &EmailService{
		client:    sesv2.NewFromConfig(cfg),
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   true,
		debug:     debug,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendConfirmation renders the welcome email for a new robin and sends it
// when SES is configured. The rendered template is always returned.
func (s *EmailService) SendConfirmation(ctx context.Context, req models.ConfirmationRequest) (models.ConfirmationResult, error) {
	if s.debug {
		log.Printf("[DEBUG] SendConfirmation called: to=%s, name=%s", req.Email, req.Name)
	}

	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.ConfirmationURL) == "" {
		return models.ConfirmationResult{}, ErrConfirmationFields
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = "Fellow Robin"
	}
	htmlBody := RenderConfirmationTemplate(name, req.ConfirmationURL)

	if !s.enabled {
		log.Printf("Confirmation email template generated for: %s", req.Email)
		return models.ConfirmationResult{
			Success:  true,
			Message:  "Confirmation email template generated",
			Template: htmlBody,
		}, nil
	}

	textBody := fmt.Sprintf(`Dear %s,

Your mission awaits! You're about to join a band of modern-day heroes who
believe that no child should go to bed hungry.

Confirm and join the mission:
%s

---
Robinhood Army - Where Every Meal Matters
`, name, req.ConfirmationURL)

	if err := s.sendEmail(ctx, req.Email, "Welcome to Robinhood Army!", htmlBody, textBody); err != nil {
		return models.ConfirmationResult{}, err
	}

	return models.ConfirmationResult{
		Success:  true,
		Message:  "Confirmation email sent",
		Template: htmlBody,
	}, nil
}

// RenderConfirmationTemplate builds the HTML welcome email
func RenderConfirmationTemplate(name, confirmationURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Welcome to Robinhood Army!</title>
	<style>
		body { margin: 0; font-family: Arial, sans-serif; line-height: 1.8; color: #333; background: #f4f4f4; }
		.container { max-width: 600px; margin: 40px auto; background: #ffffff; border-radius: 15px; overflow: hidden; }
		.header { background-color: #2E8B57; color: white; padding: 40px 30px; text-align: center; }
		.content { padding: 40px 30px; }
		.mission { background: #f8f9fa; padding: 25px; border-radius: 10px; border-left: 5px solid #2E8B57; }
		.button { display: inline-block; padding: 15px 40px; background-color: #FF6B6B; color: white; text-decoration: none; border-radius: 50px; font-weight: bold; }
		.footer { background: #2c3e50; color: white; padding: 30px; text-align: center; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Robinhood Army</h1>
			<p><em>Compassion in Action - Serving Hope, One Meal at a Time</em></p>
		</div>
		<div class="content">
			<h2>Welcome, Noble Robin!</h2>
			<p>Dear %s,</p>
			<p><strong>Your mission awaits!</strong> You're about to join a band of modern-day heroes who believe that no child should go to bed hungry.</p>
			<div class="mission">
				<p><strong>Your Robin Hood adventure begins:</strong></p>
				<ul>
					<li>Serve fresh meals to children in need</li>
					<li>Share knowledge through educational activities</li>
					<li>Track your impact and celebrate achievements</li>
				</ul>
			</div>
			<p style="text-align: center;">
				<a href="%s" class="button">Confirm &amp; Join the Mission</a>
			</p>
			<p><strong>Tip:</strong> After confirming, tell us if this is your first drive or enter your previous drive count so the leaderboard places you correctly.</p>
		</div>
		<div class="footer">
			<p><strong>Robinhood Army</strong> - Where Every Meal Matters</p>
		</div>
	</div>
</body>
</html>
`, html.EscapeString(name), html.EscapeString(confirmationURL))
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	if s.debug {
		log.Printf("[DEBUG] From address: %s", fromAddress)
		log.Printf("[DEBUG] To address: %s", toEmail)
		log.Printf("[DEBUG] Subject: %s", subject)
		log.Printf("[DEBUG] HTML body length: %d bytes", len(htmlBody))
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		if s.debug {
			log.Printf("[DEBUG] SES SendEmail failed: %v", err)
		}
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	if s.debug && result.MessageId != nil {
		log.Printf("[DEBUG] Message ID: %s", *result.MessageId)
	}

	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
