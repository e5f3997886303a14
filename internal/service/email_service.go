package service

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// sesAPI is the part of the SES client the email service uses
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService sends parent emails via Amazon SES
type EmailService struct {
	client     sesAPI
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	debug      bool
}

// NewEmailService creates a new email service. An empty fromEmail yields a
// disabled service that skips every send.
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName, appBaseURL string, debug bool) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, debug: debug}, nil
	}

	if debug {
		log.Printf("[DEBUG] Initializing email service: region=%s from=%s base=%s", awsRegion, fromEmail, appBaseURL)
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)

	return &EmailService{
		client:     sesv2.NewFromConfig(cfg),
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: strings.TrimRight(appBaseURL, "/"),
		enabled:    true,
		debug:      debug,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendWelcomeEmail greets a newly registered parent and lists their children
func (s *EmailService) SendWelcomeEmail(ctx context.Context, toEmail, toName string, childNames []string) error {
	if !s.enabled {
		if s.debug {
			log.Printf("[DEBUG] Skipping welcome email to %s: email disabled", toEmail)
		}
		return nil
	}

	subject := "Welcome to Young Scholars!"
	lines := []string{
		fmt.Sprintf("Hi %s,", toName),
		"Thanks for joining Young Scholars. Your reading adventure starts today!",
	}
	if len(childNames) > 0 {
		lines = append(lines, fmt.Sprintf("Reader profiles ready: %s.", strings.Join(childNames, ", ")))
	}
	lines = append(lines, fmt.Sprintf("Pick a book to get started: %s", s.appBaseURL))

	htmlBody, textBody := renderEmail("📚 Welcome to Young Scholars", lines)
	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// SendNotificationEmail tells a parent about a badge or level change
func (s *EmailService) SendNotificationEmail(ctx context.Context, toEmail, toName, subject, message string) error {
	if !s.enabled {
		if s.debug {
			log.Printf("[DEBUG] Skipping notification email to %s: email disabled", toEmail)
		}
		return nil
	}

	lines := []string{
		fmt.Sprintf("Hi %s,", toName),
		message,
		fmt.Sprintf("See the full reading report: %s", s.appBaseURL),
	}

	htmlBody, textBody := renderEmail(subject, lines)
	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// renderEmail builds matching html and plain text bodies
func renderEmail(heading string, lines []string) (string, string) {
	var h, t strings.Builder

	h.WriteString(`<!DOCTYPE html><html><body style="font-family: Arial, sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">`)
	fmt.Fprintf(&h, `<h1 style="color: #7C3AED;">%s</h1>`, html.EscapeString(heading))
	t.WriteString(heading + "\n\n")

	for _, line := range lines {
		fmt.Fprintf(&h, "<p>%s</p>", html.EscapeString(line))
		t.WriteString(line + "\n\n")
	}

	h.WriteString(`<p style="color: #999; font-size: 12px;">Young Scholars</p></body></html>`)
	t.WriteString("Young Scholars\n")

	return h.String(), t.String()
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	if s.debug {
		log.Printf("[DEBUG] sendEmail: from=%s to=%s subject=%s", fromAddress, toEmail, subject)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(htmlBody), Charset: aws.String("UTF-8")},
					Text: &types.Content{Data: aws.String(textBody), Charset: aws.String("UTF-8")},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	if s.debug && result.MessageId != nil {
		log.Printf("[DEBUG] SES message ID: %s", *result.MessageId)
	}

	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
