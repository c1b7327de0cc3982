// Package email provides the email client for sending transactional emails.
package email

import (
	"fmt"

	"github.com/StoryHiveHQ/storyhive-go/internal/infrastructure/email/templates"
	"github.com/StoryHiveHQ/storyhive-go/pkg/config"
	"github.com/resendlabs/resend-go"
)

// Service defines the interface for sending emails, allowing for mock implementations in tests.
type Service interface {
	SendWelcomeEmail(toEmail, username string) error
	SendAchievementEmail(toEmail, username, achievementName, badge, description string, bonus int) error
	SendLevelUpEmail(toEmail, username, levelName, badge string, points int) error
}

// ResendClient is the concrete implementation of the email Service using the Resend API.
type ResendClient struct {
	client    *resend.Client
	fromEmail string
	fromName  string
	siteURL   string
}

// NewService creates a new email service client, returning the Service interface.
func NewService() (Service, error) {
	if config.ResendAPIKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY environment variable is required")
	}

	fromEmail := config.EmailFrom
	if fromEmail == "" {
		fromEmail = "noreply@storyhive.community"
	}

	return &ResendClient{
		client:    resend.NewClient(config.ResendAPIKey),
		fromEmail: fromEmail,
		fromName:  "StoryHive",
		siteURL:   config.SiteURL,
	}, nil
}

// SendWelcomeEmail composes and sends the new-member welcome email.
func (c *ResendClient) SendWelcomeEmail(toEmail, username string) error {
	content := templates.GetWelcomeEmailContent(templates.WelcomeEmailProps{
		Username:   username,
		ProfileURL: c.profileURL(username),
	})

	return c.send(toEmail, "Welcome to StoryHive", content)
}

// SendAchievementEmail composes and sends the achievement-unlocked email.
func (c *ResendClient) SendAchievementEmail(toEmail, username, achievementName, badge, description string, bonus int) error {
	content := templates.GetAchievementEmailContent(templates.AchievementEmailProps{
		Username:        username,
		AchievementName: achievementName,
		Badge:           badge,
		Description:     description,
		Bonus:           bonus,
		ProfileURL:      c.profileURL(username),
	})

	subject := fmt.Sprintf("Achievement unlocked: %s", achievementName)
	return c.send(toEmail, subject, content)
}

// SendLevelUpEmail composes and sends the level-up email.
func (c *ResendClient) SendLevelUpEmail(toEmail, username, levelName, badge string, points int) error {
	content := templates.GetLevelUpEmailContent(templates.LevelUpEmailProps{
		Username:   username,
		LevelName:  levelName,
		Badge:      badge,
		Points:     points,
		ProfileURL: c.profileURL(username),
	})

	subject := fmt.Sprintf("You reached %s on StoryHive", levelName)
	return c.send(toEmail, subject, content)
}

func (c *ResendClient) profileURL(username string) string {
	return fmt.Sprintf("%s/members/%s", c.siteURL, username)
}

func (c *ResendClient) send(toEmail, subject, content string) error {
	htmlContent := templates.GetEmailLayout(templates.EmailLayoutProps{
		Content: content,
	})

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail),
		To:      []string{toEmail},
		Subject: subject,
		Html:    htmlContent,
	}

	_, err := c.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %w", err)
	}

	return nil
}
