// Package templates provides email content builders
package templates

import (
	"fmt"
	"strings"
)

type WelcomeEmailProps struct {
	Username   string
	ProfileURL string
}

type AchievementEmailProps struct {
	Username        string
	AchievementName string
	Badge           string
	Description     string
	Bonus           int
	ProfileURL      string
}

type LevelUpEmailProps struct {
	Username   string
	LevelName  string
	Badge      string
	Points     int
	ProfileURL string
}

// GetWelcomeEmailContent composes the body of the welcome email.
func GetWelcomeEmailContent(props WelcomeEmailProps) string {
	var sb strings.Builder
	sb.WriteString(GetHeading(fmt.Sprintf("Welcome to StoryHive, %s!", props.Username)))
	sb.WriteString(GetParagraph("Your account is ready. Publish your first story to earn bonus points and start working toward your first achievement."))
	sb.WriteString(GetParagraph("Every story you publish, every comment you post, and every like your work receives moves you up through the community levels."))
	sb.WriteString(GetButton(ButtonProps{
		Text: "Go to your profile",
		URL:  props.ProfileURL,
	}))
	return sb.String()
}

// GetAchievementEmailContent composes the body of the achievement-unlocked email.
func GetAchievementEmailContent(props AchievementEmailProps) string {
	var sb strings.Builder
	sb.WriteString(GetHeading(fmt.Sprintf("%s Achievement unlocked: %s", props.Badge, props.AchievementName)))
	sb.WriteString(GetParagraph(fmt.Sprintf("Nice work, %s! %s", props.Username, props.Description)))
	if props.Bonus > 0 {
		sb.WriteString(GetParagraph(fmt.Sprintf("You earned %d bonus points.", props.Bonus)))
	}
	sb.WriteString(GetButton(ButtonProps{
		Text: "See your achievements",
		URL:  props.ProfileURL,
	}))
	return sb.String()
}

// GetLevelUpEmailContent composes the body of the level-up email.
func GetLevelUpEmailContent(props LevelUpEmailProps) string {
	var sb strings.Builder
	sb.WriteString(GetHeading(fmt.Sprintf("%s You reached %s!", props.Badge, props.LevelName)))
	sb.WriteString(GetParagraph(fmt.Sprintf("Congratulations, %s. Your contributions added up to %d points and moved you to a new level.", props.Username, props.Points)))
	sb.WriteString(GetButton(ButtonProps{
		Text: "View your profile",
		URL:  props.ProfileURL,
	}))
	return sb.String()
}
