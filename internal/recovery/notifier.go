package recovery

import (
	"context"
	"fmt"
	"log/slog"

	"onboarding-app/internal/domain/onboarding"

	"github.com/resend/resend-go/v2"
)

// Notifier dispatches a single recovery email and returns the provider
// message id. Implementations must not retry on failure.
type Notifier interface {
	SendRecoveryEmail(ctx context.Context, email, token string, session *onboarding.Session, emailNumber int) (string, error)
}

// ResendNotifier sends reminders through the Resend API. With an empty API
// key it runs in dev mode: the resume link is logged instead of emailed.
type ResendNotifier struct {
	client *resend.Client
	from   string
	appURL string
	logger *slog.Logger
}

func NewNotifier(apiKey, from, appURL string, logger *slog.Logger) *ResendNotifier {
	n := &ResendNotifier{from: from, appURL: appURL, logger: logger}
	if apiKey != "" {
		n.client = resend.NewClient(apiKey)
	}
	return n
}

func (n *ResendNotifier) SendRecoveryEmail(ctx context.Context, email, token string, session *onboarding.Session, emailNumber int) (string, error) {
	link := resumeURL(n.appURL, token, session.CurrentStep)

	if n.client == nil {
		n.logger.Info("dev mode: skipping recovery email", "to", email, "link", link, "email_number", emailNumber)
		return "", nil
	}

	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{email},
		Subject: recoverySubject(emailNumber),
		Html:    recoveryBody(link, emailNumber),
	}

	sent, err := n.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to send recovery email: %w", err)
	}

	n.logger.Info("recovery email sent", "to", email, "email_number", emailNumber, "resend_id", sent.Id)
	return sent.Id, nil
}

func resumeURL(appURL, token string, step int) string {
	return fmt.Sprintf("%s/onboarding/resume?token=%s&step=%d", appURL, token, step)
}

func recoverySubject(emailNumber int) string {
	switch emailNumber {
	case 1:
		return "You're almost set up - pick up where you left off"
	case 2:
		return "Still there? Your account setup is waiting"
	default:
		return "Last reminder: finish creating your account"
	}
}

// TierLabel names the reminder stage for the audit log.
func TierLabel(emailNumber int) string {
	switch emailNumber {
	case 1:
		return "first_reminder"
	case 2:
		return "second_reminder"
	default:
		return "final_reminder"
	}
}

func recoveryBody(link string, emailNumber int) string {
	intro := "You started setting up your account but didn't get to finish."
	if emailNumber >= onboarding.MaxRecoveryEmails {
		intro = "This is our last reminder about your unfinished account setup."
	}

	return fmt.Sprintf(`
		<div style="font-family: sans-serif; max-width: 480px; margin: 0 auto; padding: 24px;">
			<h2 style="color: #333;">Finish your signup</h2>
			<p>%s Your progress is saved - you can continue right where you stopped.</p>
			<a href="%s" style="display: inline-block; background: #6366f1; color: white; padding: 12px 24px; border-radius: 8px; text-decoration: none; font-weight: 600;">
				Continue setup
			</a>
			<p style="color: #aaa; font-size: 12px; margin-top: 16px;">
				If you didn't start a signup, you can safely ignore this email.
			</p>
		</div>
	`, intro, link)
}
