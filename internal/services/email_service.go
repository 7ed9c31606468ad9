package services

import (
	"encoding/json"
	"fmt"
	"time"

	"recipehub/internal/models"
	"recipehub/internal/repository"
	"recipehub/pkg/mailer"
)

// EmailPayload is the serialized body of a send_email job.
type EmailPayload struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	TextBody string `json:"text_body"`
	HTMLBody string `json:"html_body,omitempty"`
}

// EmailService enqueues outbound mail as deferred jobs; the scheduler worker
// performs the actual delivery so request handlers never block on the mail
// provider.
type EmailService interface {
	QueueOTPEmail(to, purpose, code string) error
	QueueResetEmail(to, token string) error
	Deliver(payload string) error
}

type emailService struct {
	jobRepo repository.JobRepository
	client  *mailer.Client
}

func NewEmailService(jobRepo repository.JobRepository, client *mailer.Client) EmailService {
	return &emailService{jobRepo: jobRepo, client: client}
}

func (s *emailService) QueueOTPEmail(to, purpose, code string) error {
	var subject, body string
	switch purpose {
	case OTPPurposeLogin:
		subject = "Your login code"
		body = fmt.Sprintf("Hello,\n\nYour login verification code is:\n\n%s\n\nThe code expires in 5 minutes.\n\nIf you did not try to sign in, please contact our support team.\n\nThank you,\nSupport Team\n", code)
	default:
		subject = "Verify your email address"
		body = fmt.Sprintf("Hello,\n\nYour email verification code is:\n\n%s\n\nThe code expires in 5 minutes.\n\nThank you,\nSupport Team\n", code)
	}
	return s.queue(EmailPayload{To: to, Subject: subject, TextBody: body})
}

func (s *emailService) QueueResetEmail(to, token string) error {
	body := fmt.Sprintf("Hello,\n\nWe received a request to reset the password for your account.\n\nYour password reset token is:\n\n%s\n\nThe token expires in 15 minutes. If you did not request this change, please contact our support team.\n\nThank you,\nSupport Team\n", token)
	return s.queue(EmailPayload{To: to, Subject: "Password reset", TextBody: body})
}

func (s *emailService) queue(payload EmailPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}
	return s.jobRepo.Create(&models.ScheduledJob{
		Name:    models.JobSendEmail,
		Payload: string(data),
		RunAt:   time.Now(),
	})
}

// Deliver is the send_email job handler body, executed by the worker.
func (s *emailService) Deliver(payload string) error {
	var p EmailPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return fmt.Errorf("failed to unmarshal email payload: %w", err)
	}
	_, err := s.client.Send(p.To, p.Subject, p.TextBody, p.HTMLBody)
	return err
}
