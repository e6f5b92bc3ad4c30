package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v2"
	"github.com/rentara/rentara-api/internal/config"
	"github.com/rentara/rentara-api/internal/models"
	"github.com/rentara/rentara-api/pkg/logger"
)

//go:embed templates/email/*.html
var emailTemplates embed.FS

type EmailService struct {
	config       *config.Config
	resendClient *resend.Client
}

func NewEmailService(cfg *config.Config) *EmailService {
	client := resend.NewClient(cfg.ResendAPIKey)
	return &EmailService{
		config:       cfg,
		resendClient: client,
	}
}

func (s *EmailService) SendAccountCreated(ctx context.Context, user *models.User) error {
	data := struct {
		Name   string
		AppURL string
	}{
		Name:   user.FullName,
		AppURL: s.config.AppURL,
	}

	body, err := s.renderTemplate("account_created.html", data)
	if err != nil {
		return err
	}

	return s.send(user.Email, "Welcome to Rentara", body)
}

func (s *EmailService) SendRecoveryCode(ctx context.Context, user *models.User, code string) error {
	data := struct {
		Name    string
		Code    string
		Minutes int
		AppURL  string
	}{
		Name:    user.FullName,
		Code:    code,
		Minutes: 15,
		AppURL:  s.config.AppURL,
	}

	body, err := s.renderTemplate("reset_code.html", data)
	if err != nil {
		return err
	}

	return s.send(user.Email, "Password reset code", body)
}

func (s *EmailService) SendLeaseCreated(ctx context.Context, tenant *models.Tenant, property *models.Property, lease *models.Lease) error {
	perYear, _ := models.InstallmentsPerYear(lease.Frequency)
	data := struct {
		Name            string
		PropertyAddress string
		StartDate       string
		DurationYears   int
		AnnualRent      string
		Frequency       string
		Installment     string
		AppURL          string
	}{
		Name:            tenant.FullName,
		PropertyAddress: property.Address,
		StartDate:       lease.StartDate.Format("02/01/2006"),
		DurationYears:   lease.DurationYears,
		AnnualRent:      fmt.Sprintf("€%.2f", lease.AnnualRent),
		Frequency:       lease.Frequency,
		Installment:     fmt.Sprintf("€%.2f", lease.AnnualRent/float64(perYear)),
		AppURL:          s.config.AppURL,
	}

	body, err := s.renderTemplate("lease_created.html", data)
	if err != nil {
		return err
	}

	return s.send(tenant.User.Email, "Your lease has been registered", body)
}

func (s *EmailService) SendPaymentConfirmed(ctx context.Context, tenant *models.Tenant, property *models.Property, ordinal int, amount float64) error {
	data := struct {
		Name            string
		PropertyAddress string
		Ordinal         int
		Amount          string
		AppURL          string
	}{
		Name:            tenant.FullName,
		PropertyAddress: property.Address,
		Ordinal:         ordinal,
		Amount:          fmt.Sprintf("€%.2f", amount),
		AppURL:          s.config.AppURL,
	}

	body, err := s.renderTemplate("payment_confirmed.html", data)
	if err != nil {
		return err
	}

	return s.send(tenant.User.Email, "Payment confirmed", body)
}

type OverdueInstallmentData struct {
	PropertyAddress string
	Ordinal         int
	Amount          string
	DueDate         string
}

func (s *EmailService) SendOverdueInstallments(ctx context.Context, user *models.User, installments []models.Installment) error {
	var rows []OverdueInstallmentData
	for _, i := range installments {
		rows = append(rows, OverdueInstallmentData{
			PropertyAddress: i.Lease.Property.Address,
			Ordinal:         i.Ordinal,
			Amount:          fmt.Sprintf("€%.2f", i.Amount),
			DueDate:         i.DueDate.Format("02/01/2006"),
		})
	}

	data := struct {
		Name         string
		Installments []OverdueInstallmentData
		AppURL       string
	}{
		Name:         user.FullName,
		Installments: rows,
		AppURL:       s.config.AppURL,
	}

	body, err := s.renderTemplate("overdue_installments.html", data)
	if err != nil {
		return err
	}

	return s.send(user.Email, fmt.Sprintf("Overdue installments (%d)", len(installments)), body)
}

func (s *EmailService) send(to, subject, html string) error {
	params := &resend.SendEmailRequest{
		From:    s.config.FromEmail,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}
	if _, err := s.resendClient.Emails.Send(params); err != nil {
		logger.Error(fmt.Sprintf("Failed to send email to %s: %v", to, err))
		return err
	}
	logger.Info(fmt.Sprintf("📧 [Email Sent] To: %s | Subject: %s", to, subject))
	return nil
}

func (s *EmailService) renderTemplate(name string, data interface{}) (string, error) {
	tmpl, err := template.ParseFS(emailTemplates, "templates/email/"+name)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}
