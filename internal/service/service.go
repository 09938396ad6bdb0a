package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/finsight/invoice-analytics/internal/analytics"
	"github.com/finsight/invoice-analytics/internal/config"
	"github.com/finsight/invoice-analytics/internal/models"
	"github.com/finsight/invoice-analytics/internal/repository"
	"github.com/finsight/invoice-analytics/internal/utils"
	emailutil "github.com/finsight/invoice-analytics/internal/utils/email"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Service handles business logic
type Service struct {
	repo   *repository.Repository
	log    *logrus.Logger
	config *config.Config
	mailer *emailutil.Sender
}

// NewService initializes a new service
func NewService(repo *repository.Repository, log *logrus.Logger, cfg *config.Config, mailer *emailutil.Sender) *Service {
	return &Service{repo: repo, log: log, config: cfg, mailer: mailer}
}

// Register creates a new user with hashed password
func (s *Service) Register(username, email, password string) (*models.User, error) {
	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	if err := s.repo.CreateUser(user); err != nil {
		return nil, err
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, nil
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(email, password string) (string, error) {
	user, err := s.repo.FindUserByEmail(email)
	if err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	// Generate JWT
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", user.ID),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return tokenString, nil
}

// userIDFromContext extracts the authenticated user id placed in the
// context by the auth middleware
func userIDFromContext(ctx context.Context) (int64, error) {
	userIDStr, ok := ctx.Value("userID").(string)
	if !ok || userIDStr == "" {
		return 0, fmt.Errorf("user ID not found in context")
	}
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user ID: %w", err)
	}
	return userID, nil
}

// CreateInvoice issues a new invoice for the authenticated user
func (s *Service) CreateInvoice(ctx context.Context, clientID string, amount float64, currency, issueDate, dueDate string) (*models.InvoiceRecord, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if clientID == "" {
		return nil, fmt.Errorf("client ID is required")
	}
	if amount < 0 {
		return nil, fmt.Errorf("amount must not be negative")
	}
	issued, err := time.Parse(analytics.DateLayout, issueDate)
	if err != nil {
		return nil, fmt.Errorf("invalid issue date: %w", err)
	}
	if _, err := time.Parse(analytics.DateLayout, dueDate); err != nil {
		return nil, fmt.Errorf("invalid due date: %w", err)
	}
	if currency == "" {
		currency = "EUR"
	}

	number, err := utils.GenerateInvoiceNumber("INV", issued)
	if err != nil {
		return nil, fmt.Errorf("failed to generate invoice number: %w", err)
	}

	inv := &models.InvoiceRecord{
		ID:        uuid.NewString(),
		UserID:    userID,
		Number:    number,
		ClientID:  clientID,
		Amount:    amount,
		Currency:  currency,
		IssueDate: issueDate,
		DueDate:   dueDate,
		Status:    models.InvoiceStatusPending,
		HMAC:      utils.SignInvoice(number, clientID, amount, dueDate, s.config.HMACSecret),
	}

	if err := s.repo.CreateInvoice(inv); err != nil {
		return nil, err
	}

	s.log.Infof("Invoice %s created for client %s", inv.Number, inv.ClientID)
	return inv, nil
}

// ListInvoices returns the user's invoices issued within the optional range
func (s *Service) ListInvoices(ctx context.Context, from, to string) ([]models.InvoiceRecord, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListInvoices(userID, from, to)
}

// RecordPayment records a received payment and settles the referenced
// invoice once payments cover its amount
func (s *Service) RecordPayment(ctx context.Context, invoiceID string, amount float64, date, method string) (*models.PaymentRecord, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if amount < 0 {
		return nil, fmt.Errorf("amount must not be negative")
	}
	if _, err := time.Parse(analytics.DateLayout, date); err != nil {
		return nil, fmt.Errorf("invalid payment date: %w", err)
	}
	if method == "" {
		method = "bank_transfer"
	}

	var invoice *models.InvoiceRecord
	if invoiceID != "" {
		invoice, err = s.repo.FindInvoiceByID(invoiceID, userID)
		if err != nil {
			return nil, err
		}
	}

	payment := &models.PaymentRecord{
		ID:        uuid.NewString(),
		UserID:    userID,
		InvoiceID: invoiceID,
		Amount:    amount,
		Date:      date,
		Method:    method,
		Status:    "completed",
	}
	if err := s.repo.CreatePayment(payment); err != nil {
		return nil, err
	}

	if invoice != nil && invoice.Status != models.InvoiceStatusPaid {
		total, err := s.repo.SumPaymentsForInvoice(invoice.ID)
		if err != nil {
			return nil, err
		}
		if total >= invoice.Amount {
			if err := s.repo.UpdateInvoiceStatus(invoice.ID, models.InvoiceStatusPaid); err != nil {
				return nil, err
			}
			s.log.Infof("Invoice %s settled", invoice.Number)
		}
	}

	s.log.Infof("Payment of %.2f recorded via %s", payment.Amount, payment.Method)
	return payment, nil
}

// ListPayments returns the user's payments received within the optional range
func (s *Service) ListPayments(ctx context.Context, from, to string) ([]models.PaymentRecord, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListPayments(userID, from, to)
}

// Summary aggregates the user's invoices and payments within the optional
// range. Range selection happens here; the analytics engine itself never
// filters by time.
func (s *Service) Summary(ctx context.Context, from, to string) (models.FinancialSummary, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return models.FinancialSummary{}, err
	}

	invoices, err := s.repo.ListInvoices(userID, from, to)
	if err != nil {
		return models.FinancialSummary{}, err
	}
	payments, err := s.repo.ListPayments(userID, from, to)
	if err != nil {
		return models.FinancialSummary{}, err
	}

	return analytics.Aggregate(invoices, payments), nil
}

// InvoiceRisk scores one invoice against the client's payment history
func (s *Service) InvoiceRisk(ctx context.Context, invoiceID string, now time.Time) (models.RiskAssessment, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return models.RiskAssessment{}, err
	}

	invoice, err := s.repo.FindInvoiceByID(invoiceID, userID)
	if err != nil {
		return models.RiskAssessment{}, err
	}
	history, err := s.repo.ClientHistory(userID, invoice.ClientID, invoice.ID)
	if err != nil {
		return models.RiskAssessment{}, err
	}

	return analytics.AssessRisk(*invoice, history, now), nil
}

// PaymentForecast projects the user's monthly payment volume forward
func (s *Service) PaymentForecast(ctx context.Context, months int, now time.Time) ([]models.ForecastPoint, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	payments, err := s.repo.ListPayments(userID, "", "")
	if err != nil {
		return nil, err
	}

	return analytics.Forecast(payments, months, now), nil
}

// SendOverdueReminders marks pending invoices past their due date as
// overdue, scores them, and emails the owning user when the score crosses
// the reminder threshold. Invoked by the scheduler.
func (s *Service) SendOverdueReminders(now time.Time) error {
	invoices, err := s.repo.ListPendingDueBefore(now.Format(analytics.DateLayout))
	if err != nil {
		return err
	}

	var failed int
	for i := range invoices {
		inv := &invoices[i]
		if inv.Status == models.InvoiceStatusPending {
			if err := s.repo.UpdateInvoiceStatus(inv.ID, models.InvoiceStatusOverdue); err != nil {
				s.log.Errorf("Failed to mark invoice %s overdue: %v", inv.Number, err)
				failed++
				continue
			}
			inv.Status = models.InvoiceStatusOverdue
		}

		history, err := s.repo.ClientHistory(inv.UserID, inv.ClientID, inv.ID)
		if err != nil {
			s.log.Errorf("Failed to load history for invoice %s: %v", inv.Number, err)
			failed++
			continue
		}
		assessment := analytics.AssessRisk(*inv, history, now)
		if assessment.RiskScore <= analytics.ReminderThreshold {
			continue
		}

		user, err := s.repo.FindUserByID(inv.UserID)
		if err != nil {
			s.log.Errorf("Failed to load owner of invoice %s: %v", inv.Number, err)
			failed++
			continue
		}
		if err := s.mailer.SendPaymentReminder(user.Email, user.Username, inv, assessment); err != nil {
			failed++
			continue
		}
	}

	s.log.Infof("Reminder run complete: %d invoices checked, %d failures", len(invoices), failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d reminders failed", failed, len(invoices))
	}
	return nil
}
