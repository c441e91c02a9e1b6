package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_admin/internal/model"
	"github.com/Freeeeeet/tutoring_admin/internal/repository/base"
	"github.com/Freeeeeet/tutoring_admin/internal/search"
)

// AccountInput данные для создания (ID == 0) или обновления аккаунта
type AccountInput struct {
	ID            int64               `json:"id"`
	Role          model.AccountRole   `json:"role" validate:"required,oneof=student parent instructor admin"`
	FirstName     string              `json:"first_name" validate:"required"`
	LastName      string              `json:"last_name" validate:"required"`
	Email         string              `json:"email" validate:"omitempty,email"`
	Phone         string              `json:"phone"`
	ParentID      *int64              `json:"parent_id"`
	AcademicLevel model.AcademicLevel `json:"academic_level" validate:"omitempty,oneof=elementary_lvl middle_lvl high_lvl college_lvl"`
}

type AccountService struct {
	stores Stores
	logger *zap.Logger
}

func NewAccountService(stores Stores, logger *zap.Logger) *AccountService {
	return &AccountService{
		stores: stores,
		logger: logger,
	}
}

// SaveAccount создаёт аккаунт или обновляет существующий, если указан ID
func (s *AccountService) SaveAccount(ctx context.Context, in *AccountInput) (*model.Account, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email != "" {
		existing, err := s.stores.Accounts.GetByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("get account by email: %w", err)
		}
		if existing != nil && existing.ID != in.ID {
			return nil, validationErrorf("Account with email already exists")
		}
	}

	if in.ParentID != nil {
		if in.Role != model.AccountRoleStudent {
			return nil, validationErrorf("Only students can have a parent")
		}
		parent, err := s.stores.Accounts.GetByID(ctx, *in.ParentID)
		if err != nil {
			return nil, fmt.Errorf("get parent: %w", err)
		}
		if parent == nil || !parent.IsParent() {
			return nil, validationErrorf("Parent account %d does not exist", *in.ParentID)
		}
	}

	var account *model.Account
	if in.ID == 0 {
		account = &model.Account{}
	} else {
		existing, err := s.stores.Accounts.GetByID(ctx, in.ID)
		if err != nil {
			return nil, fmt.Errorf("get account: %w", err)
		}
		if existing == nil {
			return nil, notFound("account", in.ID)
		}
		account = existing
	}

	account.Role = in.Role
	account.FirstName = strings.TrimSpace(in.FirstName)
	account.LastName = strings.TrimSpace(in.LastName)
	account.Email = email
	account.Phone = strings.TrimSpace(in.Phone)
	account.ParentID = in.ParentID
	account.AcademicLevel = in.AcademicLevel

	var err error
	if in.ID == 0 {
		err = s.stores.Accounts.Create(ctx, account)
	} else {
		err = s.stores.Accounts.Update(ctx, account)
	}
	if err != nil {
		if base.IsUniqueViolation(err) {
			return nil, validationErrorf("Account with email already exists")
		}
		return nil, fmt.Errorf("save account: %w", err)
	}

	s.logger.Info("Account saved",
		zap.Int64("account_id", account.ID),
		zap.String("role", string(account.Role)),
		zap.Bool("created", in.ID == 0))

	return account, nil
}

// GetAccount получает аккаунт по ID
func (s *AccountService) GetAccount(ctx context.Context, id int64) (*model.Account, error) {
	account, err := s.stores.Accounts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	if account == nil {
		return nil, notFound("account", id)
	}
	return account, nil
}

var accountSortKeys = map[string]func(*model.Account) string{
	"first_name": func(a *model.Account) string { return a.FirstName },
	"last_name":  func(a *model.Account) string { return a.LastName },
	"email":      func(a *model.Account) string { return a.Email },
	"created_at": func(a *model.Account) string { return a.CreatedAt.UTC().Format(time.RFC3339Nano) },
}

var accountSearchFields = []search.Field[*model.Account]{
	search.Substring(func(a *model.Account) string { return a.FirstName }),
	search.Substring(func(a *model.Account) string { return a.LastName }),
	search.Substring(func(a *model.Account) string { return a.Email }),
	search.Substring(func(a *model.Account) string { return a.Phone }),
	search.Exact(func(a *model.Account) string { return string(a.AcademicLevel) }),
}

// ListStudents список учеников с поиском, сортировкой и пагинацией
func (s *AccountService) ListStudents(ctx context.Context, params ListParams) (Page[*model.Account], error) {
	return s.ListAccounts(ctx, model.AccountRoleStudent, params)
}

// ListAccounts список аккаунтов роли с поиском, сортировкой и пагинацией
func (s *AccountService) ListAccounts(ctx context.Context, role model.AccountRole, params ListParams) (Page[*model.Account], error) {
	accounts, err := s.stores.Accounts.ListByRole(ctx, role)
	if err != nil {
		return Page[*model.Account]{}, fmt.Errorf("list accounts: %w", err)
	}

	return listPage(accounts, params, accountSearchFields, accountSortKeys, "last_name"), nil
}

// LinkTelegram привязывает чат Telegram к аккаунту с указанным email
func (s *AccountService) LinkTelegram(ctx context.Context, email string, telegramID int64) (*model.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, validationErrorf("Email is required")
	}

	account, err := s.stores.Accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("account with email %s: %w", email, ErrNotFound)
	}

	linked, err := s.stores.Accounts.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("get account by telegram id: %w", err)
	}
	if linked != nil && linked.ID != account.ID {
		return nil, validationErrorf("This Telegram account is already linked to another account")
	}

	if err := s.stores.Accounts.SetTelegramID(ctx, account.ID, telegramID); err != nil {
		return nil, fmt.Errorf("set telegram id: %w", err)
	}
	account.TelegramID = &telegramID

	s.logger.Info("Telegram linked",
		zap.Int64("account_id", account.ID),
		zap.Int64("telegram_id", telegramID))

	return account, nil
}

// GetByTelegramID получает аккаунт по ID чата Telegram. nil если аккаунт не привязан
func (s *AccountService) GetByTelegramID(ctx context.Context, telegramID int64) (*model.Account, error) {
	account, err := s.stores.Accounts.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("get account by telegram id: %w", err)
	}
	return account, nil
}
