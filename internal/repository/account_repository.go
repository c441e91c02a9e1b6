package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Freeeeeet/tutoring_admin/internal/model"
	"github.com/Freeeeeet/tutoring_admin/internal/repository/base"
)

type AccountRepository struct {
	*base.Repository
}

func NewAccountRepository(db base.DBTX) *AccountRepository {
	return &AccountRepository{Repository: base.NewRepository(db)}
}

const accountColumns = `id, role, first_name, last_name, COALESCE(email, ''), phone, telegram_id, parent_id, academic_level, balance, created_at`

func scanAccount(row pgx.Row) (*model.Account, error) {
	var account model.Account
	err := row.Scan(
		&account.ID,
		&account.Role,
		&account.FirstName,
		&account.LastName,
		&account.Email,
		&account.Phone,
		&account.TelegramID,
		&account.ParentID,
		&account.AcademicLevel,
		&account.Balance,
		&account.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) queryAccounts(ctx context.Context, query string, args ...any) ([]*model.Account, error) {
	rows, err := r.DB().Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*model.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

// Create создаёт новый аккаунт
func (r *AccountRepository) Create(ctx context.Context, account *model.Account) error {
	query := `
		INSERT INTO accounts (role, first_name, last_name, email, phone, telegram_id, parent_id, academic_level, balance)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err := r.DB().QueryRow(
		ctx, query,
		account.Role,
		account.FirstName,
		account.LastName,
		account.Email,
		account.Phone,
		account.TelegramID,
		account.ParentID,
		account.AcademicLevel,
		account.Balance,
	).Scan(&account.ID, &account.CreatedAt)

	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}

	return nil
}

// Update обновляет данные аккаунта (баланс меняется отдельно через AdjustBalance)
func (r *AccountRepository) Update(ctx context.Context, account *model.Account) error {
	query := `
		UPDATE accounts
		SET first_name = $2, last_name = $3, email = NULLIF($4, ''), phone = $5, parent_id = $6, academic_level = $7
		WHERE id = $1
	`

	err := r.ExecOne(
		ctx, query,
		account.ID,
		account.FirstName,
		account.LastName,
		account.Email,
		account.Phone,
		account.ParentID,
		account.AcademicLevel,
	)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}

	return nil
}

// GetByID получает аккаунт по ID
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	account, err := scanAccount(r.DB().QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account by id: %w", err)
	}

	return account, nil
}

// GetByEmail получает аккаунт по email (без учёта регистра)
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE lower(email) = lower($1)`

	account, err := scanAccount(r.DB().QueryRow(ctx, query, email))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account by email: %w", err)
	}

	return account, nil
}

// GetByTelegramID получает аккаунт, привязанный к Telegram
func (r *AccountRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE telegram_id = $1`

	account, err := scanAccount(r.DB().QueryRow(ctx, query, telegramID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account by telegram id: %w", err)
	}

	return account, nil
}

// ListByRole получает все аккаунты указанной роли
func (r *AccountRepository) ListByRole(ctx context.Context, role model.AccountRole) ([]*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE role = $1 ORDER BY last_name, first_name, id`

	accounts, err := r.queryAccounts(ctx, query, role)
	if err != nil {
		return nil, fmt.Errorf("list accounts by role: %w", err)
	}
	return accounts, nil
}

// GetByIDs получает аккаунты по списку ID
func (r *AccountRepository) GetByIDs(ctx context.Context, ids []int64) ([]*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = ANY($1) ORDER BY id`

	accounts, err := r.queryAccounts(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get accounts by ids: %w", err)
	}
	return accounts, nil
}

// SetTelegramID привязывает аккаунт к чату Telegram
func (r *AccountRepository) SetTelegramID(ctx context.Context, accountID, telegramID int64) error {
	query := `UPDATE accounts SET telegram_id = $2 WHERE id = $1`

	if _, err := r.DB().Exec(ctx, query, accountID, telegramID); err != nil {
		return fmt.Errorf("set telegram id: %w", err)
	}
	return nil
}

// AdjustBalance изменяет баланс аккаунта на delta
func (r *AccountRepository) AdjustBalance(ctx context.Context, accountID int64, delta decimal.Decimal) error {
	query := `UPDATE accounts SET balance = balance + $2 WHERE id = $1`

	if _, err := r.DB().Exec(ctx, query, accountID, delta); err != nil {
		return fmt.Errorf("adjust balance: %w", err)
	}
	return nil
}
