package service

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_admin/internal/importer"
	"github.com/Freeeeeet/tutoring_admin/internal/model"
)

type ImportService struct {
	tx     Transactor
	logger *zap.Logger
}

func NewImportService(tx Transactor, logger *zap.Logger) *ImportService {
	return &ImportService{
		tx:     tx,
		logger: logger,
	}
}

// ImportStudents создаёт учеников (и их родителей по email) из CSV.
// Каждая строка обрабатывается в своей транзакции; ошибка строки попадает в
// отчёт и не прерывает импорт
func (s *ImportService) ImportStudents(ctx context.Context, r io.Reader) (*importer.Report[importer.StudentRecord], error) {
	report, err := importer.ParseStudents(r)
	if err != nil {
		// ошибки разбора относятся ко всему файлу и возвращаются клиенту
		return nil, &ValidationError{Message: err.Error()}
	}

	logger := s.logger.With(zap.String("batch_id", report.BatchID.String()))

	for _, result := range report.Results {
		if !result.OK() {
			continue
		}
		if err := s.importRow(ctx, &result.Record); err != nil {
			report.Fail(result, err)
			logger.Warn("Import row skipped", zap.Int("line", result.Line), zap.Error(err))
		}
	}

	logger.Info("Students imported",
		zap.Int("rows", len(report.Results)),
		zap.Int("succeeded", report.Succeeded()),
		zap.Int("failed", len(report.Failed())))

	return report, nil
}

func (s *ImportService) importRow(ctx context.Context, rec *importer.StudentRecord) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected error: %v", r)
		}
	}()

	return s.tx.WithTx(ctx, func(ctx context.Context, st Stores) error {
		parent, err := st.Accounts.GetByEmail(ctx, rec.ParentEmail)
		if err != nil {
			return fmt.Errorf("get parent: %w", err)
		}
		if parent == nil {
			parent = &model.Account{
				Role:      model.AccountRoleParent,
				FirstName: rec.ParentFirstName,
				LastName:  rec.ParentLastName,
				Email:     rec.ParentEmail,
				Phone:     rec.ParentPhone,
			}
			if parent.LastName == "" {
				parent.LastName = rec.LastName
			}
			if parent.FirstName == "" {
				parent.FirstName = "Parent"
			}
			if err := st.Accounts.Create(ctx, parent); err != nil {
				return fmt.Errorf("create parent: %w", err)
			}
		} else if !parent.IsParent() {
			return validationErrorf("Account with email %s is not a parent", rec.ParentEmail)
		}

		if rec.Email != "" {
			existing, err := st.Accounts.GetByEmail(ctx, rec.Email)
			if err != nil {
				return fmt.Errorf("get student: %w", err)
			}
			if existing != nil {
				return validationErrorf("Account with email already exists")
			}
		}

		student := &model.Account{
			Role:          model.AccountRoleStudent,
			FirstName:     rec.FirstName,
			LastName:      rec.LastName,
			Email:         rec.Email,
			Phone:         rec.Phone,
			ParentID:      &parent.ID,
			AcademicLevel: model.AcademicLevel(rec.AcademicLevel),
		}
		if err := st.Accounts.Create(ctx, student); err != nil {
			return fmt.Errorf("create student: %w", err)
		}

		return nil
	})
}
