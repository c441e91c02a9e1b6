// Package importer разбирает CSV-выгрузки по именам колонок и собирает
// построчный отчёт: ошибка в строке не прерывает обработку файла.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var ErrMissingColumns = errors.New("missing required columns")

// Column колонка схемы файла
type Column struct {
	Name     string
	Required bool
}

// Schema явная схема колонок файла
type Schema []Column

// Result результат обработки одной строки файла
type Result[T any] struct {
	Line   int      `json:"line"`
	Record T        `json:"record"`
	Errors []string `json:"errors,omitempty"`
}

// OK true если в строке нет ошибок
func (r *Result[T]) OK() bool {
	return len(r.Errors) == 0
}

// Report отчёт по всему файлу
type Report[T any] struct {
	BatchID uuid.UUID    `json:"batch_id"`
	Results []*Result[T] `json:"results"`
}

// Fail добавляет ошибку к строке отчёта
func (r *Report[T]) Fail(result *Result[T], err error) {
	result.Errors = append(result.Errors, err.Error())
}

// Succeeded количество строк без ошибок
func (r *Report[T]) Succeeded() int {
	count := 0
	for _, res := range r.Results {
		if res.OK() {
			count++
		}
	}
	return count
}

// Failed строки с ошибками
func (r *Report[T]) Failed() []*Result[T] {
	var failed []*Result[T]
	for _, res := range r.Results {
		if !res.OK() {
			failed = append(failed, res)
		}
	}
	return failed
}

type row struct {
	line   int
	values map[string]string
}

// readRows читает файл и сопоставляет значения колонкам по заголовку.
// Отсутствие обязательной колонки - ошибка всего файла
func readRows(r io.Reader, schema Schema) ([]row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("read header: empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[normalizeHeader(name)] = i
	}

	var missing []string
	for _, col := range schema {
		if _, ok := index[col.Name]; col.Required && !ok {
			missing = append(missing, col.Name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	var rows []row
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}

		values := make(map[string]string, len(schema))
		for _, col := range schema {
			if i, ok := index[col.Name]; ok && i < len(record) {
				values[col.Name] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, row{line: line, values: values})
	}

	return rows, nil
}

func normalizeHeader(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(name, " ", "_")
}

// validationMessages переводит ошибки валидатора в человекочитаемые сообщения
func validationMessages(err error) []string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(errs))
	for _, fe := range errs {
		switch fe.ActualTag() {
		case "required":
			messages = append(messages, fmt.Sprintf("field '%s' is required", fe.Field()))
		case "email":
			messages = append(messages, fmt.Sprintf("field '%s' must be a valid email", fe.Field()))
		case "oneof":
			messages = append(messages, fmt.Sprintf("field '%s' must be one of: %s", fe.Field(), fe.Param()))
		default:
			messages = append(messages, fmt.Sprintf("field '%s' is invalid", fe.Field()))
		}
	}
	return messages
}
