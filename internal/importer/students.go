package importer

import (
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// StudentSchema колонки файла импорта учеников
var StudentSchema = Schema{
	{Name: "first_name", Required: true},
	{Name: "last_name", Required: true},
	{Name: "parent_email", Required: true},
	{Name: "email"},
	{Name: "phone"},
	{Name: "academic_level"},
	{Name: "parent_first_name"},
	{Name: "parent_last_name"},
	{Name: "parent_phone"},
}

// StudentRecord строка файла импорта учеников
type StudentRecord struct {
	FirstName       string `json:"first_name" validate:"required"`
	LastName        string `json:"last_name" validate:"required"`
	Email           string `json:"email" validate:"omitempty,email"`
	Phone           string `json:"phone"`
	AcademicLevel   string `json:"academic_level" validate:"omitempty,oneof=elementary_lvl middle_lvl high_lvl college_lvl"`
	ParentFirstName string `json:"parent_first_name"`
	ParentLastName  string `json:"parent_last_name"`
	ParentEmail     string `json:"parent_email" validate:"required,email"`
	ParentPhone     string `json:"parent_phone"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// в сообщениях используем имена колонок файла
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ParseStudents разбирает CSV с учениками. Ошибки отдельных строк
// попадают в отчёт, ошибка возвращается только для файла целиком
func ParseStudents(r io.Reader) (*Report[StudentRecord], error) {
	rows, err := readRows(r, StudentSchema)
	if err != nil {
		return nil, err
	}

	report := &Report[StudentRecord]{BatchID: uuid.New()}
	for _, row := range rows {
		result := &Result[StudentRecord]{
			Line: row.line,
			Record: StudentRecord{
				FirstName:       row.values["first_name"],
				LastName:        row.values["last_name"],
				Email:           strings.ToLower(row.values["email"]),
				Phone:           row.values["phone"],
				AcademicLevel:   row.values["academic_level"],
				ParentFirstName: row.values["parent_first_name"],
				ParentLastName:  row.values["parent_last_name"],
				ParentEmail:     strings.ToLower(row.values["parent_email"]),
				ParentPhone:     row.values["parent_phone"],
			},
		}

		if err := validate.Struct(result.Record); err != nil {
			result.Errors = append(result.Errors, validationMessages(err)...)
		}

		report.Results = append(report.Results, result)
	}

	return report, nil
}
