package students

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutoring_admin/internal/http-server/response"
	"github.com/Freeeeeet/tutoring_admin/internal/importer"
)

// MaxUploadSize предельный размер загружаемого файла
const MaxUploadSize = 10 << 20

type StudentImporter interface {
	ImportStudents(ctx context.Context, r io.Reader) (*importer.Report[importer.StudentRecord], error)
}

type Response struct {
	response.Response
	*importer.Report[importer.StudentRecord]
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// New импортирует учеников из CSV. Файл принимается полем file формы
// multipart/form-data или телом запроса целиком
func New(log *zap.Logger, imp StudentImporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.imports.students.New"

		log := log.With(
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)

		r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)

		var body io.Reader = r.Body
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			file, _, err := r.FormFile("file")
			if err != nil {
				log.Error("Failed to read uploaded file", zap.Error(err))
				response.WriteError(w, r, http.StatusBadRequest, response.BadRequest, "file is required")
				return
			}
			defer file.Close()
			body = file
		}

		report, err := imp.ImportStudents(r.Context(), body)
		if err != nil {
			response.Fail(w, r, log, err, "failed to import students")
			return
		}

		failed := len(report.Failed())
		log.Info("Students import finished",
			zap.String("batch_id", report.BatchID.String()),
			zap.Int("succeeded", report.Succeeded()),
			zap.Int("failed", failed))

		render.JSON(w, r, Response{
			Report:    report,
			Succeeded: report.Succeeded(),
			Failed:    failed,
		})
	}
}
