package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/eduline/homework-api/internal/dto"
	"github.com/eduline/homework-api/internal/models"
	"github.com/eduline/homework-api/internal/repository"
)

var (
	// ErrUploadTooLarge indicates the attachment exceeded the configured limit.
	ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrUploadTypeNotAllowed indicates the detected MIME type is not permitted.
	ErrUploadTypeNotAllowed = errors.New("file type not allowed")
	// ErrUploadUnavailable indicates no file storage backend is configured.
	ErrUploadUnavailable = errors.New("file uploads are not configured")
)

// FileUploader abstracts the attachment storage backend.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// TheoryService exposes theory material use cases.
type TheoryService interface {
	List(ctx context.Context) ([]dto.TheoryResponse, error)
	Create(ctx context.Context, teacherID uint, payload dto.TheoryCreateRequest, file *multipart.FileHeader) (dto.TheoryResponse, error)
}

type theoryService struct {
	theory    repository.TheoryRepository
	uploader  FileUploader
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	maxSize   int64
	logger    zerolog.Logger
}

// NewTheoryService builds a new theory service. The uploader is optional;
// without one, attachments can only be linked by URL.
func NewTheoryService(theory repository.TheoryRepository, uploader FileUploader, maxSizeMB int, validate *validator.Validate, logger zerolog.Logger) TheoryService {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}

	return &theoryService{
		theory:    theory,
		uploader:  uploader,
		validator: validate,
		sanitizer: bluemonday.UGCPolicy(),
		maxSize:   int64(maxSizeMB) * 1024 * 1024,
		logger:    logger.With().Str("component", "theory_service").Logger(),
	}
}

func (s *theoryService) List(ctx context.Context) ([]dto.TheoryResponse, error) {
	items, err := s.theory.List(ctx)
	if err != nil {
		return nil, err
	}

	return dto.NewTheoryResponseSlice(items), nil
}

func (s *theoryService) Create(ctx context.Context, teacherID uint, payload dto.TheoryCreateRequest, file *multipart.FileHeader) (dto.TheoryResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TheoryResponse{}, err
	}

	fileURL := payload.FileURL
	if file != nil {
		uploaded, err := s.storeAttachment(ctx, file)
		if err != nil {
			return dto.TheoryResponse{}, err
		}
		fileURL = uploaded
	}

	theory := models.Theory{
		Title:     strings.TrimSpace(payload.Title),
		Content:   strings.TrimSpace(s.sanitizer.Sanitize(payload.Content)),
		EGENumber: payload.EGENumber,
		FileURL:   fileURL,
		CreatedBy: teacherID,
	}

	if err := s.theory.Create(ctx, &theory); err != nil {
		return dto.TheoryResponse{}, err
	}

	s.logger.Info().Uint("theory_id", theory.ID).Int("ege_number", theory.EGENumber).Msg("theory material published")

	return dto.NewTheoryResponse(theory), nil
}

func (s *theoryService) storeAttachment(ctx context.Context, file *multipart.FileHeader) (string, error) {
	if s.uploader == nil {
		return "", ErrUploadUnavailable
	}

	if file.Size > s.maxSize {
		return "", ErrUploadTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		return "", err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		return "", err
	}
	if int64(buf.Len()) > s.maxSize {
		return "", ErrUploadTooLarge
	}

	if !isAllowedAttachment(mimetype.Detect(buf.Bytes())) {
		return "", ErrUploadTypeNotAllowed
	}

	return s.uploader.Upload(ctx, file.Filename, bytes.NewReader(buf.Bytes()))
}

// Theory attachments are lecture notes and illustrations, so only documents
// and images pass the sniff check.
func isAllowedAttachment(mime *mimetype.MIME) bool {
	detected := strings.ToLower(mime.String())
	if strings.HasPrefix(detected, "image/") {
		return true
	}

	switch detected {
	case "application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"text/plain; charset=utf-8":
		return true
	default:
		return false
	}
}
