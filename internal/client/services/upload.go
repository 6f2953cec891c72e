package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/postplanner/internal/common"
	"github.com/dmitrijs2005/postplanner/internal/filex"
	"github.com/dmitrijs2005/postplanner/internal/models"
	"github.com/dmitrijs2005/postplanner/internal/netx"
	"github.com/go-playground/validator/v10"
)

// Layouts of the upload form date and time fields.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var (
	ErrNoTarget = errors.New("select at least one platform to post to")
	ErrNotVideo = errors.New("file is not a video")
)

// UploadForm is what the user fills in to schedule a video. Date and Time
// are read in the service's local time zone.
type UploadForm struct {
	FilePath    string `validate:"required"`
	Title       string `validate:"title"`
	Description string `validate:"description"`
	Date        string `validate:"required,datetime=2006-01-02"`
	Time        string `validate:"required,datetime=15:04"`
	WorkspaceID string `validate:"required"`
	Targets     models.Targets
}

type UploadService interface {
	// Schedule validates the form, uploads the file and records the item.
	// Nothing is recorded unless the upload succeeded.
	Schedule(ctx context.Context, form UploadForm) (*models.ScheduledItem, error)
}

type uploadService struct {
	client   UploadClient
	http     *http.Client
	loc      *time.Location
	validate *validator.Validate
}

// NewUploadService builds the service. A nil httpClient uses
// http.DefaultClient; a nil loc uses time.Local.
func NewUploadService(c UploadClient, httpClient *http.Client, loc *time.Location) UploadService {
	if loc == nil {
		loc = time.Local
	}
	return &uploadService{client: c, http: httpClient, loc: loc, validate: common.NewValidator()}
}

// ScheduledAt combines a form date and time into an instant in loc.
func ScheduledAt(date, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date/time: %v", common.ErrorValidation, err)
	}
	return t, nil
}

func (s *uploadService) Schedule(ctx context.Context, form UploadForm) (*models.ScheduledItem, error) {
	form.Title = strings.TrimSpace(form.Title)
	form.Date = strings.TrimSpace(form.Date)
	form.Time = strings.TrimSpace(form.Time)

	if err := s.validate.Struct(form); err != nil {
		return nil, fmt.Errorf("%w: %s", common.ErrorValidation, describe(err))
	}
	if !form.Targets.Any() {
		return nil, fmt.Errorf("%w: %w", common.ErrorValidation, ErrNoTarget)
	}

	at, err := ScheduledAt(form.Date, form.Time, s.loc)
	if err != nil {
		return nil, err
	}

	mediaURL, err := s.upload(ctx, form.FilePath)
	if err != nil {
		return nil, err
	}

	item, err := s.client.InsertItem(ctx, &models.ScheduledItem{
		WorkspaceID: form.WorkspaceID,
		Title:       form.Title,
		Description: strings.TrimSpace(form.Description),
		MediaURL:    mediaURL,
		ScheduledAt: at.UTC(),
		Targets:     form.Targets,
	})
	if err != nil {
		return nil, fmt.Errorf("schedule item: %w", err)
	}
	return item, nil
}

func (s *uploadService) upload(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open media: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat media: %w", err)
	}
	if fi.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", common.ErrorValidation, path)
	}

	contentType, err := filex.ContentType(path)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(contentType, "video/") {
		return "", fmt.Errorf("%w: %w: %s", common.ErrorValidation, ErrNotVideo, contentType)
	}

	ticket, err := s.client.CreateUploadTicket(ctx, filepath.Base(path), contentType)
	if err != nil {
		return "", fmt.Errorf("upload ticket: %w", err)
	}

	headers := ticket.Headers
	if headers == nil {
		headers = map[string]string{"Content-Type": contentType}
	}
	if err := netx.Upload(ctx, s.http, ticket.Method, ticket.UploadURL, headers, f, fi.Size()); err != nil {
		return "", err
	}
	return ticket.MediaURL, nil
}
