package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"restaurant-ordering/ordering-svc/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// room for multipart boundaries and headers around the file itself
	formOverhead = 512 << 10
	formMemory   = 1 << 20
	sniffLen     = 512
)

// Profile configures one upload endpoint.
type Profile struct {
	Name         string
	Field        string
	MaxSize      int64
	AllowedMIMEs []string
	AllowedExts  []string
	Dir          string
	URLPrefix    string
}

// DishImages accepts JPEG and PNG up to 2 MB.
func DishImages() Profile {
	return Profile{
		Name:         "dish",
		Field:        "image",
		MaxSize:      2 << 20,
		AllowedMIMEs: []string{"image/jpeg", "image/png", "image/jpg"},
		AllowedExts:  []string{".jpg", ".jpeg", ".png"},
		Dir:          "dishes",
		URLPrefix:    "/uploads/dishes/",
	}
}

// RatingImages accepts JPEG, PNG and GIF up to 5 MB.
func RatingImages() Profile {
	return Profile{
		Name:         "rating",
		Field:        "image",
		MaxSize:      5 << 20,
		AllowedMIMEs: []string{"image/jpeg", "image/png", "image/jpg", "image/gif"},
		AllowedExts:  []string{".jpg", ".jpeg", ".png", ".gif"},
		Dir:          "",
		URLPrefix:    "/uploads/",
	}
}

func (p Profile) sizeLabel() string {
	return fmt.Sprintf("%dMB", p.MaxSize>>20)
}

func (p Profile) allowsMIME(mime string) bool {
	mime = strings.ToLower(strings.TrimSpace(strings.SplitN(mime, ";", 2)[0]))
	return slices.Contains(p.AllowedMIMEs, mime)
}

type Ingestor struct {
	sink    Sink
	profile Profile
	log     logrus.FieldLogger
	now     func() time.Time
}

func NewIngestor(sink Sink, profile Profile, log logrus.FieldLogger) *Ingestor {
	return &Ingestor{
		sink:    sink,
		profile: profile,
		log:     log.WithField("upload", profile.Name),
		now:     time.Now,
	}
}

func (i *Ingestor) Profile() Profile {
	return i.profile
}

// FromRequest parses a multipart request and ingests its single file.
func (i *Ingestor) FromRequest(w http.ResponseWriter, r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, i.profile.MaxSize+formOverhead)
	if err := r.ParseMultipartForm(formMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", fmt.Errorf("image must not exceed %s: %w", i.profile.sizeLabel(), domain.ErrFileTooLarge)
		}
		return "", fmt.Errorf("invalid multipart form: %v: %w", err, domain.ErrValidation)
	}
	defer r.MultipartForm.RemoveAll()

	total := 0
	for _, headers := range r.MultipartForm.File {
		total += len(headers)
	}
	if total > 1 {
		return "", domain.ErrTooManyFiles
	}
	headers := r.MultipartForm.File[i.profile.Field]
	if len(headers) == 0 {
		return "", fmt.Errorf("expected a file in field %q: %w", i.profile.Field, domain.ErrNoFile)
	}
	return i.Ingest(headers[0])
}

// Ingest validates fh, writes it under a generated name and returns its URL.
// Nothing is written unless size and type checks pass, and a file that fails
// after being written is removed again.
func (i *Ingestor) Ingest(fh *multipart.FileHeader) (string, error) {
	if fh.Size > i.profile.MaxSize {
		return "", fmt.Errorf("image must not exceed %s: %w", i.profile.sizeLabel(), domain.ErrFileTooLarge)
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !slices.Contains(i.profile.AllowedExts, ext) {
		return "", fmt.Errorf("extension %q not allowed: %w", ext, domain.ErrUnsupportedType)
	}
	if mime := fh.Header.Get("Content-Type"); !i.profile.allowsMIME(mime) {
		return "", fmt.Errorf("content type %q not allowed: %w", mime, domain.ErrUnsupportedType)
	}

	if err := i.sink.EnsureDir(i.profile.Dir); err != nil {
		i.log.WithError(err).Error("upload directory unavailable")
		return "", domain.StorageError("prepare upload directory", err)
	}

	name := i.fileName(ext)
	target := path.Join(i.profile.Dir, name)
	if err := i.write(fh, target); err != nil {
		return "", err
	}
	if err := i.verify(target); err != nil {
		i.discard(target)
		return "", err
	}

	i.log.WithFields(logrus.Fields{"file": target, "size": fh.Size}).Info("image uploaded")
	return i.profile.URLPrefix + name, nil
}

func (i *Ingestor) fileName(ext string) string {
	return fmt.Sprintf("%d-%d%s", i.now().UnixMilli(), uuid.New().ID(), ext)
}

func (i *Ingestor) write(fh *multipart.FileHeader, target string) error {
	src, err := fh.Open()
	if err != nil {
		return domain.StorageError("open uploaded file", err)
	}
	defer src.Close()

	dst, err := i.sink.Create(target)
	if err != nil {
		return domain.StorageError("create "+target, err)
	}

	n, err := io.Copy(dst, io.LimitReader(src, i.profile.MaxSize+1))
	if err != nil {
		dst.Close()
		i.discard(target)
		return domain.StorageError("write "+target, err)
	}
	if n > i.profile.MaxSize {
		dst.Close()
		i.discard(target)
		return fmt.Errorf("image must not exceed %s: %w", i.profile.sizeLabel(), domain.ErrFileTooLarge)
	}
	if syncer, ok := dst.(interface{ Sync() error }); ok {
		if err := syncer.Sync(); err != nil {
			dst.Close()
			i.discard(target)
			return domain.StorageError("sync "+target, err)
		}
	}
	if err := dst.Close(); err != nil {
		i.discard(target)
		return domain.StorageError("close "+target, err)
	}
	return nil
}

// verify sniffs the stored bytes; the declared content type is not trusted.
func (i *Ingestor) verify(target string) error {
	f, err := i.sink.Open(target)
	if err != nil {
		return domain.StorageError("reopen "+target, err)
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return domain.StorageError("read "+target, err)
	}
	if sniffed := http.DetectContentType(head[:n]); !i.profile.allowsMIME(sniffed) {
		return fmt.Errorf("file content is %s: %w", sniffed, domain.ErrUnsupportedType)
	}
	return nil
}

func (i *Ingestor) discard(target string) {
	if err := i.sink.Remove(target); err != nil {
		i.log.WithError(err).WithField("file", target).Error("failed to remove partial upload")
		return
	}
	i.log.WithField("file", target).Warn("removed partial upload")
}
