package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"hostcompare/internal/app/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
)

// Префиксы объектов по назначению.
const (
	KindLogo    = "logos"
	KindProduct = "products"
)

// ErrUnsupportedType - файл не похож на изображение.
var ErrUnsupportedType = errors.New("unsupported file type")

// MaxUploadSize - предел размера загружаемой картинки.
const MaxUploadSize = 5 << 20

type MinIOClient struct {
	client     *minio.Client
	bucketName string
	publicURL  string
}

// NewMinIOClient создает клиент для MinIO
func NewMinIOClient(ctx context.Context, cfg config.MinIOConfig) (*MinIOClient, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	// Создаем bucket если не существует
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		err = client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{})
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		logrus.Infof("Bucket %s created successfully", cfg.Bucket)
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}

	return &MinIOClient{
		client:     client,
		bucketName: cfg.Bucket,
		publicURL:  strings.TrimRight(publicURL, "/"),
	}, nil
}

// ContentType определяет тип картинки по расширению.
func ContentType(filename string) (string, bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg", true
	case ".png":
		return "image/png", true
	case ".gif":
		return "image/gif", true
	case ".webp":
		return "image/webp", true
	case ".svg":
		return "image/svg+xml", true
	}
	return "", false
}

// ObjectName генерирует уникальное имя объекта на латинице: <kind>/<uuid8>_<unix><ext>.
func ObjectName(kind, originalFilename string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	return fmt.Sprintf("%s/%s_%d%s", kind, uuid.New().String()[:8], now.Unix(), ext)
}

// UploadFile загружает картинку в MinIO и возвращает имя объекта
func (m *MinIOClient) UploadFile(ctx context.Context, kind string, fileData []byte, originalFilename string) (string, error) {
	contentType, ok := ContentType(originalFilename)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, filepath.Ext(originalFilename))
	}

	name := ObjectName(kind, originalFilename, time.Now())

	reader := bytes.NewReader(fileData)
	_, err := m.client.PutObject(ctx, m.bucketName, name, reader, int64(len(fileData)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	logrus.Infof("File %s uploaded successfully", name)
	return name, nil
}

// DeleteFile удаляет файл из MinIO
func (m *MinIOClient) DeleteFile(ctx context.Context, filename string) error {
	err := m.client.RemoveObject(ctx, m.bucketName, filename, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logrus.Infof("File %s deleted successfully", filename)
	return nil
}

// FileURL - публичный адрес объекта. Абсолютные ссылки возвращаются как есть.
func (m *MinIOClient) FileURL(filename string) string {
	return JoinURL(m.publicURL, filename)
}

// Ping проверяет доступность bucket.
func (m *MinIOClient) Ping(ctx context.Context) error {
	_, err := m.client.BucketExists(ctx, m.bucketName)
	return err
}

// ReadLimited читает не больше limit байт; длиннее - ошибка.
func ReadLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("file is larger than %d bytes", limit)
	}
	return data, nil
}

// JoinURL склеивает базовый адрес и имя объекта.
func JoinURL(base, name string) string {
	if name == "" || IsAbsoluteURL(name) {
		return name
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(name, "/")
}

func IsAbsoluteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
