package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/rs/zerolog/log"
)

// Storage persists journal photo attachments and returns a public URL.
type Storage interface {
	SavePhoto(fileHeader *multipart.FileHeader, userID int) (string, error)
}

// ErrUnsupportedType rejects anything that is not a photo upload.
var ErrUnsupportedType = fmt.Errorf("unsupported attachment type")

type LocalStorage struct {
	uploadDir string
	baseURL   string
}

type SpacesStorage struct {
	client *s3.S3
	bucket string
	cdnURL string
}

func NewLocalStorage(uploadDir, baseURL string) *LocalStorage {
	return &LocalStorage{uploadDir: uploadDir, baseURL: baseURL}
}

func NewSpacesStorage(endpoint, region, bucket, cdnURL, accessKey, secretKey string) (*SpacesStorage, error) {
	config := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(accessKey, secretKey, ""),
		Endpoint:         aws.String(endpoint),
		Region:           aws.String(region),
		S3ForcePathStyle: aws.Bool(false),
	}

	sess, err := session.NewSession(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &SpacesStorage{
		client: s3.New(sess),
		bucket: bucket,
		cdnURL: cdnURL,
	}, nil
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// photoKey builds a per-user object key with a cleaned base name and a
// timestamp so repeat uploads never collide.
func photoKey(originalFilename string, userID int) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	if photoContentType(ext) == "" {
		return "", ErrUnsupportedType
	}

	base := strings.TrimSuffix(originalFilename, filepath.Ext(originalFilename))
	base = unsafeChars.ReplaceAllString(strings.ReplaceAll(base, " ", "_"), "")
	if base == "" {
		base = "photo"
	}

	stamp := time.Now().Format("20060102_150405")
	return fmt.Sprintf("journal/%d/%s_%s%s", userID, base, stamp, ext), nil
}

func (ls *LocalStorage) SavePhoto(fileHeader *multipart.FileHeader, userID int) (string, error) {
	key, err := photoKey(fileHeader.Filename, userID)
	if err != nil {
		return "", err
	}
	uploadPath := filepath.Join(ls.uploadDir, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(uploadPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(uploadPath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return fmt.Sprintf("%s/%s", strings.TrimSuffix(ls.baseURL, "/"), key), nil
}

func (ss *SpacesStorage) SavePhoto(fileHeader *multipart.FileHeader, userID int) (string, error) {
	key, err := photoKey(fileHeader.Filename, userID)
	if err != nil {
		return "", err
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	_, err = ss.client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(ss.bucket),
		Key:         aws.String(key),
		Body:        src,
		ContentType: aws.String(photoContentType(strings.ToLower(filepath.Ext(key)))),
		ACL:         aws.String("public-read"),
	})
	if err != nil {
		log.Error().Err(err).Int("user_id", userID).Msg("uploading photo to Spaces failed")
		return "", fmt.Errorf("failed to upload to Spaces: %w", err)
	}

	return fmt.Sprintf("%s/%s", strings.TrimSuffix(ss.cdnURL, "/"), key), nil
}

// photoContentType returns "" for extensions that are not photos.
func photoContentType(ext string) string {
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".heic":
		return "image/heic"
	case ".webp":
		return "image/webp"
	default:
		return ""
	}
}
