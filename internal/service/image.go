package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/platebook/backend/config"
)

// ImageService stores recipe images submitted as base64 data URIs. Images
// go to S3 when a bucket is configured, otherwise to the local media dir.
type ImageService struct {
	s3Config *config.S3Config
	mediaDir string
}

func NewImageService(s3Config *config.S3Config, mediaDir string) *ImageService {
	return &ImageService{
		s3Config: s3Config,
		mediaDir: mediaDir,
	}
}

// StoreRecipeImage decodes a data URI and persists the image, returning its
// public URL. An http(s) URL is passed through untouched so updates can
// keep the existing image.
func (s *ImageService) StoreRecipeImage(ctx context.Context, image string) (string, error) {
	if image == "" {
		return "", nil
	}
	if strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://") || strings.HasPrefix(image, "/media/") {
		return image, nil
	}

	data, ext, err := decodeDataURI(image)
	if err != nil {
		return "", err
	}

	fileName := fmt.Sprintf("recipes/%s.%s", uuid.New().String(), ext)

	if s.s3Config != nil {
		url, err := s.uploadToS3(ctx, data, fileName, ext)
		if err == nil {
			return url, nil
		}
		log.Warn().Err(err).Msg("S3 upload failed, falling back to local media dir")
	}

	return s.writeLocal(data, fileName)
}

func (s *ImageService) uploadToS3(ctx context.Context, data []byte, fileName, ext string) (string, error) {
	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(fileName),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("image/" + ext),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, fileName)
	log.Info().Str("url", publicURL).Msg("uploaded recipe image to S3")
	return publicURL, nil
}

func (s *ImageService) writeLocal(data []byte, fileName string) (string, error) {
	path := filepath.Join(s.mediaDir, filepath.FromSlash(fileName))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return "/media/" + fileName, nil
}

// decodeDataURI parses "data:image/<ext>;base64,<payload>".
func decodeDataURI(uri string) ([]byte, string, error) {
	header, payload, found := strings.Cut(uri, ",")
	if !found {
		return nil, "", fmt.Errorf("malformed image data URI")
	}

	ext := "png"
	if mt, ok := strings.CutPrefix(header, "data:image/"); ok {
		ext = strings.TrimSuffix(mt, ";base64")
	} else if !strings.HasPrefix(header, "data:") {
		// Bare base64 without a data: header
		payload = uri
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("invalid base64 image payload: %w", err)
	}
	return data, ext, nil
}
