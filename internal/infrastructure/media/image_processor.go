// Package media provides image processing utilities
package media

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/StoryHiveHQ/storyhive-go/pkg/config"
	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

var binaryImagePattern = regexp.MustCompile(`^data:image/\w+;base64,`)

// ImageProcessor handles avatar and story cover uploads.
type ImageProcessor struct {
	basePath string // Points to the media root directory
}

// NewImageProcessor creates a new ImageProcessor instance
func NewImageProcessor(basePath string) *ImageProcessor {
	return &ImageProcessor{
		basePath: basePath,
	}
}

// ProcessAvatarImage decodes a base64 upload, crops it to a square, resizes it
// to the configured avatar size, and stores it as WebP.
// Returns the relative URL path for serving.
func (p *ImageProcessor) ProcessAvatarImage(data, userID string) (string, error) {
	img, err := decodeBase64Image(data)
	if err != nil {
		return "", err
	}

	avatarsDir := filepath.Join(p.basePath, "avatars")
	if err := os.MkdirAll(avatarsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create avatars directory: %w", err)
	}

	resized := imaging.Fill(img, config.AvatarMaxPixels, config.AvatarMaxPixels, imaging.Center, imaging.Lanczos)

	filename := fmt.Sprintf("%s-%d.webp", userID, time.Now().UnixMilli())
	fullPath := filepath.Join(avatarsDir, filename)

	if err := webp.Save(fullPath, resized, &webp.Options{Quality: float32(config.WebPQuality)}); err != nil {
		return "", fmt.Errorf("failed to save avatar: %w", err)
	}

	return fmt.Sprintf("/media/avatars/%s", filename), nil
}

// ProcessCoverImage decodes a base64 upload, resizes it to the configured cover
// width preserving aspect ratio, and stores it as WebP.
// Returns the relative URL path for serving.
func (p *ImageProcessor) ProcessCoverImage(data, storyID string) (string, error) {
	img, err := decodeBase64Image(data)
	if err != nil {
		return "", err
	}

	coversDir := filepath.Join(p.basePath, "covers")
	if err := os.MkdirAll(coversDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create covers directory: %w", err)
	}

	resized := img
	if img.Bounds().Dx() > config.CoverMaxPixels {
		resized = imaging.Resize(img, config.CoverMaxPixels, 0, imaging.Lanczos)
	}

	filename := fmt.Sprintf("%s-%d.webp", storyID, time.Now().UnixMilli())
	fullPath := filepath.Join(coversDir, filename)

	if err := webp.Save(fullPath, resized, &webp.Options{Quality: float32(config.WebPQuality)}); err != nil {
		return "", fmt.Errorf("failed to save cover: %w", err)
	}

	return fmt.Sprintf("/media/covers/%s", filename), nil
}

// DeleteMediaFile removes a previously stored file by its relative URL path.
// Missing files are not an error.
func (p *ImageProcessor) DeleteMediaFile(relativePath string) error {
	if relativePath == "" {
		return fmt.Errorf("empty media path")
	}

	fullPath := filepath.Join(p.basePath, strings.TrimPrefix(relativePath, "/media/"))
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove media file: %w", err)
	}
	return nil
}

// decodeBase64Image strips the data-URL prefix, decodes the payload, and
// decodes the resulting bytes into an image.
func decodeBase64Image(data string) (image.Image, error) {
	if data == "" {
		return nil, fmt.Errorf("empty base64 data")
	}

	if !binaryImagePattern.MatchString(data) {
		return nil, fmt.Errorf("invalid image base64 format")
	}

	b64Data := binaryImagePattern.ReplaceAllString(data, "")
	decoded, err := base64.StdEncoding.DecodeString(b64Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(decoded))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return img, nil
}
