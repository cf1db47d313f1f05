package cloudinary

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"
)

// Config contains credentials required to talk to Cloudinary. Folder is the
// destination for material binaries, e.g. "manara/materials".
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Storage holds reference-material binaries in Cloudinary. It satisfies the
// material service's FileStorage interface.
type Storage struct {
	client *cloudinary.Cloudinary
	folder string
	logger zerolog.Logger
}

// New constructs a Cloudinary-backed material store.
func New(cfg Config, logger zerolog.Logger) (*Storage, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &Storage{
		client: cld,
		folder: cfg.Folder,
		logger: logger.With().Str("component", "material_storage").Logger(),
	}, nil
}

// Upload stores one material binary and returns its secure URL. The name is
// the student-facing file name; the derived public ID keeps it readable while
// a timestamp suffix keeps re-uploads from colliding.
func (s *Storage) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	params := uploader.UploadParams{
		Folder:       strings.Trim(s.folder, "/"),
		PublicID:     materialPublicID(name),
		ResourceType: "auto",
	}

	result, err := s.client.Upload.Upload(ctx, reader, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload material: %w", err)
	}

	s.logger.Info().Str("public_id", result.PublicID).Str("file_name", name).Msg("material stored")

	return result.SecureURL, nil
}

// materialPublicID strips the extension and replaces separator runs with a
// single hyphen. Arabic file names are common here, so any letter or digit is
// kept, not just ASCII.
func materialPublicID(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	var b strings.Builder
	lastHyphen := false
	for _, r := range base {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteRune('-')
			lastHyphen = true
		}
	}

	cleaned := strings.Trim(b.String(), "-")
	if cleaned == "" {
		cleaned = "material"
	}

	return fmt.Sprintf("%s-%d", cleaned, time.Now().Unix())
}
