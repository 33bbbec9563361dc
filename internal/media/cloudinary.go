package media

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/solarworks/solarworks/internal/config"
)

// CloudinaryHost uploads images to a Cloudinary folder.
type CloudinaryHost struct {
	cld       *cloudinary.Cloudinary
	cloudName string
	folder    string
}

func NewCloudinaryHost(cfg config.CloudinaryConfig) (*CloudinaryHost, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}

	cld.Config.URL.Secure = true

	return &CloudinaryHost{cld: cld, cloudName: cfg.CloudName, folder: cfg.Folder}, nil
}

func (h *CloudinaryHost) Name() string {
	return "cloudinary"
}

func (h *CloudinaryHost) Upload(ctx context.Context, dataURI string) (string, error) {
	resp, err := h.cld.Upload.Upload(ctx, dataURI, uploader.UploadParams{Folder: h.folder})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}

	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}

	if resp.SecureURL == "" {
		return "", fmt.Errorf("cloudinary upload: empty secure_url")
	}

	return resp.SecureURL, nil
}

// Destroy deletes the asset behind a URL this account issued. URLs from
// anywhere else are left alone.
func (h *CloudinaryHost) Destroy(ctx context.Context, imageURL string) error {
	publicID, ok := PublicIDFromURL(imageURL, h.cloudName)
	if !ok {
		return nil
	}

	resp, err := h.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}

	if resp.Error.Message != "" {
		return fmt.Errorf("cloudinary destroy: %s", resp.Error.Message)
	}

	return nil
}

var versionSegment = regexp.MustCompile(`^v\d+$`)

// PublicIDFromURL extracts the public ID from a Cloudinary delivery URL such as
// https://res.cloudinary.com/<cloud>/image/upload/v123/solarworks/abc.jpg,
// which yields "solarworks/abc".
func PublicIDFromURL(imageURL, cloudName string) (string, bool) {
	u, err := url.Parse(imageURL)
	if err != nil || u.Host != "res.cloudinary.com" {
		return "", false
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")

	if len(segments) < 4 || (cloudName != "" && segments[0] != cloudName) {
		return "", false
	}

	rest := segments[1:]
	upload := -1

	for i, segment := range rest {
		if segment == "upload" {
			upload = i
			break
		}
	}

	if upload < 0 || upload+1 >= len(rest) {
		return "", false
	}

	rest = rest[upload+1:]

	if len(rest) > 1 && versionSegment.MatchString(rest[0]) {
		rest = rest[1:]
	}

	publicID := strings.Join(rest, "/")
	publicID = strings.TrimSuffix(publicID, path.Ext(publicID))

	if publicID == "" {
		return "", false
	}

	return publicID, true
}
