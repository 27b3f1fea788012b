package infra

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
)

// ImageCache downloads and caches product images for the gallery.
type ImageCache struct {
	basePath string
	client   *http.Client
}

// thumbSize is the edge length of gallery thumbnails.
const thumbSize = 320

// NewImageCache creates an image cache rooted at basePath.
func NewImageCache(basePath string) (*ImageCache, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}

	// Optimize HTTP transport to prevent connection leaks
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = 100
	transport.MaxConnsPerHost = 10
	transport.IdleConnTimeout = 30 * time.Second

	return &ImageCache{
		basePath: basePath,
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: transport,
		},
	}, nil
}

// Fetch downloads the product image if it is not cached yet and returns the
// local thumbnail path. Images are resized to a fixed square for consistent
// gallery display.
func (c *ImageCache) Fetch(productID uint, imageURL string) (string, error) {
	if imageURL == "" {
		return "", fmt.Errorf("no image url for product %d", productID)
	}

	fileName := fmt.Sprintf("product_%d.jpg", productID)
	filePath := filepath.Join(c.basePath, fileName)

	if _, err := os.Stat(filePath); err == nil {
		return filePath, nil // Cache hit
	}

	resp, err := c.client.Get(imageURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bad status: %s", resp.Status)
	}

	srcImg, err := imaging.Decode(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	thumb := imaging.Fill(srcImg, thumbSize, thumbSize, imaging.Center, imaging.Lanczos)
	if err := imaging.Save(thumb, filePath); err != nil {
		return "", fmt.Errorf("failed to save thumbnail: %w", err)
	}

	return filePath, nil
}

// Path returns the cached thumbnail location for a product without
// downloading anything.
func (c *ImageCache) Path(productID uint) string {
	return filepath.Join(c.basePath, fmt.Sprintf("product_%d.jpg", productID))
}

// Has reports whether a cached thumbnail exists for the product.
func (c *ImageCache) Has(productID uint) bool {
	_, err := os.Stat(c.Path(productID))
	return err == nil
}
