package driven

import "context"

// OCREngine reads text out of an image.
type OCREngine interface {
	// ExtractText returns the text found in the encoded image (PNG or JPEG).
	// An image without text yields an empty string and no error.
	ExtractText(ctx context.Context, image []byte) (string, error)

	// Name identifies the engine for logging.
	Name() string
}
