//go:build !tesseract

package recognizer

func newTesseract(Config) (Recognizer, error) { return nil, ErrNoBackend }
