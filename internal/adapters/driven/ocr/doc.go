// Package ocr groups the driven.OCREngine adapters.
//
// tesseract shells out to a locally installed tesseract binary. ollama
// and gemini send the image to a vision-capable model and ask it to
// transcribe the visible text.
package ocr
