package climages

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	mrand "math/rand"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"littlefolio/internal/models/clerrors"

	"golang.org/x/image/draw"
)

// MaxUploadSize limite la taille d'une capture avant traitement
const MaxUploadSize = 10 * 1024 * 1024

// MaxWidth est la largeur maximale après redimensionnement
const MaxWidth = 1600

// ProcessUpload valide, redimensionne et enregistre une image envoyée.
// Retourne le nom du fichier créé dans dir.
func ProcessUpload(file multipart.File, header *multipart.FileHeader, dir string) (string, error) {
	if header.Size > MaxUploadSize {
		return "", clerrors.Validation("image trop grande (max 10MB)")
	}

	// Vérifier le type MIME réel
	buffer := make([]byte, 512)
	if _, err := file.Read(buffer); err != nil && err != io.EOF {
		return "", fmt.Errorf("error reading upload: %w", err)
	}
	if !strings.HasPrefix(http.DetectContentType(buffer), "image/") {
		return "", clerrors.Validation("le fichier doit être une image")
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("error rewinding upload: %w", err)
	}

	img, format, err := image.Decode(file)
	if err != nil {
		return "", clerrors.Validation("image illisible")
	}

	var ext string
	switch format {
	case "jpeg", "jpg":
		ext = ".jpg"
	case "png":
		ext = ".png"
	case "gif":
		ext = ".gif"
	default:
		return "", clerrors.Validation("seules les images jpg, png et gif sont supportées")
	}

	processed := resizeImage(img, MaxWidth)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating upload dir: %w", err)
	}

	filename := fmt.Sprintf("%d_%s%s", time.Now().Unix(), randomString(8), ext)
	out, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return "", fmt.Errorf("error creating file: %w", err)
	}
	defer out.Close()

	switch format {
	case "png":
		// Garder le PNG pour préserver la transparence
		err = png.Encode(out, processed)
	case "gif":
		err = gif.Encode(out, processed, nil)
	default:
		err = jpeg.Encode(out, processed, &jpeg.Options{Quality: 85})
	}
	if err != nil {
		return "", fmt.Errorf("error encoding image: %w", err)
	}

	return filename, nil
}

// resizeImage réduit l'image à maxWidth en conservant le ratio
func resizeImage(img image.Image, maxWidth int) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width <= maxWidth {
		return img
	}

	ratio := float64(maxWidth) / float64(width)
	newHeight := int(float64(height) * ratio)

	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newHeight))

	// Interpolation de haute qualité
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	return dst
}

func randomString(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[mrand.Intn(len(charset))]
	}
	return string(b)
}
