package web

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MediaOptions - где хранить и откуда раздавать загруженные изображения.
type MediaOptions struct {
	Dir            string
	URL            string
	MaxUploadBytes int64
}

var errNotImage = errors.New("upload a valid image")

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type mediaStore struct {
	dir     string
	url     string
	maxSize int64
}

func newMediaStore(opts MediaOptions) mediaStore {
	m := mediaStore{dir: opts.Dir, url: opts.URL, maxSize: opts.MaxUploadBytes}
	if m.dir == "" {
		m.dir = "./media"
	}
	if m.url == "" {
		m.url = "/media/"
	}
	if m.maxSize <= 0 {
		m.maxSize = 5 << 20
	}
	return m
}

// save сохраняет загруженный файл как images/<uuid>.<ext> и возвращает
// путь относительно каталога медиа. Тип определяется по содержимому.
func (m mediaStore) save(file multipart.File) (string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		if errors.Is(err, io.EOF) {
			return "", errNotImage
		}
		return "", fmt.Errorf("read upload: %w", err)
	}
	ext, ok := imageExtensions[http.DetectContentType(head[:n])]
	if !ok {
		return "", errNotImage
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	name := path.Join("images", uuid.NewString()+ext)
	full := filepath.Join(m.dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	out, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		os.Remove(full)
		return "", fmt.Errorf("write media file: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(full)
		return "", fmt.Errorf("close media file: %w", err)
	}
	return name, nil
}

// remove удаляет файл. Отсутствующий файл не ошибка.
func (m mediaStore) remove(name string) error {
	if name == "" || strings.Contains(name, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(m.dir, filepath.FromSlash(name)))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// fileServer раздает файлы без листинга каталогов.
func (m mediaStore) fileServer() http.Handler {
	files := http.FileServer(http.Dir(m.dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}
