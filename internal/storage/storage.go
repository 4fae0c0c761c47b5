// Package storage persists uploaded images and resolves their public URLs.
package storage

import (
	"context"
	"fmt"
	"path"

	"github.com/google/uuid"
)

const (
	RecipesDir = "recipes/images"
	AvatarsDir = "users"
)

// Storage saves images under a directory and returns an opaque reference.
type Storage interface {
	Save(ctx context.Context, dir string, img *Image) (ref string, err error)
	Delete(ctx context.Context, ref string) error
	URL(ref string) string
}

// objectName returns a fresh, collision-free object path inside dir.
func objectName(dir string, img *Image) string {
	return path.Join(dir, fmt.Sprintf("%s%s", uuid.NewString(), img.Extension))
}
