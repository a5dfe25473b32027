package services

import (
	"os"
	"path/filepath"

	"github.com/mathwaksu-byte/MathwaV2/services/storage"
)

func readLocalObject(p *storage.LocalProvider, obj storage.Object) ([]byte, error) {
	return os.ReadFile(filepath.Join(p.Root(), obj.Bucket, filepath.FromSlash(obj.Path)))
}
