package font

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"

	"github.com/flopp/go-findfont"
)

// assetExtensions are probed, in order, when a requested asset name
// does not resolve directly.
var assetExtensions = []string{".ttf", ".otf", ".woff", ".woff2", ".ttc"}

// AssetSource resolves path-like font names to byte streams. Lookup
// probes the name as given, then with each known font extension
// appended, against the configured filesystem. When system-font lookup
// is enabled, names absent from the filesystem are additionally
// resolved through the platform font directories.
type AssetSource struct {
	fsys        fs.FS
	systemFonts bool
}

// AssetOption configures an AssetSource.
type AssetOption func(*AssetSource)

// WithFS sets the filesystem assets are resolved against.
// The default is the process working directory.
func WithFS(fsys fs.FS) AssetOption {
	return func(s *AssetSource) {
		s.fsys = fsys
	}
}

// WithSystemFonts enables fallback to the platform font directories
// for names not present in the configured filesystem.
func WithSystemFonts(enabled bool) AssetOption {
	return func(s *AssetSource) {
		s.systemFonts = enabled
	}
}

// NewAssetSource creates an AssetSource.
func NewAssetSource(opts ...AssetOption) *AssetSource {
	s := &AssetSource{
		fsys: os.DirFS("."),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open resolves name to a byte stream. It returns ErrAssetNotFound
// uniformly when no candidate resolves.
func (s *AssetSource) Open(name string) (ByteStream, error) {
	for _, candidate := range probeNames(name) {
		data, err := fs.ReadFile(s.fsys, candidate)
		if err != nil {
			continue
		}
		if len(data) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrEmptyFontData, candidate)
		}
		return newMemoryStream(data), nil
	}

	if s.systemFonts {
		for _, candidate := range probeNames(name) {
			path, err := findfont.Find(candidate)
			if err != nil {
				continue
			}
			// #nosec G304 -- path comes from the system font index
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			if len(data) == 0 {
				continue
			}
			return newMemoryStream(data), nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrAssetNotFound, name)
}

// probeNames returns the candidate names for one lookup: the name as
// given, then the name with each known extension appended.
func probeNames(name string) []string {
	candidates := make([]string, 0, len(assetExtensions)+1)
	candidates = append(candidates, name)
	for _, ext := range assetExtensions {
		candidates = append(candidates, name+ext)
	}
	return candidates
}

// memoryStream adapts an in-memory buffer to ByteStream.
type memoryStream struct {
	r    *bytes.Reader
	size int64
}

func newMemoryStream(data []byte) *memoryStream {
	return &memoryStream{
		r:    bytes.NewReader(data),
		size: int64(len(data)),
	}
}

func (m *memoryStream) ReadAt(p []byte, off int64) (int, error) {
	return m.r.ReadAt(p, off)
}

func (m *memoryStream) Size() int64 {
	return m.size
}

func (m *memoryStream) Close() error {
	return nil
}
