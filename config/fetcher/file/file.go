package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// ErrPathIsDirectory is returned when the path provided to the Fetcher points to a directory instead of a file.
var ErrPathIsDirectory = errors.New("path is a directory, not a file")

// EnvFileName is the name of the optional dotenv file read next to a configuration file.
const EnvFileName = ".env"

// Fetcher implements config.DataFetcher and config.BaseDirProvider for a configuration file.
// The file is read once at construction time; its directory is the base for relative paths.
type Fetcher struct {
	filepath string
	baseDir  string
	data     []byte
}

// NewFetcher returns a constructor function that creates a new file-based Fetcher
// with the specified filepath. The path is made absolute and the file is read and cached.
// This pattern is Fx-friendly, allowing the DI container to control when instantiation happens.
// Returns an error if the file cannot be read or if the path points to a directory.
func NewFetcher(fpath string) func() (*Fetcher, error) {
	return func() (*Fetcher, error) {
		absPath, err := filepath.Abs(fpath)
		if err != nil {
			return nil, fmt.Errorf("resolving path %q: %w", fpath, err)
		}

		stat, err := os.Stat(absPath)
		if err != nil {
			return nil, fmt.Errorf("stat file %q: %w", absPath, err)
		}

		if stat.IsDir() {
			return nil, fmt.Errorf("path %q: %w", absPath, ErrPathIsDirectory)
		}

		data, err := os.ReadFile(absPath) // #nosec G304 -- path is cleaned and validated
		if err != nil {
			return nil, fmt.Errorf("reading file %q: %w", absPath, err)
		}

		return &Fetcher{
			filepath: absPath,
			baseDir:  filepath.Dir(absPath),
			data:     data,
		}, nil
	}
}

// Fetch returns a copy of the cached configuration data that was read at construction time.
func (f *Fetcher) Fetch() ([]byte, error) {
	result := make([]byte, len(f.data))
	copy(result, f.data)

	return result, nil
}

// Path returns the absolute path of the configuration file.
func (f *Fetcher) Path() string {
	return f.filepath
}

// BaseDir returns the absolute directory containing the configuration file.
func (f *Fetcher) BaseDir() string {
	return f.baseDir
}

// Env reads the dotenv file next to the configuration file.
// A missing file yields an empty map; the process environment is left untouched.
func (f *Fetcher) Env() (map[string]string, error) {
	envPath := filepath.Join(f.baseDir, EnvFileName)

	values, err := godotenv.Read(envPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}

		return nil, fmt.Errorf("reading env file %q: %w", envPath, err)
	}

	return values, nil
}
