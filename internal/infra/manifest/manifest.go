// Package manifest reads and bumps the version of a project manifest.
// Supported files, in detection order: package.json, Cargo.toml,
// pubspec.yaml and Chart.yaml.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/runoshun/tpaws/internal/domain"
)

// Manifest file names.
const (
	PackageJSON = "package.json"
	CargoTOML   = "Cargo.toml"
	PubspecYAML = "pubspec.yaml"
	ChartYAML   = "Chart.yaml"
)

// format reads a manifest version and locates its bytes for rewriting.
type format struct {
	read   func(data []byte) (string, error)
	locate func(data []byte) (start, end int, ok bool)
	name   string
}

var yamlVersion = regexp.MustCompile(`(?m)^(version:\s*["']?)([^"'\s#]*)(["']?)`)

var formats = []format{
	{name: PackageJSON, read: readJSON, locate: locateJSON},
	{name: CargoTOML, read: readCargo, locate: locateCargo},
	{name: PubspecYAML, read: readYAML, locate: locateRegexp(yamlVersion)},
	{name: ChartYAML, read: readYAML, locate: locateRegexp(yamlVersion)},
}

// Ensure Store implements domain.ManifestStore.
var _ domain.ManifestStore = (*Store)(nil)

// Store finds the manifest in a project root.
type Store struct {
	root string
}

// NewStore creates a Store for a project root.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Detect returns the first manifest present in the root.
func (s *Store) Detect() (string, error) {
	for _, f := range formats {
		if _, err := os.Stat(filepath.Join(s.root, f.name)); err == nil {
			return f.name, nil
		}
	}
	return "", domain.ErrManifestNotFound
}

// ReadVersion returns the manifest version and the file name it came from.
func (s *Store) ReadVersion() (domain.Version, string, error) {
	f, data, err := s.load()
	if err != nil {
		return domain.Version{}, "", err
	}
	raw, err := f.read(data)
	if err != nil {
		return domain.Version{}, f.name, fmt.Errorf("read %s: %w", f.name, err)
	}
	v, err := domain.ParseVersion(stripBuild(raw))
	if err != nil {
		return domain.Version{}, f.name, fmt.Errorf("%s: %w", f.name, err)
	}
	return v, f.name, nil
}

// WriteVersion replaces the version in place, leaving the rest of the file
// untouched. A pubspec build suffix (+N) is kept.
func (s *Store) WriteVersion(v domain.Version) error {
	f, data, err := s.load()
	if err != nil {
		return err
	}
	current, err := f.read(data)
	if err != nil {
		return fmt.Errorf("read %s: %w", f.name, err)
	}
	start, end, ok := f.locate(data)
	if !ok {
		return fmt.Errorf("%s: no version field", f.name)
	}
	old := string(data[start:end])
	if old != current {
		return fmt.Errorf("%s: version field %q does not match version %q", f.name, old, current)
	}
	next := v.String()
	if i := strings.IndexByte(old, '+'); i >= 0 {
		next += old[i:]
	}

	var b strings.Builder
	b.Write(data[:start])
	b.WriteString(next)
	b.Write(data[end:])

	path := filepath.Join(s.root, f.name)
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(b.String()), info.Mode().Perm())
}

func (s *Store) load() (format, []byte, error) {
	for _, f := range formats {
		data, err := os.ReadFile(filepath.Join(s.root, f.name))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return f, nil, err
		}
		return f, data, nil
	}
	return format{}, nil, domain.ErrManifestNotFound
}

func stripBuild(v string) string {
	if i := strings.IndexByte(v, '+'); i >= 0 {
		return v[:i]
	}
	return v
}

func readJSON(data []byte) (string, error) {
	var doc struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", err
	}
	if doc.Version == "" {
		return "", errors.New("missing version")
	}
	return doc.Version, nil
}

// locateJSON finds the value of the top-level "version" key.
func locateJSON(data []byte) (int, int, bool) {
	dec := json.NewDecoder(bytes.NewReader(data))
	depth := 0
	key := true
	for {
		tok, err := dec.Token()
		if err != nil {
			return 0, 0, false
		}
		switch t := tok.(type) {
		case json.Delim:
			switch t {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
			if depth == 1 {
				key = true
			}
			continue
		case string:
			if depth == 1 && key && t == "version" {
				return jsonStringAfter(data, int(dec.InputOffset()))
			}
		}
		if depth == 1 {
			key = !key
		}
	}
}

// jsonStringAfter returns the bounds of the string value following the
// key ending at off.
func jsonStringAfter(data []byte, off int) (int, int, bool) {
	i := off
	for i < len(data) && (data[i] == ':' || isSpace(data[i])) {
		i++
	}
	if i >= len(data) || data[i] != '"' {
		return 0, 0, false
	}
	start := i + 1
	end := bytes.IndexByte(data[start:], '"')
	if end < 0 {
		return 0, 0, false
	}
	return start, start + end, true
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

var (
	tomlTable   = regexp.MustCompile(`(?m)^\s*\[([^\]]+)\]`)
	tomlVersion = regexp.MustCompile(`(?m)^(version\s*=\s*")([^"]*)(")`)
)

// locateCargo finds the version key of the [package] table.
func locateCargo(data []byte) (int, int, bool) {
	tables := tomlTable.FindAllSubmatchIndex(data, -1)
	for i, t := range tables {
		if strings.TrimSpace(string(data[t[2]:t[3]])) != "package" {
			continue
		}
		end := len(data)
		if i+1 < len(tables) {
			end = tables[i+1][0]
		}
		start, stop, ok := locateRegexp(tomlVersion)(data[t[1]:end])
		return t[1] + start, t[1] + stop, ok
	}
	return 0, 0, false
}

func locateRegexp(re *regexp.Regexp) func([]byte) (int, int, bool) {
	return func(data []byte) (int, int, bool) {
		loc := re.FindSubmatchIndex(data)
		if loc == nil {
			return 0, 0, false
		}
		return loc[4], loc[5], true
	}
}

func readCargo(data []byte) (string, error) {
	var doc struct {
		Package struct {
			Version string `toml:"version"`
		} `toml:"package"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return "", err
	}
	if doc.Package.Version == "" {
		return "", errors.New("missing [package] version")
	}
	return doc.Package.Version, nil
}

func readYAML(data []byte) (string, error) {
	var doc struct {
		Version string `yaml:"version"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return "", err
	}
	if doc.Version == "" {
		return "", errors.New("missing version")
	}
	return doc.Version, nil
}
