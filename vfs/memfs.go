package vfs

import (
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// memFS is the default FileSystem implementation, backed by an
// afero.Fs in-memory map. This follows the teacher's own VFS = afero.Fs
// alias (core/vos/10_fs.go) and its afero.NewMemMapFs() construction
// (core/vos/fs.go).
type memFS struct {
	fs afero.Fs
}

// NewMemFS builds an in-memory FileSystem seeded with files, a map from
// absolute path to file content. Parent directories are created
// implicitly, mirroring ExtractTarToVFS's MkdirAll calls.
func NewMemFS(files map[string]string) FileSystem {
	base := afero.NewMemMapFs()
	m := &memFS{fs: base}
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		abs := m.ResolvePath("/", p)
		dir := path.Dir(abs)
		if dir != "" && dir != "." {
			_ = base.MkdirAll(dir, 0755)
		}
		_ = afero.WriteFile(base, abs, []byte(files[p]), 0644)
	}
	return m
}

// NewAferoFS wraps an existing afero.Fs as a FileSystem. Useful when an
// embedder already manages an afero-backed tree (OS-backed, tarfs, etc).
func NewAferoFS(fs afero.Fs) FileSystem {
	return &memFS{fs: fs}
}

func (m *memFS) ResolvePath(cwd, p string) string {
	if p == "" {
		p = "."
	}
	if !strings.HasPrefix(p, "/") {
		if cwd == "" {
			cwd = "/"
		}
		p = path.Join(cwd, p)
	}
	clean := path.Clean(p)
	if clean == "" {
		clean = "/"
	}
	return clean
}

func (m *memFS) Stat(absPath string) (FileInfo, error) {
	info, err := m.fs.Stat(absPath)
	if err != nil {
		return FileInfo{}, err
	}
	return toFileInfo(info), nil
}

func toFileInfo(info fs.FileInfo) FileInfo {
	return FileInfo{
		Name:    info.Name(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
		IsDir:   info.IsDir(),
		Mode:    uint32(info.Mode()),
	}
}

func (m *memFS) Read(absPath string) (string, error) {
	data, err := afero.ReadFile(m.fs, absPath)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (m *memFS) Write(absPath string, data string) error {
	dir := path.Dir(absPath)
	if dir != "" && dir != "." {
		if err := m.fs.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return afero.WriteFile(m.fs, absPath, []byte(data), 0644)
}

func (m *memFS) Append(absPath string, data string) error {
	dir := path.Dir(absPath)
	if dir != "" && dir != "." {
		if err := m.fs.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	f, err := m.fs.OpenFile(absPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(data)
	return err
}

func (m *memFS) List(absPath string) ([]string, error) {
	infos, err := afero.ReadDir(m.fs, absPath)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name())
	}
	return names, nil
}

func (m *memFS) Mkdir(absPath string) error {
	return m.fs.MkdirAll(absPath, 0755)
}

func (m *memFS) Remove(absPath string) error {
	info, err := m.fs.Stat(absPath)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return m.fs.RemoveAll(absPath)
	}
	return m.fs.Remove(absPath)
}
