package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Resolver はスケッチから参照されるファイル（画像、フォント）のパスを解決する
type Resolver struct {
	baseDir string
}

// NewResolver はスケッチのディレクトリを基準にするResolverを作成する
func NewResolver(baseDir string) *Resolver {
	return &Resolver{baseDir: baseDir}
}

// BaseDir はベースディレクトリを返す
func (r *Resolver) BaseDir() string {
	return r.baseDir
}

// Resolve は name を実在するファイルのパスに変換する
// "~" を展開し、相対パスはベースディレクトリ基準で探す（大文字小文字を無視）
func (r *Resolver) Resolve(name string) (string, error) {
	path, err := Expand(name)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(path) && r.baseDir != "" {
		path = filepath.Join(r.baseDir, path)
	}

	// まず直接アクセスを試みる
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	// 大文字小文字を無視して検索
	return FindFileCaseInsensitive(filepath.Dir(path), filepath.Base(path))
}

// WriteFile は一時ファイルに書き込んでからリネームする
// 途中で失敗しても既存のファイルは壊れない
func WriteFile(path string, write func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+strings.TrimPrefix(filepath.Base(path), ".")+".*")
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = write(tmp); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
