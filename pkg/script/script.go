// Package script loads sketch source files.
package script

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/mitchellh/go-homedir"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Script はスクリプトファイルを表す
type Script struct {
	Path    string // 展開済みの絶対パス
	Name    string // ファイル名
	Content string // UTF-8に変換された内容
	Size    int64  // ファイルサイズ
}

// Dir returns the directory holding the script. Relative image and font
// paths in the sketch resolve against it.
func (s *Script) Dir() string {
	return filepath.Dir(s.Path)
}

// Title returns the file name without its extension.
func (s *Script) Title() string {
	return strings.TrimSuffix(s.Name, filepath.Ext(s.Name))
}

// Load は単一のスクリプトファイルを読み込む
func Load(path string) (*Script, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand %s: %w", path, err)
	}
	if abs, err := filepath.Abs(expanded); err == nil {
		expanded = abs
	}

	// ファイル情報を取得
	info, err := os.Stat(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to stat script: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", expanded)
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}

	content, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", expanded, err)
	}

	return &Script{
		Path:    expanded,
		Name:    filepath.Base(expanded),
		Content: content,
		Size:    info.Size(),
	}, nil
}

var boms = [][]byte{
	{0xEF, 0xBB, 0xBF}, // UTF-8
	{0xFE, 0xFF},       // UTF-16BE
	{0xFF, 0xFE},       // UTF-16LE
}

// Decode converts raw script bytes to UTF-8 text.
// BOM付きUTF-8/UTF-16はBOMに従い、不正なUTF-8はShift-JISとして読む
func Decode(data []byte) (string, error) {
	for _, bom := range boms {
		if bytes.HasPrefix(data, bom) {
			decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
			out, _, err := transform.Bytes(decoder, data)
			if err != nil {
				return "", fmt.Errorf("failed to decode BOM-prefixed text: %w", err)
			}
			return string(out), nil
		}
	}

	if utf8.Valid(data) {
		return string(data), nil
	}

	return convertShiftJISToUTF8(data)
}

// convertShiftJISToUTF8 Shift-JISからUTF-8に変換
func convertShiftJISToUTF8(data []byte) (string, error) {
	out, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("failed to decode Shift-JIS: %w", err)
	}
	return string(out), nil
}
