package bot

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownGrammar は grammar 名がテーブルにない場合のエラー
	ErrUnknownGrammar = errors.New("unknown grammar")

	// ErrNoSnapshotTarget はファイル名も出力先もスクリプトのパスもない snapshot のエラー
	ErrNoSnapshotTarget = errors.New("snapshot needs a filename, a surface or a script path")
)

// ArgumentError is returned by a builtin called with bad arguments.
type ArgumentError struct {
	Func    string
	Message string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: %s", e.Func, e.Message)
}

func argErrorf(fn, format string, args ...any) *ArgumentError {
	return &ArgumentError{Func: fn, Message: fmt.Sprintf(format, args...)}
}
