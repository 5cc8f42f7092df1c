package graphics

import "errors"

var (
	// ErrTransformUnderflow は変換スタックが空のときにpopした場合のエラー
	ErrTransformUnderflow = errors.New("pop without matching push")

	// ErrNotAnImage は画像ではないファイルを読み込もうとした場合のエラー
	ErrNotAnImage = errors.New("not an image file")

	// ErrUnknownFont はフォントが見つからない場合のエラー
	ErrUnknownFont = errors.New("unknown font")

	// ErrInvalidColor は色の引数が解釈できない場合のエラー
	ErrInvalidColor = errors.New("invalid color")

	// ErrNoCurrentPoint はmoveto前にlinetoなどを呼んだ場合のエラー
	ErrNoCurrentPoint = errors.New("path has no current point")
)
