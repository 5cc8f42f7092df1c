package graphics

import (
	"sync"
)

// Queue はフレーム中に生成されたグラフィックオブジェクトを保持するスレッドセーフなキュー
type Queue struct {
	grobs []Grob
	mu    sync.Mutex
}

// NewQueue は新しいQueueを作成する
func NewQueue() *Queue {
	return &Queue{
		grobs: make([]Grob, 0),
	}
}

// Push はオブジェクトをキューに追加する（スレッドセーフ）
func (q *Queue) Push(g Grob) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.grobs = append(q.grobs, g)
}

// PopAll はキュー内のすべてのオブジェクトを追加順に取り出して返す
// キューは空になる
func (q *Queue) PopAll() []Grob {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.grobs) == 0 {
		return nil
	}

	result := make([]Grob, len(q.grobs))
	copy(result, q.grobs)
	clear(q.grobs) // 参照を残さない
	q.grobs = q.grobs[:0]

	return result
}

// Snapshot はキューを空にせずに現在の内容のコピーを返す
func (q *Queue) Snapshot() []Grob {
	q.mu.Lock()
	defer q.mu.Unlock()
	result := make([]Grob, len(q.grobs))
	copy(result, q.grobs)
	return result
}

// Len はキュー内のオブジェクト数を返す
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.grobs)
}

// Clear はキューを空にする
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	clear(q.grobs)
	q.grobs = q.grobs[:0]
}
