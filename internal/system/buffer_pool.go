package system

import (
	"image"
	"sync"
)

// FramePool переиспользует кадры *image.RGBA фиксированного размера
// между воркерами одного рендера. Композиция не меняет размер, поэтому
// одного sync.Pool достаточно.
type FramePool struct {
	rect image.Rectangle
	pool sync.Pool

	mu  sync.Mutex
	out int
}

func NewFramePool(width, height int) *FramePool {
	p := &FramePool{rect: image.Rect(0, 0, width, height)}
	p.pool.New = func() interface{} {
		return image.NewRGBA(p.rect)
	}
	return p
}

// Get возвращает кадр из пула. Содержимое не очищается: рендерер
// перезаписывает фон целиком.
func (p *FramePool) Get() *image.RGBA {
	p.mu.Lock()
	p.out++
	p.mu.Unlock()
	return p.pool.Get().(*image.RGBA)
}

// Put принимает только кадры своего размера.
func (p *FramePool) Put(img *image.RGBA) {
	if img == nil || img.Rect != p.rect {
		return
	}
	p.mu.Lock()
	p.out--
	p.mu.Unlock()
	p.pool.Put(img)
}

// Outstanding is the number of frames taken and not yet returned.
func (p *FramePool) Outstanding() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.out
}

// FrameBytes is the size of one RGBA frame.
func FrameBytes(width, height int) int64 {
	return int64(width) * int64(height) * 4
}
