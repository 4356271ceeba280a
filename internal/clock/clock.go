// Package clock абстрагирует текущее время, чтобы правила видимости
// (отложенные публикации) можно было проверять детерминированно.
package clock

import (
	"sync"
	"time"
)

// Clock возвращает текущее время. Продакшен использует Real(), тесты - Fake.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

// Real возвращает системные часы в UTC.
func Real() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now().UTC() }

// Fake - управляемые часы для тестов.
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

// NewFake создает часы, остановленные на t.
func NewFake(t time.Time) *Fake {
	return &Fake{now: t.UTC()}
}

// Now возвращает время, на котором стоят часы.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Set переставляет часы.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	f.now = t.UTC()
	f.mu.Unlock()
}

// Advance сдвигает часы вперед на d.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}
