// Package testutil общие помощники для тестов
package testutil

import (
	"fmt"
	"sync"
)

// Logger собирает сообщения в память
type Logger struct {
	mu       sync.Mutex
	Messages []string
}

func (l *Logger) add(level, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Messages = append(l.Messages, level+" "+fmt.Sprintf(format, v...))
}

func (l *Logger) Debug(format string, v ...interface{}) { l.add("DEBUG", format, v...) }
func (l *Logger) Info(format string, v ...interface{})  { l.add("INFO", format, v...) }
func (l *Logger) Warn(format string, v ...interface{})  { l.add("WARN", format, v...) }
func (l *Logger) Error(format string, v ...interface{}) { l.add("ERROR", format, v...) }

// Metrics считает вызовы счётчиков бизнес-метрик
type Metrics struct {
	mu          sync.Mutex
	Conflicts   int
	Transitions map[string]int
	Hits        int
	Misses      int
}

func (m *Metrics) SlotConflict() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Conflicts++
}

func (m *Metrics) Transition(from, to string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Transitions == nil {
		m.Transitions = make(map[string]int)
	}
	m.Transitions[from+"->"+to]++
}

func (m *Metrics) CacheHit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Hits++
}

func (m *Metrics) CacheMiss() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Misses++
}

// ConflictCount потокобезопасное чтение Conflicts
func (m *Metrics) ConflictCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Conflicts
}
