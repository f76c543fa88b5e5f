package display

import (
	"io"
	"sync"
)

// Console prints each screen as a bordered block on w.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsole(w io.Writer) *Console { return &Console{w: w} }

func (c *Console) Init() error { return nil }

func (c *Console) ShowStatus(detected, lowBattery bool) error {
	return c.print(RenderStatus(detected, lowBattery))
}

func (c *Console) Draw(f Frame) error { return c.print(Render(f)) }

func (c *Console) print(s Screen) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var buf [Rows*(Cols+3) + 2*(Cols+3)]byte
	b := buf[:0]
	b = border(b)
	for r := range s {
		b = append(b, '|')
		b = append(b, s[r][:]...)
		b = append(b, '|', '\n')
	}
	b = border(b)
	_, err := c.w.Write(b)
	return err
}

func border(b []byte) []byte {
	b = append(b, '+')
	for i := 0; i < Cols; i++ {
		b = append(b, '-')
	}
	return append(b, '+', '\n')
}

// Nop discards everything.
type Nop struct{}

func (Nop) Init() error                 { return nil }
func (Nop) ShowStatus(bool, bool) error { return nil }
func (Nop) Draw(Frame) error            { return nil }
