package display

import "humitemp/errcode"

// CharDevice is a character LCD controller. Rows and columns are 0-based.
type CharDevice interface {
	Clear() error
	SetCursor(col, row uint8) error
	Write(p []byte) (int, error)
}

// CharLCD draws screens on a CharDevice, rewriting only rows that changed.
type CharLCD struct {
	dev   CharDevice
	shown Screen
	valid bool
}

func NewCharLCD(dev CharDevice) *CharLCD { return &CharLCD{dev: dev} }

func (l *CharLCD) Init() error {
	l.valid = false
	if err := l.dev.Clear(); err != nil {
		return errcode.Wrap(errcode.BusFault, "display.init", err)
	}
	l.shown = blank()
	l.valid = true
	return nil
}

func (l *CharLCD) ShowStatus(detected, lowBattery bool) error {
	return l.show(RenderStatus(detected, lowBattery))
}

func (l *CharLCD) Draw(f Frame) error { return l.show(Render(f)) }

func (l *CharLCD) show(s Screen) error {
	for r := range s {
		if l.valid && s[r] == l.shown[r] {
			continue
		}
		if err := l.dev.SetCursor(0, uint8(r)); err != nil {
			l.valid = false
			return errcode.Wrap(errcode.BusFault, "display.draw", err)
		}
		if _, err := l.dev.Write(s[r][:]); err != nil {
			l.valid = false
			return errcode.Wrap(errcode.BusFault, "display.draw", err)
		}
		l.shown[r] = s[r]
	}
	l.valid = true
	return nil
}
