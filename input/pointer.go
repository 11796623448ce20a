package input

// CursorMode is the pointer capture state.
type CursorMode int

const (
	CursorFree CursorMode = iota
	CursorLocked
)

func (m CursorMode) String() string {
	if m == CursorLocked {
		return "locked"
	}
	return "free"
}

// Pointer tracks whether the look device is captured. OnChange, if set, is
// called after every mode change so the host can capture or release the OS
// cursor.
type Pointer struct {
	mode     CursorMode
	OnChange func(CursorMode)
}

func (p *Pointer) Locked() bool {
	return p != nil && p.mode == CursorLocked
}

func (p *Pointer) Mode() CursorMode {
	if p == nil {
		return CursorFree
	}
	return p.mode
}

func (p *Pointer) Lock() {
	p.set(CursorLocked)
}

func (p *Pointer) Unlock() {
	p.set(CursorFree)
}

func (p *Pointer) set(mode CursorMode) {
	if p == nil || p.mode == mode {
		return
	}
	p.mode = mode
	if p.OnChange != nil {
		p.OnChange(mode)
	}
}
