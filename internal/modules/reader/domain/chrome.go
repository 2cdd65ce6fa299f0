package domain

type ChromeState int

const (
	ChromeVisible ChromeState = iota
	ChromeHidden
	// ChromeFocus hides everything while a focus timer runs.
	ChromeFocus
	// ChromeFocusExit shows only the way out of focus mode.
	ChromeFocusExit
)

type Panel int

const (
	PanelNone Panel = iota
	PanelTOC
	PanelAppearance
)

// Chrome decides what reader furniture is on screen.
type Chrome struct {
	State ChromeState
	Panel Panel
}

func NewChrome() Chrome {
	return Chrome{State: ChromeVisible}
}

// Tap reacts to the content being tapped. Hiding the controls also closes
// any open panel.
func (c Chrome) Tap() Chrome {
	switch c.State {
	case ChromeVisible:
		return Chrome{State: ChromeHidden}
	case ChromeHidden:
		return Chrome{State: ChromeVisible}
	case ChromeFocus:
		return Chrome{State: ChromeFocusExit}
	case ChromeFocusExit:
		return Chrome{State: ChromeFocus}
	}
	return c
}

// Open shows a panel, bringing the controls back if needed. Panels are not
// available in focus mode.
func (c Chrome) Open(p Panel) Chrome {
	if c.InFocus() {
		return c
	}
	if c.Panel == p {
		return Chrome{State: ChromeVisible}
	}
	return Chrome{State: ChromeVisible, Panel: p}
}

func (c Chrome) ClosePanel() Chrome {
	c.Panel = PanelNone
	return c
}

func (c Chrome) EnterFocus() Chrome {
	return Chrome{State: ChromeFocus}
}

func (c Chrome) ExitFocus() Chrome {
	return Chrome{State: ChromeHidden}
}

func (c Chrome) InFocus() bool {
	return c.State == ChromeFocus || c.State == ChromeFocusExit
}

func (c Chrome) ControlsVisible() bool {
	return c.State == ChromeVisible
}
