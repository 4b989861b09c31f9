// Package popup turns a rendered account base into a modal overlay that is
// opened and closed by buttons.
package popup

import (
	"time"

	"acctdesk/internal/account"
	"acctdesk/internal/element"
)

const (
	BaseClass        = "popup"
	ContainerClass   = "popup-container"
	ContentClass     = "popup-content"
	OpenClass        = "open-popup"
	CloseButtonClass = "popup-close-button"
	LockClass        = "lock"
)

// Options configures a Popup. Zero values are valid.
type Options struct {
	// Timeout is how long open/close gestures are swallowed after a transition.
	Timeout  time.Duration
	Schedule element.Scheduler
	// Main receives the lock marker while the popup is open.
	Main    element.Element
	OnOpen  func()
	OnClose func()
}

type Popup struct {
	base      element.Element
	container element.Element
	content   element.Element
	open      element.Element
	close     element.Element
	opts      Options

	isOpen bool
	locked bool
}

// New binds a popup to base. openButton and closeButton may be nil when the
// host drives the popup directly.
func New(base, openButton, closeButton element.Element, opts Options) (*Popup, error) {
	if base == nil {
		return nil, account.ErrMissingElement
	}
	return &Popup{
		base:      base,
		container: base.Query("." + account.ContainerClass),
		content:   base.Query("." + account.ContentClass),
		open:      openButton,
		close:     closeButton,
		opts:      opts,
	}, nil
}

// Init marks the markup as a popup, hides it and binds the gestures.
func (p *Popup) Init() {
	p.base.AddClass(BaseClass)
	if p.container != nil {
		p.container.AddClass(ContainerClass)
	}
	if p.content != nil {
		p.content.AddClass(ContentClass)
	}
	element.Hide(p.base, true)

	if p.open != nil {
		p.open.Listen(element.Click, func(element.Event) { p.Open() })
	}
	if p.close != nil {
		p.close.AddClass(CloseButtonClass)
		p.close.Listen(element.Click, func(element.Event) { p.Close() })
	}
	// A click on the backdrop itself closes the popup.
	p.base.Listen(element.Click, func(ev element.Event) {
		if ev.Target == p.base {
			p.Close()
		}
	})
}

func (p *Popup) IsOpen() bool { return p.isOpen }

// Locked reports whether gestures are currently swallowed.
func (p *Popup) Locked() bool { return p.locked }

// Open shows the popup and runs OnOpen. It reports whether anything happened.
func (p *Popup) Open() bool {
	if p.locked || p.isOpen {
		return false
	}
	if p.opts.Main != nil {
		p.opts.Main.AddClass(LockClass)
	}
	p.base.AddClass(OpenClass)
	element.Show(p.base, true)
	p.isOpen = true
	p.lock(nil)

	if p.opts.OnOpen != nil {
		p.opts.OnOpen()
	}
	return true
}

// Close hides the popup and runs OnClose. It reports whether anything happened.
func (p *Popup) Close() bool {
	if p.locked || !p.isOpen {
		return false
	}
	p.base.RemoveClass(OpenClass)
	element.Hide(p.base, true)
	p.isOpen = false
	p.lock(func() {
		if p.opts.Main != nil {
			p.opts.Main.RemoveClass(LockClass)
		}
	})

	if p.opts.OnClose != nil {
		p.opts.OnClose()
	}
	return true
}

func (p *Popup) lock(after func()) {
	unlock := func() {
		p.locked = false
		if after != nil {
			after()
		}
	}
	if p.opts.Schedule == nil || p.opts.Timeout <= 0 {
		unlock()
		return
	}
	p.locked = true
	p.opts.Schedule(p.opts.Timeout, unlock)
}
