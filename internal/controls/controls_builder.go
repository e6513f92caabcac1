package controls

// BindingsOption is a functional option for configuring Bindings via New.
type BindingsOption func(*Bindings)

// WithRotator binds R to the scene's autorotate switch.
func WithRotator(r Rotator) BindingsOption {
	return func(b *Bindings) {
		b.rotator = r
	}
}

// WithHUD binds H to showing and hiding a display.
func WithHUD(t Toggle) BindingsOption {
	return func(b *Bindings) {
		b.hud = t
	}
}

// WithCloser binds Esc to closing the application.
func WithCloser(c Closer) BindingsOption {
	return func(b *Bindings) {
		b.closer = c
	}
}
