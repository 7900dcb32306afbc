package ui

// Renderer draws one Frame. Implementations only consume frames; nothing flows
// back into the session.
type Renderer interface {
	Draw(frame Frame) error
}
